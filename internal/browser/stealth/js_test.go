package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"regexp"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed evasions.test.js
var evasionsTestJS string

// chromeBinaries are the executable names chromedp's allocator searches for.
var chromeBinaries = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// setupBrowserContext starts a headless browser for in-page tests, skipping
// the test when no browser is installed.
func setupBrowserContext(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	found := false
	for _, name := range chromeBinaries {
		if _, err := exec.LookPath(name); err == nil {
			found = true
			break
		}
	}
	if !found {
		t.Skip("no Chrome or Chromium binary on PATH")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)
	ctx, cancelTimeout := context.WithTimeout(ctx, 60*time.Second)
	return ctx, func() {
		cancelTimeout()
		cancelCtx()
		cancelAlloc()
	}
}

// TestJavascriptEvasions runs the embedded in-page suite against a browser
// carrying the test persona.
func TestJavascriptEvasions(t *testing.T) {
	ctx, cancel := setupBrowserContext(t)
	defer cancel()

	patch, err := BuildPatchSet(testFingerprint())
	require.NoError(t, err)
	require.NoError(t, chromedp.Run(ctx, Apply(patch, nil)), "applying stealth persona failed")

	expected, err := json.Marshal(patch)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Running evasion tests</h1></body></html>`)
	}))
	defer server.Close()

	var rawResults interface{}
	err = chromedp.Run(ctx,
		chromedp.Navigate(server.URL),
		chromedp.WaitVisible("body"),
		chromedp.Evaluate("window.MIMICRY_PERSONA = "+string(expected)+";", nil),
		chromedp.Evaluate(evasionsTestJS, nil),
		chromedp.Poll(`window.MIMICRY_TEST_RESULTS`, &rawResults, chromedp.WithPollingTimeout(10*time.Second)),
	)
	require.NoError(t, err, "running the in-page suite failed or timed out")
	require.NotNil(t, rawResults)

	resultsJSON, err := json.Marshal(rawResults)
	require.NoError(t, err)

	type testResult struct {
		Name   string `json:"name"`
		Status string `json:"status"`
		Error  string `json:"error,omitempty"`
		Stack  string `json:"stack,omitempty"`
	}
	var results []testResult
	require.NoError(t, json.Unmarshal(resultsJSON, &results))
	require.NotEmpty(t, results)

	failed := false
	for _, result := range results {
		if result.Status == "FAIL" {
			failed = true
			t.Errorf("FAIL: %s\n    Error: %s\n    Stack (JS):\n%s", result.Name, result.Error, result.Stack)
		} else {
			t.Logf("PASS: %s", result.Name)
		}
	}
	assert.False(t, failed, "some in-page evasion tests failed")
}

// A wrapper named after the native it captured would call itself. Every
// cloaked function must therefore use a name no const in the script holds.
func TestEvasions_WrappersDoNotShadowCapturedNatives(t *testing.T) {
	consts := map[string]bool{}
	for _, m := range regexp.MustCompile(`\bconst (\w+) =`).FindAllStringSubmatch(evasionsScript, -1) {
		consts[m[1]] = true
	}
	wrappers := regexp.MustCompile(`cloak\(function (\w+)\(`).FindAllStringSubmatch(evasionsScript, -1)
	require.NotEmpty(t, wrappers)

	for _, m := range wrappers {
		assert.False(t, consts[m[1]], "wrapper %s shadows a captured const of the same name", m[1])
	}
	for _, native := range []string{"nativeGetParameter", "nativeToDataURL", "nativeToBlob", "nativeGetChannelData", "nativeCheck"} {
		assert.True(t, consts[native], "%s should hold the captured native", native)
	}
}
