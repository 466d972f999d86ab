package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

//go:embed evasions.js
var evasionsScript string

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BuildPatchSet turns a fingerprint into the overrides a session applies
// before its first navigation. The evasion script carries the same values so
// JavaScript-visible properties agree with the CDP-level overrides.
func BuildPatchSet(fp schemas.Fingerprint) (schemas.OverridePatchSet, error) {
	patch := schemas.OverridePatchSet{
		UserAgent:           fp.UserAgent,
		AcceptLanguage:      AcceptLanguage(fp.Languages),
		NavigatorPlatform:   fp.NavigatorPlatform,
		ClientHints:         fp.ClientHints,
		Timezone:            fp.Timezone,
		TimezoneOffset:      fp.TimezoneOffset,
		Locale:              fp.Locale,
		Languages:           append([]string(nil), fp.Languages...),
		Screen:              fp.Screen,
		DevicePixelRatio:    fp.DevicePixelRatio,
		HardwareConcurrency: fp.HardwareConcurrency,
		DeviceMemory:        fp.DeviceMemory,
		MaxTouchPoints:      fp.MaxTouchPoints,
		GPU:                 fp.GPU,
		WebGL:               fp.WebGL,
		Fonts:               append([]string(nil), fp.Fonts...),
		CanvasNoiseSeed:     fp.CanvasNoiseSeed,
		AudioNoiseSeed:      fp.AudioNoiseSeed,
		Audio:               fp.Audio,
		Battery:             fp.Battery,
	}
	patch.WebGL.Extensions = append([]string(nil), fp.WebGL.Extensions...)
	if len(patch.Languages) == 0 && patch.Locale != "" {
		patch.Languages = []string{patch.Locale}
	}

	script, err := buildScript(patch)
	if err != nil {
		return schemas.OverridePatchSet{}, err
	}
	patch.Script = script
	return patch, nil
}

// AcceptLanguage formats languages as an Accept-Language header with
// descending quality values: "de-DE,de;q=0.9,en-US;q=0.8".
func AcceptLanguage(languages []string) string {
	var b strings.Builder
	q := 10
	for i, lang := range languages {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(lang)
		if i > 0 {
			if q > 1 {
				q--
			}
			fmt.Fprintf(&b, ";q=0.%d", q)
		}
	}
	return b.String()
}

// buildScript wraps the evasions in a function that receives the persona.
func buildScript(patch schemas.OverridePatchSet) (string, error) {
	persona, err := json.Marshal(patch)
	if err != nil {
		return "", fmt.Errorf("failed to encode stealth persona: %w", err)
	}
	var b strings.Builder
	b.Grow(len(evasionsScript) + len(persona) + 64)
	b.WriteString("(function(persona) {\n")
	b.WriteString(evasionsScript)
	b.WriteString("\n})(")
	b.Write(persona)
	b.WriteString(");")
	return b.String(), nil
}

// Apply constructs the Chrome DevTools Protocol actions that make the browser
// present the identity in patch. It must run before the first navigation.
func Apply(patch schemas.OverridePatchSet, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser stealth persona",
		zap.String("userAgent", patch.UserAgent),
		zap.String("platform", patch.NavigatorPlatform),
		zap.String("timezone", patch.Timezone),
	)

	tasks := chromedp.Tasks{
		emulation.SetAutomationOverride(false),
		userAgentOverride(patch),
		emulation.SetTimezoneOverride(patch.Timezone),
		emulation.SetLocaleOverride().WithLocale(patch.Locale),
		emulation.SetHardwareConcurrencyOverride(int64(patch.HardwareConcurrency)),
		emulation.SetDeviceMetricsOverride(
			int64(patch.Screen.Width),
			int64(patch.Screen.AvailHeight),
			patch.DevicePixelRatio,
			false,
		).WithScreenWidth(int64(patch.Screen.Width)).
			WithScreenHeight(int64(patch.Screen.Height)),
		emulation.SetTouchEmulationEnabled(patch.MaxTouchPoints > 0).
			WithMaxTouchPoints(int64(patch.MaxTouchPoints)),
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": patch.AcceptLanguage,
		}),
	}

	if patch.Script != "" {
		// AddScriptToEvaluateOnNewDocument returns an identifier as well as an
		// error, so it has to be wrapped to satisfy chromedp.Action.
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			if _, err := page.AddScriptToEvaluateOnNewDocument(patch.Script).Do(ctx); err != nil {
				return fmt.Errorf("failed to inject evasions script: %w", err)
			}
			return nil
		}))
	}
	return tasks
}

// userAgentOverride sets the UA string together with matching client hints so
// navigator.userAgentData does not leak "HeadlessChrome".
func userAgentOverride(patch schemas.OverridePatchSet) *emulation.SetUserAgentOverrideParams {
	ua := emulation.SetUserAgentOverride(patch.UserAgent).
		WithAcceptLanguage(patch.AcceptLanguage).
		WithPlatform(patch.NavigatorPlatform)

	hints := patch.ClientHints
	if hints.Platform == "" {
		return ua
	}
	brands := make([]*emulation.UserAgentBrandVersion, 0, len(hints.Brands))
	full := make([]*emulation.UserAgentBrandVersion, 0, len(hints.Brands))
	for _, b := range hints.Brands {
		brands = append(brands, &emulation.UserAgentBrandVersion{Brand: b.Brand, Version: majorOf(b.Version)})
		full = append(full, &emulation.UserAgentBrandVersion{Brand: b.Brand, Version: b.Version})
	}
	return ua.WithUserAgentMetadata(&emulation.UserAgentMetadata{
		Brands:          brands,
		FullVersionList: full,
		Platform:        hints.Platform,
		PlatformVersion: hints.PlatformVersion,
		Architecture:    hints.Architecture,
		Bitness:         hints.Bitness,
		Mobile:          hints.Mobile,
	})
}

func majorOf(version string) string {
	if i := strings.IndexByte(version, '.'); i >= 0 {
		return version[:i]
	}
	return version
}
