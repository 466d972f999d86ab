package stealth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

func testFingerprint() schemas.Fingerprint {
	return schemas.Fingerprint{
		Seed:              "stealth",
		Country:           "DE",
		Platform:          schemas.PlatformWindows,
		UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		ChromeVersion:     "131.0.6778.86",
		NavigatorPlatform: "Win32",
		ClientHints: schemas.ClientHints{
			Platform:        "Windows",
			PlatformVersion: "15.0.0",
			Architecture:    "x86",
			Bitness:         "64",
			FullVersion:     "131.0.6778.86",
			Brands: []schemas.UserAgentBrandVersion{
				{Brand: "Google Chrome", Version: "131.0.6778.86"},
				{Brand: "Chromium", Version: "131.0.6778.86"},
				{Brand: "Not_A Brand", Version: "24.0.0.0"},
			},
		},
		Timezone:       "Europe/Berlin",
		TimezoneOffset: -60,
		Locale:         "de-DE",
		Languages:      []string{"de-DE", "de", "en-US", "en"},
		Screen: schemas.Screen{
			Width:       1920,
			Height:      1080,
			AvailWidth:  1920,
			AvailHeight: 1040,
			ColorDepth:  24,
			Orientation: schemas.Orientation{Type: schemas.OrientationLandscape},
		},
		DevicePixelRatio:    1,
		HardwareConcurrency: 8,
		DeviceMemory:        8,
		GPU:                 schemas.GPU{Vendor: "Google Inc. (NVIDIA)", Renderer: "ANGLE (NVIDIA, NVIDIA GeForce RTX 3060 Direct3D11 vs_5_0 ps_5_0, D3D11)"},
		WebGL: schemas.WebGLCapabilities{
			MaxTextureSize:               16384,
			MaxRenderbufferSize:          16384,
			MaxViewportDims:              [2]int{32767, 32767},
			MaxVertexAttribs:             16,
			MaxVertexUniformVectors:      4096,
			MaxFragmentUniformVectors:    1024,
			MaxVaryingVectors:            30,
			MaxCombinedTextureImageUnits: 32,
			AliasedLineWidthRange:        [2]float64{1, 1},
			AliasedPointSizeRange:        [2]float64{1, 1024},
			Extensions:                   []string{"ANGLE_instanced_arrays", "OES_texture_float", "WEBGL_debug_renderer_info"},
		},
		Fonts:           []string{"Arial", "Calibri", "Segoe UI"},
		CanvasNoiseSeed: 123456789,
		AudioNoiseSeed:  987654321,
		Audio:           schemas.AudioProperties{SampleRate: 44100, ChannelCount: 2, BaseLatency: 0.010884, OutputLatency: 0.02},
		Battery:         schemas.Battery{Charging: true, Level: 1},
	}
}

// personaFromScript extracts the JSON argument the script is invoked with.
func personaFromScript(t *testing.T, script string) schemas.OverridePatchSet {
	t.Helper()
	i := strings.LastIndex(script, "\n})(")
	require.GreaterOrEqual(t, i, 0, "script must invoke the evasions with a persona")
	raw := strings.TrimSuffix(script[i+len("\n})("):], ");")

	var got schemas.OverridePatchSet
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	return got
}

func TestBuildPatchSet(t *testing.T) {
	fp := testFingerprint()
	patch, err := BuildPatchSet(fp)
	require.NoError(t, err)

	assert.Equal(t, fp.UserAgent, patch.UserAgent)
	assert.Equal(t, "de-DE,de;q=0.9,en-US;q=0.8,en;q=0.7", patch.AcceptLanguage)
	assert.Equal(t, fp.Timezone, patch.Timezone)
	assert.Equal(t, fp.Locale, patch.Locale)
	assert.Equal(t, fp.Screen, patch.Screen)
	assert.Equal(t, fp.GPU, patch.GPU)
	assert.Equal(t, fp.CanvasNoiseSeed, patch.CanvasNoiseSeed)
	assert.Equal(t, fp.AudioNoiseSeed, patch.AudioNoiseSeed)
	assert.Equal(t, fp.TimezoneOffset, patch.TimezoneOffset)
	assert.Equal(t, fp.WebGL, patch.WebGL)
	assert.Equal(t, fp.Audio, patch.Audio)
	assert.Equal(t, schemas.OrientationLandscape, patch.Screen.Orientation.Type)

	// The patch owns its slices.
	patch.Languages[0] = "xx"
	patch.Fonts[0] = "xx"
	patch.WebGL.Extensions[0] = "xx"
	assert.Equal(t, "de-DE", fp.Languages[0])
	assert.Equal(t, "Arial", fp.Fonts[0])
	assert.Equal(t, "ANGLE_instanced_arrays", fp.WebGL.Extensions[0])
}

func TestBuildPatchSet_ScriptCarriesPersona(t *testing.T) {
	fp := testFingerprint()
	patch, err := BuildPatchSet(fp)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(patch.Script, "(function(persona) {\n"))
	assert.Contains(t, patch.Script, "UNMASKED_RENDERER")
	assert.Contains(t, patch.Script, "nativeGetParameter.call(this, param)")

	persona := personaFromScript(t, patch.Script)
	assert.Equal(t, fp.GPU, persona.GPU)
	assert.Equal(t, fp.Languages, persona.Languages)
	assert.Equal(t, fp.NavigatorPlatform, persona.NavigatorPlatform)
	assert.Equal(t, fp.CanvasNoiseSeed, persona.CanvasNoiseSeed)
	assert.Equal(t, fp.Battery, persona.Battery)
	assert.Equal(t, fp.WebGL, persona.WebGL)
	assert.Equal(t, fp.Audio, persona.Audio)
	assert.Equal(t, fp.TimezoneOffset, persona.TimezoneOffset)
	assert.Equal(t, fp.Screen.Orientation, persona.Screen.Orientation)
	assert.Empty(t, persona.Script, "the script never embeds itself")
}

func TestBuildPatchSet_LanguagesFallBackToLocale(t *testing.T) {
	fp := testFingerprint()
	fp.Languages = nil
	patch, err := BuildPatchSet(fp)
	require.NoError(t, err)
	assert.Equal(t, []string{"de-DE"}, patch.Languages)
}

func TestAcceptLanguage(t *testing.T) {
	tests := []struct {
		name      string
		languages []string
		want      string
	}{
		{"Empty", nil, ""},
		{"Single", []string{"en-US"}, "en-US"},
		{"Pair", []string{"en-US", "en"}, "en-US,en;q=0.9"},
		{"FloorsAtPointOne", strings.Fields("a b c d e f g h i j k l"), "a,b;q=0.9,c;q=0.8,d;q=0.7,e;q=0.6,f;q=0.5,g;q=0.4,h;q=0.3,i;q=0.2,j;q=0.1,k;q=0.1,l;q=0.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AcceptLanguage(tt.languages))
		})
	}
}

func TestApply(t *testing.T) {
	patch, err := BuildPatchSet(testFingerprint())
	require.NoError(t, err)

	t.Run("LogsPersona", func(t *testing.T) {
		core, observedLogs := observer.New(zap.DebugLevel)
		tasks := Apply(patch, zap.New(core))

		// Nine emulation/network overrides plus the script injection.
		assert.Len(t, tasks, 10)

		logs := observedLogs.All()
		require.Len(t, logs, 1)
		assert.Equal(t, "Applying browser stealth persona", logs[0].Message)
		assert.Equal(t, patch.UserAgent, logs[0].ContextMap()["userAgent"])
	})

	t.Run("NoScript", func(t *testing.T) {
		bare := patch
		bare.Script = ""
		assert.Len(t, Apply(bare, zap.NewNop()), 9)
	})

	t.Run("NilLogger", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Apply(patch, nil)
		})
	})
}

func TestUserAgentOverride(t *testing.T) {
	patch, err := BuildPatchSet(testFingerprint())
	require.NoError(t, err)

	ua := userAgentOverride(patch)
	assert.Equal(t, patch.UserAgent, ua.UserAgent)
	assert.Equal(t, "Win32", ua.Platform)
	require.NotNil(t, ua.UserAgentMetadata)
	assert.Equal(t, "Windows", ua.UserAgentMetadata.Platform)
	require.Len(t, ua.UserAgentMetadata.Brands, 3)
	assert.Equal(t, "131", ua.UserAgentMetadata.Brands[0].Version)
	assert.Equal(t, "131.0.6778.86", ua.UserAgentMetadata.FullVersionList[0].Version)

	patch.ClientHints = schemas.ClientHints{}
	assert.Nil(t, userAgentOverride(patch).UserAgentMetadata)
}
