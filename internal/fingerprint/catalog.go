package fingerprint

import (
	"fmt"
	"slices"
	"strings"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

// chromeVersions is the closed set of full Chrome versions identities claim.
// The user agent string only ever carries the reduced major version.
var chromeVersions = []string{
	"126.0.6478.127",
	"127.0.6533.120",
	"128.0.6613.138",
	"129.0.6668.90",
	"130.0.6723.117",
	"131.0.6778.86",
	"132.0.6834.110",
	"133.0.6943.127",
}

// platformTraits is everything that follows directly from the OS family.
type platformTraits struct {
	uaToken           string
	navigatorPlatform string
	hintPlatform      string
	platformVersions  []string
	hasBatteryP       float64
}

var traits = map[schemas.Platform]platformTraits{
	schemas.PlatformWindows: {
		uaToken:           "Windows NT 10.0; Win64; x64",
		navigatorPlatform: "Win32",
		hintPlatform:      "Windows",
		platformVersions:  []string{"10.0.0", "15.0.0"},
		hasBatteryP:       0.55,
	},
	schemas.PlatformMac: {
		uaToken:           "Macintosh; Intel Mac OS X 10_15_7",
		navigatorPlatform: "MacIntel",
		hintPlatform:      "macOS",
		platformVersions:  []string{"13.6.7", "14.5.0", "14.6.1", "15.1.0"},
		hasBatteryP:       0.85,
	},
	schemas.PlatformLinux: {
		uaToken:           "X11; Linux x86_64",
		navigatorPlatform: "Linux x86_64",
		hintPlatform:      "Linux",
		platformVersions:  []string{"6.5.0", "6.8.0"},
		hasBatteryP:       0.40,
	},
}

// userAgent renders the reduced Chrome UA for a platform and full version.
func userAgent(p schemas.Platform, fullVersion string) string {
	major := majorVersion(fullVersion)
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s.0.0.0 Safari/537.36",
		traits[p].uaToken, major,
	)
}

func majorVersion(full string) string {
	if i := strings.IndexByte(full, '.'); i > 0 {
		return full[:i]
	}
	return full
}

// brands returns the GREASE-style brand list Chrome sends for a major version.
func brands(major string) []schemas.UserAgentBrandVersion {
	return []schemas.UserAgentBrandVersion{
		{Brand: "Google Chrome", Version: major},
		{Brand: "Chromium", Version: major},
		{Brand: "Not_A Brand", Version: "24"},
	}
}

// screenPreset is a common resolution in CSS pixels.
type screenPreset struct {
	width, height int
	dpr           float64
	weight        float64
}

var screenPresets = map[schemas.Platform][]screenPreset{
	schemas.PlatformWindows: {
		{1920, 1080, 1, 30},
		{1536, 864, 1.25, 14},
		{1366, 768, 1, 12},
		{2560, 1440, 1, 10},
		{1440, 900, 1, 5},
		{1600, 900, 1, 5},
		{1280, 720, 1.5, 4},
		{2560, 1440, 1.5, 4},
		{1280, 800, 1, 3},
		{3440, 1440, 1, 2},
		{1280, 1024, 1, 2},
	},
	schemas.PlatformMac: {
		{1440, 900, 2, 20},
		{1512, 982, 2, 20},
		{1470, 956, 2, 15},
		{1728, 1117, 2, 10},
		{1280, 800, 2, 8},
		{2560, 1440, 1, 8},
		{1920, 1080, 1, 8},
		{1680, 1050, 2, 5},
	},
	schemas.PlatformLinux: {
		{1920, 1080, 1, 45},
		{1366, 768, 1, 15},
		{2560, 1440, 1, 15},
		{1600, 900, 1, 8},
		{1440, 900, 1, 7},
		{1920, 1080, 2, 5},
		{1280, 1024, 1, 5},
	},
}

// reservedHeight is the space the OS chrome takes from availHeight.
var reservedHeight = map[schemas.Platform]int{
	schemas.PlatformWindows: 40,
	schemas.PlatformMac:     25,
	schemas.PlatformLinux:   27,
}

// webglExtensions is what Chrome's ANGLE backend exposes on a desktop GPU.
var webglExtensions = []string{
	"ANGLE_instanced_arrays",
	"EXT_blend_minmax",
	"EXT_clip_control",
	"EXT_color_buffer_half_float",
	"EXT_depth_clamp",
	"EXT_disjoint_timer_query",
	"EXT_float_blend",
	"EXT_frag_depth",
	"EXT_polygon_offset_clamp",
	"EXT_sRGB",
	"EXT_shader_texture_lod",
	"EXT_texture_compression_bptc",
	"EXT_texture_compression_rgtc",
	"EXT_texture_filter_anisotropic",
	"KHR_parallel_shader_compile",
	"OES_element_index_uint",
	"OES_fbo_render_mipmap",
	"OES_standard_derivatives",
	"OES_texture_float",
	"OES_texture_float_linear",
	"OES_texture_half_float",
	"OES_texture_half_float_linear",
	"OES_vertex_array_object",
	"WEBGL_color_buffer_float",
	"WEBGL_compressed_texture_s3tc",
	"WEBGL_compressed_texture_s3tc_srgb",
	"WEBGL_debug_renderer_info",
	"WEBGL_debug_shaders",
	"WEBGL_depth_texture",
	"WEBGL_draw_buffers",
	"WEBGL_lose_context",
	"WEBGL_multi_draw",
	"WEBGL_polygon_mode",
}

// Apple silicon trades the desktop timer query for mobile texture formats.
var appleWebGLExtensions = func() []string {
	out := slices.DeleteFunc(slices.Clone(webglExtensions), func(ext string) bool {
		return ext == "EXT_disjoint_timer_query"
	})
	out = append(out,
		"WEBGL_compressed_texture_astc",
		"WEBGL_compressed_texture_etc",
		"WEBGL_compressed_texture_etc1",
	)
	slices.Sort(out)
	return out
}()

// webglProfiles holds the limits each GPU family reports through ANGLE.
var webglProfiles = map[string]schemas.WebGLCapabilities{
	familyApple: {
		MaxTextureSize:               16384,
		MaxRenderbufferSize:          16384,
		MaxViewportDims:              [2]int{16384, 16384},
		MaxVertexAttribs:             16,
		MaxVertexUniformVectors:      1024,
		MaxFragmentUniformVectors:    1024,
		MaxVaryingVectors:            31,
		MaxCombinedTextureImageUnits: 32,
		AliasedLineWidthRange:        [2]float64{1, 1},
		AliasedPointSizeRange:        [2]float64{1, 511},
		Extensions:                   appleWebGLExtensions,
	},
	familyNVIDIA: {
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
		Extensions:                   webglExtensions,
	},
	familyIntel: {
		MaxTextureSize:               16384,
		MaxRenderbufferSize:          16384,
		MaxViewportDims:              [2]int{32767, 32767},
		MaxVertexAttribs:             16,
		MaxVertexUniformVectors:      4095,
		MaxFragmentUniformVectors:    1024,
		MaxVaryingVectors:            30,
		MaxCombinedTextureImageUnits: 32,
		AliasedLineWidthRange:        [2]float64{1, 1},
		AliasedPointSizeRange:        [2]float64{1, 1024},
		Extensions:                   webglExtensions,
	},
	familyAMD: {
		MaxTextureSize:               16384,
		MaxRenderbufferSize:          16384,
		MaxViewportDims:              [2]int{16384, 16384},
		MaxVertexAttribs:             16,
		MaxVertexUniformVectors:      4096,
		MaxFragmentUniformVectors:    1024,
		MaxVaryingVectors:            32,
		MaxCombinedTextureImageUnits: 32,
		AliasedLineWidthRange:        [2]float64{1, 1},
		AliasedPointSizeRange:        [2]float64{1, 8192},
		Extensions:                   webglExtensions,
	},
}

// webglFor returns the family's capabilities with a private extension slice.
func webglFor(family string) (schemas.WebGLCapabilities, bool) {
	caps, ok := webglProfiles[family]
	if !ok {
		return schemas.WebGLCapabilities{}, false
	}
	caps.Extensions = slices.Clone(caps.Extensions)
	return caps, true
}

// audioTraits describe the default output device per platform. The base
// latency is one render quantum of baseFrames at the device sample rate.
type audioTraits struct {
	sampleRates []weightedInt
	baseFrames  int
	output      [2]float64
}

var audioDevices = map[schemas.Platform]audioTraits{
	schemas.PlatformWindows: {
		sampleRates: []weightedInt{{48000, 80}, {44100, 20}},
		baseFrames:  480,
		output:      [2]float64{0.01, 0.04},
	},
	schemas.PlatformMac: {
		sampleRates: []weightedInt{{48000, 60}, {44100, 40}},
		baseFrames:  256,
		output:      [2]float64{0.008, 0.025},
	},
	schemas.PlatformLinux: {
		sampleRates: []weightedInt{{48000, 70}, {44100, 30}},
		baseFrames:  512,
		output:      [2]float64{0.015, 0.06},
	},
}

// weightedInt is an integer option with a sampling weight.
type weightedInt struct {
	value  int
	weight float64
}

var coreOptions = map[schemas.Platform][]weightedInt{
	schemas.PlatformWindows: {{4, 20}, {6, 15}, {8, 30}, {12, 18}, {16, 17}},
	schemas.PlatformMac:     {{8, 70}, {12, 20}, {16, 10}},
	schemas.PlatformLinux:   {{4, 20}, {8, 40}, {12, 20}, {16, 20}},
}

// Chrome caps navigator.deviceMemory at 8.
var memoryOptions = map[schemas.Platform][]weightedInt{
	schemas.PlatformWindows: {{2, 5}, {4, 25}, {8, 70}},
	schemas.PlatformMac:     {{8, 100}},
	schemas.PlatformLinux:   {{4, 30}, {8, 70}},
}

// allowedCores and allowedMemory bound what any record may report.
var (
	allowedCores  = []int{1, 2, 4, 6, 8, 12, 16, 24, 32, 64, 128}
	allowedMemory = []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64}
)

func weightsOf[T any](items []T, weight func(T) float64) []float64 {
	out := make([]float64, len(items))
	for i, it := range items {
		out[i] = weight(it)
	}
	return out
}
