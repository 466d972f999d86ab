package fingerprint

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/geo"
)

// Violation names a failed rule and why it failed.
type Violation struct {
	Rule   string `json:"rule"`
	Reason string `json:"reason"`
}

func (v Violation) String() string {
	return v.Rule + ": " + v.Reason
}

// Result is the outcome of validating one record.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations,omitempty"`
}

// ruleFunc returns an empty string when the record passes.
type ruleFunc func(rec schemas.Fingerprint, profile geo.Profile, known bool) string

// rule pairs a check with the field groups a retry re-draws when it fails.
// A rule with no groups cannot be fixed by drawing again.
type rule struct {
	name   string
	check  ruleFunc
	groups []string
}

// Validator applies the consistency rules in a fixed order.
type Validator struct {
	table *geo.Table
	rules []rule
}

// NewValidator returns a Validator that resolves geo data from table.
func NewValidator(table *geo.Table) *Validator {
	return &Validator{
		table: table,
		rules: []rule{
			{"platform", checkPlatform, []string{tagPlatform}},
			{"user-agent", checkUserAgent, []string{tagUserAgent}},
			{"navigator-platform", checkNavigatorPlatform, []string{tagPlatform}},
			{"client-hints", checkClientHints, []string{tagUserAgent}},
			{"gpu-platform", checkGPU, []string{tagGPU}},
			{"webgl-capabilities", checkWebGL, []string{tagGPU}},
			{"aspect-ratio", checkAspectRatio, []string{tagScreen}},
			{"screen-avail", checkAvail, []string{tagScreen}},
			{"screen-orientation", checkOrientation, []string{tagScreen}},
			{"pixel-ratio", checkPixelRatio, []string{tagScreen}},
			{"hardware-concurrency", checkCores, []string{tagCores}},
			{"device-memory", checkMemory, []string{tagMemory}},
			{"geo-coherence", checkGeo, []string{tagTimezone}},
			{"timezone-offset", checkTimezoneOffset, []string{tagTimezone}},
			{"fonts", checkFonts, []string{tagPlatform}},
			{"noise-seeds", checkNoiseSeeds, nil},
			{"audio-context", checkAudio, []string{tagAudioContext}},
			{"battery", checkBattery, []string{tagBattery}},
		},
	}
}

// Validate checks every rule and collects all violations.
func (v *Validator) Validate(rec schemas.Fingerprint) Result {
	profile, known := v.table.Lookup(rec.Country)
	var violations []Violation
	for _, r := range v.rules {
		if reason := r.check(rec, profile, known); reason != "" {
			violations = append(violations, Violation{Rule: r.name, Reason: reason})
		}
	}
	return Result{Valid: len(violations) == 0, Violations: violations}
}

// redrawGroups returns the field groups behind the violated rules, in rule
// order and without repeats.
func (v *Validator) redrawGroups(violations []Violation) []string {
	failed := make(map[string]bool, len(violations))
	for _, vi := range violations {
		failed[vi.Rule] = true
	}
	var groups []string
	for _, r := range v.rules {
		if !failed[r.name] {
			continue
		}
		for _, g := range r.groups {
			if !slices.Contains(groups, g) {
				groups = append(groups, g)
			}
		}
	}
	return groups
}

// -- GPU classification --

const (
	familyApple   = "apple"
	familyNVIDIA  = "nvidia"
	familyIntel   = "intel"
	familyAMD     = "amd"
	familyUnknown = "unknown"
)

var familyPlatforms = map[string][]schemas.Platform{
	familyApple:  {schemas.PlatformMac},
	familyNVIDIA: {schemas.PlatformWindows, schemas.PlatformLinux},
	familyIntel:  {schemas.PlatformWindows, schemas.PlatformMac, schemas.PlatformLinux},
	familyAMD:    {schemas.PlatformWindows, schemas.PlatformMac, schemas.PlatformLinux},
}

// gpuFamily extracts the hardware vendor from a WebGL vendor string such as
// "Google Inc. (NVIDIA Corporation)".
func gpuFamily(vendor string) string {
	s := vendor
	if open := strings.IndexByte(s, '('); open >= 0 {
		if end := strings.LastIndexByte(s, ')'); end > open {
			s = s[open+1 : end]
		}
	}
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "apple"):
		return familyApple
	case strings.Contains(s, "nvidia"):
		return familyNVIDIA
	case strings.Contains(s, "intel"):
		return familyIntel
	case strings.Contains(s, "amd"), strings.Contains(s, "ati "):
		return familyAMD
	}
	return familyUnknown
}

// rendererBackend maps a renderer string to the only platform whose graphics
// stack produces it.
func rendererBackend(renderer string) (schemas.Platform, bool) {
	switch {
	case strings.Contains(renderer, "Direct3D"), strings.Contains(renderer, "D3D11"):
		return schemas.PlatformWindows, true
	case strings.Contains(renderer, "Metal"):
		return schemas.PlatformMac, true
	case strings.Contains(renderer, "OpenGL"):
		return schemas.PlatformLinux, true
	}
	return "", false
}

// -- Rules --

func checkPlatform(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if !rec.Platform.Valid() {
		return fmt.Sprintf("platform %q is not one of %v", rec.Platform, schemas.Platforms)
	}
	return ""
}

func checkUserAgent(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	t, ok := traits[rec.Platform]
	if !ok {
		return "no user agent family for platform"
	}
	if !strings.Contains(rec.UserAgent, "("+t.uaToken+")") {
		return fmt.Sprintf("user agent does not carry the %s token", rec.Platform)
	}
	if rec.ChromeVersion != "" && !strings.Contains(rec.UserAgent, "Chrome/"+majorVersion(rec.ChromeVersion)+".") {
		return "user agent major version differs from chromeVersion"
	}
	return ""
}

func checkNavigatorPlatform(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	t, ok := traits[rec.Platform]
	if ok && rec.NavigatorPlatform != t.navigatorPlatform {
		return fmt.Sprintf("navigator.platform %q does not match %s", rec.NavigatorPlatform, rec.Platform)
	}
	return ""
}

func checkClientHints(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	t, ok := traits[rec.Platform]
	if ok && rec.ClientHints.Platform != t.hintPlatform {
		return fmt.Sprintf("client hint platform %q does not match %s", rec.ClientHints.Platform, rec.Platform)
	}
	if rec.ClientHints.Mobile {
		return "desktop identity reports a mobile client hint"
	}
	return ""
}

func checkGPU(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	family := gpuFamily(rec.GPU.Vendor)
	allowed, ok := familyPlatforms[family]
	if !ok {
		return fmt.Sprintf("unrecognised GPU vendor %q", rec.GPU.Vendor)
	}
	if !slices.Contains(allowed, rec.Platform) {
		return fmt.Sprintf("%s GPU is not shipped on %s", family, rec.Platform)
	}
	if !strings.Contains(strings.ToLower(rec.GPU.Renderer), family) {
		return fmt.Sprintf("renderer %q does not belong to vendor family %s", rec.GPU.Renderer, family)
	}
	backend, ok := rendererBackend(rec.GPU.Renderer)
	if !ok {
		return fmt.Sprintf("renderer %q has no recognised graphics backend", rec.GPU.Renderer)
	}
	if backend != rec.Platform {
		return fmt.Sprintf("renderer backend belongs to %s, not %s", backend, rec.Platform)
	}
	return ""
}

// checkWebGL ties the reported limits and extensions to the GPU family.
func checkWebGL(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	family := gpuFamily(rec.GPU.Vendor)
	want, ok := webglFor(family)
	if !ok {
		return fmt.Sprintf("no WebGL profile for GPU family %s", family)
	}
	got := rec.WebGL
	if !slices.Equal(got.Extensions, want.Extensions) {
		return fmt.Sprintf("WebGL extensions are not the %s set", family)
	}
	got.Extensions, want.Extensions = nil, nil
	if !reflect.DeepEqual(got, want) {
		return fmt.Sprintf("WebGL limits are not the %s limits", family)
	}
	return ""
}

func checkAspectRatio(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	ratio := rec.Screen.AspectRatio()
	if ratio < 1.0 || ratio > 3.5 {
		return fmt.Sprintf("aspect ratio %.3f outside [1.0, 3.5]", ratio)
	}
	return ""
}

func checkAvail(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	s := rec.Screen
	if s.AvailWidth <= 0 || s.AvailHeight <= 0 || s.AvailWidth > s.Width || s.AvailHeight > s.Height {
		return fmt.Sprintf("available area %dx%d does not fit screen %dx%d", s.AvailWidth, s.AvailHeight, s.Width, s.Height)
	}
	return ""
}

func checkOrientation(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	want := orientationOf(rec.Screen)
	if rec.Screen.Orientation != want {
		return fmt.Sprintf("orientation %s/%d does not fit a %dx%d screen (want %s/%d)",
			rec.Screen.Orientation.Type, rec.Screen.Orientation.Angle,
			rec.Screen.Width, rec.Screen.Height, want.Type, want.Angle)
	}
	return ""
}

func checkPixelRatio(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if rec.DevicePixelRatio <= 0 || rec.DevicePixelRatio > 4 {
		return fmt.Sprintf("device pixel ratio %.2f outside (0, 4]", rec.DevicePixelRatio)
	}
	return ""
}

func checkCores(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if !slices.Contains(allowedCores, rec.HardwareConcurrency) {
		return fmt.Sprintf("hardwareConcurrency %d not in %v", rec.HardwareConcurrency, allowedCores)
	}
	return ""
}

func checkMemory(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if !slices.Contains(allowedMemory, rec.DeviceMemory) {
		return fmt.Sprintf("deviceMemory %g not in %v", rec.DeviceMemory, allowedMemory)
	}
	return ""
}

func checkGeo(rec schemas.Fingerprint, profile geo.Profile, known bool) string {
	if !known {
		return fmt.Sprintf("country %q has no geo profile", rec.Country)
	}
	if !profile.HasTimezone(rec.Timezone) {
		return fmt.Sprintf("timezone %q is not used in %s", rec.Timezone, profile.Country)
	}
	if rec.Locale != profile.Locale {
		return fmt.Sprintf("locale %q differs from %s locale %q", rec.Locale, profile.Country, profile.Locale)
	}
	if _, err := language.Parse(rec.Locale); err != nil {
		return fmt.Sprintf("locale %q is not a valid language tag", rec.Locale)
	}
	if !slices.Equal(rec.Languages, profile.Languages) {
		return fmt.Sprintf("languages %v differ from %s list %v", rec.Languages, profile.Country, profile.Languages)
	}
	if len(rec.Languages) == 0 || rec.Languages[0] != rec.Locale {
		return "primary language must equal the locale"
	}
	return ""
}

func checkTimezoneOffset(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	want, err := standardOffset(rec.Timezone)
	if err != nil {
		return fmt.Sprintf("timezone %q cannot be resolved", rec.Timezone)
	}
	if rec.TimezoneOffset != want {
		return fmt.Sprintf("timezoneOffset %d differs from %s standard offset %d", rec.TimezoneOffset, rec.Timezone, want)
	}
	return ""
}

func checkFonts(rec schemas.Fingerprint, profile geo.Profile, known bool) string {
	if !known {
		return ""
	}
	if !slices.Equal(rec.Fonts, profile.FontsFor(rec.Platform)) {
		return fmt.Sprintf("font list is not the %s set for %s", rec.Platform, profile.Country)
	}
	return ""
}

func checkNoiseSeeds(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if rec.CanvasNoiseSeed == 0 || rec.AudioNoiseSeed == 0 {
		return "noise seeds must be nonzero"
	}
	if rec.CanvasNoiseSeed == rec.AudioNoiseSeed {
		return "canvas and audio noise seeds must differ"
	}
	return ""
}

var allowedSampleRates = []int{44100, 48000}

func checkAudio(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	a := rec.Audio
	if !slices.Contains(allowedSampleRates, a.SampleRate) {
		return fmt.Sprintf("sampleRate %d not in %v", a.SampleRate, allowedSampleRates)
	}
	if a.ChannelCount != 2 {
		return fmt.Sprintf("channelCount %d on a desktop output", a.ChannelCount)
	}
	dev, ok := audioDevices[rec.Platform]
	if !ok {
		return ""
	}
	if want := roundMicro(float64(dev.baseFrames) / float64(a.SampleRate)); a.BaseLatency != want {
		return fmt.Sprintf("baseLatency %g is not %d frames at %d Hz", a.BaseLatency, dev.baseFrames, a.SampleRate)
	}
	if a.OutputLatency < a.BaseLatency || a.OutputLatency > 0.1 {
		return fmt.Sprintf("outputLatency %g outside [baseLatency, 0.1]", a.OutputLatency)
	}
	return ""
}

func checkBattery(rec schemas.Fingerprint, _ geo.Profile, _ bool) string {
	if math.IsNaN(rec.Battery.Level) || rec.Battery.Level < 0 || rec.Battery.Level > 1 {
		return fmt.Sprintf("battery level %g outside [0, 1]", rec.Battery.Level)
	}
	return ""
}
