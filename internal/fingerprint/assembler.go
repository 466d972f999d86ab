// Package fingerprint assembles and validates browser identities. Every field
// of a record is a pure function of the seed, the country and the optional
// platform override; each field group draws from its own sub-stream so adding
// a field never shifts the values of another.
package fingerprint

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/geo"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// Sub-draw tags. Each names a field group that a retry can re-draw on its
// own; noise tags are never salted.
const (
	tagPlatform     = "platform"
	tagUserAgent    = "useragent"
	tagGPU          = "gpu"
	tagScreen       = "screen"
	tagCores        = "cores"
	tagMemory       = "memory"
	tagTimezone     = "timezone"
	tagBattery      = "battery"
	tagAudioContext = "audiocontext"

	tagCanvas = "canvas"
	tagAudio  = "audio"
)

// Assembler draws candidate records from the geo table.
type Assembler struct {
	table *geo.Table
}

// NewAssembler returns an Assembler backed by table.
func NewAssembler(table *geo.Table) *Assembler {
	return &Assembler{table: table}
}

// Redraws counts, per field group tag, how many times a retry has asked for a
// fresh draw. A nil or empty Redraws is the canonical draw.
type Redraws map[string]int

// stream returns the sub-draw source for tag, salted by its redraw count.
func stream(seed, tag string, redraws Redraws) *seedrand.Source {
	if n := redraws[tag]; n > 0 {
		tag = tag + "#" + strconv.Itoa(n)
	}
	return seedrand.Derive(seed, tag)
}

// Assemble builds one candidate record. Groups absent from redraws keep their
// canonical values, so a retry only moves the groups it names.
func (a *Assembler) Assemble(seed, country string, override schemas.Platform, redraws Redraws) (schemas.Fingerprint, error) {
	profile, ok := a.table.Lookup(country)
	if !ok {
		return schemas.Fingerprint{}, fmt.Errorf("%w: %q", ErrUnknownCountry, country)
	}
	if override != "" && !override.Valid() {
		return schemas.Fingerprint{}, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, override)
	}

	platform := override
	if platform == "" {
		platform = drawPlatform(stream(seed, tagPlatform, redraws), profile)
	}
	if len(profile.FontsFor(platform)) == 0 || len(profile.GPUsFor(platform)) == 0 {
		return schemas.Fingerprint{}, fmt.Errorf("%w: %s has no %s profile", ErrUnsupportedPlatform, profile.Country, platform)
	}
	t := traits[platform]

	rec := schemas.Fingerprint{
		Seed:              seed,
		Country:           profile.Country,
		Platform:          platform,
		NavigatorPlatform: t.navigatorPlatform,
		Locale:            profile.Locale,
		Languages:         append([]string(nil), profile.Languages...),
		Fonts:             profile.FontsFor(platform),
		CanvasNoiseSeed:   seedrand.Hash32(seed, tagCanvas),
		AudioNoiseSeed:    seedrand.Hash32(seed, tagAudio),
	}

	uaSrc := stream(seed, tagUserAgent, redraws)
	rec.ChromeVersion = seedrand.Pick(uaSrc, chromeVersions)
	rec.UserAgent = userAgent(platform, rec.ChromeVersion)

	rec.GPU = drawGPU(stream(seed, tagGPU, redraws), profile, platform)
	rec.WebGL, _ = webglFor(gpuFamily(rec.GPU.Vendor))

	major := majorVersion(rec.ChromeVersion)
	rec.ClientHints = schemas.ClientHints{
		Platform:        t.hintPlatform,
		PlatformVersion: seedrand.Pick(uaSrc, t.platformVersions),
		Architecture:    architectureFor(platform, rec.GPU),
		Bitness:         "64",
		FullVersion:     rec.ChromeVersion,
		Brands:          brands(major),
	}

	rec.Screen, rec.DevicePixelRatio = drawScreen(stream(seed, tagScreen, redraws), platform)
	rec.HardwareConcurrency = drawWeightedInt(stream(seed, tagCores, redraws), coreOptions[platform])
	rec.DeviceMemory = float64(drawWeightedInt(stream(seed, tagMemory, redraws), memoryOptions[platform]))
	rec.Timezone = drawTimezone(stream(seed, tagTimezone, redraws), profile)
	rec.TimezoneOffset, _ = standardOffset(rec.Timezone)
	rec.Audio = drawAudio(stream(seed, tagAudioContext, redraws), audioDevices[platform])
	rec.Battery = drawBattery(stream(seed, tagBattery, redraws), t.hasBatteryP)

	return rec, nil
}

func drawPlatform(src *seedrand.Source, profile geo.Profile) schemas.Platform {
	idx := seedrand.PickWeighted(src, weightsOf(profile.Platforms, func(w geo.WeightedPlatform) float64 {
		return w.Weight
	}))
	if idx < 0 {
		return schemas.PlatformWindows
	}
	return profile.Platforms[idx].Platform
}

func drawGPU(src *seedrand.Source, profile geo.Profile, platform schemas.Platform) schemas.GPU {
	pool := profile.GPUsFor(platform)
	idx := seedrand.PickWeighted(src, weightsOf(pool, func(g geo.GPUEntry) float64 { return g.Weight }))
	if idx < 0 {
		idx = 0
	}
	return schemas.GPU{Vendor: pool[idx].Vendor, Renderer: pool[idx].Renderer}
}

// architectureFor reports "arm" for Apple silicon and "x86" otherwise.
func architectureFor(platform schemas.Platform, gpu schemas.GPU) string {
	if platform == schemas.PlatformMac && gpuFamily(gpu.Vendor) == familyApple {
		return "arm"
	}
	return "x86"
}

func drawScreen(src *seedrand.Source, platform schemas.Platform) (schemas.Screen, float64) {
	presets := screenPresets[platform]
	idx := seedrand.PickWeighted(src, weightsOf(presets, func(s screenPreset) float64 { return s.weight }))
	if idx < 0 {
		idx = 0
	}
	preset := presets[idx]

	depth := 24
	if platform == schemas.PlatformMac && preset.dpr >= 2 {
		depth = 30
	}
	screen := schemas.Screen{
		Width:       preset.width,
		Height:      preset.height,
		AvailWidth:  preset.width,
		AvailHeight: preset.height - reservedHeight[platform],
		ColorDepth:  depth,
	}
	screen.Orientation = orientationOf(screen)
	return screen, preset.dpr
}

// orientationOf reports the primary orientation of an unrotated display.
func orientationOf(s schemas.Screen) schemas.Orientation {
	if s.Width >= s.Height {
		return schemas.Orientation{Type: schemas.OrientationLandscape}
	}
	return schemas.Orientation{Type: schemas.OrientationPortrait}
}

func drawWeightedInt(src *seedrand.Source, options []weightedInt) int {
	idx := seedrand.PickWeighted(src, weightsOf(options, func(w weightedInt) float64 { return w.weight }))
	if idx < 0 {
		idx = 0
	}
	return options[idx].value
}

// drawTimezone favours the first, most populous zone of the profile.
func drawTimezone(src *seedrand.Source, profile geo.Profile) string {
	weights := make([]float64, len(profile.Timezones))
	for i := range weights {
		weights[i] = 1 / float64(i+1)
	}
	idx := seedrand.PickWeighted(src, weights)
	if idx < 0 {
		idx = 0
	}
	return profile.Timezones[idx]
}

// offsetReference is a fixed instant so the offset of a zone never depends on
// the wall clock. Standard time is the smaller of the January and July
// offsets in either hemisphere.
var offsetReference = [2]time.Time{
	time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC),
	time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC),
}

// standardOffset returns the Date.getTimezoneOffset value of tz in standard
// time.
func standardOffset(tz string) (int, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return 0, err
	}
	_, jan := offsetReference[0].In(loc).Zone()
	_, jul := offsetReference[1].In(loc).Zone()
	return -min(jan, jul) / 60, nil
}

// drawAudio picks a device sample rate and derives the latencies from it.
func drawAudio(src *seedrand.Source, dev audioTraits) schemas.AudioProperties {
	rate := drawWeightedInt(src, dev.sampleRates)
	base := roundMicro(float64(dev.baseFrames) / float64(rate))
	output := roundMicro(src.NextFloat(dev.output[0], dev.output[1]))
	return schemas.AudioProperties{
		SampleRate:    rate,
		ChannelCount:  2,
		BaseLatency:   base,
		OutputLatency: max(output, base),
	}
}

func roundMicro(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// drawBattery reports a mains-powered desktop as charging at full level.
func drawBattery(src *seedrand.Source, hasBatteryP float64) schemas.Battery {
	if !src.NextBool(hasBatteryP) {
		return schemas.Battery{Charging: true, Level: 1}
	}
	charging := src.NextBool(0.45)
	level := math.Round(src.NextFloat(0.08, 1.0)*100) / 100
	if charging && level > 0.97 {
		level = 1
	}
	return schemas.Battery{Charging: charging, Level: level}
}
