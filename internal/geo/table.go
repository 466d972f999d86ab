// Package geo holds the per-country profile table that ties timezone, locale,
// language, platform mix, font sets and GPU pools together. The table is loaded
// once from an embedded YAML document and is read-only afterwards.
package geo

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	_ "time/tzdata" // timezone validation must not depend on the host zoneinfo

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/mimicry/api/schemas"
)

//go:embed profiles.yaml
var profilesYAML []byte

// ErrInvalidTable is returned when a profile table fails validation.
var ErrInvalidTable = errors.New("invalid geo profile table")

// WeightedPlatform is one entry of a country's platform mix.
type WeightedPlatform struct {
	Platform schemas.Platform `yaml:"platform" validate:"oneof=windows mac linux"`
	Weight   float64          `yaml:"weight" validate:"gt=0"`
}

// GPUEntry is a WebGL vendor/renderer pair and the platforms it ships on.
type GPUEntry struct {
	Vendor    string             `yaml:"vendor" validate:"required"`
	Renderer  string             `yaml:"renderer" validate:"required"`
	Platforms []schemas.Platform `yaml:"platforms" validate:"required,min=1,dive,oneof=windows mac linux"`
	Weight    float64            `yaml:"weight" validate:"gt=0"`
}

// SupportedOn reports whether the entry ships on p.
func (g GPUEntry) SupportedOn(p schemas.Platform) bool {
	for _, candidate := range g.Platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// Profile is the geo data for one country. Timezones lists the most
// populous zone first; Languages lists the primary language first.
type Profile struct {
	Country   string             `yaml:"country" validate:"required,iso3166_1_alpha2"`
	Timezones []string           `yaml:"timezones" validate:"required,min=1,dive,timezone"`
	Locale    string             `yaml:"locale" validate:"required,bcp47_language_tag"`
	Languages []string           `yaml:"languages" validate:"required,min=1,dive,bcp47_language_tag"`
	Platforms []WeightedPlatform `yaml:"platforms" validate:"required,min=1,dive"`
	GPUs      []GPUEntry         `yaml:"gpus" validate:"required,min=1,dive"`

	Fonts map[schemas.Platform][]string `yaml:"fonts" validate:"required,dive,keys,oneof=windows mac linux,endkeys,min=1"`
	// RegionalFonts are installed on top of Fonts by locale-specific images.
	RegionalFonts map[schemas.Platform][]string `yaml:"regional_fonts" validate:"omitempty,dive,keys,oneof=windows mac linux,endkeys,min=1"`
}

// FontsFor returns the sorted, de-duplicated font set for platform: the base
// set plus the country's regional fonts. The result is a fresh slice.
func (p Profile) FontsFor(platform schemas.Platform) []string {
	base := p.Fonts[platform]
	if len(base) == 0 {
		return nil
	}
	out := make([]string, 0, len(base)+len(p.RegionalFonts[platform]))
	out = append(out, base...)
	out = append(out, p.RegionalFonts[platform]...)
	slices.Sort(out)
	return slices.Compact(out)
}

// GPUsFor returns the pool entries that ship on platform, in table order.
func (p Profile) GPUsFor(platform schemas.Platform) []GPUEntry {
	var out []GPUEntry
	for _, g := range p.GPUs {
		if g.SupportedOn(platform) {
			out = append(out, g)
		}
	}
	return out
}

// HasTimezone reports whether tz is one of the profile's zones.
func (p Profile) HasTimezone(tz string) bool {
	for _, candidate := range p.Timezones {
		if candidate == tz {
			return true
		}
	}
	return false
}

type tableFile struct {
	Countries []Profile `yaml:"countries" validate:"required,min=1,dive"`
}

// Table is an immutable set of country profiles keyed by ISO 3166-1 alpha-2 code.
type Table struct {
	profiles map[string]Profile
	codes    []string
}

var defaultTable = sync.OnceValues(func() (*Table, error) {
	return Load(profilesYAML)
})

// Default returns the embedded table, loading it on first use.
func Default() (*Table, error) {
	return defaultTable()
}

// Load parses and validates a YAML profile table.
func Load(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidTable, err)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(&file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	t := &Table{profiles: make(map[string]Profile, len(file.Countries))}
	for _, p := range file.Countries {
		code := strings.ToUpper(p.Country)
		if _, dup := t.profiles[code]; dup {
			return nil, fmt.Errorf("%w: duplicate country %q", ErrInvalidTable, code)
		}
		if err := checkCoherence(p); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidTable, code, err)
		}
		p.Country = code
		t.profiles[code] = p
		t.codes = append(t.codes, code)
	}
	sort.Strings(t.codes)
	return t, nil
}

// checkCoherence enforces the cross-field rules struct tags cannot express.
func checkCoherence(p Profile) error {
	tag, err := language.Parse(p.Locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", p.Locale, err)
	}
	region, conf := tag.Region()
	if conf == language.No || !strings.EqualFold(region.String(), p.Country) {
		return fmt.Errorf("locale %q does not belong to region %s", p.Locale, p.Country)
	}
	if p.Languages[0] != p.Locale {
		return fmt.Errorf("primary language %q must equal locale %q", p.Languages[0], p.Locale)
	}
	for _, wp := range p.Platforms {
		if len(p.FontsFor(wp.Platform)) == 0 {
			return fmt.Errorf("no font set for platform %s", wp.Platform)
		}
		if len(p.GPUsFor(wp.Platform)) == 0 {
			return fmt.Errorf("no GPU entries for platform %s", wp.Platform)
		}
	}
	return nil
}

// Lookup returns the profile for an ISO country code, case-insensitively.
func (t *Table) Lookup(country string) (Profile, bool) {
	p, ok := t.profiles[strings.ToUpper(strings.TrimSpace(country))]
	return p, ok
}

// Countries returns the known country codes in sorted order.
func (t *Table) Countries() []string {
	return append([]string(nil), t.codes...)
}
