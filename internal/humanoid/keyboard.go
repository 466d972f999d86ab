package humanoid

import (
	"math"
	"strings"
	"unicode"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

// -- keyboardNeighbors maps characters to their adjacent keys on a QWERTY layout --
var keyboardNeighbors = map[rune]string{
	'1': "2q`", '2': "13wq", '3': "24we", '4': "35er", '5': "46rt", '6': "57ty",
	'7': "68yu", '8': "79ui", '9': "80io", '0': "9-op",
	'q': "wa1s", 'w': "qase23", 'e': "wsdr34", 'r': "edft45", 't': "rfgy56",
	'y': "tghu67", 'u': "yhji78", 'i': "ujko89", 'o': "iklp90", 'p': "ol;0-",
	'a': "qwsz", 's': "awedxz", 'd': "serfcx", 'f': "drtgvc", 'g': "ftyhbv",
	'h': "gyujnb", 'j': "huikmn", 'k': "jiol,m", 'l': "kop;.",
	'z': "asx", 'x': "zsdc", 'c': "xdfv", 'v': "cfgb", 'b': "vghn", 'n': "bhjm", 'm': "njk,",
}

// -- fastBigrams are letter pairs practised typists roll without a full pause --
var fastBigrams = map[string]bool{
	"th": true, "he": true, "in": true, "er": true, "an": true, "re": true,
	"on": true, "at": true, "en": true, "nd": true, "st": true, "es": true,
	"or": true, "te": true, "of": true, "ed": true, "is": true, "it": true,
	"al": true, "ar": true, "nt": true,
}

const (
	sentenceEnders = ".!?"
	punctuation    = ".,!?;:"
	keyDelayFloor  = 0.35
)

// neighborTypo returns a key adjacent to r on a QWERTY layout, preserving case.
func neighborTypo(src *seedrand.Source, r rune) (rune, bool) {
	lower := unicode.ToLower(r)
	neighbors, ok := keyboardNeighbors[lower]
	if !ok || neighbors == "" {
		return 0, false
	}
	choice := seedrand.Pick(src, []rune(neighbors))
	if unicode.IsUpper(r) {
		choice = unicode.ToUpper(choice)
	}
	return choice, true
}

// isFastBigram reports whether prev followed by cur is a rolled pair.
func isFastBigram(prev, cur rune) bool {
	return fastBigrams[strings.ToLower(string([]rune{prev, cur}))]
}

// keyDelay is the wait before typing runes[i].
func keyDelay(src *seedrand.Source, runes []rune, i int, base float64, cfg Config) float64 {
	delay := math.Max(keyDelayFloor*base, base*(1+src.NextGaussian(0, cfg.KeyDelayStdDev)))
	if i > 0 {
		prev := runes[i-1]
		switch {
		case strings.ContainsRune(punctuation, prev):
			delay *= cfg.PunctuationFactor
		case unicode.IsSpace(prev):
			delay *= cfg.SpaceFactor
		case isFastBigram(prev, runes[i]):
			delay *= cfg.FastBigramFactor
		}
	}
	if unicode.IsUpper(runes[i]) {
		delay *= cfg.ShiftFactor
	}
	return delay
}

// BuildTypingPlan turns text into a keystroke plan. Each character draws its
// own typo chance; a typo types a neighbouring key, backspaces after a
// reaction delay and then types the intended character.
func BuildTypingPlan(src *seedrand.Source, text string, profile schemas.BiometricProfile, cfg Config) schemas.TypingPlan {
	cfg.Normalize()
	runes := []rune(text)
	if len(runes) == 0 {
		return schemas.TypingPlan{}
	}

	wpm := sampleRange(src, profile.TypingWPM)
	if wpm <= 0 {
		wpm = 40
	}
	base := 60000 / (wpm * 5)
	errorRate := seedrand.Clamp(profile.ErrorRate, 0, 1)

	actions := make([]schemas.TypingAction, 0, len(runes)+4)
	for i, r := range runes {
		if i > 0 && strings.ContainsRune(sentenceEnders, runes[i-1]) {
			actions = append(actions, schemas.TypingAction{
				Action:  schemas.ActionPause,
				DelayMs: 2 * sampleRange(src, profile.ReactionTimeMs),
			})
		}

		delay := keyDelay(src, runes, i, base, cfg)

		if src.NextBool(errorRate) {
			if wrong, ok := neighborTypo(src, r); ok {
				actions = append(actions,
					schemas.TypingAction{Action: schemas.ActionTypeKey, Char: string(wrong), DelayMs: delay},
					schemas.TypingAction{Action: schemas.ActionBackspace, DelayMs: sampleRange(src, profile.ReactionTimeMs)},
					schemas.TypingAction{Action: schemas.ActionTypeKey, Char: string(r), DelayMs: base * (1 + math.Abs(src.NextGaussian(0, 0.3)))},
				)
				continue
			}
		}
		actions = append(actions, schemas.TypingAction{Action: schemas.ActionTypeKey, Char: string(r), DelayMs: delay})
	}
	return schemas.TypingPlan{Actions: actions}
}

// Replay applies a plan to an empty buffer and returns the resulting text.
func Replay(plan schemas.TypingPlan) string {
	var buf []rune
	for _, a := range plan.Actions {
		switch a.Action {
		case schemas.ActionTypeKey:
			buf = append(buf, []rune(a.Char)...)
		case schemas.ActionBackspace:
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
			}
		}
	}
	return string(buf)
}
