package humanoid

import (
	"fmt"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/mimicry/api/schemas"
	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

func TestBuildTypingPlan_NoErrors(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 0

	plan := BuildTypingPlan(seedrand.New("quick"), "the quick", profile, DefaultConfig())
	assert.Equal(t, 9, plan.Count(schemas.ActionTypeKey))
	assert.Equal(t, 0, plan.Count(schemas.ActionBackspace))
	assert.Equal(t, "the quick", Replay(plan))
}

func TestBuildTypingPlan_Empty(t *testing.T) {
	plan := BuildTypingPlan(seedrand.New("empty"), "", testProfile(), DefaultConfig())
	assert.Empty(t, plan.Actions)
	assert.Equal(t, "", Replay(plan))
}

func TestBuildTypingPlan_ReplayReconstructsText(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 0.3

	texts := []string{
		"Hello, World! How are you today?",
		"p@ssw0rd-123",
		"ünïcødé and ASCII mixed",
		"a",
		"    ",
	}
	for i, text := range texts {
		for j := 0; j < 20; j++ {
			src := seedrand.New(fmt.Sprintf("replay-%d-%d", i, j))
			plan := BuildTypingPlan(src, text, profile, DefaultConfig())
			require.Equal(t, text, Replay(plan))
			for _, a := range plan.Actions {
				assert.Greater(t, a.DelayMs, 0.0)
			}
		}
	}
}

func TestBuildTypingPlan_TypoShape(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 1

	plan := BuildTypingPlan(seedrand.New("typos"), "sad", profile, DefaultConfig())
	// Every character has a neighbour, so each becomes wrong, backspace, right.
	require.Len(t, plan.Actions, 9)
	for i := 0; i < 9; i += 3 {
		wrong, back, right := plan.Actions[i], plan.Actions[i+1], plan.Actions[i+2]
		assert.Equal(t, schemas.ActionTypeKey, wrong.Action)
		assert.Equal(t, schemas.ActionBackspace, back.Action)
		assert.Equal(t, schemas.ActionTypeKey, right.Action)
		assert.NotEqual(t, wrong.Char, right.Char)
		assert.Contains(t, keyboardNeighbors[[]rune(right.Char)[0]], wrong.Char)
		assert.GreaterOrEqual(t, back.DelayMs, profile.ReactionTimeMs.Min)
		assert.LessOrEqual(t, back.DelayMs, profile.ReactionTimeMs.Max)
	}
	assert.Equal(t, "sad", Replay(plan))
}

func TestBuildTypingPlan_TypoPreservesCase(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 1
	plan := BuildTypingPlan(seedrand.New("caps"), "Q", profile, DefaultConfig())
	require.Len(t, plan.Actions, 3)
	assert.True(t, unicode.IsUpper([]rune(plan.Actions[0].Char)[0]) || !unicode.IsLetter([]rune(plan.Actions[0].Char)[0]))
}

func TestBuildTypingPlan_SentencePause(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 0
	plan := BuildTypingPlan(seedrand.New("sentence"), "Hi. Ok", profile, DefaultConfig())
	assert.Equal(t, 1, plan.Count(schemas.ActionPause))
	assert.Equal(t, "Hi. Ok", Replay(plan))
}

func TestBuildTypingPlan_Cadence(t *testing.T) {
	profile := testProfile()
	profile.ErrorRate = 0
	cfg := DefaultConfig()
	cfg.KeyDelayStdDev = 0

	plan := BuildTypingPlan(seedrand.New("cadence"), "th,x", profile, cfg)
	require.Len(t, plan.Actions, 4)
	base := plan.Actions[0].DelayMs
	assert.InDelta(t, base*cfg.FastBigramFactor, plan.Actions[1].DelayMs, 1e-9, "rolled bigram is faster")
	assert.InDelta(t, base*cfg.PunctuationFactor, plan.Actions[3].DelayMs, 1e-9, "key after punctuation is slower")
}

func TestBuildTypingPlan_SpeedFollowsProfile(t *testing.T) {
	fast := testProfile()
	fast.ErrorRate = 0
	fast.TypingWPM = schemas.Range{Min: 110, Max: 120}
	slow := fast
	slow.TypingWPM = schemas.Range{Min: 40, Max: 45}

	text := strings.Repeat("lorem ipsum dolor ", 5)
	total := func(p schemas.TypingPlan) float64 {
		var sum float64
		for _, a := range p.Actions {
			sum += a.DelayMs
		}
		return sum
	}
	assert.Less(t,
		total(BuildTypingPlan(seedrand.New("speed"), text, fast, DefaultConfig())),
		total(BuildTypingPlan(seedrand.New("speed"), text, slow, DefaultConfig())))
}

func TestNeighborTypo(t *testing.T) {
	src := seedrand.New("neighbors")
	for i := 0; i < 50; i++ {
		got, ok := neighborTypo(src, 'f')
		require.True(t, ok)
		assert.Contains(t, keyboardNeighbors['f'], string(got))
	}
	_, ok := neighborTypo(src, ' ')
	assert.False(t, ok)
	_, ok = neighborTypo(src, 'é')
	assert.False(t, ok)
}
