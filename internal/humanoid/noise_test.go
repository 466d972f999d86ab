package humanoid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/mimicry/internal/seedrand"
)

func TestNewPinkNoiseGenerator(t *testing.T) {
	t.Run("StandardInitialization", func(t *testing.T) {
		p := NewPinkNoiseGenerator(seedrand.New("pink"), 12)
		assert.Equal(t, 12, p.n)

		totalP := 0.0
		for _, prob := range p.p {
			totalP += prob
		}
		assert.InDelta(t, 1.0, totalP, 1e-9)

		initialSum := 0.0
		for _, v := range p.values {
			initialSum += v
		}
		assert.InDelta(t, initialSum, p.pink, 1e-12)
	})

	t.Run("InvalidN", func(t *testing.T) {
		p := NewPinkNoiseGenerator(seedrand.New("pink"), 0)
		assert.Equal(t, 12, p.n)
	})
}

func TestPinkNoiseGenerator_Next(t *testing.T) {
	p := NewPinkNoiseGenerator(seedrand.New("pink-next"), 8)
	for i := 0; i < 500; i++ {
		v := p.Next()
		assert.Less(t, v, 3.0)
		assert.Greater(t, v, -3.0)
	}

	a := NewPinkNoiseGenerator(seedrand.New("same"), 8)
	b := NewPinkNoiseGenerator(seedrand.New("same"), 8)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Next(), b.Next())
	}
}
