package matte

import (
	"math"
	"testing"

	v2atypes "github.com/Meriku/green-screen-video-to-png-images/type"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classifyAt 把距离 d 放在 Cb 轴上
func classifyAt(d float64, tol v2atypes.Tolerance) float64 {
	return Classify(128+d, 128, 128, 128, tol)
}

func TestClassifyRegions(t *testing.T) {
	tests := []struct {
		name string
		d    float64
		want float64
	}{
		{"on key", 0, 0},
		{"inside low", 10, 0},
		{"just below low", 29.999, 0},
		{"at low", 30, 0},
		{"midpoint", 75, 127.5},
		{"at high", 120, 255},
		{"beyond high", 121, 255},
		{"far away", 300, 255},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyAt(tt.d, DefaultTolerance))
		})
	}
}

func TestClassifyUsesBothChromaAxes(t *testing.T) {
	// 3-4-5 三角形，距离 50
	got := Classify(128+30, 128+40, 128, 128, v2atypes.Tolerance{Low: 0, High: 100})
	assert.InDelta(t, 127.5, got, 1e-9)
}

func TestClassifyContinuousAtBoundaries(t *testing.T) {
	tol := DefaultTolerance
	assert.InDelta(t, 0, classifyAt(tol.Low+1e-9, tol), 1e-6)
	assert.InDelta(t, 255, classifyAt(tol.High-1e-9, tol), 1e-6)
	assert.Equal(t, 255.0, classifyAt(tol.High, tol))
}

func TestClassifyMonotonic(t *testing.T) {
	tol := v2atypes.Tolerance{Low: 12.5, High: 64}
	prev := -1.0
	for d := 0.0; d <= 200; d += 0.25 {
		v := classifyAt(d, tol)
		require.GreaterOrEqual(t, v, prev, "d=%v", d)
		require.False(t, math.IsNaN(v))
		prev = v
	}
}

func TestValidateTolerance(t *testing.T) {
	tests := []struct {
		name string
		tol  v2atypes.Tolerance
		ok   bool
	}{
		{"default", DefaultTolerance, true},
		{"zero low", v2atypes.Tolerance{Low: 0, High: 1}, true},
		{"both zero", v2atypes.Tolerance{Low: 0, High: 0}, false},
		{"equal", v2atypes.Tolerance{Low: 40, High: 40}, false},
		{"inverted", v2atypes.Tolerance{Low: 120, High: 30}, false},
		{"negative low", v2atypes.Tolerance{Low: -1, High: 30}, false},
		{"negative high", v2atypes.Tolerance{Low: -10, High: -1}, false},
		{"nan", v2atypes.Tolerance{Low: math.NaN(), High: 30}, false},
		{"inf", v2atypes.Tolerance{Low: 0, High: math.Inf(1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTolerance(tt.tol)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidTolerance)
		})
	}
}
