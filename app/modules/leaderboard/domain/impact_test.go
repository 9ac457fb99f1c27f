package leaderboarddomain

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
)

func TestCalculateImpactScore(t *testing.T) {
	tests := []struct {
		name    string
		metrics ImpactMetrics
		want    int
	}{
		{"zero", ImpactMetrics{}, 0},
		{"maximum", ImpactMetrics{100, 10, 100, 100}, 100},
		{"clamped above", ImpactMetrics{250, 40, 300, 101}, 100},
		{"clamped below", ImpactMetrics{-10, -3, -50, -1}, 0},
		{"weighted mix", ImpactMetrics{AQIImprovementPct: 50, HeatReductionC: 2, WaterStressReliefPct: 40, WasteReductionPct: 10}, 32},
		{"half rounds up", ImpactMetrics{AQIImprovementPct: 5}, 2},
		{"non-finite values count as zero", ImpactMetrics{math.NaN(), math.Inf(1), math.Inf(-1), 100}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateImpactScore(tt.metrics))
		})
	}
}

func TestCalculateImpactScoreBounds(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 500; i++ {
		m := ImpactMetrics{
			AQIImprovementPct:    f.Float64Range(-500, 500),
			HeatReductionC:       f.Float64Range(-50, 50),
			WaterStressReliefPct: f.Float64Range(-500, 500),
			WasteReductionPct:    f.Float64Range(-500, 500),
		}
		got := CalculateImpactScore(m)
		assert.GreaterOrEqual(t, got, 0, "%+v", m)
		assert.LessOrEqual(t, got, 100, "%+v", m)
	}
}

func TestCumulativeImpactScore(t *testing.T) {
	assert.Equal(t, 0, CumulativeImpactScore(nil))
	assert.Equal(t, 0, CumulativeImpactScore([]int{}))
	assert.Equal(t, 40, CumulativeImpactScore([]int{40}))
	assert.Equal(t, 51, CumulativeImpactScore([]int{50, 51}))
	assert.Equal(t, 67, CumulativeImpactScore([]int{100, 100, 0}))
}
