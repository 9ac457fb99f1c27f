package leaderboarddomain

import "math"

// Impact weights. They sum to 1 so the score stays on a 0-100 scale.
const (
	WeightAQI   = 0.30
	WeightHeat  = 0.25
	WeightWater = 0.25
	WeightWaste = 0.20

	// HeatCeilingC is the reduction, in degrees Celsius, that maps to 100.
	HeatCeilingC = 10.0
)

// ImpactMetrics are the environmental improvements produced by one simulation run.
type ImpactMetrics struct {
	AQIImprovementPct    float64 `json:"aqi_improvement_pct"`
	HeatReductionC       float64 `json:"heat_reduction_c"`
	WaterStressReliefPct float64 `json:"water_stress_relief_pct"`
	WasteReductionPct    float64 `json:"waste_reduction_pct"`
}

// CalculateImpactScore combines m into a 0-100 score. Each metric is clamped
// to its domain first; NaN and infinities count as 0.
func CalculateImpactScore(m ImpactMetrics) int {
	aqi := clamp(m.AQIImprovementPct, 0, 100)
	heat := clamp(m.HeatReductionC, 0, HeatCeilingC) * (100 / HeatCeilingC)
	water := clamp(m.WaterStressReliefPct, 0, 100)
	waste := clamp(m.WasteReductionPct, 0, 100)

	score := aqi*WeightAQI + heat*WeightHeat + water*WeightWater + waste*WeightWaste
	return roundHalfUp(score)
}

// CumulativeImpactScore is the rounded mean of per-run scores, 0 when there are none.
func CumulativeImpactScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return roundHalfUp(float64(sum) / float64(len(scores)))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
