package ratelimit

// Adaptive scaling thresholds. Heap pressure shrinks the limit in two
// steps, and an elevated recent error rate shrinks it further. The
// effective limit never drops below a tenth of the configured base.
const (
	heapPressureHigh     = 80.0
	heapPressureCritical = 90.0
	heapFactorHigh       = 0.7
	heapFactorCritical   = 0.5

	errorRateThreshold = 0.10
	errorRateFactor    = 0.6

	minLimitFraction = 0.10
)

// AdaptiveController scales a base limit down under system pressure.
// It reads load through injected sampling functions rather than global
// process state, so the composition root decides what "heap percent"
// and "error rate" mean.
type AdaptiveController struct {
	heapPercent func() float64
	errorRate   func() float64
}

// NewAdaptiveController creates a controller from two samplers:
// heapPercent returns heap usage as a 0-100 percentage, errorRate
// returns the recent request error ratio as a 0-1 fraction. A nil
// sampler reads as zero pressure.
func NewAdaptiveController(heapPercent, errorRate func() float64) *AdaptiveController {
	if heapPercent == nil {
		heapPercent = func() float64 { return 0 }
	}
	if errorRate == nil {
		errorRate = func() float64 { return 0 }
	}
	return &AdaptiveController{heapPercent: heapPercent, errorRate: errorRate}
}

// EffectiveLimit scales base by the current pressure factors, floored
// at a tenth of base and never below one.
func (a *AdaptiveController) EffectiveLimit(base int) int {
	factor := 1.0

	switch heap := a.heapPercent(); {
	case heap > heapPressureCritical:
		factor *= heapFactorCritical
	case heap > heapPressureHigh:
		factor *= heapFactorHigh
	}

	if a.errorRate() > errorRateThreshold {
		factor *= errorRateFactor
	}

	limit := int(float64(base) * factor)

	floor := int(float64(base) * minLimitFraction)
	if floor < 1 {
		floor = 1
	}
	if limit < floor {
		limit = floor
	}
	return limit
}
