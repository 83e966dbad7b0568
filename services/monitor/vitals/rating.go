package vitals

import "github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"

type thresholds struct {
	good float64
	poor float64
}

// Classification ceilings per metric, in milliseconds except cls which is unitless
var metricThresholds = map[string]thresholds{
	common.MetricFCP:  {good: 1800, poor: 3000},
	common.MetricLCP:  {good: 2500, poor: 4000},
	common.MetricFID:  {good: 100, poor: 300},
	common.MetricCLS:  {good: 0.1, poor: 0.25},
	common.MetricTTFB: {good: 800, poor: 1800},
	common.MetricINP:  {good: 200, poor: 500},
}

// Rate classifies a measurement against the fixed ceilings of the named metric.
// Passing an unknown name is a programming error and yields an empty rating.
func Rate(name string, value float64) common.Rating {
	t, found := metricThresholds[name]
	if !found {
		return ""
	}

	if value <= t.good {
		return common.RatingGood
	}
	if value <= t.poor {
		return common.RatingNeedsImprovement
	}

	return common.RatingPoor
}
