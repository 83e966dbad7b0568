package vitals

import (
	"testing"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		metric   string
		value    float64
		expected common.Rating
	}{
		{common.MetricFCP, 1800, common.RatingGood},
		{common.MetricFCP, 1801, common.RatingNeedsImprovement},
		{common.MetricFCP, 3000, common.RatingNeedsImprovement},
		{common.MetricFCP, 3001, common.RatingPoor},

		{common.MetricLCP, 2500, common.RatingGood},
		{common.MetricLCP, 2501, common.RatingNeedsImprovement},
		{common.MetricLCP, 4000, common.RatingNeedsImprovement},
		{common.MetricLCP, 4001, common.RatingPoor},

		{common.MetricFID, 100, common.RatingGood},
		{common.MetricFID, 101, common.RatingNeedsImprovement},
		{common.MetricFID, 300, common.RatingNeedsImprovement},
		{common.MetricFID, 301, common.RatingPoor},

		{common.MetricCLS, 0.1, common.RatingGood},
		{common.MetricCLS, 0.11, common.RatingNeedsImprovement},
		{common.MetricCLS, 0.25, common.RatingNeedsImprovement},
		{common.MetricCLS, 0.26, common.RatingPoor},

		{common.MetricTTFB, 800, common.RatingGood},
		{common.MetricTTFB, 801, common.RatingNeedsImprovement},
		{common.MetricTTFB, 1800, common.RatingNeedsImprovement},
		{common.MetricTTFB, 1801, common.RatingPoor},

		{common.MetricINP, 200, common.RatingGood},
		{common.MetricINP, 201, common.RatingNeedsImprovement},
		{common.MetricINP, 500, common.RatingNeedsImprovement},
		{common.MetricINP, 501, common.RatingPoor},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Rate(tc.metric, tc.value), "metric %s, value %v", tc.metric, tc.value)
	}

	t.Run("unknown metric name yields empty rating", func(t *testing.T) {
		assert.Equal(t, common.Rating(""), Rate("not-a-metric", 100))
	})
}
