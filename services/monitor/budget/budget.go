package budget

import (
	"fmt"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
)

// ElementCounter provides the live element counts needed by the budget checks
type ElementCounter interface {
	CountImages() int
	CountScripts() int
	IsInterfaceNil() bool
}

// Budget holds the performance ceilings a page session is held against.
// Durations are milliseconds, cls is unitless, bundle size is bytes.
type Budget struct {
	LCP         float64
	FID         float64
	CLS         float64
	FCP         float64
	TTFB        float64
	BundleSize  int64
	ImageCount  int
	ScriptCount int
}

// Overrides replaces any subset of the default ceilings. Nil fields keep the default.
type Overrides struct {
	LCP         *float64
	FID         *float64
	CLS         *float64
	FCP         *float64
	TTFB        *float64
	BundleSize  *int64
	ImageCount  *int
	ScriptCount *int
}

// Default returns the stock performance budget
func Default() Budget {
	return Budget{
		LCP:         2500,
		FID:         100,
		CLS:         0.1,
		FCP:         1800,
		TTFB:        800,
		BundleSize:  200000,
		ImageCount:  20,
		ScriptCount: 10,
	}
}

// Merge applies the overrides onto the default budget
func Merge(overrides Overrides) Budget {
	b := Default()

	if overrides.LCP != nil {
		b.LCP = *overrides.LCP
	}
	if overrides.FID != nil {
		b.FID = *overrides.FID
	}
	if overrides.CLS != nil {
		b.CLS = *overrides.CLS
	}
	if overrides.FCP != nil {
		b.FCP = *overrides.FCP
	}
	if overrides.TTFB != nil {
		b.TTFB = *overrides.TTFB
	}
	if overrides.BundleSize != nil {
		b.BundleSize = *overrides.BundleSize
	}
	if overrides.ImageCount != nil {
		b.ImageCount = *overrides.ImageCount
	}
	if overrides.ScriptCount != nil {
		b.ScriptCount = *overrides.ScriptCount
	}

	return b
}

// Evaluate compares an accumulated report and the live element counts against
// the merged budget. Checks run in a fixed order so the violation list is
// reproducible: lcp, fid, cls, fcp, ttfb, image count, script count. A metric
// absent from the report is skipped. The counter is optional.
func Evaluate(report common.Report, overrides Overrides, counter ElementCounter) common.BudgetResult {
	b := Merge(overrides)
	violations := make([]string, 0)

	if report.LCP != nil && report.LCP.Value > b.LCP {
		violations = append(violations, fmt.Sprintf("LCP %s exceeds budget of %s", formatMs(report.LCP.Value), formatMs(b.LCP)))
	}
	if report.FID != nil && report.FID.Value > b.FID {
		violations = append(violations, fmt.Sprintf("FID %s exceeds budget of %s", formatMs(report.FID.Value), formatMs(b.FID)))
	}
	if report.CLS != nil && report.CLS.Value > b.CLS {
		violations = append(violations, fmt.Sprintf("CLS %g exceeds budget of %g", report.CLS.Value, b.CLS))
	}
	if report.FCP != nil && report.FCP.Value > b.FCP {
		violations = append(violations, fmt.Sprintf("FCP %s exceeds budget of %s", formatMs(report.FCP.Value), formatMs(b.FCP)))
	}
	if report.TTFB != nil && report.TTFB.Value > b.TTFB {
		violations = append(violations, fmt.Sprintf("TTFB %s exceeds budget of %s", formatMs(report.TTFB.Value), formatMs(b.TTFB)))
	}

	if !check.IfNil(counter) {
		numImages := counter.CountImages()
		if numImages > b.ImageCount {
			violations = append(violations, fmt.Sprintf("image count %d exceeds budget of %d", numImages, b.ImageCount))
		}

		numScripts := counter.CountScripts()
		if numScripts > b.ScriptCount {
			violations = append(violations, fmt.Sprintf("script count %d exceeds budget of %d", numScripts, b.ScriptCount))
		}
	}

	return common.BudgetResult{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}

func formatMs(value float64) string {
	return fmt.Sprintf("%gms", value)
}
