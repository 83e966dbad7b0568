package common

// Rating is the qualitative classification of a web-vitals measurement
type Rating string

const (
	// RatingGood marks a value at or below the metric's "good" ceiling
	RatingGood Rating = "good"
	// RatingNeedsImprovement marks a value between the "good" and "poor" ceilings
	RatingNeedsImprovement Rating = "needs-improvement"
	// RatingPoor marks a value above the "poor" ceiling
	RatingPoor Rating = "poor"
)

// Known metric names
const (
	MetricFCP  = "fcp"
	MetricLCP  = "lcp"
	MetricFID  = "fid"
	MetricCLS  = "cls"
	MetricTTFB = "ttfb"
	MetricINP  = "inp"
)

// Entry type identifiers matching the host's performance timeline
const (
	EntryTypePaint       = "paint"
	EntryTypeLCP         = "largest-contentful-paint"
	EntryTypeFirstInput  = "first-input"
	EntryTypeLayoutShift = "layout-shift"
	EntryTypeResource    = "resource"
	EntryTypeNavigation  = "navigation"
)

// EntryNameFCP is the paint entry name carrying the first contentful paint time
const EntryNameFCP = "first-contentful-paint"

// Metric is a single rated measurement. Instances are never mutated after creation.
type Metric struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Rating    Rating  `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

// Report accumulates the vitals of one page session. A nil field means the
// corresponding metric was never observed. Fields are only set or overwritten,
// never cleared.
type Report struct {
	FCP  *Metric `json:"fcp,omitempty"`
	LCP  *Metric `json:"lcp,omitempty"`
	FID  *Metric `json:"fid,omitempty"`
	CLS  *Metric `json:"cls,omitempty"`
	TTFB *Metric `json:"ttfb,omitempty"`
	INP  *Metric `json:"inp,omitempty"`
}

// Entry is one record from a host performance timeline. Only the fields
// relevant to the entry's type are populated.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name"`
	StartTime       float64 `json:"startTime"`
	Duration        float64 `json:"duration"`
	ProcessingStart float64 `json:"processingStart"`
	Value           float64 `json:"value"`
	HadRecentInput  bool    `json:"hadRecentInput"`
	RequestStart    float64 `json:"requestStart"`
	ResponseStart   float64 `json:"responseStart"`
	TransferSize    int64   `json:"transferSize"`
}

// ImageInfo describes one image element currently present in the page
type ImageInfo struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Loading string `json:"loading"`
	Srcset  string `json:"srcset"`
}

// ResourceStats is the running aggregate for one resource type tag
type ResourceStats struct {
	Count           int     `json:"count"`
	TotalSize       int64   `json:"totalSize"`
	AverageLoadTime float64 `json:"averageLoadTime"`
	Slowest         float64 `json:"slowest"`
}

// ImageAuditResult is the outcome of a one-shot image optimization scan
type ImageAuditResult struct {
	Issues []string `json:"issues"`
	Score  int      `json:"score"`
}

// BudgetResult is the outcome of evaluating a report against a performance budget
type BudgetResult struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`
}

// PerformanceData bundles everything the orchestrator knows about the session
type PerformanceData struct {
	Vitals    Report                   `json:"vitals"`
	Resources map[string]ResourceStats `json:"resources"`
	Images    ImageAuditResult         `json:"images"`
	Budget    BudgetResult             `json:"budget"`
}
