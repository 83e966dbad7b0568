package common

// StoredReport is one ingested vitals report row. Nil metric values mean the
// browser session never observed that metric.
type StoredReport struct {
	URL        string   `json:"url"`
	UserAgent  string   `json:"userAgent"`
	FCP        *float64 `json:"fcp,omitempty"`
	LCP        *float64 `json:"lcp,omitempty"`
	FID        *float64 `json:"fid,omitempty"`
	CLS        *float64 `json:"cls,omitempty"`
	TTFB       *float64 `json:"ttfb,omitempty"`
	INP        *float64 `json:"inp,omitempty"`
	RecordedAt int64    `json:"recordedAt"`
}

// PageHistory encapsulates a page's retained reports, oldest first
type PageHistory struct {
	URL     string         `json:"url"`
	Reports []StoredReport `json:"reports"`
}
