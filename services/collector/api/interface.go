package api

import (
	"context"

	"github.com/iulianpascalau/web-vitals-monitoring/services/collector/common"
)

// Storage defines the interface for persisting and querying vitals reports
type Storage interface {
	// SaveReport appends one ingested vitals report
	SaveReport(ctx context.Context, report common.StoredReport) error

	// GetLatestReports returns the single latest report for every known page url
	GetLatestReports(ctx context.Context) ([]common.StoredReport, error)

	// GetPageHistory returns all retained reports for a specific page, oldest first
	GetPageHistory(ctx context.Context, pageURL string) (*common.PageHistory, error)

	// DeletePage removes all reports of a page
	DeletePage(ctx context.Context, pageURL string) error

	// Close shuts down the database connection
	Close() error

	IsInterfaceNil() bool
}
