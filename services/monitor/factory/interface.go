package factory

import (
	"context"

	"github.com/iulianpascalau/web-vitals-monitoring/services/monitor/common"
)

// Monitor defines the web vitals monitor operations
type Monitor interface {
	Start()
	GetReport() common.Report
	Capabilities() map[string]bool
	Disconnect()
	IsInterfaceNil() bool
}

// ResourceTracker defines the resource aggregation operations
type ResourceTracker interface {
	Snapshot() map[string]common.ResourceStats
	Supported() bool
	Close()
	IsInterfaceNil() bool
}

// Reporter defines the interface for pushing report snapshots to the analytics service
type Reporter interface {
	// Report sends one report snapshot. Failures are meant to be logged and
	// dropped, never retried.
	Report(ctx context.Context, report common.Report) error

	IsInterfaceNil() bool
}

// DocumentInspector provides read access to the page's current DOM contents
type DocumentInspector interface {
	Images() []common.ImageInfo
	CountImages() int
	CountScripts() int
	IsInterfaceNil() bool
}
