package testsCommon

import (
	"context"

	"github.com/iulianpascalau/web-vitals-monitoring/services/collector/common"
)

// StoreStub -
type StoreStub struct {
	SaveReportHandler       func(ctx context.Context, report common.StoredReport) error
	GetLatestReportsHandler func(ctx context.Context) ([]common.StoredReport, error)
	GetPageHistoryHandler   func(ctx context.Context, pageURL string) (*common.PageHistory, error)
	DeletePageHandler       func(ctx context.Context, pageURL string) error
	CloseHandler            func() error
}

// SaveReport -
func (stub *StoreStub) SaveReport(ctx context.Context, report common.StoredReport) error {
	if stub.SaveReportHandler != nil {
		return stub.SaveReportHandler(ctx, report)
	}

	return nil
}

// GetLatestReports -
func (stub *StoreStub) GetLatestReports(ctx context.Context) ([]common.StoredReport, error) {
	if stub.GetLatestReportsHandler != nil {
		return stub.GetLatestReportsHandler(ctx)
	}

	return make([]common.StoredReport, 0), nil
}

// GetPageHistory -
func (stub *StoreStub) GetPageHistory(ctx context.Context, pageURL string) (*common.PageHistory, error) {
	if stub.GetPageHistoryHandler != nil {
		return stub.GetPageHistoryHandler(ctx, pageURL)
	}

	return &common.PageHistory{}, nil
}

// DeletePage -
func (stub *StoreStub) DeletePage(ctx context.Context, pageURL string) error {
	if stub.DeletePageHandler != nil {
		return stub.DeletePageHandler(ctx, pageURL)
	}

	return nil
}

// Close -
func (stub *StoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *StoreStub) IsInterfaceNil() bool {
	return stub == nil
}
