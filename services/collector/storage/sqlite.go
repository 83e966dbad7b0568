package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/iulianpascalau/web-vitals-monitoring/services/collector/common"
	_ "github.com/mattn/go-sqlite3"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("storage")

// sqliteStorage is the sqlite implementation for vitals reports storage
type sqliteStorage struct {
	db               *sql.DB
	retentionSeconds int
	cancelFunc       context.CancelFunc
	wg               sync.WaitGroup
}

// NewSQLiteStorage creates the database, schema, and starts the retention cleaner
func NewSQLiteStorage(dbPath string, retentionSeconds int) (*sqliteStorage, error) {
	err := prepareDirectories(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial empty DB file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = createSchema(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &sqliteStorage{
		db:               db,
		retentionSeconds: retentionSeconds,
		cancelFunc:       cancel,
	}

	s.startRetentionCleaner(ctx)

	return s, nil
}

func prepareDirectories(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}

	return os.MkdirAll(filepath.Dir(dbPath), os.ModePerm)
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS vitals_reports (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		page_url    TEXT    NOT NULL,
		user_agent  TEXT    NOT NULL DEFAULT '',
		fcp         REAL,
		lcp         REAL,
		fid         REAL,
		cls         REAL,
		ttfb        REAL,
		inp         REAL,
		recorded_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_vitals_reports_url ON vitals_reports(page_url);
	CREATE INDEX IF NOT EXISTS idx_vitals_reports_recorded_at ON vitals_reports(recorded_at);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// SaveReport inserts one ingested vitals report
func (s *sqliteStorage) SaveReport(ctx context.Context, report common.StoredReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vitals_reports (page_url, user_agent, fcp, lcp, fid, cls, ttfb, inp, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, report.URL, report.UserAgent,
		nullable(report.FCP), nullable(report.LCP), nullable(report.FID),
		nullable(report.CLS), nullable(report.TTFB), nullable(report.INP),
		report.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert vitals report: %w", err)
	}

	return nil
}

// GetLatestReports fetches the most recent report for each page url
func (s *sqliteStorage) GetLatestReports(ctx context.Context) ([]common.StoredReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_url, user_agent, fcp, lcp, fid, cls, ttfb, inp, recorded_at
		FROM (
			SELECT *,
				ROW_NUMBER() OVER(PARTITION BY page_url ORDER BY recorded_at DESC, id DESC) as rn
			FROM vitals_reports
		)
		WHERE rn = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	return scanReports(rows)
}

// GetPageHistory returns all retained reports for a page, oldest first
func (s *sqliteStorage) GetPageHistory(ctx context.Context, pageURL string) (*common.PageHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT page_url, user_agent, fcp, lcp, fid, cls, ttfb, inp, recorded_at
		FROM vitals_reports
		WHERE page_url = ?
		ORDER BY recorded_at, id
	`, pageURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	reports, err := scanReports(rows)
	if err != nil {
		return nil, err
	}

	return &common.PageHistory{
		URL:     pageURL,
		Reports: reports,
	}, nil
}

// DeletePage removes all reports of a page
func (s *sqliteStorage) DeletePage(ctx context.Context, pageURL string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vitals_reports WHERE page_url = ?", pageURL)
	return err
}

func scanReports(rows *sql.Rows) ([]common.StoredReport, error) {
	results := make([]common.StoredReport, 0)

	for rows.Next() {
		var r common.StoredReport
		var fcp, lcp, fid, cls, ttfb, inp sql.NullFloat64

		err := rows.Scan(&r.URL, &r.UserAgent, &fcp, &lcp, &fid, &cls, &ttfb, &inp, &r.RecordedAt)
		if err != nil {
			return nil, err
		}

		r.FCP = floatPtr(fcp)
		r.LCP = floatPtr(lcp)
		r.FID = floatPtr(fid)
		r.CLS = floatPtr(cls)
		r.TTFB = floatPtr(ttfb)
		r.INP = floatPtr(inp)

		results = append(results, r)
	}

	return results, rows.Err()
}

func (s *sqliteStorage) cleanRetainedReports(ctx context.Context) error {
	nowSec := time.Now().Unix()
	cutoff := nowSec - int64(s.retentionSeconds)
	_, err := s.db.ExecContext(ctx, "DELETE FROM vitals_reports WHERE recorded_at < ?", cutoff)
	return err
}

func (s *sqliteStorage) startRetentionCleaner(ctx context.Context) {
	s.wg.Add(1)

	// max(RetentionSeconds/10, 60)
	intervalSec := s.retentionSeconds / 10
	if intervalSec < 60 {
		intervalSec = 60
	}

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)

	go func() {
		defer s.wg.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				log.Debug("running retention cleanup")

				err := s.cleanRetainedReports(ctx)
				if err != nil {
					log.Warn("failed to cleanup retained reports", "error", err)
				}
			}
		}
	}()
}

// Close closes the database and stops background routines
func (s *sqliteStorage) Close() error {
	s.cancelFunc()
	s.wg.Wait()
	return s.db.Close()
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *sqliteStorage) IsInterfaceNil() bool {
	return s == nil
}

func nullable(value *float64) interface{} {
	if value == nil {
		return nil
	}

	return *value
}

func floatPtr(value sql.NullFloat64) *float64 {
	if !value.Valid {
		return nil
	}

	v := value.Float64
	return &v
}
