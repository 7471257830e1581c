package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes run history helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &RunVenue{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA foreign_keys=ON").Error; err != nil {
		logrus.WithError(err).Warn("enable foreign keys")
	}
	return &Database{gorm: db}, nil
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveRun inserts a run together with its venues.
func (d *Database) SaveRun(run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("run id is required")
	}
	for i := range run.Venues {
		run.Venues[i].Position = i + 1
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(run).Error
}

// GetRun loads a run and its venues by public run id.
func (d *Database) GetRun(runID string) (*Run, error) {
	var run Run
	err := d.gorm.
		Preload("Venues", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("run_id = ?", strings.TrimSpace(runID)).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// RunQuery filters and paginates run listings.
type RunQuery struct {
	Outcome  string
	Provider string
	Offset   int
	Limit    int
}

// ListRuns returns runs newest first, without venues, and the total match count.
func (d *Database) ListRuns(q RunQuery) ([]Run, int64, error) {
	query := d.gorm.Model(&Run{})
	if q.Outcome != "" {
		query = query.Where("outcome = ?", q.Outcome)
	}
	if q.Provider != "" {
		query = query.Where("provider = ?", q.Provider)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("created_at DESC").Order("id DESC")
	if q.Limit > 0 {
		query = query.Offset(q.Offset).Limit(q.Limit)
	}
	var runs []Run
	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, err
	}
	return runs, total, nil
}

// CountRuns returns the number of stored runs.
func (d *Database) CountRuns() (int64, error) {
	var count int64
	if err := d.gorm.Model(&Run{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
