package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"signal-classifier/models"

	"github.com/apex/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a classification id is unknown.
var ErrNotFound = errors.New("classification not found")

// Store persists classification attempts.
type Store struct {
	db *gorm.DB
}

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&models.Classification{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.WithField("path", path).Info("history database connected")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record inserts one classification attempt.
func (s *Store) Record(ctx context.Context, c *models.Classification) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to record classification: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*models.Classification, error) {
	var c models.Classification
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load classification: %w", err)
	}
	return &c, nil
}

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	Status   string
	Provider string
	Limit    int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// List returns matching attempts, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]models.Classification, error) {
	query := s.db.WithContext(ctx).Model(&models.Classification{})

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Provider != "" {
		query = query.Where("provider = ?", f.Provider)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	var rows []models.Classification
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	return rows, nil
}

// Stats summarises the recorded attempts.
type Stats struct {
	Total        int64            `json:"total"`
	Succeeded    int64            `json:"succeeded"`
	Failed       int64            `json:"failed"`
	ByErrorKind  map[string]int64 `json:"by_error_kind"`
	AvgLatencyMS float64          `json:"avg_latency_ms"`
}

func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	stats := &Stats{ByErrorKind: map[string]int64{}}

	if err := db.Model(&models.Classification{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	if err := db.Model(&models.Classification{}).Where("status = ?", models.StatusOK).Count(&stats.Succeeded).Error; err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	stats.Failed = stats.Total - stats.Succeeded

	if err := db.Model(&models.Classification{}).Where("status = ?", models.StatusOK).
		Select("COALESCE(AVG(latency_ms), 0)").Scan(&stats.AvgLatencyMS).Error; err != nil {
		return nil, fmt.Errorf("failed to average latency: %w", err)
	}

	var kinds []struct {
		ErrorKind string
		N         int64
	}
	if err := db.Model(&models.Classification{}).
		Select("error_kind, COUNT(*) AS n").
		Where("status = ?", models.StatusFailed).
		Group("error_kind").
		Scan(&kinds).Error; err != nil {
		return nil, fmt.Errorf("failed to group failures: %w", err)
	}
	for _, k := range kinds {
		stats.ByErrorKind[k.ErrorKind] = k.N
	}

	return stats, nil
}
