package repository

import (
	"context"
	"errors"

	"chordprep/model"

	"gorm.io/gorm"
)

// TrackRepository stores the per-track reports of dataset builds.
type TrackRepository interface {
	RecordTrack(ctx context.Context, rec *model.TrackRecord) error
	ListByRun(ctx context.Context, runID string) ([]*model.TrackRecord, error)
	// LatestRun returns the id of the most recent build, "" when there is none.
	LatestRun(ctx context.Context) (string, error)
	// History lists the most recent records of one track, newest first.
	History(ctx context.Context, trackID string, limit int) ([]*model.TrackRecord, error)
}

type gormTrackRepository struct {
	db *gorm.DB
}

// NewGormTrackRepository creates a GORM backed track repository.
func NewGormTrackRepository(db *gorm.DB) TrackRepository {
	return &gormTrackRepository{db: db}
}

func (r *gormTrackRepository) RecordTrack(ctx context.Context, rec *model.TrackRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *gormTrackRepository) ListByRun(ctx context.Context, runID string) ([]*model.TrackRecord, error) {
	var recs []*model.TrackRecord
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("track_id ASC").
		Find(&recs).Error
	return recs, err
}

func (r *gormTrackRepository) LatestRun(ctx context.Context) (string, error) {
	var rec model.TrackRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return rec.RunID, nil
}

func (r *gormTrackRepository) History(ctx context.Context, trackID string, limit int) ([]*model.TrackRecord, error) {
	var recs []*model.TrackRecord
	q := r.db.WithContext(ctx).
		Where("track_id = ?", trackID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&recs).Error
	return recs, err
}
