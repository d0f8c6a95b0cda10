package session

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore keeps sessions in the active_sessions table, one row per user.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Put(ctx context.Context, next *ActiveSession) (*ActiveSession, error) {
	var previous *ActiveSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing ActiveSession
		err := tx.Where("user_id = ?", next.UserID).First(&existing).Error
		switch {
		case err == nil:
			previous = &existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_id", "user_agent", "ip_address", "created_at", "last_seen_at"}),
		}).Create(next).Error
	})
	if err != nil {
		return nil, err
	}
	return previous, nil
}

func (s *GormStore) Get(ctx context.Context, userID string) (*ActiveSession, error) {
	var a ActiveSession
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) Touch(ctx context.Context, userID, sessionID string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&ActiveSession{}).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Update("last_seen_at", at).Error
}

func (s *GormStore) Delete(ctx context.Context, userID, sessionID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND session_id = ?", userID, sessionID).
		Delete(&ActiveSession{})
	return res.RowsAffected > 0, res.Error
}

func (s *GormStore) DeleteIdle(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("last_seen_at < ?", before).Delete(&ActiveSession{})
	return res.RowsAffected, res.Error
}
