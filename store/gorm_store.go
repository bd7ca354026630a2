package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"xp-ledger/models"
)

// UserSnapshot is one row per user holding the encoded snapshot.
type UserSnapshot struct {
	UserID    string         `gorm:"primaryKey;type:varchar(64)" json:"user_id"`
	Version   int64          `gorm:"not null;default:0" json:"version"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSnapshot) TableName() string { return "user_snapshots" }

// GormStore persists snapshots in Postgres. Read-modify-write cycles run
// inside a transaction holding a row lock on the user's snapshot.
type GormStore struct {
	DB *gorm.DB
}

func OpenPostgres(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewGormStore(db)
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&UserSnapshot{}); err != nil {
		return nil, fmt.Errorf("migrate user_snapshots: %w", err)
	}
	return &GormStore{DB: db}, nil
}

func (s *GormStore) Load(ctx context.Context, userID string) (*models.Snapshot, error) {
	var row UserSnapshot
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", userID, err)
	}
	snap, err := decode(row.Payload)
	if err != nil {
		return nil, err
	}
	snap.Version = row.Version
	return snap, nil
}

func (s *GormStore) Save(ctx context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&UserSnapshot{}).
		Where("user_id = ?", snap.UserID).
		Updates(map[string]interface{}{"version": snap.Version, "payload": datatypes.JSON(b)})
	if res.Error != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.UserID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (s *GormStore) Create(ctx context.Context, snap *models.Snapshot) error {
	b, err := encode(snap)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&UserSnapshot{}).Where("user_id = ?", snap.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrSnapshotExists
		}
		row := UserSnapshot{UserID: snap.UserID, Version: snap.Version, Payload: datatypes.JSON(b)}
		return tx.Create(&row).Error
	})
}

func (s *GormStore) UpdateTx(ctx context.Context, userID string, fn func(*models.Snapshot) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row UserSnapshot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSnapshotNotFound
			}
			return err
		}
		snap, err := decode(row.Payload)
		if err != nil {
			return err
		}
		snap.Version = row.Version
		if err := fn(snap); err != nil {
			return err
		}
		snap.Version = row.Version + 1
		b, err := encode(snap)
		if err != nil {
			return err
		}
		return tx.Model(&row).Updates(map[string]interface{}{"version": snap.Version, "payload": datatypes.JSON(b)}).Error
	})
}

func (s *GormStore) Delete(ctx context.Context, userID string) error {
	res := s.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&UserSnapshot{})
	if res.Error != nil {
		return fmt.Errorf("delete snapshot %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSnapshotNotFound
	}
	return nil
}

func (s *GormStore) UserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.DB.WithContext(ctx).Model(&UserSnapshot{}).Order("user_id ASC").Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list snapshot users: %w", err)
	}
	return ids, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
