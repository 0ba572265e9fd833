// Package store persists accounts and finished matches with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultRating = 1200

var (
	ErrUserExists = errors.New("username already exists")
	ErrNotFound   = errors.New("not found")
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	NameKey      string `gorm:"uniqueIndex;size:64"` // lowercased username
	Username     string `gorm:"size:64"`
	PasswordHash string
	Rating       int `gorm:"default:1200"`
	Wins         int
	Losses       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MatchRecord is one finished solo match.
type MatchRecord struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index"`
	Winner        string
	Reason        string
	Ticks         int
	PlayerBaseHP  int
	EnemyBaseHP   int
	UnitsSpawned  int
	UnitsLost     int
	EnemiesKilled int
	UpgradeLevel  int
	RatingBefore  int
	RatingDelta   int
	FinalSpeed    float64
	CreatedAt     time.Time
}

type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Open connects with driver "sqlite" (dsn is a file path) or "postgres"
// (dsn is a connection string) and migrates the schema.
func Open(driver, dsn string, log zerolog.Logger) (*Store, error) {
	gcfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		if dir := filepath.Dir(dsn); dir != "." && !strings.HasPrefix(dsn, "file:") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
		db, err = gorm.Open(sqlite.Open(dsn), gcfg)
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), gcfg)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// one writer avoids SQLITE_BUSY between room goroutines
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.AutoMigrate(&User{}, &MatchRecord{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	log.Info().Str("driver", driver).Msg("Connected to database")
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func userKey(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// CreateUser inserts a new account. Usernames are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	u := &User{
		NameKey:      userKey(username),
		Username:     strings.TrimSpace(username),
		PasswordHash: passwordHash,
		Rating:       DefaultRating,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&User{}).Where("name_key = ?", u.NameKey).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUserExists
		}
		return tx.Create(u).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrUserExists
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UserByName(ctx context.Context, username string) (*User, error) {
	var u User
	err := s.db.WithContext(ctx).Where("name_key = ?", userKey(username)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// RecordMatch stores rec and applies its result to the owning user in one
// transaction. rec.RatingBefore and rec.RatingDelta must already be set.
func (s *Store) RecordMatch(ctx context.Context, rec *MatchRecord, won bool) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return fmt.Errorf("inserting match: %w", err)
		}
		updates := map[string]any{"rating": rec.RatingBefore + rec.RatingDelta}
		if won {
			updates["wins"] = gorm.Expr("wins + ?", 1)
		} else {
			updates["losses"] = gorm.Expr("losses + ?", 1)
		}
		res := tx.Model(&User{}).Where("id = ?", rec.UserID).Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("updating user: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Leaderboard returns the top users by rating, then wins, then name.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	var users []User
	err := s.db.WithContext(ctx).
		Order("rating desc").Order("wins desc").Order("name_key asc").
		Limit(limit).Find(&users).Error
	return users, err
}

// Matches returns a user's most recent matches first.
func (s *Store) Matches(ctx context.Context, userID uint, limit int) ([]MatchRecord, error) {
	var recs []MatchRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").Limit(limit).Find(&recs).Error
	return recs, err
}
