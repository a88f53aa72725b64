package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/twhispers/twhispers/internal/models"
)

// RecentLimit caps the list of latest confessions.
const RecentLimit = 15

// DayLayout is the only accepted format for date filters.
const DayLayout = "2006-01-02"

var (
	ErrNotFound    = errors.New("confession not found")
	ErrInvalidDate = errors.New("invalid date format, expected YYYY-MM-DD")
)

// Direction selects the counter a vote increments.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

func (d Direction) column() string {
	if d == Down {
		return "downvotes"
	}
	return "upvotes"
}

// ParseDay parses a YYYY-MM-DD calendar date.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return day, nil
}

// Store runs the confession queries against a shared handle.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// UnitOfWork runs fn in a transaction scoped to ctx. It commits when fn returns
// nil and rolls back on an error or a panic; the connection goes back to the
// pool in every case.
func (s *Store) UnitOfWork(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.conn.WithContext(ctx).Transaction(fn)
}

func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("created_at desc").Order("id desc")
}

// Recent returns the newest confessions, at most RecentLimit of them.
func (s *Store) Recent(ctx context.Context) ([]models.Confession, error) {
	confessions := make([]models.Confession, 0, RecentLimit)
	err := s.UnitOfWork(ctx, func(tx *gorm.DB) error {
		return newestFirst(tx).Limit(RecentLimit).Find(&confessions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list confessions: %w", err)
	}
	return confessions, nil
}

// Create inserts a confession and returns it as stored, with the id and
// timestamp assigned by the database.
func (s *Store) Create(ctx context.Context, content string) (models.Confession, error) {
	var created models.Confession
	err := s.UnitOfWork(ctx, func(tx *gorm.DB) error {
		row := models.Confession{Content: content}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.First(&created, row.ID).Error
	})
	if err != nil {
		return models.Confession{}, fmt.Errorf("create confession: %w", err)
	}
	return created, nil
}

// Vote adds one to the chosen counter of confession id. The increment happens
// inside the UPDATE statement so concurrent votes never overwrite each other.
func (s *Store) Vote(ctx context.Context, id uint, direction Direction) (models.VoteTally, error) {
	var confession models.Confession
	err := s.UnitOfWork(ctx, func(tx *gorm.DB) error {
		column := direction.column()
		res := tx.Model(&models.Confession{}).
			Where("id = ?", id).
			UpdateColumn(column, gorm.Expr(column+" + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.First(&confession, id).Error
	})
	if err != nil {
		return models.VoteTally{}, fmt.Errorf("%svote confession %d: %w", direction, id, err)
	}
	return confession.Tally(), nil
}

// OnDate returns every confession created on day, as the database's own
// time zone sees it, newest first.
func (s *Store) OnDate(ctx context.Context, day time.Time) ([]models.Confession, error) {
	confessions := make([]models.Confession, 0)
	err := s.UnitOfWork(ctx, func(tx *gorm.DB) error {
		return newestFirst(tx).
			Where("DATE(created_at) = ?", day.Format(DayLayout)).
			Find(&confessions).Error
	})
	if err != nil {
		return nil, fmt.Errorf("filter confessions by date: %w", err)
	}
	return confessions, nil
}
