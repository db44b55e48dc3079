package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
	"github.com/noah-isme/evalsuite-api/internal/scoring"
)

// ErrActiveEventExists is returned when creating an active event while one is already open.
var ErrActiveEventExists = errors.New("an active event already exists")

// EventRepository persists evaluation event documents.
type EventRepository interface {
	FindActive(ctx context.Context) (models.Event, error)
	FindByKey(ctx context.Context, key string) (models.Event, error)
	List(ctx context.Context, status string) ([]models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Save(ctx context.Context, event *models.Event) error
	UpdateActive(ctx context.Context, fn func(event *models.Event) error) (models.Event, error)
}

type eventRepository struct {
	db *gorm.DB
}

// NewEventRepository constructs the event repository.
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) FindActive(ctx context.Context) (models.Event, error) {
	return findActive(r.db.WithContext(ctx))
}

func (r *eventRepository) FindByKey(ctx context.Context, key string) (models.Event, error) {
	var event models.Event
	err := r.db.WithContext(ctx).Where("event_key = ?", key).First(&event).Error
	return event, err
}

func (r *eventRepository) List(ctx context.Context, status string) ([]models.Event, error) {
	query := r.db.WithContext(ctx).Model(&models.Event{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var events []models.Event
	if err := query.Order("created_at DESC").Order("id DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if event.IsActive() {
			var count int64
			if err := tx.Model(&models.Event{}).Where("status = ?", models.EventStatusActive).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrActiveEventExists
			}
		}

		prepareForWrite(event)
		return tx.Create(event).Error
	})
}

func (r *eventRepository) Save(ctx context.Context, event *models.Event) error {
	prepareForWrite(event)
	return r.db.WithContext(ctx).Save(event).Error
}

// UpdateActive loads the active event, applies fn and saves the result in a
// single transaction. Returning an error from fn discards the change.
func (r *eventRepository) UpdateActive(ctx context.Context, fn func(event *models.Event) error) (models.Event, error) {
	var updated models.Event
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := findActive(tx)
		if err != nil {
			return err
		}

		if err := fn(&event); err != nil {
			return err
		}

		prepareForWrite(&event)
		if err := tx.Save(&event).Error; err != nil {
			return err
		}

		updated = event
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}
	return updated, nil
}

func findActive(db *gorm.DB) (models.Event, error) {
	var event models.Event
	err := db.Where("status = ?", models.EventStatusActive).
		Order("updated_at DESC").
		Order("id DESC").
		First(&event).Error
	return event, err
}

// prepareForWrite refreshes every derived value on the document and bumps
// its revision. It runs before each insert and update.
func prepareForWrite(event *models.Event) {
	event.Revision++
	scoring.RecalculateStatistics(event)
	event.Statistics.Leaderboard = scoring.GenerateLeaderboard(event)
}
