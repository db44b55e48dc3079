package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// ActivityLogFilter narrows audit trail queries. Empty fields match everything.
type ActivityLogFilter struct {
	Page       int
	PageSize   int
	Action     string
	ActorRole  string
	EntityType string
	EntityID   string
	Since      *time.Time
}

// ActivityLogRepository persists audit entries for roster and event changes.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// List returns the newest entries first together with the unpaged total.
func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ActivityLog{}).Scopes(activityScope(filter))

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("created_at DESC").Order("id DESC")
	if filter.PageSize > 0 {
		page := max(filter.Page, 1)
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	entries := make([]models.ActivityLog, 0)
	if err := query.Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func activityScope(filter ActivityLogFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		conditions := map[string]string{
			"action":      filter.Action,
			"actor_role":  filter.ActorRole,
			"entity_type": filter.EntityType,
			"entity_id":   filter.EntityID,
		}
		for column, value := range conditions {
			if value != "" {
				db = db.Where(column+" = ?", value)
			}
		}
		if filter.Since != nil {
			db = db.Where("created_at >= ?", *filter.Since)
		}
		return db
	}
}
