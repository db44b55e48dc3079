package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/evalsuite-api/internal/models"
)

// Roster is the full set of configured criteria, teams and juries.
type Roster struct {
	Criteria []models.Criterion `json:"criteria"`
	Teams    []models.Team      `json:"teams"`
	Juries   []models.Jury      `json:"juries"`
}

// RosterRepository persists the configured criteria, teams and juries.
type RosterRepository interface {
	Load(ctx context.Context, includeInactive bool) (Roster, error)
	IsEmpty(ctx context.Context) (bool, error)
	Replace(ctx context.Context, roster Roster) error

	ListCriteria(ctx context.Context, includeInactive bool) ([]models.Criterion, error)
	GetCriterion(ctx context.Context, id models.CriterionID) (models.Criterion, error)
	CreateCriterion(ctx context.Context, criterion *models.Criterion) error
	UpdateCriterion(ctx context.Context, criterion *models.Criterion) error
	DeleteCriterion(ctx context.Context, id models.CriterionID) error

	ListTeams(ctx context.Context, includeInactive bool) ([]models.Team, error)
	GetTeam(ctx context.Context, id uint) (models.Team, error)
	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id uint) error

	ListJuries(ctx context.Context, includeInactive bool) ([]models.Jury, error)
	GetJury(ctx context.Context, id uint) (models.Jury, error)
	CreateJury(ctx context.Context, jury *models.Jury) error
	UpdateJury(ctx context.Context, jury *models.Jury) error
	DeleteJury(ctx context.Context, id uint) error
}

type rosterRepository struct {
	db *gorm.DB
}

// NewRosterRepository constructs the roster repository.
func NewRosterRepository(db *gorm.DB) RosterRepository {
	return &rosterRepository{db: db}
}

func (r *rosterRepository) Load(ctx context.Context, includeInactive bool) (Roster, error) {
	criteria, err := r.ListCriteria(ctx, includeInactive)
	if err != nil {
		return Roster{}, err
	}
	teams, err := r.ListTeams(ctx, includeInactive)
	if err != nil {
		return Roster{}, err
	}
	juries, err := r.ListJuries(ctx, includeInactive)
	if err != nil {
		return Roster{}, err
	}
	return Roster{Criteria: criteria, Teams: teams, Juries: juries}, nil
}

func (r *rosterRepository) IsEmpty(ctx context.Context) (bool, error) {
	for _, model := range []interface{}{&models.Criterion{}, &models.Team{}, &models.Jury{}} {
		var count int64
		if err := r.db.WithContext(ctx).Model(model).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Replace swaps the whole roster atomically. Version counters restart at 1.
func (r *rosterRepository) Replace(ctx context.Context, roster Roster) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wipe := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := wipe.Delete(&models.Criterion{}).Error; err != nil {
			return err
		}
		if err := wipe.Delete(&models.Team{}).Error; err != nil {
			return err
		}
		if err := wipe.Delete(&models.Jury{}).Error; err != nil {
			return err
		}

		for i := range roster.Criteria {
			roster.Criteria[i].Version = 1
			if roster.Criteria[i].Position == 0 {
				roster.Criteria[i].Position = i + 1
			}
		}
		for i := range roster.Teams {
			roster.Teams[i].Version = 1
		}
		for i := range roster.Juries {
			roster.Juries[i].Version = 1
		}

		if len(roster.Criteria) > 0 {
			if err := tx.Create(&roster.Criteria).Error; err != nil {
				return err
			}
		}
		if len(roster.Teams) > 0 {
			if err := tx.Create(&roster.Teams).Error; err != nil {
				return err
			}
		}
		if len(roster.Juries) > 0 {
			if err := tx.Create(&roster.Juries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *rosterRepository) ListCriteria(ctx context.Context, includeInactive bool) ([]models.Criterion, error) {
	query := r.db.WithContext(ctx).Model(&models.Criterion{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var criteria []models.Criterion
	if err := query.Order("position ASC").Order("id ASC").Find(&criteria).Error; err != nil {
		return nil, err
	}
	return criteria, nil
}

func (r *rosterRepository) GetCriterion(ctx context.Context, id models.CriterionID) (models.Criterion, error) {
	var criterion models.Criterion
	err := r.db.WithContext(ctx).First(&criterion, "id = ?", id).Error
	return criterion, err
}

func (r *rosterRepository) CreateCriterion(ctx context.Context, criterion *models.Criterion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if criterion.Position == 0 {
			var last int
			if err := tx.Model(&models.Criterion{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
				return err
			}
			criterion.Position = last + 1
		}
		criterion.Version = 1
		return tx.Create(criterion).Error
	})
}

func (r *rosterRepository) UpdateCriterion(ctx context.Context, criterion *models.Criterion) error {
	criterion.Version++
	return r.db.WithContext(ctx).Save(criterion).Error
}

func (r *rosterRepository) DeleteCriterion(ctx context.Context, id models.CriterionID) error {
	return deleteByID(r.db.WithContext(ctx), &models.Criterion{}, id)
}

func (r *rosterRepository) ListTeams(ctx context.Context, includeInactive bool) ([]models.Team, error) {
	query := r.db.WithContext(ctx).Model(&models.Team{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var teams []models.Team
	if err := query.Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *rosterRepository) GetTeam(ctx context.Context, id uint) (models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).First(&team, id).Error
	return team, err
}

func (r *rosterRepository) CreateTeam(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if team.ID == 0 {
			id, err := nextID(tx, &models.Team{})
			if err != nil {
				return err
			}
			team.ID = id
		}
		team.Version = 1
		return tx.Create(team).Error
	})
}

func (r *rosterRepository) UpdateTeam(ctx context.Context, team *models.Team) error {
	team.Version++
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *rosterRepository) DeleteTeam(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &models.Team{}, id)
}

func (r *rosterRepository) ListJuries(ctx context.Context, includeInactive bool) ([]models.Jury, error) {
	query := r.db.WithContext(ctx).Model(&models.Jury{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}

	var juries []models.Jury
	if err := query.Order("id ASC").Find(&juries).Error; err != nil {
		return nil, err
	}
	return juries, nil
}

func (r *rosterRepository) GetJury(ctx context.Context, id uint) (models.Jury, error) {
	var jury models.Jury
	err := r.db.WithContext(ctx).First(&jury, id).Error
	return jury, err
}

func (r *rosterRepository) CreateJury(ctx context.Context, jury *models.Jury) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if jury.ID == 0 {
			id, err := nextID(tx, &models.Jury{})
			if err != nil {
				return err
			}
			jury.ID = id
		}
		jury.Version = 1
		return tx.Create(jury).Error
	})
}

func (r *rosterRepository) UpdateJury(ctx context.Context, jury *models.Jury) error {
	jury.Version++
	return r.db.WithContext(ctx).Save(jury).Error
}

func (r *rosterRepository) DeleteJury(ctx context.Context, id uint) error {
	return deleteByID(r.db.WithContext(ctx), &models.Jury{}, id)
}

// nextID allocates ids explicitly so that imported rosters with fixed ids do
// not collide with database sequences.
func nextID(tx *gorm.DB, model interface{}) (uint, error) {
	var last uint
	if err := tx.Model(model).Select("COALESCE(MAX(id), 0)").Scan(&last).Error; err != nil {
		return 0, err
	}
	return last + 1, nil
}

func deleteByID(db *gorm.DB, model interface{}, id interface{}) error {
	result := db.Delete(model, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
