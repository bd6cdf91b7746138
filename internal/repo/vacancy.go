package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkurbatov/jobhub/internal/models"
)

type VacancyRepo struct {
	DB *gorm.DB
}

func NewVacancyRepo(db *gorm.DB) *VacancyRepo {
	return &VacancyRepo{DB: db}
}

func (r *VacancyRepo) ByID(ctx context.Context, id uint) (*models.Vacancy, error) {
	var vacancy models.Vacancy
	if err := r.DB.WithContext(ctx).First(&vacancy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vacancy, nil
}

func (r *VacancyRepo) List(ctx context.Context, offset, limit int) ([]models.Vacancy, error) {
	var vacancies []models.Vacancy
	if err := r.DB.WithContext(ctx).Offset(offset).Limit(limit).Order("published_at DESC").Find(&vacancies).Error; err != nil {
		return nil, err
	}
	return vacancies, nil
}

// BulkUpsert inserts vacancies, updating rows that already exist for the same
// source. Collection runs are re-entrant: the same page fetched twice settles
// into the same rows.
func (r *VacancyRepo) BulkUpsert(ctx context.Context, vacancies []models.Vacancy) (int, error) {
	if len(vacancies) == 0 {
		return 0, nil
	}
	tx := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "source_name"}, {Name: "source_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"url", "name", "description", "area", "employer", "experience",
			"employment", "schedule", "salary_from", "salary_to",
			"salary_currency", "has_test", "is_archived", "published_at",
		}),
	}).Create(&vacancies)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return int(tx.RowsAffected), nil
}

func (r *VacancyRepo) Create(ctx context.Context, v *models.Vacancy) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *VacancyRepo) Update(ctx context.Context, v *models.Vacancy) error {
	return r.DB.WithContext(ctx).Save(v).Error
}

func (r *VacancyRepo) Delete(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Delete(&models.Vacancy{}, id).Error
}
