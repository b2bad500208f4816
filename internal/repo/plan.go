package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/study_planner/internal/models"
)

func (r *GormRepo) CreatePlan(ctx context.Context, p *models.StudyPlan) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) ListPlansByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.StudyPlan, error) {
	plans := []models.StudyPlan{}
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, translate(err)
	}
	return plans, nil
}

func (r *GormRepo) FindPlanByID(ctx context.Context, id uuid.UUID) (*models.StudyPlan, error) {
	var plan models.StudyPlan
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, translate(err)
	}
	return &plan, nil
}

func (r *GormRepo) DeletePlanByID(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.StudyPlan{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}

// SearchPlans is the store-side fallback when no search index is configured.
func (r *GormRepo) SearchPlans(ctx context.Context, ownerID uuid.UUID, q string, limit int) ([]models.StudyPlan, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	plans := []models.StudyPlan{}
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Where("LOWER(subject) LIKE ? OR LOWER(goal) LIKE ?", pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error; err != nil {
		return nil, translate(err)
	}
	return plans, nil
}

func (r *GormRepo) FindPlansByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]models.StudyPlan, error) {
	plans := []models.StudyPlan{}
	if len(ids) == 0 {
		return plans, nil
	}
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND id IN ?", ownerID, ids).
		Order("created_at DESC").
		Find(&plans).Error; err != nil {
		return nil, translate(err)
	}
	return plans, nil
}
