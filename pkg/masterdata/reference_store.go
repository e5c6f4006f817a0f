package masterdata

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/status"
)

// Reference list names, as they appear under /reference/.
const (
	RefParishes   = "parishes"
	RefCategories = "categories"
	RefUOMs       = "uoms"
)

// CategoryInput creates an item category.
type CategoryInput struct {
	CategoryCode string `json:"category_code" validate:"required,max=30"`
	CategoryDesc string `json:"category_desc" validate:"required,max=60"`
	CommentsText string `json:"comments_text" validate:"max=300"`
}

// UOMInput creates a unit of measure.
type UOMInput struct {
	UOMCode      string `json:"uom_code" validate:"required,max=25"`
	UOMDesc      string `json:"uom_desc" validate:"required,max=60"`
	CommentsText string `json:"comments_text" validate:"max=300"`
}

// ListParishes returns the parishes by code.
func (s *Store) ListParishes(ctx context.Context) ([]models.Parish, error) {
	out := []models.Parish{}
	if err := s.db.WithContext(ctx).Order("parish_code").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list parishes: %w", err)
	}
	return out, nil
}

// ListCategories returns the active item categories by description.
func (s *Store) ListCategories(ctx context.Context) ([]models.ItemCategory, error) {
	out := []models.ItemCategory{}
	err := s.db.WithContext(ctx).Where("status_code = ?", status.Active).Order("category_desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

// ListUOMs returns the active units of measure by description.
func (s *Store) ListUOMs(ctx context.Context) ([]models.UnitOfMeasure, error) {
	out := []models.UnitOfMeasure{}
	err := s.db.WithContext(ctx).Where("status_code = ?", status.Active).Order("uom_desc").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list units of measure: %w", err)
	}
	return out, nil
}

// CreateCategory adds an item category.
func (s *Store) CreateCategory(ctx context.Context, in *CategoryInput, actor string) (*models.ItemCategory, error) {
	c := &models.ItemCategory{
		CategoryCode: upper(in.CategoryCode),
		CategoryDesc: strings.TrimSpace(in.CategoryDesc),
		CommentsText: strings.TrimSpace(in.CommentsText),
		StatusCode:   status.Active,
	}
	err := repo.Create(ctx, s.db, &s.guard, c, actor, func(tx *gorm.DB) error {
		return repo.CheckUnique(s.unique.Tx(tx).CategoryCode(ctx, c.CategoryCode, 0))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateUOM adds a unit of measure.
func (s *Store) CreateUOM(ctx context.Context, in *UOMInput, actor string) (*models.UnitOfMeasure, error) {
	u := &models.UnitOfMeasure{
		UOMCode:      upper(in.UOMCode),
		UOMDesc:      strings.TrimSpace(in.UOMDesc),
		CommentsText: strings.TrimSpace(in.CommentsText),
		StatusCode:   status.Active,
	}
	err := repo.Create(ctx, s.db, &s.guard, u, actor, func(tx *gorm.DB) error {
		return repo.CheckUnique(s.unique.Tx(tx).UOMCode(ctx, u.UOMCode))
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}
