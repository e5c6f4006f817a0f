package db

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/pkg/record"
	"github.com/odpem/drims/pkg/status"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedActor is recorded as creator of seeded rows.
const SeedActor = "SYSTEM"

type seedFile struct {
	Parishes []struct {
		Code string `yaml:"code"`
		Name string `yaml:"name"`
	} `yaml:"parishes"`
	Categories []struct {
		Code string `yaml:"code"`
		Desc string `yaml:"desc"`
	} `yaml:"categories"`
	UOMs []struct {
		Code string `yaml:"code"`
		Desc string `yaml:"desc"`
	} `yaml:"uoms"`
}

// SeedResult counts rows inserted by Seed.
type SeedResult struct {
	Parishes   int `json:"parishes"`
	Categories int `json:"categories"`
	UOMs       int `json:"uoms"`
}

// Seed inserts reference data that is not already present. It is safe to
// run repeatedly.
func Seed(ctx context.Context, gdb *gorm.DB) (SeedResult, error) {
	var (
		data seedFile
		res  SeedResult
	)
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return res, fmt.Errorf("parse seed data: %w", err)
	}

	guard := &record.Guard{}
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range data.Parishes {
			created, err := createMissing(tx, &models.Parish{}, "parish_code = ?", p.Code, func() error {
				return tx.Create(&models.Parish{ParishCode: p.Code, ParishName: p.Name}).Error
			})
			if err != nil {
				return err
			}
			if created {
				res.Parishes++
			}
		}
		for _, c := range data.Categories {
			created, err := createMissing(tx, &models.ItemCategory{}, "category_code = ?", c.Code, func() error {
				return guard.Create(ctx, tx, &models.ItemCategory{
					CategoryCode: c.Code,
					CategoryDesc: c.Desc,
					StatusCode:   status.Active,
				}, SeedActor)
			})
			if err != nil {
				return err
			}
			if created {
				res.Categories++
			}
		}
		for _, u := range data.UOMs {
			created, err := createMissing(tx, &models.UnitOfMeasure{}, "uom_code = ?", u.Code, func() error {
				return guard.Create(ctx, tx, &models.UnitOfMeasure{
					UOMCode:    u.Code,
					UOMDesc:    u.Desc,
					StatusCode: status.Active,
				}, SeedActor)
			})
			if err != nil {
				return err
			}
			if created {
				res.UOMs++
			}
		}
		return nil
	})
	return res, err
}

func createMissing(tx *gorm.DB, model any, where string, key string, create func() error) (bool, error) {
	err := tx.Model(model).Where(where, key).Take(model).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("look up %s: %w", key, err)
	}
	if err := create(); err != nil {
		return false, fmt.Errorf("seed %s: %w", key, Translate(err))
	}
	return true, nil
}
