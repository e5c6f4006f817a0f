package masterdata

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

var warehouseFields = filter.Fields{
	"warehouse_id":   "warehouse_id",
	"warehouse_name": "warehouse_name",
	"warehouse_type": "warehouse_type",
	"parish_code":    "parish_code",
	"custodian_id":   "custodian_id",
	"status_code":    "status_code",
}

var custodianFields = filter.Fields{
	"custodian_id":   "custodian_id",
	"custodian_name": "custodian_name",
	"parish_code":    "parish_code",
}

// ContactInput holds the address and contact columns of warehouses and
// custodians.
type ContactInput struct {
	Address1Text string `json:"address1_text" validate:"max=255"`
	ParishCode   string `json:"parish_code" validate:"omitempty,len=2"`
	ContactName  string `json:"contact_name" validate:"max=50"`
	PhoneNo      string `json:"phone_no" validate:"max=20"`
	EmailText    string `json:"email_text" validate:"omitempty,email,max=100"`
}

// WarehouseInput is the editable part of a warehouse.
type WarehouseInput struct {
	WarehouseName string `json:"warehouse_name" validate:"required,max=255"`
	WarehouseType string `json:"warehouse_type" validate:"required,oneof=MAIN-HUB SUB-HUB"`
	CustodianID   *int64 `json:"custodian_id" validate:"omitempty,gt=0"`
	ContactInput
}

// WarehouseUpdate is an edit of an existing warehouse.
type WarehouseUpdate struct {
	WarehouseInput
	VersionInput
}

// DeactivateInput takes a warehouse out of service.
type DeactivateInput struct {
	VersionInput
	ReasonDesc string `json:"reason_desc" validate:"required,max=255"`
}

// CustodianInput is the editable part of a custodian.
type CustodianInput struct {
	CustodianName string `json:"custodian_name" validate:"required,max=120"`
	ContactInput
}

// CustodianUpdate is an edit of an existing custodian.
type CustodianUpdate struct {
	CustodianInput
	VersionInput
}

func (in *WarehouseInput) apply(wh *models.Warehouse) {
	wh.WarehouseName = upper(in.WarehouseName)
	wh.WarehouseType = in.WarehouseType
	wh.CustodianID = in.CustodianID
	wh.Address1Text = strings.TrimSpace(in.Address1Text)
	wh.ParishCode = in.ParishCode
	wh.ContactName = upper(in.ContactName)
	wh.PhoneNo = strings.TrimSpace(in.PhoneNo)
	wh.EmailText = lower(in.EmailText)
}

func (in *CustodianInput) apply(c *models.Custodian) {
	c.CustodianName = upper(in.CustodianName)
	c.Address1Text = strings.TrimSpace(in.Address1Text)
	c.ParishCode = in.ParishCode
	c.ContactName = upper(in.ContactName)
	c.PhoneNo = strings.TrimSpace(in.PhoneNo)
	c.EmailText = lower(in.EmailText)
}

func (s *Store) checkWarehouse(ctx context.Context, tx *gorm.DB, wh *models.Warehouse) error {
	if err := s.checkParish(ctx, tx, wh.ParishCode); err != nil {
		return err
	}
	if wh.CustodianID != nil {
		found, err := repo.Exists(ctx, tx, &models.Custodian{}, "custodian_id = ?", *wh.CustodianID)
		if err != nil {
			return fmt.Errorf("look up custodian: %w", err)
		}
		if !found {
			return httpio.Invalid("Unknown custodian %d.", *wh.CustodianID)
		}
	}
	return repo.CheckUnique(s.unique.Tx(tx).WarehouseName(ctx, wh.WarehouseName, wh.WarehouseID))
}

// ListWarehouses returns warehouses by name. Status is active (the default),
// inactive or all.
func (s *Store) ListWarehouses(ctx context.Context, opts ListOptions) ([]models.Warehouse, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.Warehouse{}), opts.Status, activeStatuses, "active")
	if err != nil {
		return nil, err
	}
	return repo.List[models.Warehouse](ctx, q, opts.Filter, warehouseFields, "warehouse_name")
}

// GetWarehouse returns one warehouse.
func (s *Store) GetWarehouse(ctx context.Context, id int64) (*models.Warehouse, error) {
	return repo.Get[models.Warehouse](ctx, s.db, id)
}

// CreateWarehouse adds an active warehouse.
func (s *Store) CreateWarehouse(ctx context.Context, in *WarehouseInput, actor string) (*models.Warehouse, error) {
	wh := &models.Warehouse{StatusCode: status.Active}
	in.apply(wh)
	err := repo.Create(ctx, s.db, &s.guard, wh, actor, func(tx *gorm.DB) error {
		return s.checkWarehouse(ctx, tx, wh)
	})
	if err != nil {
		return nil, err
	}
	return wh, nil
}

// UpdateWarehouse edits a warehouse.
func (s *Store) UpdateWarehouse(ctx context.Context, id int64, in *WarehouseUpdate, actor string) (*models.Warehouse, error) {
	return repo.Edit[models.Warehouse](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, wh *models.Warehouse) error {
		in.apply(wh)
		return s.checkWarehouse(ctx, tx, wh)
	})
}

// DeactivateWarehouse takes an empty warehouse out of service.
func (s *Store) DeactivateWarehouse(ctx context.Context, id int64, in *DeactivateInput, actor string) (*models.Warehouse, error) {
	return repo.Edit[models.Warehouse](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, wh *models.Warehouse) error {
		if wh.StatusCode == status.Inactive {
			return httpio.InvalidState("Warehouse %q is already inactive.", wh.WarehouseName)
		}
		stocked, err := repo.Exists(ctx, tx, &models.Inventory{}, "warehouse_id = ? AND (usable_qty > 0 OR reserved_qty > 0)", wh.WarehouseID)
		if err != nil {
			return fmt.Errorf("check warehouse stock: %w", err)
		}
		if stocked {
			return httpio.InvalidState("Warehouse %q still holds stock. Transfer it out before deactivating.", wh.WarehouseName)
		}
		wh.StatusCode = status.Inactive
		wh.ReasonDesc = strings.TrimSpace(in.ReasonDesc)
		return nil
	})
}

// ListCustodians returns custodians by name.
func (s *Store) ListCustodians(ctx context.Context, opts ListOptions) ([]models.Custodian, error) {
	return repo.List[models.Custodian](ctx, s.db.Model(&models.Custodian{}), opts.Filter, custodianFields, "custodian_name")
}

// CreateCustodian adds a custodian.
func (s *Store) CreateCustodian(ctx context.Context, in *CustodianInput, actor string) (*models.Custodian, error) {
	c := &models.Custodian{}
	in.apply(c)
	err := repo.Create(ctx, s.db, &s.guard, c, actor, func(tx *gorm.DB) error {
		if err := s.checkParish(ctx, tx, c.ParishCode); err != nil {
			return err
		}
		return repo.CheckUnique(s.unique.Tx(tx).CustodianName(ctx, c.CustodianName, 0))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCustodian edits a custodian.
func (s *Store) UpdateCustodian(ctx context.Context, id int64, in *CustodianUpdate, actor string) (*models.Custodian, error) {
	return repo.Edit[models.Custodian](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, c *models.Custodian) error {
		in.apply(c)
		if err := s.checkParish(ctx, tx, c.ParishCode); err != nil {
			return err
		}
		return repo.CheckUnique(s.unique.Tx(tx).CustodianName(ctx, c.CustodianName, c.CustodianID))
	})
}
