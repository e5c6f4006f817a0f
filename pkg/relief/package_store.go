package relief

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

var packageFields = filter.Fields{
	"reliefpkg_id":  "reliefpkg_id",
	"reliefrqst_id": "reliefrqst_id",
	"agency_id":     "agency_id",
	"warehouse_id":  "warehouse_id",
	"start_date":    "start_date",
	"status_code":   "status_code",
}

var packageStatuses = map[string]string{
	"processing": status.PackageProcessing,
	"completed":  status.PackageCompleted,
	"verified":   status.PackageVerified,
	"dispatched": status.PackageDispatched,
}

// PackageLineInput allocates a quantity from one inventory line.
type PackageLineInput struct {
	InventoryID int64           `json:"inventory_id" validate:"required,gt=0"`
	ItemQty     decimal.Decimal `json:"item_qty"`
}

// PackageInput prepares a package for a request from one warehouse.
type PackageInput struct {
	ReliefRqstID      int64              `json:"reliefrqst_id" validate:"required,gt=0"`
	WarehouseID       int64              `json:"warehouse_id" validate:"required,gt=0"`
	TransportModeText string             `json:"transport_mode_text" validate:"max=255"`
	CommentsText      string             `json:"comments_text"`
	Items             []PackageLineInput `json:"items" validate:"required,min=1,dive"`
}

// DispatchInput releases an approved package.
type DispatchInput struct {
	repo.VersionInput
	TransportModeText string `json:"transport_mode_text" validate:"max=255"`
}

// ListPackages returns packages, newest first. Status is processing,
// completed, verified, dispatched or all (the default).
func (s *Store) ListPackages(ctx context.Context, opts repo.ListOptions) ([]models.ReliefPackage, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.ReliefPackage{}), opts.Status, packageStatuses, "all")
	if err != nil {
		return nil, err
	}
	return repo.List[models.ReliefPackage](ctx, q, opts.Filter, packageFields, "start_date DESC, reliefpkg_id DESC")
}

// GetPackage returns one package with its lines.
func (s *Store) GetPackage(ctx context.Context, id int64) (*models.ReliefPackage, error) {
	var pkg models.ReliefPackage
	err := s.db.WithContext(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("reliefpkg_item_id") }).
		First(&pkg, id).Error
	if err != nil {
		return nil, db.Translate(err)
	}
	return &pkg, nil
}

// CreatePackage allocates stock to a package for an approved request. Each
// allocation is reserved on its inventory line and issued against the
// matching request line, and the request moves to Part Filled or Filled.
func (s *Store) CreatePackage(ctx context.Context, in *PackageInput, actor string) (*models.ReliefPackage, error) {
	var pkg *models.ReliefPackage
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := loadRequest(ctx, tx, in.ReliefRqstID)
		if errors.Is(err, db.ErrNotFound) {
			return httpio.Invalid("Unknown relief request %d.", in.ReliefRqstID)
		}
		if err != nil {
			return err
		}
		if !req.StatusCode.CanFulfil() {
			return httpio.InvalidState("Request #%d is %s; packages can only be prepared for submitted requests.", req.ReliefRqstID, req.StatusCode)
		}
		wh, err := activeWarehouse(ctx, tx, in.WarehouseID)
		if err != nil {
			return err
		}

		pkg = &models.ReliefPackage{
			ReliefRqstID:      req.ReliefRqstID,
			AgencyID:          req.AgencyID,
			WarehouseID:       wh.WarehouseID,
			StartDate:         s.today(),
			TransportModeText: trim(in.TransportModeText),
			CommentsText:      trim(in.CommentsText),
			StatusCode:        status.PackageProcessing,
		}
		if err := s.guard.Create(ctx, tx, pkg, actor); err != nil {
			return db.Translate(err)
		}

		lines := make(map[int64]*models.ReliefRequestItem, len(req.Items))
		for i := range req.Items {
			lines[req.Items[i].ItemID] = &req.Items[i]
		}
		seen := make(map[int64]bool, len(in.Items))
		for _, l := range in.Items {
			if seen[l.InventoryID] {
				return httpio.Invalid("Inventory line %d is listed more than once.", l.InventoryID)
			}
			seen[l.InventoryID] = true
			item, err := s.allocate(ctx, tx, pkg, wh, lines, l, actor)
			if err != nil {
				return err
			}
			pkg.Items = append(pkg.Items, *item)
		}

		to := status.RequestFilled
		for _, line := range req.Items {
			if line.Outstanding().IsPositive() {
				to = status.RequestPartFilled
				break
			}
		}
		if err := status.Transition(req.StatusCode, to); err != nil {
			return err
		}
		req.StatusCode = to
		return s.save(ctx, tx, req, actor)
	})
	if err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *Store) allocate(ctx context.Context, tx *gorm.DB, pkg *models.ReliefPackage, wh *models.Warehouse, lines map[int64]*models.ReliefRequestItem, l PackageLineInput, actor string) (*models.ReliefPackageItem, error) {
	if !l.ItemQty.IsPositive() {
		return nil, httpio.Invalid("Quantity for inventory line %d must be greater than zero.", l.InventoryID)
	}
	inv, err := lookup[models.Inventory](ctx, tx, l.InventoryID, "inventory line")
	if err != nil {
		return nil, err
	}
	if inv.WarehouseID != wh.WarehouseID {
		return nil, httpio.Invalid("Inventory line %d is not held at %s.", inv.InventoryID, wh.WarehouseName)
	}
	line, ok := lines[inv.ItemID]
	if !ok {
		return nil, httpio.Invalid("Item %d was not requested.", inv.ItemID)
	}
	if line.StatusCode == status.ItemDenied {
		return nil, httpio.Invalid("Item %d was denied on this request.", inv.ItemID)
	}
	if out := line.Outstanding(); l.ItemQty.GreaterThan(out) {
		return nil, httpio.Invalid("Only %s of item %d is still outstanding.", out.String(), inv.ItemID)
	}
	if avail := inv.Available(); l.ItemQty.GreaterThan(avail) {
		return nil, httpio.Invalid("Only %s %s of item %d is available at %s.", avail.String(), inv.UOMCode, inv.ItemID, wh.WarehouseName)
	}

	inv.ReservedQty = inv.ReservedQty.Add(l.ItemQty)
	if err := s.save(ctx, tx, inv, actor); err != nil {
		return nil, err
	}

	line.IssueQty = line.IssueQty.Add(l.ItemQty)
	line.StatusCode = status.ItemPartlyFilled
	if !line.Outstanding().IsPositive() {
		line.StatusCode = status.ItemFilled
	}
	if err := s.save(ctx, tx, line, actor); err != nil {
		return nil, err
	}

	item := &models.ReliefPackageItem{
		ReliefPkgID: pkg.ReliefPkgID,
		InventoryID: inv.InventoryID,
		ItemID:      inv.ItemID,
		ItemQty:     l.ItemQty,
		UOMCode:     inv.UOMCode,
	}
	if err := s.guard.Create(ctx, tx, item, actor); err != nil {
		return nil, db.Translate(err)
	}
	return item, nil
}

// CompletePackage marks a package ready for approval.
func (s *Store) CompletePackage(ctx context.Context, id int64, in *repo.VersionInput, actor string) (*models.ReliefPackage, error) {
	return repo.Edit[models.ReliefPackage](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, pkg *models.ReliefPackage) error {
		if pkg.StatusCode != status.PackageProcessing {
			return packageState(pkg, "completed")
		}
		pkg.StatusCode = status.PackageCompleted
		return nil
	})
}

// ApprovePackage verifies a completed package.
func (s *Store) ApprovePackage(ctx context.Context, id int64, in *repo.VersionInput, actor string) (*models.ReliefPackage, error) {
	return repo.Verify[models.ReliefPackage](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, pkg *models.ReliefPackage) error {
		if pkg.StatusCode != status.PackageCompleted {
			return packageState(pkg, "approved")
		}
		pkg.StatusCode = status.PackageVerified
		return nil
	})
}

// DispatchPackage releases an approved package: its reserved stock leaves
// the warehouse.
func (s *Store) DispatchPackage(ctx context.Context, id int64, in *DispatchInput, actor string) (*models.ReliefPackage, error) {
	return repo.Edit[models.ReliefPackage](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, pkg *models.ReliefPackage) error {
		if pkg.StatusCode != status.PackageVerified {
			return packageState(pkg, "dispatched")
		}
		var items []models.ReliefPackageItem
		if err := tx.WithContext(ctx).Where("reliefpkg_id = ?", pkg.ReliefPkgID).Order("reliefpkg_item_id").Find(&items).Error; err != nil {
			return db.Translate(err)
		}
		for _, it := range items {
			inv, err := repo.Get[models.Inventory](ctx, tx, it.InventoryID)
			if err != nil {
				return err
			}
			inv.UsableQty = inv.UsableQty.Sub(it.ItemQty)
			inv.ReservedQty = inv.ReservedQty.Sub(it.ItemQty)
			if inv.UsableQty.IsNegative() || inv.ReservedQty.IsNegative() {
				return httpio.InvalidState("Inventory line %d no longer holds the %s reserved for this package.", inv.InventoryID, it.ItemQty.String())
			}
			if err := s.save(ctx, tx, inv, actor); err != nil {
				return err
			}
		}
		at := s.now()
		pkg.DispatchDtime = &at
		pkg.StatusCode = status.PackageDispatched
		if mode := trim(in.TransportModeText); mode != "" {
			pkg.TransportModeText = mode
		}
		pkg.Items = items
		return nil
	})
}

func packageState(pkg *models.ReliefPackage, want string) error {
	return httpio.InvalidState("Package #%d is %s and cannot be %s.",
		pkg.ReliefPkgID, status.Label(status.KindPackage, pkg.StatusCode), want)
}
