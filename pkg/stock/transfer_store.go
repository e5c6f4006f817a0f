package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

var transferFields = filter.Fields{
	"transfer_id":       "transfer_id",
	"from_warehouse_id": "from_warehouse_id",
	"to_warehouse_id":   "to_warehouse_id",
	"item_id":           "item_id",
	"event_id":          "eligible_event_id",
	"transfer_date":     "transfer_date",
	"status_code":       "status_code",
}

var transferStatuses = map[string]string{
	"processed": status.TransferProcessed,
	"verified":  status.TransferVerified,
}

// TransferInput moves a quantity of one item between two warehouses.
type TransferInput struct {
	FromWarehouseID int64           `json:"from_warehouse_id" validate:"required,gt=0"`
	ToWarehouseID   int64           `json:"to_warehouse_id" validate:"required,gt=0,nefield=FromWarehouseID"`
	ItemID          int64           `json:"item_id" validate:"required,gt=0"`
	ItemQty         decimal.Decimal `json:"item_qty"`
	EventID         *int64          `json:"event_id"`
	TransferDate    *time.Time      `json:"transfer_date"`
	ReasonText      string          `json:"reason_text" validate:"max=255"`
}

// ListTransfers returns transfers, newest first. Status is processed,
// verified or all (the default).
func (s *Store) ListTransfers(ctx context.Context, opts repo.ListOptions) ([]models.Transfer, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.Transfer{}), opts.Status, transferStatuses, "all")
	if err != nil {
		return nil, err
	}
	return repo.List[models.Transfer](ctx, q, opts.Filter, transferFields, "transfer_date DESC, transfer_id DESC")
}

// GetTransfer returns one transfer.
func (s *Store) GetTransfer(ctx context.Context, id int64) (*models.Transfer, error) {
	return repo.Get[models.Transfer](ctx, s.db, id)
}

// CreateTransfer takes the quantity out of the source warehouse's available
// stock and puts it into the destination in one transaction. Both stock
// lines are written against the versions read here.
func (s *Store) CreateTransfer(ctx context.Context, in *TransferInput, actor string) (*models.Transfer, error) {
	if !in.ItemQty.IsPositive() {
		return nil, httpio.Invalid("Quantity must be greater than zero.")
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, httpio.Invalid("A transfer needs two different warehouses.")
	}
	tr := &models.Transfer{
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		ItemID:          in.ItemID,
		ItemQty:         in.ItemQty,
		EventID:         in.EventID,
		TransferDate:    s.today(),
		ReasonText:      strings.TrimSpace(in.ReasonText),
		StatusCode:      status.TransferProcessed,
	}
	if in.TransferDate != nil {
		tr.TransferDate = in.TransferDate.UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, err := activeWarehouse(ctx, tx, in.FromWarehouseID)
		if err != nil {
			return err
		}
		to, err := activeWarehouse(ctx, tx, in.ToWarehouseID)
		if err != nil {
			return err
		}
		it, err := activeItem(ctx, tx, in.ItemID)
		if err != nil {
			return err
		}
		if in.EventID != nil {
			if err := activeEvent(ctx, tx, *in.EventID); err != nil {
				return err
			}
		}

		src, err := findLine(ctx, tx, from.WarehouseID, it.ItemID)
		if errors.Is(err, db.ErrNotFound) {
			return httpio.Invalid("%s holds no %s.", from.WarehouseName, it.ItemName)
		}
		if err != nil {
			return err
		}
		if src.Available().LessThan(in.ItemQty) {
			return httpio.Invalid("Only %s %s of %s is available at %s.",
				src.Available().String(), src.UOMCode, it.ItemName, from.WarehouseName)
		}
		expected := src.VersionNbr
		src.UsableQty = src.UsableQty.Sub(in.ItemQty)
		if err := s.guard.Update(ctx, tx, src, expected, actor); err != nil {
			return db.Translate(err)
		}

		if _, err := s.receive(ctx, tx, to, it, receipt{qty: in.ItemQty, uom: src.UOMCode}, actor); err != nil {
			return err
		}
		return db.Translate(s.guard.Create(ctx, tx, tr, actor))
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// VerifyTransfer marks a processed transfer verified and stamps the verifier.
func (s *Store) VerifyTransfer(ctx context.Context, id int64, in *repo.VersionInput, actor string) (*models.Transfer, error) {
	return repo.Verify[models.Transfer](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, tr *models.Transfer) error {
		if tr.StatusCode == status.TransferVerified {
			return httpio.InvalidState("Transfer %d is already verified.", tr.TransferID)
		}
		tr.StatusCode = status.TransferVerified
		return nil
	})
}

func activeEvent(ctx context.Context, tx *gorm.DB, id int64) error {
	ev, err := repo.Get[models.Event](ctx, tx, id)
	if errors.Is(err, db.ErrNotFound) {
		return httpio.Invalid("Unknown event %d.", id)
	}
	if err != nil {
		return fmt.Errorf("look up event: %w", err)
	}
	if ev.StatusCode != status.Active {
		return httpio.Invalid("Event %q is closed.", ev.EventName)
	}
	return nil
}
