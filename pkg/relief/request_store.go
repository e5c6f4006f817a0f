package relief

import (
	"context"
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

var requestFields = filter.Fields{
	"reliefrqst_id":     "reliefrqst_id",
	"agency_id":         "agency_id",
	"request_date":      "request_date",
	"urgency_ind":       "urgency_ind",
	"status_code":       "status_code",
	"eligible_event_id": "eligible_event_id",
}

// requestFilters are the named status filters offered on request lists.
var requestFilters = map[string][]status.RequestStatus{
	"pending":   status.Pending,
	"completed": status.Completed,
}

// RequestLineInput is one requested item.
type RequestLineInput struct {
	ItemID         int64           `json:"item_id" validate:"required,gt=0"`
	RequestQty     decimal.Decimal `json:"request_qty"`
	UrgencyInd     string          `json:"urgency_ind" validate:"omitempty,oneof=L M H C"`
	RqstReasonDesc string          `json:"rqst_reason_desc" validate:"max=255"`
}

// RequestInput raises a new relief request.
type RequestInput struct {
	AgencyID        int64              `json:"agency_id" validate:"required,gt=0"`
	RequestDate     *time.Time         `json:"request_date"`
	UrgencyInd      string             `json:"urgency_ind" validate:"required,oneof=L M H C"`
	EligibleEventID *int64             `json:"eligible_event_id"`
	RqstNotesText   string             `json:"rqst_notes_text"`
	Items           []RequestLineInput `json:"items" validate:"required,min=1,dive"`
}

// RequestItemsInput replaces the lines of a draft request.
type RequestItemsInput struct {
	repo.VersionInput
	Items []RequestLineInput `json:"items" validate:"required,min=1,dive"`
}

// CancelInput cancels a request.
type CancelInput struct {
	repo.VersionInput
	ReasonDesc string `json:"reason_desc" validate:"max=255"`
}

// ListRequests returns requests, newest first. Status is pending, completed
// or all (the default).
func (s *Store) ListRequests(ctx context.Context, opts repo.ListOptions) ([]models.ReliefRequest, error) {
	q := s.db.Model(&models.ReliefRequest{})
	switch opts.Status {
	case "", "all":
	default:
		codes, ok := requestFilters[opts.Status]
		if !ok {
			return nil, httpio.BadRequest("Unknown status filter %q.", opts.Status)
		}
		q = q.Where("status_code IN ?", codes)
	}
	return repo.List[models.ReliefRequest](ctx, q, opts.Filter, requestFields, "request_date DESC, reliefrqst_id DESC")
}

// GetRequest returns one request with its lines.
func (s *Store) GetRequest(ctx context.Context, id int64) (*models.ReliefRequest, error) {
	return loadRequest(ctx, s.db, id)
}

// CreateRequest records a draft request and its lines. Lines without their
// own urgency take the request's.
func (s *Store) CreateRequest(ctx context.Context, in *RequestInput, actor string) (*models.ReliefRequest, error) {
	req := &models.ReliefRequest{
		AgencyID:        in.AgencyID,
		RequestDate:     s.today(),
		UrgencyInd:      in.UrgencyInd,
		StatusCode:      status.RequestDraft,
		EligibleEventID: in.EligibleEventID,
		RqstNotesText:   trim(in.RqstNotesText),
	}
	if in.RequestDate != nil {
		req.RequestDate = in.RequestDate.UTC()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := activeAgency(ctx, tx, in.AgencyID); err != nil {
			return err
		}
		if in.EligibleEventID != nil {
			if err := activeEvent(ctx, tx, *in.EligibleEventID); err != nil {
				return err
			}
		}
		if err := s.guard.Create(ctx, tx, req, actor); err != nil {
			return db.Translate(err)
		}
		lines, err := s.createLines(ctx, tx, req, in.Items, actor)
		if err != nil {
			return err
		}
		req.Items = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *Store) createLines(ctx context.Context, tx *gorm.DB, req *models.ReliefRequest, in []RequestLineInput, actor string) ([]models.ReliefRequestItem, error) {
	seen := make(map[int64]bool, len(in))
	lines := make([]models.ReliefRequestItem, 0, len(in))
	for _, l := range in {
		if seen[l.ItemID] {
			return nil, httpio.Invalid("Item %d is listed more than once.", l.ItemID)
		}
		seen[l.ItemID] = true
		if !l.RequestQty.IsPositive() {
			return nil, httpio.Invalid("Requested quantity for item %d must be greater than zero.", l.ItemID)
		}
		it, err := lookup[models.Item](ctx, tx, l.ItemID, "item")
		if err != nil {
			return nil, err
		}
		if it.StatusCode != status.Active {
			return nil, httpio.Invalid("Item %q is inactive.", it.ItemName)
		}
		urgency := l.UrgencyInd
		if urgency == "" {
			urgency = req.UrgencyInd
		}
		line := models.ReliefRequestItem{
			ReliefRqstID:   req.ReliefRqstID,
			ItemID:         l.ItemID,
			RequestQty:     l.RequestQty,
			IssueQty:       decimal.Zero,
			UrgencyInd:     urgency,
			RqstReasonDesc: trim(l.RqstReasonDesc),
			StatusCode:     status.ItemRequested,
		}
		if err := s.guard.Create(ctx, tx, &line, actor); err != nil {
			return nil, db.Translate(err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// ReplaceItems swaps the lines of a draft request.
func (s *Store) ReplaceItems(ctx context.Context, id int64, in *RequestItemsInput, actor string) (*models.ReliefRequest, error) {
	return repo.Edit[models.ReliefRequest](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, req *models.ReliefRequest) error {
		if !req.StatusCode.Editable() {
			return httpio.InvalidState("Request #%d is %s and can no longer be edited.", req.ReliefRqstID, req.StatusCode)
		}
		if err := tx.WithContext(ctx).Where("reliefrqst_id = ?", req.ReliefRqstID).Delete(&models.ReliefRequestItem{}).Error; err != nil {
			return db.Translate(err)
		}
		lines, err := s.createLines(ctx, tx, req, in.Items, actor)
		if err != nil {
			return err
		}
		req.Items = lines
		return nil
	})
}

// SubmitRequest sends a draft request for eligibility review.
func (s *Store) SubmitRequest(ctx context.Context, id int64, in *repo.VersionInput, actor string) (*models.ReliefRequest, error) {
	return repo.Edit[models.ReliefRequest](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, req *models.ReliefRequest) error {
		if err := status.Transition(req.StatusCode, status.RequestAwaitingApproval); err != nil {
			return err
		}
		var n int64
		if err := tx.WithContext(ctx).Model(&models.ReliefRequestItem{}).Where("reliefrqst_id = ?", req.ReliefRqstID).Count(&n).Error; err != nil {
			return db.Translate(err)
		}
		if n == 0 {
			return httpio.Invalid("Request #%d has no items.", req.ReliefRqstID)
		}
		req.StatusCode = status.RequestAwaitingApproval
		return nil
	})
}

// CancelRequest withdraws a request that has not yet been filled.
func (s *Store) CancelRequest(ctx context.Context, id int64, in *CancelInput, actor string) (*models.ReliefRequest, error) {
	return repo.Edit[models.ReliefRequest](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, req *models.ReliefRequest) error {
		if err := status.Transition(req.StatusCode, status.RequestCancelled); err != nil {
			return err
		}
		req.StatusCode = status.RequestCancelled
		req.StatusReasonDesc = trim(in.ReasonDesc)
		return nil
	})
}
