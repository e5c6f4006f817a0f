package relief

import (
	"context"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/db"
	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/status"
)

// Eligibility decisions.
const (
	Approve = "approve"
	Deny    = "deny"
)

// DecisionInput is a reviewer's ruling on a request awaiting approval.
type DecisionInput struct {
	repo.VersionInput
	Decision        string `json:"decision" validate:"required,oneof=approve deny"`
	ReasonDesc      string `json:"reason_desc" validate:"max=255"`
	ReviewNotesText string `json:"review_notes_text"`
}

// ListPendingEligibility returns requests awaiting review, oldest first.
func (s *Store) ListPendingEligibility(ctx context.Context, raw string) ([]models.ReliefRequest, error) {
	q := s.db.Model(&models.ReliefRequest{}).Where("status_code = ?", status.RequestAwaitingApproval)
	return repo.List[models.ReliefRequest](ctx, q, raw, requestFields, "request_date, reliefrqst_id")
}

// Decide approves or denies a request awaiting approval and stamps the
// reviewer. A denial needs a reason and marks every line denied.
func (s *Store) Decide(ctx context.Context, id int64, in *DecisionInput, actor string) (*models.ReliefRequest, error) {
	if in.Decision == Deny && trim(in.ReasonDesc) == "" {
		verr := httpio.Invalid("A reason is required to deny a request.")
		verr.Fields = map[string]string{"reason_desc": "is required"}
		return nil, verr
	}
	return repo.Verify[models.ReliefRequest](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(tx *gorm.DB, req *models.ReliefRequest) error {
		to := status.RequestSubmitted
		if in.Decision == Deny {
			to = status.RequestDenied
		}
		if err := status.Transition(req.StatusCode, to); err != nil {
			return err
		}
		req.StatusCode = to
		req.ReviewNotesText = trim(in.ReviewNotesText)
		req.StatusReasonDesc = trim(in.ReasonDesc)
		if to != status.RequestDenied {
			return nil
		}

		var lines []models.ReliefRequestItem
		if err := tx.WithContext(ctx).Where("reliefrqst_id = ?", req.ReliefRqstID).Find(&lines).Error; err != nil {
			return db.Translate(err)
		}
		for i := range lines {
			lines[i].StatusCode = status.ItemDenied
			lines[i].StatusReasonDesc = req.StatusReasonDesc
			if err := s.save(ctx, tx, &lines[i], actor); err != nil {
				return err
			}
		}
		req.Items = lines
		return nil
	})
}
