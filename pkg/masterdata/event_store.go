package masterdata

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/odpem/drims/internal/httpio"
	"github.com/odpem/drims/internal/models"
	"github.com/odpem/drims/internal/repo"
	"github.com/odpem/drims/pkg/filter"
	"github.com/odpem/drims/pkg/status"
)

// DefaultCloseReason is recorded when an event is closed without a reason.
const DefaultCloseReason = "Closed by user"

var eventFields = filter.Fields{
	"event_id":    "event_id",
	"event_name":  "event_name",
	"event_type":  "event_type",
	"start_date":  "start_date",
	"status_code": "status_code",
}

var eventStatuses = map[string]string{
	"active": status.Active,
	"closed": status.Closed,
}

// EventInput is the editable part of an event.
type EventInput struct {
	EventType  string    `json:"event_type" validate:"required,oneof=STORM TORNADO FLOOD TSUNAMI FIRE EARTHQUAKE WAR EPIDEMIC"`
	StartDate  time.Time `json:"start_date" validate:"required"`
	EventName  string    `json:"event_name" validate:"required,max=60"`
	EventDesc  string    `json:"event_desc" validate:"required,max=255"`
	ImpactDesc string    `json:"impact_desc"`
}

// EventUpdate is an edit of an existing event.
type EventUpdate struct {
	EventInput
	VersionInput
}

// CloseEventInput closes an event.
type CloseEventInput struct {
	VersionInput
	ReasonDesc string `json:"reason_desc" validate:"max=255"`
}

func (in *EventInput) apply(ev *models.Event) {
	ev.EventType = in.EventType
	ev.StartDate = in.StartDate.UTC()
	ev.EventName = upper(in.EventName)
	ev.EventDesc = strings.TrimSpace(in.EventDesc)
	ev.ImpactDesc = strings.TrimSpace(in.ImpactDesc)
}

// ListEvents returns events, latest start first. Status is active, closed
// or all (the default).
func (s *Store) ListEvents(ctx context.Context, opts ListOptions) ([]models.Event, error) {
	q, err := repo.StatusFilter(s.db.Model(&models.Event{}), opts.Status, eventStatuses, "all")
	if err != nil {
		return nil, err
	}
	return repo.List[models.Event](ctx, q, opts.Filter, eventFields, "start_date DESC, event_id DESC")
}

// GetEvent returns one event.
func (s *Store) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	return repo.Get[models.Event](ctx, s.db, id)
}

// CreateEvent records a new, active event.
func (s *Store) CreateEvent(ctx context.Context, in *EventInput, actor string) (*models.Event, error) {
	ev := &models.Event{StatusCode: status.Active}
	in.apply(ev)
	if err := repo.Create(ctx, s.db, &s.guard, ev, actor, nil); err != nil {
		return nil, err
	}
	return ev, nil
}

// UpdateEvent edits an open event.
func (s *Store) UpdateEvent(ctx context.Context, id int64, in *EventUpdate, actor string) (*models.Event, error) {
	return repo.Edit[models.Event](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, ev *models.Event) error {
		if ev.StatusCode == status.Closed {
			return httpio.InvalidState("Event %q is closed and can no longer be edited.", ev.EventName)
		}
		in.apply(ev)
		return nil
	})
}

// CloseEvent marks an event closed as of today.
func (s *Store) CloseEvent(ctx context.Context, id int64, in *CloseEventInput, actor string) (*models.Event, error) {
	return repo.Edit[models.Event](ctx, s.db, &s.guard, id, in.VersionNbr, actor, func(_ *gorm.DB, ev *models.Event) error {
		if ev.StatusCode == status.Closed {
			return httpio.InvalidState("Event %q is already closed.", ev.EventName)
		}
		today := s.now().Truncate(24 * time.Hour)
		ev.StatusCode = status.Closed
		ev.ClosedDate = &today
		ev.ReasonDesc = strings.TrimSpace(in.ReasonDesc)
		if ev.ReasonDesc == "" {
			ev.ReasonDesc = DefaultCloseReason
		}
		return nil
	})
}
