// Package audit records who changed what through the DRIMS API and serves
// the resulting trail.
package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONStringSlice is a []string stored as JSON text.
type JSONStringSlice []string

// Scan implements the sql.Scanner interface for JSONStringSlice.
func (s *JSONStringSlice) Scan(value any) error {
	if value == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported type for JSONStringSlice: %T", value)
	}
	return json.Unmarshal(b, s)
}

// Value implements the driver.Valuer interface for JSONStringSlice.
func (s JSONStringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// JSONMap is a map[string]any stored as JSON text.
type JSONMap map[string]any

// Scan implements the sql.Scanner interface for JSONMap.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}
	return json.Unmarshal(b, m)
}

// Value implements the driver.Valuer interface for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Outcomes recorded on an event.
const (
	OutcomeSuccess  = "success"
	OutcomeDenied   = "denied"
	OutcomeConflict = "conflict"
	OutcomeFailure  = "failure"
)

// EventRecord is one audited API call. Rows are never updated.
type EventRecord struct {
	ID            string          `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	CorrelationID string          `gorm:"column:correlation_id;type:varchar(64);index" json:"correlation_id,omitempty"`
	RequestID     string          `gorm:"column:request_id;type:varchar(64)" json:"request_id,omitempty"`
	Actor         string          `gorm:"column:actor;type:varchar(100);not null;index:idx_audit_actor_time,priority:1" json:"actor"`
	Roles         JSONStringSlice `gorm:"column:roles;type:text" json:"roles,omitempty"`
	Method        string          `gorm:"column:method;type:varchar(10);not null" json:"method"`
	Path          string          `gorm:"column:path;type:varchar(255);not null" json:"path"`
	ResourceType  string          `gorm:"column:resource_type;type:varchar(40);index:idx_audit_resource_time,priority:1" json:"resource_type,omitempty"`
	ResourceIDs   JSONStringSlice `gorm:"column:resource_ids;type:text" json:"resource_ids,omitempty"`
	Action        string          `gorm:"column:action;type:varchar(40)" json:"action"`
	Outcome       string          `gorm:"column:outcome;type:varchar(10);not null" json:"outcome"`
	StatusCode    int             `gorm:"column:status_code" json:"status_code"`
	DurationMS    int64           `gorm:"column:duration_ms" json:"duration_ms"`
	Metadata      JSONMap         `gorm:"column:metadata;type:text" json:"metadata,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;index;index:idx_audit_actor_time,priority:2;index:idx_audit_resource_time,priority:2" json:"created_at"`
}

// TableName returns the GORM table name.
func (EventRecord) TableName() string { return "audit_event" }
