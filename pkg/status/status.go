// Package status holds the DRIMS status code tables and the relief request
// state rules.
package status

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// Single-character status codes stored on master data rows.
const (
	Active   = "A"
	Inactive = "I"
	Closed   = "C"

	InventoryAvailable   = "A"
	InventoryUnavailable = "U"

	DonationEntered  = "E"
	DonationVerified = "V"

	ItemRequested    = "R"
	ItemUnavailable  = "U"
	ItemWaiting      = "W"
	ItemDenied       = "D"
	ItemPartlyFilled = "P"
	ItemLimitAllowed = "L"
	ItemFilled       = "F"

	PackageProcessing = "P"
	PackageCompleted  = "C"
	PackageVerified   = "V"
	PackageDispatched = "D"

	TransferProcessed = "P"
	TransferVerified  = "V"

	IntakeIncomplete = "I"
	IntakeCompleted  = "C"
	IntakeVerified   = "V"

	UrgencyLow      = "L"
	UrgencyMedium   = "M"
	UrgencyHigh     = "H"
	UrgencyCritical = "C"
)

// Kind names a status table.
type Kind string

const (
	KindEvent       Kind = "event"
	KindItem        Kind = "item"
	KindWarehouse   Kind = "warehouse"
	KindInventory   Kind = "inventory"
	KindDonation    Kind = "donation"
	KindRequest     Kind = "reliefrqst"
	KindRequestItem Kind = "reliefrqst_item"
	KindPackage     Kind = "reliefpkg"
	KindTransfer    Kind = "transfer"
	KindIntake      Kind = "intake"
	KindUrgency     Kind = "urgency"
)

var tables = map[Kind]map[string]string{
	KindEvent:     {Active: "Active", Closed: "Closed"},
	KindItem:      {Active: "Active", Inactive: "Inactive"},
	KindWarehouse: {Active: "Active", Inactive: "Inactive"},
	KindInventory: {InventoryAvailable: "Available", InventoryUnavailable: "Unavailable"},
	KindDonation:  {DonationEntered: "Entered", DonationVerified: "Verified"},
	KindRequest: {
		"0": "Draft",
		"1": "Awaiting Approval",
		"2": "Cancelled",
		"3": "Submitted",
		"4": "Denied",
		"5": "Part Filled",
		"6": "Closed",
		"7": "Filled",
	},
	KindRequestItem: {
		ItemRequested:    "Requested",
		ItemUnavailable:  "Unavailable",
		ItemWaiting:      "Waiting Availability",
		ItemDenied:       "Denied",
		ItemPartlyFilled: "Partly Filled",
		ItemLimitAllowed: "Limit Allowed",
		ItemFilled:       "Filled",
	},
	KindPackage: {
		PackageProcessing: "Processing",
		PackageCompleted:  "Completed",
		PackageVerified:   "Verified",
		PackageDispatched: "Dispatched",
	},
	KindTransfer: {TransferProcessed: "Processed", TransferVerified: "Verified"},
	KindIntake:   {IntakeIncomplete: "Incomplete", IntakeCompleted: "Completed", IntakeVerified: "Verified"},
	KindUrgency: {
		UrgencyLow:      "Low",
		UrgencyMedium:   "Medium",
		UrgencyHigh:     "High",
		UrgencyCritical: "Critical",
	},
}

var urgencyBadges = map[string]string{
	UrgencyLow:      "secondary",
	UrgencyMedium:   "info",
	UrgencyHigh:     "warning",
	UrgencyCritical: "danger",
}

// Table returns a copy of the code→label table for kind, or nil.
func Table(kind Kind) map[string]string {
	t, ok := tables[kind]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Label returns the display label for code, or the code itself when unknown.
func Label(kind Kind, code string) string {
	if l, ok := tables[kind][code]; ok {
		return l
	}
	return code
}

// Badge returns the UI badge class for a status code.
func Badge(kind Kind, code string) string {
	if kind == KindUrgency {
		if b, ok := urgencyBadges[code]; ok {
			return b
		}
		return "secondary"
	}
	if kind == KindRequest {
		n, err := strconv.Atoi(code)
		if err == nil {
			return RequestStatus(n).Badge()
		}
	}
	switch code {
	case "A", "P", "R":
		return "primary"
	case "V", "F":
		return "success"
	case "C", "I", "D", "U":
		return "secondary"
	default:
		return "warning"
	}
}

// ValidUrgency reports whether code is a known urgency indicator.
func ValidUrgency(code string) bool {
	_, ok := tables[KindUrgency][code]
	return ok
}

// RequestStatus is the numeric relief request status.
type RequestStatus int

const (
	RequestDraft            RequestStatus = 0
	RequestAwaitingApproval RequestStatus = 1
	RequestCancelled        RequestStatus = 2
	RequestSubmitted        RequestStatus = 3
	RequestDenied           RequestStatus = 4
	RequestPartFilled       RequestStatus = 5
	RequestClosed           RequestStatus = 6
	RequestFilled           RequestStatus = 7
)

// Pending and Completed are the list filters offered to users.
var (
	Pending   = []RequestStatus{RequestDraft, RequestAwaitingApproval, RequestSubmitted}
	Completed = []RequestStatus{RequestClosed, RequestFilled}
)

func (s RequestStatus) String() string {
	return Label(KindRequest, strconv.Itoa(int(s)))
}

// Badge returns the UI badge class for s.
func (s RequestStatus) Badge() string {
	switch s {
	case RequestDraft:
		return "secondary"
	case RequestAwaitingApproval:
		return "info"
	case RequestCancelled:
		return "dark"
	case RequestSubmitted:
		return "primary"
	case RequestDenied:
		return "danger"
	case RequestPartFilled:
		return "warning"
	case RequestClosed, RequestFilled:
		return "success"
	}
	return "secondary"
}

// Editable reports whether the request's lines may still change.
func (s RequestStatus) Editable() bool { return s == RequestDraft }

// CanSubmit reports whether the request may be sent for approval.
func (s RequestStatus) CanSubmit() bool { return s == RequestDraft }

// CanCancel reports whether the request may be cancelled.
func (s RequestStatus) CanCancel() bool {
	return s == RequestDraft || s == RequestAwaitingApproval || s == RequestSubmitted
}

// CanFulfil reports whether packages may be prepared against the request.
func (s RequestStatus) CanFulfil() bool {
	return s == RequestSubmitted || s == RequestPartFilled
}

var requestTransitions = map[RequestStatus][]RequestStatus{
	RequestDraft:            {RequestAwaitingApproval, RequestCancelled},
	RequestAwaitingApproval: {RequestSubmitted, RequestDenied, RequestCancelled},
	RequestSubmitted:        {RequestPartFilled, RequestFilled, RequestCancelled, RequestClosed},
	RequestPartFilled:       {RequestPartFilled, RequestFilled, RequestClosed},
	RequestFilled:           {RequestClosed},
}

// ErrTransition is matched by every *TransitionError.
var ErrTransition = errors.New("invalid status transition")

// TransitionError reports a disallowed relief request status change.
type TransitionError struct {
	From, To RequestStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("relief request cannot move from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrTransition }

// Transition validates a move from one request status to another.
func Transition(from, to RequestStatus) error {
	if slices.Contains(requestTransitions[from], to) {
		return nil
	}
	return &TransitionError{From: from, To: to}
}
