package enums

import "fmt"

// RequestStatus maps to the request_status enum in Postgres.
type RequestStatus string

const (
	RequestStatusDraft     RequestStatus = "draft"
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusFulfilled RequestStatus = "fulfilled"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusDraft,
	RequestStatusPending,
	RequestStatusApproved,
	RequestStatusRejected,
	RequestStatusFulfilled,
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is modeled from this status.
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusFulfilled
}

// ParseRequestStatus converts raw strings into RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}
