package enums

import "fmt"

// RequestPriority maps to the request_priority enum in Postgres.
type RequestPriority string

const (
	RequestPriorityLow      RequestPriority = "low"
	RequestPriorityMedium   RequestPriority = "medium"
	RequestPriorityHigh     RequestPriority = "high"
	RequestPriorityCritical RequestPriority = "critical"
)

var validRequestPriorities = []RequestPriority{
	RequestPriorityLow,
	RequestPriorityMedium,
	RequestPriorityHigh,
	RequestPriorityCritical,
}

// IsValid reports whether the value is a known RequestPriority.
func (p RequestPriority) IsValid() bool {
	for _, candidate := range validRequestPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseRequestPriority converts raw strings into RequestPriority.
func ParseRequestPriority(value string) (RequestPriority, error) {
	for _, candidate := range validRequestPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request priority %q", value)
}
