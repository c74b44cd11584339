package model

import "strings"

// StatusCategory is the display bucket of a free-text order status.
type StatusCategory string

const (
	StatusDelivered StatusCategory = "delivered"
	StatusInProcess StatusCategory = "in-process"
	StatusCancelled StatusCategory = "cancelled"
	StatusUnknown   StatusCategory = "unknown"
)

// ClassifyStatus maps any status string, case-insensitively, to a category.
// Unrecognised input falls through to StatusUnknown.
func ClassifyStatus(status string) StatusCategory {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "delivered":
		return StatusDelivered
	case "in process", "inprocess", "in-process":
		return StatusInProcess
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// Action returns the call to action shown next to an order in this category.
func (c StatusCategory) Action() string {
	switch c {
	case StatusDelivered:
		return "Write A Review"
	case StatusInProcess:
		return "Cancel Order"
	default:
		return ""
	}
}

func (c StatusCategory) String() string { return string(c) }
