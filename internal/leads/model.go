package leads

import (
	"time"

	"laura-backend/internal/pricing"
	"laura-backend/internal/wizard"
)

// StorageKey is the kv key holding the whole lead list as one JSON array.
const StorageKey = "laura_demandes"

type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var statusLabels = map[Status]string{
	StatusNew:       "Nouvelle",
	StatusContacted: "Contactée",
	StatusConfirmed: "Confirmée",
	StatusCancelled: "Annulée",
}

// Statuses lists every status in display order.
var Statuses = []Status{StatusNew, StatusContacted, StatusConfirmed, StatusCancelled}

func IsValidStatus(value string) bool {
	_, ok := statusLabels[Status(value)]
	return ok
}

func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type Lead struct {
	ID             string            `json:"id"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      *time.Time        `json:"updatedAt,omitempty"`
	Status         Status            `json:"status"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	City           string            `json:"city"`
	Message        string            `json:"message"`
	Service        pricing.Service   `json:"service"`
	ServiceLabel   string            `json:"serviceLabel"`
	Frequency      pricing.Frequency `json:"frequency"`
	FrequencyLabel string            `json:"frequencyLabel"`
	Hours          float64           `json:"hours"`
	PriceEstimate  float64           `json:"priceEstimate"`
	Options        pricing.Options   `json:"options"`
	Details        wizard.Details    `json:"details"`
	Notes          string            `json:"notes"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted confirmed cancelled"`
}

type NoteRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}
