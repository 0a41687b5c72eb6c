package order

import (
	"time"

	"empanadas/internal/combo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusDelivered Status = "DELIVERED"
	StatusCancelled Status = "CANCELLED"
)

type Source string

const (
	SourceWeb   Source = "web"
	SourceTotem Source = "totem"
)

// transitions lists, per status, the statuses it may move to.
// DELIVERED and CANCELLED are terminal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusPreparing, StatusCancelled},
	StatusPreparing: {StatusReady, StatusCancelled},
	StatusReady:     {StatusDelivered, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing,
		StatusReady, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

func (s Status) CanMoveTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Item struct {
	ProductID    int             `json:"productId"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	IsCombo      bool            `json:"isCombo"`
	ComboDetails []combo.Detail  `json:"comboDetails,omitempty"`
	Subtotal     decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	StoreID       int             `json:"storeId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Source        Source          `json:"source"`
	Status        Status          `json:"status"`
	Items         []Item          `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Filter narrows admin listings. Zero values match everything.
type Filter struct {
	StoreID int
	Status  Status
}

func (f Filter) match(o *Order) bool {
	if f.StoreID != 0 && o.StoreID != f.StoreID {
		return false
	}
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	return true
}
