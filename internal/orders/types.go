package orders

import (
	"encoding/json"
	"strings"
	"time"
)

// Status is the fulfillment status of an order.
type Status string

// Order statuses
const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
)

// legacy value still present in older documents; counted as done.
const statusCompleted = "completed"

// Statuses lists every status in workflow order.
var Statuses = []Status{StatusPending, StatusPreparing, StatusDelivered}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusDelivered:
		return true
	}
	return false
}

// Label is the human readable form, e.g. "Preparing".
func (s Status) Label() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ParseStatus maps a stored value onto a Status. Missing or unknown values
// become pending; the legacy "completed" becomes delivered.
func ParseStatus(v string) Status {
	st := Status(strings.ToLower(strings.TrimSpace(v)))
	if st.Valid() {
		return st
	}
	if st == statusCompleted {
		return StatusDelivered
	}
	return StatusPending
}

// Item is one line of an order.
type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Order is a normalized order document. Every field is populated.
type Order struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Email         string    `json:"email"`
	IsGuest       bool      `json:"isGuest"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Country       string    `json:"country"`
	State         string    `json:"state"`
	City          string    `json:"city"`
	Street        string    `json:"street"`
	Pincode       string    `json:"pincode"`
	PaymentMethod string    `json:"paymentMethod"`
	Items         string    `json:"items"` // JSON encoded []Item, as stored
	Total         float64   `json:"total"`
	Status        Status    `json:"status"`
}

// LineItems parses the stored items.
func (o Order) LineItems() []Item {
	return ParseItems(o.Items)
}

// Quantity is the sum of all item quantities.
func (o Order) Quantity() int {
	n := 0
	for _, it := range o.LineItems() {
		n += it.Quantity
	}
	return n
}

// ParseItems decodes a JSON array of items. Empty input, invalid JSON and
// non-array JSON all yield an empty, non-nil slice.
func ParseItems(raw string) []Item {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []Item{}
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []Item{}
	}
	return items
}
