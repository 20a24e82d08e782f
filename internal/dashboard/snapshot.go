package dashboard

import (
	"strings"

	"github.com/imrishuroy/restaurant-admin/internal/orders"
)

// Snapshot is the render model of a View.
type Snapshot struct {
	State         State
	Authenticated bool
	AdminName     string
	AdminEmail    string
	Rows          []Row
	Stats         Stats
	Empty         bool   // fetched successfully and there are no orders
	Error         string // last fetch or update failure
}

// Stats feed the cards above the order table.
type Stats struct {
	Total     int
	Pending   int
	Preparing int
	Done      int
}

// Row is one line of the order table.
type Row struct {
	ID       string
	Customer string
	Phone    string
	Address  string
	Items    []orders.Item
	Quantity int
	Total    float64
	Status   orders.Status
	Options  []Option
}

// Option is one entry of a row's status selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

func newRow(o orders.Order) Row {
	r := Row{
		ID:       o.ID,
		Customer: orDefault(o.Name, "Guest"),
		Phone:    orDefault(o.Phone, "-"),
		Address:  orDefault(address(o), "-"),
		Items:    o.LineItems(),
		Quantity: o.Quantity(),
		Total:    o.Total,
		Status:   o.Status,
	}
	for _, st := range orders.Statuses {
		r.Options = append(r.Options, Option{
			Value:    string(st),
			Label:    st.Label(),
			Selected: st == o.Status,
		})
	}
	return r
}

func computeStats(list []orders.Order) Stats {
	s := Stats{Total: len(list)}
	for _, o := range list {
		switch o.Status {
		case orders.StatusPending:
			s.Pending++
		case orders.StatusPreparing:
			s.Preparing++
		case orders.StatusDelivered:
			s.Done++
		}
	}
	return s
}

func address(o orders.Order) string {
	var parts []string
	for _, p := range []string{o.Street, o.City, o.State, o.Pincode, o.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
