package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/imrishuroy/restaurant-admin/internal/docstore"
)

// Document attribute names of an order, as written by the ordering flow.
const (
	attrEmail         = "email"
	attrIsGuest       = "isGuest"
	attrName          = "name"
	attrPhone         = "phone"
	attrCountry       = "country"
	attrState         = "state"
	attrCity          = "city"
	attrStreet        = "street"
	attrPincode       = "pincode"
	attrPaymentMethod = "paymentMethod"
	attrItems         = "items"
	attrTotal         = "total"
	attrStatus        = "status"
)

const defaultPaymentMethod = "COD"

var (
	// ErrFetch wraps any failure to list orders.
	ErrFetch = errors.New("fetch orders failed")
	// ErrUpdate wraps any failure to change an order's status.
	ErrUpdate = errors.New("update order status failed")
	// ErrInvalidStatus is returned for a status outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
)

// Store reads orders and patches their status.
type Store struct {
	docs       *docstore.Store
	collection string
}

// NewStore creates a new orders Store. It fails with docstore.ErrConfiguration
// when either identifier is missing.
func NewStore(docs *docstore.Store, collectionID string) (*Store, error) {
	if docs == nil {
		return nil, fmt.Errorf("%w: nil document store", docstore.ErrConfiguration)
	}
	if collectionID == "" {
		return nil, fmt.Errorf("%w: orders collection id is empty", docstore.ErrConfiguration)
	}
	return &Store{docs: docs, collection: collectionID}, nil
}

// List returns all orders, normalized, in store order.
func (s *Store) List(ctx context.Context) ([]Order, error) {
	if s == nil || s.collection == "" {
		return nil, fmt.Errorf("%w: orders collection id is empty", docstore.ErrConfiguration)
	}
	docs, err := s.docs.List(ctx, s.collection)
	if err != nil {
		if errors.Is(err, docstore.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	out := make([]Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, Normalize(d))
	}
	return out, nil
}

// UpdateStatus patches the status field of one order. There is no
// read-before-write: the last writer wins.
func (s *Store) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if s == nil || s.collection == "" {
		return fmt.Errorf("%w: orders collection id is empty", docstore.ErrConfiguration)
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %w %q", ErrUpdate, ErrInvalidStatus, status)
	}
	if orderID == "" {
		return fmt.Errorf("%w: %w: empty order id", ErrUpdate, docstore.ErrNotFound)
	}

	_, err := s.docs.Update(ctx, s.collection, orderID, map[string]interface{}{
		attrStatus: string(status),
	})
	if err != nil {
		return fmt.Errorf("%w: order %s: %w", ErrUpdate, orderID, err)
	}
	return nil
}

// Normalize maps a raw document onto an Order, filling every absent or
// malformed field with its default.
func Normalize(d docstore.Document) Order {
	o := Order{ID: d.ID()}
	o.CreatedAt, _ = d.Time(docstore.AttrCreatedAt)
	o.UpdatedAt, _ = d.Time(docstore.AttrUpdatedAt)
	o.Email, _ = d.String(attrEmail)
	o.IsGuest, _ = d.Bool(attrIsGuest)
	o.Name, _ = d.String(attrName)
	o.Phone, _ = d.String(attrPhone)
	o.Country, _ = d.String(attrCountry)
	o.State, _ = d.String(attrState)
	o.City, _ = d.String(attrCity)
	o.Street, _ = d.String(attrStreet)
	o.Pincode, _ = d.String(attrPincode)
	o.Total, _ = d.Number(attrTotal)

	if pm, _ := d.String(attrPaymentMethod); pm != "" {
		o.PaymentMethod = pm
	} else {
		o.PaymentMethod = defaultPaymentMethod
	}

	if raw, _ := d.String(attrItems); raw != "" {
		o.Items = raw
	} else {
		o.Items = "[]"
	}

	st, _ := d.String(attrStatus)
	o.Status = ParseStatus(st)
	return o
}
