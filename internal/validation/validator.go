package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/restaurant-admin/internal/orders"
)

// New returns a configured validator with the order_status tag registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// order_status accepts exactly the statuses the store can hold.
	_ = v.RegisterValidation("order_status", orderStatusValidation)

	return v
}

func orderStatusValidation(fl validatorv10.FieldLevel) bool {
	return orders.Status(fl.Field().String()).Valid()
}
