package validation

// UpdateStatusRequest is the payload for PATCH /api/orders/status
type UpdateStatusRequest struct {
	OrderID string `json:"orderId" form:"orderId" validate:"required"`
	Status  string `json:"status" form:"status" validate:"required,order_status"`
}

// LoginRequest is the payload for POST /api/session and the login form.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}
