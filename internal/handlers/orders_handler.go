package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/restaurant-admin/internal/aws"
	"github.com/imrishuroy/restaurant-admin/internal/dashboard"
	"github.com/imrishuroy/restaurant-admin/internal/docstore"
	"github.com/imrishuroy/restaurant-admin/internal/orders"
	"github.com/imrishuroy/restaurant-admin/internal/session"
	"github.com/imrishuroy/restaurant-admin/internal/validation"
)

// HandlerConfig groups dependencies for the route handlers.
type HandlerConfig struct {
	Orders       *orders.Store
	Sessions     *session.Manager
	Views        *dashboard.Registry
	Metrics      *aws.Metrics
	Validator    *validatorv10.Validate
	CookieSecure bool
}

func (cfg HandlerConfig) validator() *validatorv10.Validate {
	if cfg.Validator != nil {
		return cfg.Validator
	}
	return validation.New()
}

// RegisterOrdersRoutes registers the JSON order API. Both routes require a
// session.
func RegisterOrdersRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := cfg.validator()
	api := r.Group("/api/orders", session.RequireSession(cfg.Sessions))

	api.GET("", func(c *gin.Context) {
		ctx := c.Request.Context()

		list, err := cfg.Orders.List(ctx)
		if err != nil {
			log.Printf("[orders] list failed: %v", err)
			countMetric(c, cfg.Metrics, aws.MetricOrdersFetchFailed)
			c.JSON(storeErrorStatus(err), gin.H{"error": "fetch_failed", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": list})
	})

	api.PATCH("/status", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.UpdateStatusRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		if err := cfg.Orders.UpdateStatus(ctx, req.OrderID, orders.Status(req.Status)); err != nil {
			log.Printf("[orders] update status of %s to %s failed: %v", req.OrderID, req.Status, err)
			countMetric(c, cfg.Metrics, aws.MetricStatusUpdateFailed)
			c.JSON(storeErrorStatus(err), gin.H{"error": "update_failed", "detail": err.Error()})
			return
		}

		if sess, ok := session.FromContext(ctx); ok {
			log.Printf("[orders] %s set order %s to %s", sess.Email, req.OrderID, req.Status)
		}
		countMetric(c, cfg.Metrics, aws.MetricStatusUpdated)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
}

// storeErrorStatus maps store errors to a response code.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, orders.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, docstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, docstore.ErrConfiguration):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func countMetric(c *gin.Context, m *aws.Metrics, name string) {
	if err := m.Count(c.Request.Context(), name); err != nil {
		log.Printf("[metrics] %v", err)
	}
}
