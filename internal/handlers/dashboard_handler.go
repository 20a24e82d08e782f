package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/restaurant-admin/internal/aws"
	"github.com/imrishuroy/restaurant-admin/internal/dashboard"
	"github.com/imrishuroy/restaurant-admin/internal/orders"
	"github.com/imrishuroy/restaurant-admin/internal/session"
	"github.com/imrishuroy/restaurant-admin/internal/validation"
)

// ginNavigator turns a view redirect into an HTTP redirect.
type ginNavigator struct {
	c *gin.Context
}

func (n ginNavigator) Redirect(path string) {
	n.c.Redirect(http.StatusFound, path)
}

// NewViewRegistry returns a registry whose views use the given stores.
func NewViewRegistry(sessions *session.Manager, store *orders.Store) *dashboard.Registry {
	return dashboard.NewRegistry(func() *dashboard.View {
		return dashboard.NewView(session.Guard{Manager: sessions}, store, store)
	})
}

// RegisterDashboardRoutes registers the server-rendered dashboard.
func RegisterDashboardRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := cfg.validator()
	views := cfg.Views
	if views == nil {
		views = NewViewRegistry(cfg.Sessions, cfg.Orders)
	}

	r.GET(dashboardPath, func(c *gin.Context) {
		token := session.TokenFromRequest(c.Request)
		if token == "" {
			c.Redirect(http.StatusFound, dashboard.LoginPath)
			return
		}
		ctx := session.WithToken(c.Request.Context(), token)
		view := views.For(token)

		if view.Mount(ctx, ginNavigator{c: c}) == dashboard.StateRedirecting {
			views.Drop(token)
			if !c.Writer.Written() {
				c.Redirect(http.StatusFound, dashboard.LoginPath)
			}
			return
		}
		if view.State() == dashboard.StateLoadError {
			countMetric(c, cfg.Metrics, aws.MetricOrdersFetchFailed)
		}
		c.HTML(http.StatusOK, "dashboard.html", view.Snapshot())
	})

	r.POST(dashboardPath+"/status", func(c *gin.Context) {
		token := session.TokenFromRequest(c.Request)
		if token == "" {
			c.Redirect(http.StatusFound, dashboard.LoginPath)
			return
		}
		ctx := session.WithToken(c.Request.Context(), token)
		view := views.For(token)

		if !view.Authorize(ctx, ginNavigator{c: c}) {
			views.Drop(token)
			if !c.Writer.Written() {
				c.Redirect(http.StatusFound, dashboard.LoginPath)
			}
			return
		}

		var req validation.UpdateStatusRequest
		if err := validation.Bind(c, &req, v); err != nil {
			snap := view.Snapshot()
			snap.Error = "Choose a valid status for the order"
			c.HTML(http.StatusBadRequest, "dashboard.html", snap)
			return
		}

		if err := view.ChangeStatus(ctx, req.OrderID, orders.Status(req.Status)); err != nil {
			log.Printf("[dashboard] %v", err)
			countMetric(c, cfg.Metrics, aws.MetricStatusUpdateFailed)
		} else {
			countMetric(c, cfg.Metrics, aws.MetricStatusUpdated)
		}
		c.HTML(http.StatusOK, "dashboard.html", view.Snapshot())
	})
}
