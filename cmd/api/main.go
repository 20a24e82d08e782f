package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/restaurant-admin/internal/aws"
	"github.com/imrishuroy/restaurant-admin/internal/config"
	"github.com/imrishuroy/restaurant-admin/internal/dashboard"
	"github.com/imrishuroy/restaurant-admin/internal/docstore"
	"github.com/imrishuroy/restaurant-admin/internal/handlers"
	"github.com/imrishuroy/restaurant-admin/internal/orders"
	"github.com/imrishuroy/restaurant-admin/internal/session"
	"github.com/imrishuroy/restaurant-admin/internal/validation"
)

func setupRouter(cfg handlers.HandlerConfig, requestLogs bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if requestLogs {
		r.Use(gin.Logger())
	}
	r.SetHTMLTemplate(dashboard.Templates())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterSessionRoutes(r, cfg)
	handlers.RegisterOrdersRoutes(r, cfg)
	handlers.RegisterDashboardRoutes(r, cfg)

	return r
}

func newHandlerConfig(cfg *config.Config, clients *aws.AWSClients) (handlers.HandlerConfig, error) {
	docs, err := docstore.New(clients.DynamoDB, cfg.DatabaseID)
	if err != nil {
		return handlers.HandlerConfig{}, err
	}
	store, err := orders.NewStore(docs, cfg.OrdersCollection)
	if err != nil {
		return handlers.HandlerConfig{}, err
	}
	sessions, err := session.NewManager(docs, session.Config{
		AdminsCollection:   cfg.AdminsCollection,
		SessionsCollection: cfg.SessionsCollection,
		Secret:             cfg.SessionSecret,
		TTL:                cfg.SessionTTL,
	})
	if err != nil {
		return handlers.HandlerConfig{}, err
	}

	return handlers.HandlerConfig{
		Orders:       store,
		Sessions:     sessions,
		Views:        handlers.NewViewRegistry(sessions, store),
		Metrics:      aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace),
		Validator:    validation.New(),
		CookieSecure: cfg.CookieSecure,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	log.Printf("[api] %s", cfg)

	clients, err := aws.NewAWSClients(context.Background())
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	hcfg, err := newHandlerConfig(cfg, clients)
	if err != nil {
		log.Fatalf("failed to init handlers: %v", err)
	}

	// RUN_LOCAL=true runs a plain HTTP server for development.
	if cfg.RunLocal {
		runLocal(setupRouter(hcfg, true), cfg.Addr)
		return
	}

	// lambda adapter
	adapter := ginadapter.New(setupRouter(hcfg, false))

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}

func runLocal(r *gin.Engine, addr string) {
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[api] running local server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to run local server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[api] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[api] shutdown: %v", err)
	}
}
