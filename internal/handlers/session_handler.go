package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/restaurant-admin/internal/dashboard"
	"github.com/imrishuroy/restaurant-admin/internal/session"
	"github.com/imrishuroy/restaurant-admin/internal/validation"
)

const dashboardPath = "/admin/dashboard"

const invalidCredentialsMsg = "Invalid email or password"

// RegisterSessionRoutes registers the login page, logout and the JSON
// session API.
func RegisterSessionRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := cfg.validator()

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, dashboard.LoginPath)
	})

	r.GET(dashboard.LoginPath, func(c *gin.Context) {
		if _, err := cfg.Sessions.Current(c.Request.Context(), session.TokenFromRequest(c.Request)); err == nil {
			c.Redirect(http.StatusFound, dashboardPath)
			return
		}
		c.HTML(http.StatusOK, "login.html", gin.H{})
	})

	r.POST(dashboard.LoginPath, func(c *gin.Context) {
		var req validation.LoginRequest
		if err := validation.Bind(c, &req, v); err != nil {
			c.HTML(http.StatusBadRequest, "login.html", gin.H{"Email": req.Email, "Error": invalidCredentialsMsg})
			return
		}

		_, token, err := cfg.Sessions.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			status := http.StatusUnauthorized
			msg := invalidCredentialsMsg
			if !errors.Is(err, session.ErrInvalidCredentials) {
				log.Printf("[session] login failed: %v", err)
				status = http.StatusBadGateway
				msg = "Sign in is unavailable, try again"
			}
			c.HTML(status, "login.html", gin.H{"Email": req.Email, "Error": msg})
			return
		}

		setSessionCookie(c, cfg, token)
		c.Redirect(http.StatusFound, dashboardPath)
	})

	r.POST("/admin/logout", func(c *gin.Context) {
		logout(c, cfg)
		c.Redirect(http.StatusFound, dashboard.LoginPath)
	})

	api := r.Group("/api/session")

	api.POST("", func(c *gin.Context) {
		var req validation.LoginRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		sess, token, err := cfg.Sessions.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, session.ErrInvalidCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
				return
			}
			log.Printf("[session] login failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "login_failed", "detail": err.Error()})
			return
		}

		setSessionCookie(c, cfg, token)
		c.JSON(http.StatusCreated, gin.H{"session": sess, "token": token})
	})

	api.GET("", func(c *gin.Context) {
		sess, err := cfg.Sessions.Current(c.Request.Context(), session.TokenFromRequest(c.Request))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"session": sess})
	})

	api.DELETE("", func(c *gin.Context) {
		logout(c, cfg)
		c.Status(http.StatusNoContent)
	})
}

// logout deletes the caller's session if any and always clears the cookie.
func logout(c *gin.Context, cfg HandlerConfig) {
	token := session.TokenFromRequest(c.Request)
	if token != "" {
		if err := cfg.Sessions.Logout(c.Request.Context(), token); err != nil && !errors.Is(err, session.ErrUnauthenticated) {
			log.Printf("[session] logout failed: %v", err)
		}
		if cfg.Views != nil {
			cfg.Views.Drop(token)
		}
	}
	clearSessionCookie(c, cfg)
}

func setSessionCookie(c *gin.Context, cfg HandlerConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, token, int(cfg.Sessions.TTL().Seconds()), "/", "", cfg.CookieSecure, true)
}

func clearSessionCookie(c *gin.Context, cfg HandlerConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(session.CookieName, "", -1, "/", "", cfg.CookieSecure, true)
}
