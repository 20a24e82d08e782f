package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/restaurant-admin/internal/docstore"
	"github.com/imrishuroy/restaurant-admin/internal/testutil"
)

const testTable = "restaurant"

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestManager(t *testing.T) (*Manager, *testutil.Dynamo, *clock) {
	t.Helper()
	fake := testutil.NewDynamo()
	docs, err := docstore.New(fake, testTable)
	require.NoError(t, err)

	m, err := NewManager(docs, Config{
		AdminsCollection:   "admins",
		SessionsCollection: "sessions",
		Secret:             "test-secret-key",
		TTL:                time.Hour,
	})
	require.NoError(t, err)

	clk := &clock{now: time.Now()}
	m.nowFunc = clk.Now
	m.tokens.nowFunc = clk.Now
	return m, fake, clk
}

func TestNewManager_Config(t *testing.T) {
	docs, _ := docstore.New(testutil.NewDynamo(), testTable)

	_, err := NewManager(docs, Config{AdminsCollection: "admins", Secret: "x"})
	assert.ErrorIs(t, err, docstore.ErrConfiguration)

	_, err = NewManager(docs, Config{AdminsCollection: "admins", SessionsCollection: "sessions"})
	assert.Error(t, err)
}

func TestLoginCurrentLogout(t *testing.T) {
	m, fake, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateAccount(ctx, "Admin@Restaurant.com ", "password123", "Admin")
	require.NoError(t, err)

	sess, token, err := m.Login(ctx, "admin@restaurant.com", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "admin@restaurant.com", sess.AccountID)
	assert.NotNil(t, fake.Item(testTable, "sessions", sess.ID))

	current, err := m.Current(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, current.ID)
	assert.Equal(t, "Admin", current.Name)

	require.NoError(t, m.Logout(ctx, token))
	assert.Nil(t, fake.Item(testTable, "sessions", sess.ID))

	_, err = m.Current(ctx, token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, m.Logout(ctx, token), ErrUnauthenticated)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	_, err := m.CreateAccount(ctx, "admin@restaurant.com", "password123", "Admin")
	require.NoError(t, err)

	_, _, err = m.Login(ctx, "admin@restaurant.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = m.Login(ctx, "nobody@restaurant.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateAccount_Errors(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()

	_, err := m.CreateAccount(ctx, "admin@restaurant.com", "short", "Admin")
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = m.CreateAccount(ctx, "admin@restaurant.com", "password123", "Admin")
	require.NoError(t, err)
	_, err = m.CreateAccount(ctx, "ADMIN@restaurant.com", "password456", "Other")
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestCurrent_Rejections(t *testing.T) {
	m, fake, clk := newTestManager(t)
	ctx := context.Background()
	_, err := m.CreateAccount(ctx, "admin@restaurant.com", "password123", "Admin")
	require.NoError(t, err)
	_, token, err := m.Login(ctx, "admin@restaurant.com", "password123")
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		_, err := m.Current(ctx, "")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := m.Current(ctx, token+"x")
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other, err := NewTokens("another-secret")
		require.NoError(t, err)
		forged, err := other.Issue(Session{ID: "s-1", AccountID: "admin@restaurant.com", ExpiresAt: clk.now.Add(time.Hour).Unix()})
		require.NoError(t, err)
		_, err = m.Current(ctx, forged)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("store failure", func(t *testing.T) {
		fake.FailOn("GetItem", errors.New("network down"))
		defer fake.FailOn("GetItem", nil)
		_, err := m.Current(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("expired", func(t *testing.T) {
		saved := clk.now
		defer func() { clk.now = saved }()
		clk.now = clk.now.Add(2 * time.Hour)
		_, err := m.Current(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	_, err = m.Current(ctx, token)
	assert.NoError(t, err)
}

func TestRequireSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m, _, clk := newTestManager(t)
	ctx := context.Background()
	_, err := m.CreateAccount(ctx, "admin@restaurant.com", "password123", "Admin")
	require.NoError(t, err)
	_, token, err := m.Login(ctx, "admin@restaurant.com", "password123")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/protected", RequireSession(m), func(c *gin.Context) {
		sess, ok := FromContext(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, sess.Email)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@restaurant.com", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	clk.now = clk.now.Add(2 * time.Hour)
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"session_expired"}`, rec.Body.String())
}

func TestGuard_CheckSession(t *testing.T) {
	m, _, _ := newTestManager(t)
	ctx := context.Background()
	_, err := m.CreateAccount(ctx, "admin@restaurant.com", "password123", "Admin")
	require.NoError(t, err)
	_, token, err := m.Login(ctx, "admin@restaurant.com", "password123")
	require.NoError(t, err)

	g := Guard{Manager: m}
	_, err = g.CheckSession(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	sess, err := g.CheckSession(WithToken(ctx, token))
	require.NoError(t, err)
	assert.Equal(t, "admin@restaurant.com", sess.Email)
}
