package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestUpdateStatusRequest_Valid(t *testing.T) {
	v := New()

	for _, st := range []string{"pending", "preparing", "delivered"} {
		req := UpdateStatusRequest{OrderID: "order-1", Status: st}
		if err := v.Struct(req); err != nil {
			t.Fatalf("expected %s to be valid, got error: %v", st, err)
		}
	}
}

func TestUpdateStatusRequest_Invalid(t *testing.T) {
	v := New()

	cases := []UpdateStatusRequest{
		{OrderID: "", Status: "pending"},
		{OrderID: "order-1", Status: ""},
		{OrderID: "order-1", Status: "cancelled"},
		{OrderID: "order-1", Status: "Pending"},
	}
	for _, req := range cases {
		if err := v.Struct(req); err == nil {
			t.Fatalf("expected validation error for %+v, got nil", req)
		}
	}
}

func TestLoginRequest_MissingFields(t *testing.T) {
	v := New()

	if err := v.Struct(LoginRequest{Email: "not-an-email", Password: "x"}); err == nil {
		t.Fatal("expected validation error for bad email, got nil")
	}
	if err := v.Struct(LoginRequest{Email: "admin@restaurant.com"}); err == nil {
		t.Fatal("expected validation error for missing password, got nil")
	}
}

func TestBindAndValidate_WritesBadRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	v := New()

	r := gin.New()
	r.PATCH("/status", func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := BindAndValidate(c, &req, v); err != nil {
			return
		}
		c.Status(http.StatusNoContent)
	})

	cases := map[string]int{
		`{"orderId":"o1","status":"preparing"}`: http.StatusNoContent,
		`{"orderId":"o1","status":"lost"}`:      http.StatusBadRequest,
		`{not json`:                             http.StatusBadRequest,
	}
	for body, want := range cases {
		req := httptest.NewRequest(http.MethodPatch, "/status", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("body %s: expected %d, got %d", body, want, rec.Code)
		}
	}
}
