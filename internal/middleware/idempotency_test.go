// internal/middleware/idempotency_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// The store is nil on purpose: any path that consulted it would panic, so
// these tests also prove the pass-through paths never touch the database.
func idempotencyTestRouter(calls *int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "11111111-1111-1111-1111-111111111111")
	})
	r.Use(Idempotency(nil, time.Hour))

	handler := func(c *gin.Context) {
		*calls++
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/resource", handler)
	r.POST("/resource", handler)
	return r
}

func TestIdempotencySkipsSafeMethods(t *testing.T) {
	var calls int
	r := idempotencyTestRouter(&calls)

	req := httptest.NewRequest(http.MethodGet, "/resource", nil)
	req.Header.Set("Idempotency-Key", "key-on-a-read")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, w.Header().Get("Idempotent-Replay"))
}

func TestIdempotencyPassesThroughWithoutKey(t *testing.T) {
	var calls int
	r := idempotencyTestRouter(&calls)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyRejectsOversizeKey(t *testing.T) {
	var calls int
	r := idempotencyTestRouter(&calls)

	req := httptest.NewRequest(http.MethodPost, "/resource", nil)
	req.Header.Set("Idempotency-Key", strings.Repeat("k", 129))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, calls)
}
