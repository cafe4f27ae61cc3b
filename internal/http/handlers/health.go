package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StoreCheck reports whether the store can serve requests.
type StoreCheck func(ctx context.Context) error

type HealthHandler struct {
	store StoreCheck
}

// NewHealthHandler takes an optional store check; without one the check only
// proves the process is serving.
func NewHealthHandler(store StoreCheck) *HealthHandler { return &HealthHandler{store: store} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.store(ctx); err != nil {
			_ = c.Error(err)
			c.String(http.StatusServiceUnavailable, "store unavailable")
			return
		}
	}
	c.String(http.StatusOK, "ok")
}
