package http

import (
	"context"
	"net/http"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
)

type HealthChecker interface {
	IsHealthy(ctx context.Context) (bool, error)
}

type healthHandler struct {
	checker HealthChecker
}

func newHealthHandler(checker HealthChecker) *healthHandler {
	return &healthHandler{checker: checker}
}

func (h *healthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	ok, err := h.checker.IsHealthy(r.Context())
	if err != nil || !ok {
		return apperr.DatabaseUnavailableErr.WrapParent(err)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write([]byte("OK"))
	return nil
}
