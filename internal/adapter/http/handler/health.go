package handler

import (
	"net/http"
	"time"

	"github.com/Temutjin2k/niva/pkg/logger"
	wrap "github.com/Temutjin2k/niva/pkg/logger/wrapper"
)

const version = "1.0.0"

type Health struct {
	serviceName string
	log         logger.Logger
}

func NewHealth(serviceName string, log logger.Logger) *Health {
	return &Health{
		serviceName: serviceName,
		log:         log,
	}
}

// HealthCheck godoc
// @Summary      Health Check
// @Description  Returns the health status of the service
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (a *Health) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "health_check")

	response := envelope{
		"status":    "healthy",
		"service":   a.serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   version,
	}

	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		a.log.Error(ctx, "healthcheck", err)
	}
}
