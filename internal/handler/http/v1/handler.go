package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/traffic_alert_bot/internal/service"
)

type Handler struct {
	incidents service.IncidentReader
	registry  service.SubscriberService
	logger    *logrus.Logger
	validate  *validator.Validate
}

func NewHandler(incidents service.IncidentReader, registry service.SubscriberService, logger *logrus.Logger) *Handler {
	return &Handler{
		incidents: incidents,
		registry:  registry,
		logger:    logger,
		validate:  validator.New(),
	}
}

// @Summary List current incidents
// @Description Active incidents from the last completed cycle, sorted by coordinates. Requires API key.
// @Tags Incidents
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "Max number of incidents (1..1000)"
// @Success 200 {object} IncidentsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	var query ListIncidentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		log.WithError(err).Warn("Failed to bind query")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if err := h.validate.Struct(query); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current := h.incidents.Current()
	resp := IncidentsResponse{
		Total:     len(current),
		Incidents: IncidentsToResponses(current, query.Limit),
	}
	if report, ok := h.incidents.LastCycle(); ok {
		resp.LastCycle = CycleToResponse(report)
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Subscriber statistics
// @Description Sizes of the approved, pending and known registries. Requires API key.
// @Tags Subscribers
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} SubscriberStatsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /subscribers/stats [get]
func (h *Handler) subscriberStats(c *gin.Context) {
	_, hasAdmin := h.registry.Admin()
	c.JSON(http.StatusOK, SubscribersToStats(h.registry.Snapshot(), hasAdmin))
}

// @Summary Health check
// @Description Liveness of the service and time of the last completed cycle.
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Incidents: len(h.incidents.Current()),
	}
	if report, ok := h.incidents.LastCycle(); ok {
		finished := report.FinishedAt
		resp.LastCycleAt = &finished
	}
	c.JSON(http.StatusOK, resp)
}
