package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, apiKeys []string) {
	// Маршрут Health-check открыт без ключа
	api.GET("/system/health", h.healthCheck)

	protected := api.Group("", APIKeyAuthMiddleware(apiKeys, h.logger))
	{
		protected.GET("/incidents", h.listIncidents)
		protected.GET("/subscribers/stats", h.subscriberStats)
	}
}

// RegisterMetrics публикует метрики Prometheus на /metrics
func RegisterMetrics(router *gin.Engine, gatherer prometheus.Gatherer) {
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
