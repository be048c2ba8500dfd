package controllers

import (
	"thaitour_go/services"

	"github.com/gofiber/fiber/v2"
)

// HealthController exposes liveness and detailed health endpoints.
type HealthController struct {
	service *services.HealthService
}

// NewHealthController constructs a controller backed by the provided service.
func NewHealthController(service *services.HealthService) *HealthController {
	if service == nil {
		service = services.NewHealthService("", "", nil, nil, nil)
	}
	return &HealthController{service: service}
}

// GetLiveness probes MySQL and Redis only.
func (hc *HealthController) GetLiveness(c *fiber.Ctx) error {
	report := hc.service.Liveness(c.UserContext())
	return c.Status(hc.service.HTTPStatusForOverall(report.Status)).JSON(report)
}

// GetHealthStatus returns the aggregated health report.
func (hc *HealthController) GetHealthStatus(c *fiber.Ctx) error {
	report := hc.service.GetHealthReport(c.UserContext())
	return c.Status(hc.service.HTTPStatusForOverall(report.Status)).JSON(report)
}
