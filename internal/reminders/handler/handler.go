// Package handler exposes the scheduled job HTTP endpoint.
package handler

import (
	"fmt"
	"net/http"

	"fleet_portal_backend/internal/reminders/service"
	"fleet_portal_backend/platform/httpkit"
	"fleet_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	log *logger.Logger
}

func New(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// RunScheduledNotifications executes one pipeline pass on demand. The
// route sits behind the service key, for external cron callers.
func (h *Handler) RunScheduledNotifications(c *gin.Context) {
	res, err := h.svc.Run(c.Request.Context())
	if err != nil {
		h.log.Error("scheduled notification run failed", "error", err)
		c.JSON(http.StatusInternalServerError, httpkit.JobErrorResponse{
			Success: false,
			Error:   "scheduled notification run failed",
			Details: err.Error(),
		})
		return
	}

	httpkit.JobOK(c, fmt.Sprintf(
		"processed %d, notified %d, emails %d, expired %d, skipped %d",
		res.Processed, res.Notified, res.EmailsSent, res.Expired, res.Skipped,
	))
}
