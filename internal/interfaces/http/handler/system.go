package handler

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderbridge/backend/internal/infrastructure/browser"
	"github.com/orderbridge/backend/internal/interfaces/http/dto"
)

// BrowserProbe reports on the shared browser session
type BrowserProbe interface {
	Alive(ctx context.Context) error
	OpenPages() int
}

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	browser   BrowserProbe
	startTime time.Time
	now       func() time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(name, version string, probe BrowserProbe) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		browser:   probe,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// SystemInfoResponse represents the system information response
// @name HandlerSystemInfoResponse
type SystemInfoResponse struct {
	Name      string `json:"name" example:"orderbridge"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// HealthResponse reports service and browser state
// @name HandlerHealthResponse
type HealthResponse struct {
	Status    string `json:"status" enums:"ok,idle,degraded" example:"ok"`
	Browser   string `json:"browser" example:"alive"`
	OpenPages int    `json:"open_pages" example:"2"`
	Error     string `json:"error,omitempty"`
}

// Root godoc
// @ID           getRoot
// @Summary      Server time
// @Description  Returns the current server time
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.TimeResponse
// @Router       / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	h.Success(c, dto.TimeResponse{Time: h.now().Format(time.RFC3339Nano)})
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports whether the shared Chrome instance answers. A browser that was never started is idle, not unhealthy.
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	if h.browser == nil {
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", Browser: "disabled"})
		return
	}

	resp := HealthResponse{OpenPages: h.browser.OpenPages()}
	err := h.browser.Alive(c.Request.Context())
	switch {
	case err == nil:
		resp.Status, resp.Browser = "ok", "alive"
	case errors.Is(err, browser.ErrNotStarted):
		resp.Status, resp.Browser = "idle", "not started"
	default:
		resp.Status, resp.Browser, resp.Error = "degraded", "unreachable", err.Error()
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSystemInfo godoc
// @ID           getSystemInfo
// @Summary      Get system information
// @Description  Returns basic system information including version and uptime
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[SystemInfoResponse]
// @Router       /system/info [get]
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	info := SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(info))
}
