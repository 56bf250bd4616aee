package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuchat/internal/bootstrap"
)

const healthProbeTimeout = 2 * time.Second

type HealthHandler struct {
	app *bootstrap.App
}

// probeResult is one dependency's health check outcome.
type probeResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

// Check probes the stores behind the pipeline: Redis holds documents and
// index artifacts, MySQL holds the chat log, RabbitMQ carries it there.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	probes := gin.H{
		"redis":    h.probeRedis(ctx),
		"mysql":    h.probeMySQL(ctx),
		"rabbitmq": h.probeRabbitMQ(),
	}

	status := "ok"
	code := http.StatusOK
	for _, p := range probes {
		if !p.(probeResult).OK {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, gin.H{
		"status":       status,
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": probes,
	})
}

func (h *HealthHandler) probeMySQL(ctx context.Context) probeResult {
	sqlDB, err := h.app.MySQL.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return probeResult{OK: false, Message: err.Error()}
	}
	return probeResult{OK: true}
}

func (h *HealthHandler) probeRedis(ctx context.Context) probeResult {
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return probeResult{OK: false, Message: err.Error()}
	}
	return probeResult{OK: true}
}

func (h *HealthHandler) probeRabbitMQ() probeResult {
	if h.app.MQConn == nil || h.app.MQConn.IsClosed() {
		return probeResult{OK: false, Message: "connection closed"}
	}
	return probeResult{OK: true}
}
