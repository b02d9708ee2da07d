// Package handler exposes the lead intake HTTP surface.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/platform/httpkit"
	"leadflow_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// healthTimeLayout mirrors a zone-less ISO-8601 timestamp with microseconds.
const healthTimeLayout = "2006-01-02T15:04:05.999999"

// Processor runs one lead through the intake workflow.
type Processor interface {
	ProcessLead(ctx context.Context, fields map[string]string) *domain.WorkflowResult
}

// Store provides the read and update operations behind the dashboard
// and lead endpoints.
type Store interface {
	ListAll(ctx context.Context) ([]map[string]any, error)
	UpdateStatus(ctx context.Context, leadID, status, notes string) bool
}

// Health reports which components came up at startup. Field order is the
// serialization order of the health payload.
type Health struct {
	Workflow bool `json:"workflow"`
	Scorer   bool `json:"scorer"`
	Sheets   bool `json:"sheets"`
	Calendar bool `json:"calendar"`
}

// Handler handles lead intake HTTP requests. processor and store are nil
// when initialization failed; every route then answers 503 so a
// misconfigured deployment is visible instead of half-working.
type Handler struct {
	processor Processor
	store     Store
	health    Health
	log       *logger.Logger
}

// New creates a new lead intake handler.
func New(processor Processor, store Store, health Health, log *logger.Logger) *Handler {
	return &Handler{processor: processor, store: store, health: health, log: log}
}

// RegisterRoutes mounts the intake routes at the engine root. The
// stricter limiter guards only the public webhook.
func (h *Handler) RegisterRoutes(engine *gin.Engine, webhookLimiter *httpkit.IPRateLimiter) {
	engine.GET("/", h.Home)
	engine.POST("/webhook/lead", webhookLimiter.RateLimit(), h.CaptureLead)
	engine.GET("/health", h.HealthCheck)
	engine.GET("/dashboard", h.Dashboard)
	engine.GET("/lead/:leadId", h.GetLead)
	engine.PUT("/lead/:leadId/status", h.UpdateLeadStatus)
}

// Home handles GET /
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, "Lead Automation API is running")
}

// CaptureLead handles POST /webhook/lead
func (h *Handler) CaptureLead(c *gin.Context) {
	if h.processor == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "System not initialized - check configuration", nil)
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil || len(payload) == 0 {
		httpkit.Error(c, http.StatusBadRequest, "No data provided", nil)
		return
	}

	// Non-string values never validate, so only strings are kept.
	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		if s, ok := value.(string); ok {
			fields[key] = s
		}
	}

	result := h.processor.ProcessLead(c.Request.Context(), fields)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	if !h.health.Workflow {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":     status,
		"timestamp":  time.Now().Format(healthTimeLayout),
		"components": h.health,
	})
}

// Dashboard handles GET /dashboard
func (h *Handler) Dashboard(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "System not initialized"})
		return
	}

	leads, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("dashboard query failed", "error", err)
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(leads),
		"leads":   leads,
	})
}

// GetLead handles GET /lead/:leadId
func (h *Handler) GetLead(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "System not initialized"})
		return
	}

	leadID := c.Param("leadId")
	leads, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("lead lookup failed", "lead_id", leadID, "error", err)
		httpkit.HandleError(c, err)
		return
	}

	for _, record := range leads {
		if recordLeadID(record) == leadID {
			c.JSON(http.StatusOK, gin.H{"success": true, "lead": record})
			return
		}
	}

	httpkit.Error(c, http.StatusNotFound, "Lead not found", nil)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// UpdateLeadStatus handles PUT /lead/:leadId/status
func (h *Handler) UpdateLeadStatus(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "System not initialized"})
		return
	}

	leadID := c.Param("leadId")

	// An absent or invalid body falls back to the default status.
	var req updateStatusRequest
	_ = c.ShouldBindJSON(&req)
	if req.Status == "" {
		req.Status = "UPDATED"
	}

	if h.store.UpdateStatus(c.Request.Context(), leadID, req.Status, req.Notes) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": fmt.Sprintf("Lead %s updated successfully", leadID),
		})
		return
	}

	httpkit.Error(c, http.StatusBadRequest, "Failed to update lead", nil)
}

// recordLeadID rebuilds the derived lead id from a sheet record. Rows
// carry no id column, so lookups re-derive it from email and phone.
func recordLeadID(record map[string]any) string {
	return domain.DeriveLeadID(recordText(record, "Email"), recordText(record, "Phone"))
}

func recordText(record map[string]any, key string) string {
	if s, ok := record[key].(string); ok {
		return s
	}
	if record[key] == nil {
		return ""
	}
	return fmt.Sprint(record[key])
}
