package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/middleware"
	"github.com/harentsoaR/mediflow-portal/internal/mockdata"
)

const defaultListLimit = 20

func (h *Handler) Dashboard(c *gin.Context) {
	id, _ := currentIdentity(c)
	c.JSON(http.StatusOK, gin.H{
		"user":    id,
		"summary": h.Data.Dashboard(id),
	})
}

// HealthRecords serves both /health-records and /records.
func (h *Handler) HealthRecords(c *gin.Context) {
	records := h.Data.Records(mockdata.RecordFilter{
		Type:  c.Query("type"),
		Query: c.Query("q"),
	})
	c.JSON(http.StatusOK, gin.H{
		"records":       records,
		"allergies":     h.Data.Allergies(),
		"immunizations": h.Data.Immunizations(),
	})
}

func (h *Handler) GetDocuments(c *gin.Context) {
	id, _ := currentIdentity(c)
	tab := c.DefaultQuery("tab", "my")
	if tab != "my" && tab != "shared" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tab must be my or shared"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tab": tab, "documents": h.Data.Documents(id, tab)})
}

func (h *Handler) UploadDocument(c *gin.Context) {
	id, _ := currentIdentity(c)
	var req mockdata.Upload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	doc, err := h.Data.AddDocument(id, req)
	if err != nil {
		dataError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, _ := currentIdentity(c)
	if err := h.Data.DeleteDocument(id, c.Param("id")); err != nil {
		dataError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MyPatients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"patients": h.Data.Patients(c.Query("q"))})
}

// EmergencyAccess lists patient records. Non-hospital staff reach it only
// through the emergency override.
func (h *Handler) EmergencyAccess(c *gin.Context) {
	body := gin.H{"patients": h.Data.Patients(c.Query("q")), "emergency": false}
	if d, ok := middleware.CurrentDecision(c); ok && d.Outcome == access.EmergencyAuthorized {
		body["emergency"] = true
		body["notice"] = d.Notice
	}
	c.JSON(http.StatusOK, body)
}

// Notifications returns the most recent toasts, newest first.
func (h *Handler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.NotificationSvc.Recent(limitParam(c))})
}

func (h *Handler) AuditTrail(c *gin.Context) {
	entries, err := h.AuditSvc.Trail(c.Request.Context(), limitParam(c))
	if err != nil {
		h.Log.WithComponent("audit").WithError(err).Error("Failed to read audit trail")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) Health(c *gin.Context) {
	snap := h.Sessions.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessionLoading": snap.Loading})
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	return n
}
