package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/config"
	"github.com/harentsoaR/mediflow-portal/internal/directory"
	"github.com/harentsoaR/mediflow-portal/internal/logger"
	"github.com/harentsoaR/mediflow-portal/internal/metrics"
	"github.com/harentsoaR/mediflow-portal/internal/middleware"
	"github.com/harentsoaR/mediflow-portal/internal/mockdata"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/services"
	"github.com/harentsoaR/mediflow-portal/internal/session"
	"github.com/harentsoaR/mediflow-portal/internal/storage"
	"github.com/harentsoaR/mediflow-portal/internal/utils"
)

type portal struct {
	router  *gin.Engine
	store   *session.Store
	notices *services.NotificationService
	journal *storage.Memory
}

func setupPortal(t *testing.T, restore bool) *portal {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.HashCost = bcrypt.MinCost

	null, _ := test.NewNullLogger()
	log := logger.Wrap(null)
	dir, err := directory.NewMemory(directory.MockAccounts())
	require.NoError(t, err)

	journal := storage.NewMemory()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notices := services.NewNotificationService(log, 20)
	audit := services.NewAuditService(journal, log)

	store := session.NewStore(dir, journal, notices, log, session.WithMetrics(m))
	if restore {
		store.Restore(context.Background())
	}

	policy, err := access.NewPolicy([]models.Role{models.RoleDoctor, models.RoleHospital}, config.DefaultEmergencyMessage)
	require.NoError(t, err)
	gate := access.NewGate(policy, notices, audit, log, m)

	h := NewHandler(store, gate, mockdata.NewRepository(), notices, audit, log, 200*time.Millisecond)
	return &portal{
		router:  Router(h, access.DefaultRules(), []string{"http://localhost:5173"}, reg),
		store:   store,
		notices: notices,
		journal: journal,
	}
}

func (p *portal) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	p.router.ServeHTTP(w, req)
	return w
}

func (p *portal) login(t *testing.T, role models.Role) {
	t.Helper()
	w := p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    string(role) + "@example.com",
		Password: "password",
		Role:     string(role),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestAnonymousVisitReturnsAfterLogin(t *testing.T) {
	p := setupPortal(t, true)

	w := p.do(t, http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Frecords", w.Header().Get("Location"))

	w = p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "patient@example.com",
		Password: "password",
		Role:     "patient",
		Next:     "/records",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "/records", body["redirect"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "p1", user["id"])
	assert.NotContains(t, user, "password")

	w = p.do(t, http.MethodGet, "/records", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "records")
}

func TestLoginRejectsOffsiteRedirect(t *testing.T) {
	p := setupPortal(t, true)

	w := p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "patient@example.com",
		Password: "password",
		Role:     "patient",
		Next:     "//evil.example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/dashboard", decode(t, w)["redirect"])
}

func TestLoginFailureKeepsSession(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RoleDoctor)

	w := p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "doctor@example.com",
		Password: "wrong",
		Role:     "doctor",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", decode(t, w)["error"])

	id, ok := p.store.Snapshot().Identity()
	require.True(t, ok)
	assert.Equal(t, "d1", id.ID)
}

func TestLoginWrongRoleIsUnauthorized(t *testing.T) {
	p := setupPortal(t, true)

	w := p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "patient@example.com",
		Password: "password",
		Role:     "doctor",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, p.store.Snapshot().Authenticated())
}

func TestLoginUnknownRoleIsBadRequest(t *testing.T) {
	p := setupPortal(t, true)

	w := p.do(t, http.MethodPost, "/auth/login", LoginRequest{
		Email:    "patient@example.com",
		Password: "password",
		Role:     "admin",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDoctorEmergencyAccess(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RoleDoctor)

	w := p.do(t, http.MethodGet, "/emergency-access", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, config.DefaultEmergencyMessage, w.Header().Get(middleware.EmergencyHeader))
	assert.Equal(t, true, decode(t, w)["emergency"])

	var warnings int
	for _, n := range p.notices.Recent(20) {
		if n.Variant == models.NoticeWarning {
			warnings++
			assert.Equal(t, config.DefaultEmergencyMessage, n.Description)
		}
	}
	assert.Equal(t, 1, warnings)

	trail, err := p.journal.AuditTrail(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "d1", trail[0].UserID)
	assert.Equal(t, "/emergency-access", trail[0].Path)
}

func TestHospitalEntersEmergencyAccessDirectly(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RoleHospital)

	w := p.do(t, http.MethodGet, "/emergency-access", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.EmergencyHeader))
	assert.Equal(t, false, decode(t, w)["emergency"])

	trail, err := p.journal.AuditTrail(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, trail)
}

func TestPatientDeniedDoctorScreen(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodGet, "/my-patients", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))

	w = p.do(t, http.MethodGet, "/emergency-access", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/unauthorized", w.Header().Get("Location"))
}

func TestGateWaitsForRestore(t *testing.T) {
	p := setupPortal(t, false)

	w := p.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))

	w = p.do(t, http.MethodGet, "/auth/session", nil)
	assert.Equal(t, true, decode(t, w)["loading"])

	p.store.Restore(context.Background())
	w = p.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestRegisterAndDuplicate(t *testing.T) {
	p := setupPortal(t, true)
	req := RegisterRequest{Name: "Ann Lee", Email: "ann@example.com", Password: "password", Role: "patient"}

	w := p.do(t, http.MethodPost, "/auth/register", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "p4", user["id"])

	w = p.do(t, http.MethodPost, "/auth/register", req)
	assert.Equal(t, http.StatusConflict, w.Code)
	id, ok := p.store.Snapshot().Identity()
	require.True(t, ok)
	assert.Equal(t, "ann@example.com", id.Email)
}

func TestLogoutEndsSession(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodPost, "/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = p.do(t, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?next=%2Fdashboard", w.Header().Get("Location"))

	w = p.do(t, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateProfile(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RoleDoctor)

	w := p.do(t, http.MethodPut, "/api/profile", map[string]interface{}{"location": "Chicago", "experience": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "Chicago", user["location"])
	assert.EqualValues(t, 12, user["experience"])

	w = p.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chicago", decode(t, w)["user"].(map[string]interface{})["location"])
}

func TestUpdateProfileRejectsForeignField(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodPut, "/api/profile", map[string]interface{}{"specialization": "Surgery"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id, _ := p.store.Snapshot().Identity()
	_, isPatient := id.Profile.(models.PatientProfile)
	assert.True(t, isPatient)
}

func TestBookAndCancelAppointment(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodGet, "/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Contains(t, body, "doctors")
	assert.Contains(t, body, "timeSlots")

	booking := mockdata.Booking{DoctorID: "d1", Date: "2023-06-16", Time: "09:00 AM", Reason: "Follow-up"}
	w = p.do(t, http.MethodPost, "/appointments", booking)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aptID := decode(t, w)["id"].(string)

	w = p.do(t, http.MethodPost, "/appointments", booking)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = p.do(t, http.MethodPatch, "/appointments/"+aptID+"/cancel", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	p.login(t, models.RoleDoctor)
	w = p.do(t, http.MethodPatch, "/appointments/"+aptID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCancelled, decode(t, w)["status"])

	w = p.do(t, http.MethodPatch, "/appointments/missing/cancel", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDocumentsLifecycle(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodGet, "/documents?tab=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = p.do(t, http.MethodPost, "/documents", mockdata.Upload{Name: "scan.png", ContentType: "image/png", SizeBytes: 2048})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	docID := decode(t, w)["id"].(string)

	w = p.do(t, http.MethodDelete, "/documents/"+docID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = p.do(t, http.MethodDelete, "/documents/"+docID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditScreenIsHospitalOnly(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RoleDoctor)
	p.do(t, http.MethodGet, "/emergency-access", nil)

	w := p.do(t, http.MethodGet, "/api/audit", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	p.login(t, models.RoleHospital)
	w = p.do(t, http.MethodGet, "/api/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode(t, w)["entries"].([]interface{})
	assert.Len(t, entries, 1)
}

func TestMetricsEndpoint(t *testing.T) {
	p := setupPortal(t, true)
	p.login(t, models.RolePatient)

	w := p.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mediflow_session_operations_total")
}
