package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/session"
)

// Context keys set by Gate.
const (
	IdentityKey = "identity"
	DecisionKey = "accessDecision"
)

// EmergencyHeader carries the override message on emergency passes.
const EmergencyHeader = "X-Emergency-Access"

// Gate protects a screen. It waits up to timeout for the session to settle,
// then redirects to login or unauthorized, or lets the request through.
func Gate(store *session.Store, gate *access.Gate, rule access.Rule, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		snap, err := store.WaitIdle(ctx)
		cancel()
		if err != nil {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still loading"})
			return
		}

		d := gate.Check(c.Request.Context(), snap, rule, c.Request.URL.RequestURI())
		c.Set(DecisionKey, d)

		switch d.Outcome {
		case access.Anonymous, access.Denied:
			c.Redirect(http.StatusFound, d.Redirect)
			c.Abort()
			return
		case access.AwaitingSession:
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session is still loading"})
			return
		case access.EmergencyAuthorized:
			c.Header(EmergencyHeader, d.Notice.Description)
		}

		id, _ := snap.Identity()
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity Gate admitted.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return models.Identity{}, false
	}
	id, ok := v.(models.Identity)
	return id, ok
}

// CurrentDecision returns the gate decision for this request.
func CurrentDecision(c *gin.Context) (access.Decision, bool) {
	v, ok := c.Get(DecisionKey)
	if !ok {
		return access.Decision{}, false
	}
	d, ok := v.(access.Decision)
	return d, ok
}
