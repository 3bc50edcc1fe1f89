package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/mediflow-portal/internal/access"
	"github.com/harentsoaR/mediflow-portal/internal/models"
	"github.com/harentsoaR/mediflow-portal/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	Next     string `json:"next"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required"`
}

// LoginPage describes the login screen, including where to go afterwards.
func (h *Handler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"next":  access.SafeReturnPath(c.Query("next")),
		"roles": models.Roles(),
	})
}

func (h *Handler) Unauthorized(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "Access Denied",
		"message": "You don't have permission to access this page.",
		"links":   gin.H{"dashboard": "/dashboard", "home": "/"},
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	next := req.Next
	if next == "" {
		next = c.Query("next")
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthTimeout)
	defer cancel()
	id, err := h.Sessions.Login(ctx, req.Email, req.Password, role)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": id, "redirect": access.SafeReturnPath(next)})
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthTimeout)
	defer cancel()
	id, err := h.Sessions.Register(ctx, req.Name, req.Email, req.Password, role)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": id, "redirect": "/dashboard"})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.Logout(); err != nil {
		h.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been logged out successfully", "redirect": "/login"})
}

// Session reports the current session without waiting for it to settle.
func (h *Handler) Session(c *gin.Context) {
	snap := h.Sessions.Snapshot()
	body := gin.H{"loading": snap.Loading, "authenticated": snap.Authenticated(), "user": nil}
	if id, ok := snap.Identity(); ok {
		body["user"] = id
	}
	c.JSON(http.StatusOK, body)
}

// Settings returns the profile being edited.
func (h *Handler) Settings(c *gin.Context) {
	id, _ := currentIdentity(c)
	c.JSON(http.StatusOK, gin.H{"user": id})
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.AuthTimeout)
	defer cancel()
	id, err := h.Sessions.UpdateProfile(ctx, req)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	if id == nil {
		// the session ended between the gate and the update
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": id})
}

// sessionError maps session failures onto inline form errors.
func (h *Handler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, session.ErrDuplicateAccount):
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
	case errors.Is(err, models.ErrFieldNotApplicable),
		errors.Is(err, models.ErrInvalidIdentity),
		errors.Is(err, models.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "The request timed out, please try again"})
	default:
		h.Log.WithComponent("auth").WithError(err).Error("Session operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}
