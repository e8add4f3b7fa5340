package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/votetrack/votetrack/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required"`
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var input service.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "User registered. Please confirm your email",
		"data":    gin.H{"user": user},
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "token": token})
}

// ConfirmEmail handles GET /auth/confirm-email/:token.
func (h *Handler) ConfirmEmail(c *gin.Context) {
	if err := h.auth.ConfirmEmail(c.Request.Context(), c.Param("token")); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Email confirmed successfully"})
}

// SendConfirmation handles POST /auth/send-confirmation.
func (h *Handler) SendConfirmation(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	if err := h.auth.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Confirmation email sent"})
}
