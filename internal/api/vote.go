package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/votetrack/votetrack/internal/middleware"
	"github.com/votetrack/votetrack/internal/models"
)

// Vote handles POST /poll/vote/:pollId. The body is the voter's selection
// list: [{"fieldId": "...", "optionId": "..."}, ...].
func (h *Handler) Vote(c *gin.Context) {
	var selections []models.Selection
	if err := c.ShouldBindJSON(&selections); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": "Invalid vote payload"})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.votes.Cast(c.Request.Context(), c.Param("pollId"), user, selections); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Participation confirmed"})
}

// PollResults handles GET /poll/poll-results/:pollId.
func (h *Handler) PollResults(c *gin.Context) {
	rows, err := h.results.Compute(c.Request.Context(), c.Param("pollId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "data": rows})
}
