package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/votetrack/votetrack/internal/middleware"
	"github.com/votetrack/votetrack/internal/service"
)

type addVotersRequest struct {
	PollID string   `json:"pollId" binding:"required"`
	Emails []string `json:"emails" binding:"required,min=1"`
}

// CreatePoll handles POST /poll/create-poll.
func (h *Handler) CreatePoll(c *gin.Context) {
	var input service.CreatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	poll, err := h.polls.Create(c.Request.Context(), user.ID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  true,
		"message": "Poll created successfully",
		"data":    gin.H{"poll": poll},
	})
}

// ListAllPolls handles GET /poll/polls (super_admin).
func (h *Handler) ListAllPolls(c *gin.Context) {
	polls, err := h.polls.All(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          true,
		"number_of_polls": len(polls),
		"data":            polls,
	})
}

// ListAdminPolls handles GET /poll/admin-polls: polls created by the caller.
func (h *Handler) ListAdminPolls(c *gin.Context) {
	user := middleware.CurrentUser(c)
	polls, err := h.polls.ByCreator(c.Request.Context(), user.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          true,
		"number_of_polls": len(polls),
		"data":            polls,
	})
}

// UpdatePoll handles PATCH /poll/update/:pollId.
func (h *Handler) UpdatePoll(c *gin.Context) {
	var input service.UpdatePollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	poll, err := h.polls.Update(c.Request.Context(), c.Param("pollId"), user.ID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  true,
		"message": "Poll updated successfully",
		"data":    gin.H{"poll": poll},
	})
}

// DeletePoll handles POST /poll/delete-poll/:pollId. Creator-only.
func (h *Handler) DeletePoll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if err := h.polls.Delete(c.Request.Context(), c.Param("pollId"), user.ID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": true, "message": "Poll deleted successfully"})
}

// AddVoters handles POST /poll/add-voters: merges emails into a poll's
// invite list.
func (h *Handler) AddVoters(c *gin.Context) {
	var req addVotersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": err.Error()})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.polls.AddVoters(c.Request.Context(), req.PollID, user.ID, req.Emails); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": true, "message": "Voters added successfully"})
}
