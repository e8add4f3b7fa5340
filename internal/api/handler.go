package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/service"
)

// Handler bundles the services the HTTP layer dispatches into.
type Handler struct {
	auth    *service.AuthService
	polls   *service.PollService
	votes   *service.VoteService
	results *service.ResultService
	log     *zap.Logger
}

func NewHandler(auth *service.AuthService, polls *service.PollService, votes *service.VoteService, results *service.ResultService, log *zap.Logger) *Handler {
	return &Handler{auth: auth, polls: polls, votes: votes, results: results, log: log}
}

// respondError maps service error kinds onto HTTP statuses. Anything
// unrecognized is internal: logged in full, reported generically.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrPollNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidToken):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrVotingClosed),
		errors.Is(err, service.ErrNotInvited),
		errors.Is(err, service.ErrNotOwner):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrPollActive),
		errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrEmailNotConfirmed):
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	c.JSON(status, gin.H{"status": false, "message": message})
}
