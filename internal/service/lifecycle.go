package service

import (
	"time"

	"github.com/votetrack/votetrack/internal/models"
)

// ComputeActiveState reports whether a poll is live at the given instant.
// The window is half-open: a poll starting exactly now is active, a poll
// expiring exactly now is not. This is the single source of truth for the
// active flag; it runs before every persist and inside the sweep.
func ComputeActiveState(startDate, expirationDate, now time.Time) bool {
	return !startDate.After(now) && expirationDate.After(now)
}

// CanEdit reports whether structural edits to the poll are allowed. An
// active poll's fields and options are frozen.
func CanEdit(poll *models.Poll) bool {
	return !poll.Active
}
