package repository

import (
	"context"
	"errors"

	"github.com/votetrack/votetrack/internal/models"
)

// Storage-level sentinel errors. Services translate these into the error
// kinds the HTTP layer reports.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// PollRepository is the persistence surface for polls, their vote ledgers and
// their invite lists.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	Get(ctx context.Context, pollID string) (*models.Poll, error)
	Save(ctx context.Context, poll *models.Poll) error
	Delete(ctx context.Context, pollID string) error
	All(ctx context.Context) ([]models.Poll, error)
	ByCreator(ctx context.Context, userID string) ([]models.Poll, error)

	// HasVoted reports whether the user already appears in the poll's voter
	// set. AdmitVoter adds the user conditionally and reports false when the
	// user was already admitted, so two racing votes cannot both pass.
	HasVoted(ctx context.Context, pollID, userID string) (bool, error)
	AdmitVoter(ctx context.Context, pollID, userID string) (bool, error)
	// RetractVoter undoes an admission whose vote never reached the ledger.
	RetractVoter(ctx context.Context, pollID, userID string) error
	AppendVote(ctx context.Context, pollID string, vote models.Vote) error
	Votes(ctx context.Context, pollID string) ([]models.Vote, error)

	// AddInvited merges emails into the poll's allowed-voters set.
	AddInvited(ctx context.Context, pollID string, emails []string) error
	IsInvited(ctx context.Context, pollID, email string) (bool, error)
	Invited(ctx context.Context, pollID string) ([]string, error)
}

// UserRepository is the persistence surface for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Save(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id string) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByConfirmationToken(ctx context.Context, token string) (*models.User, error)
}
