package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

func seedPoll(t *testing.T, store *repository.MemoryStore, poll models.Poll) *models.Poll {
	t.Helper()
	if poll.ID == "" {
		poll.ID = "poll-1"
	}
	require.NoError(t, store.Create(context.Background(), &poll))
	return &poll
}

func twoFieldPoll() models.Poll {
	return models.Poll{
		ID:     "poll-1",
		Name:   "Lunch",
		Active: true,
		Fields: []models.PollField{
			{ID: "f1", Name: "Restaurant", Options: []models.PollOption{
				{ID: "o1", Option: "Sushi"},
				{ID: "o2", Option: "Pizza"},
			}},
			{ID: "f2", Name: "Drinks", Options: []models.PollOption{
				{ID: "o3", Option: "Tea"},
			}},
		},
		StartDate:      time.Now().Add(-time.Hour),
		ExpirationDate: time.Now().Add(time.Hour),
		CreatedBy:      "creator-1",
	}
}

func TestCast_EligibilityOrder(t *testing.T) {
	ctx := context.Background()
	voter := &models.User{ID: "u1", Email: "u1@x.io"}
	picks := []models.Selection{{FieldID: "f1", OptionID: "o1"}}

	t.Run("missing poll", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := NewVoteService(store, zap.NewNop())
		assert.ErrorIs(t, svc.Cast(ctx, "nope", voter, picks), ErrPollNotFound)
	})

	t.Run("inactive poll", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := NewVoteService(store, zap.NewNop())
		poll := twoFieldPoll()
		poll.Active = false
		seedPoll(t, store, poll)
		assert.ErrorIs(t, svc.Cast(ctx, "poll-1", voter, picks), ErrVotingClosed)
	})

	t.Run("already voted beats invite check", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := NewVoteService(store, zap.NewNop())
		poll := twoFieldPoll()
		poll.IsInviteOnly = true
		seedPoll(t, store, poll)

		// The user voted before (somehow) but is not on the invite list:
		// the duplicate-vote error is the one reported.
		admitted, err := store.AdmitVoter(ctx, "poll-1", voter.ID)
		require.NoError(t, err)
		require.True(t, admitted)

		assert.ErrorIs(t, svc.Cast(ctx, "poll-1", voter, picks), ErrAlreadyVoted)
	})

	t.Run("uninvited user on invite-only poll", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := NewVoteService(store, zap.NewNop())
		poll := twoFieldPoll()
		poll.IsInviteOnly = true
		seedPoll(t, store, poll)

		assert.ErrorIs(t, svc.Cast(ctx, "poll-1", voter, picks), ErrNotInvited)
	})

	t.Run("invited user may vote", func(t *testing.T) {
		store := repository.NewMemoryStore()
		svc := NewVoteService(store, zap.NewNop())
		poll := twoFieldPoll()
		poll.IsInviteOnly = true
		seedPoll(t, store, poll)
		require.NoError(t, store.AddInvited(ctx, "poll-1", []string{"U1@x.io"}))

		require.NoError(t, svc.Cast(ctx, "poll-1", voter, picks))
	})
}

func TestCast_DuplicateVoteRejected(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVoteService(store, zap.NewNop())
	seedPoll(t, store, twoFieldPoll())
	voter := &models.User{ID: "u1", Email: "u1@x.io"}
	picks := []models.Selection{{FieldID: "f1", OptionID: "o1"}}

	require.NoError(t, svc.Cast(ctx, "poll-1", voter, picks))
	assert.ErrorIs(t, svc.Cast(ctx, "poll-1", voter, picks), ErrAlreadyVoted)

	// Only one ledger entry despite the retry.
	votes, err := store.Votes(ctx, "poll-1")
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestCast_RecordsLedgerEntry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVoteService(store, zap.NewNop())
	seedPoll(t, store, twoFieldPoll())

	picks := []models.Selection{
		{FieldID: "f1", OptionID: "o2"},
		{FieldID: "f2", OptionID: "o3"},
	}
	require.NoError(t, svc.Cast(ctx, "poll-1", &models.User{ID: "u1", Email: "u1@x.io"}, picks))

	votes, err := store.Votes(ctx, "poll-1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "u1", votes[0].UserID)
	assert.Equal(t, picks, votes[0].Vote)
	assert.False(t, votes[0].CastAt.IsZero())
}

func TestValidateSelections(t *testing.T) {
	poll := twoFieldPoll()

	err := ValidateSelections(&poll, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = ValidateSelections(&poll, []models.Selection{{FieldID: "bogus", OptionID: "o1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown field")

	err = ValidateSelections(&poll, []models.Selection{{FieldID: "f1", OptionID: "bogus"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unknown option")

	assert.NoError(t, ValidateSelections(&poll, []models.Selection{
		{FieldID: "f1", OptionID: "o1"},
		{FieldID: "f2", OptionID: "o3"},
	}))
}

// Option ids are checked against the poll as a whole, not the paired field:
// an option belonging to a sibling field passes.
func TestValidateSelections_OptionFromSiblingField(t *testing.T) {
	poll := twoFieldPoll()
	assert.NoError(t, ValidateSelections(&poll, []models.Selection{
		{FieldID: "f1", OptionID: "o3"},
	}))
}

type flakyAppendStore struct {
	*repository.MemoryStore
	failures int
}

func (s *flakyAppendStore) AppendVote(ctx context.Context, pollID string, vote models.Vote) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("ledger unavailable")
	}
	return s.MemoryStore.AppendVote(ctx, pollID, vote)
}

// A failed ledger append must release the admission; otherwise the user is
// stuck in the voter set with no vote and every retry reports a duplicate.
func TestCast_FailedAppendReleasesAdmission(t *testing.T) {
	ctx := context.Background()
	store := &flakyAppendStore{MemoryStore: repository.NewMemoryStore(), failures: 1}
	svc := NewVoteService(store, zap.NewNop())
	seedPoll(t, store.MemoryStore, twoFieldPoll())
	voter := &models.User{ID: "u1", Email: "u1@x.io"}
	picks := []models.Selection{{FieldID: "f1", OptionID: "o1"}}

	err := svc.Cast(ctx, "poll-1", voter, picks)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyVoted)

	voted, err := store.HasVoted(ctx, "poll-1", voter.ID)
	require.NoError(t, err)
	assert.False(t, voted)

	// Once the ledger recovers, the retry goes through.
	require.NoError(t, svc.Cast(ctx, "poll-1", voter, picks))
	votes, err := store.Votes(ctx, "poll-1")
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

// One bad reference fails the whole payload; nothing partial is accepted.
func TestCast_WholesaleRejection(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewVoteService(store, zap.NewNop())
	seedPoll(t, store, twoFieldPoll())
	voter := &models.User{ID: "u1", Email: "u1@x.io"}

	err := svc.Cast(ctx, "poll-1", voter, []models.Selection{
		{FieldID: "f1", OptionID: "o1"},
		{FieldID: "f2", OptionID: "bogus"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	votes, err := store.Votes(ctx, "poll-1")
	require.NoError(t, err)
	assert.Empty(t, votes)

	// The user is not marked as having voted either; a corrected retry works.
	require.NoError(t, svc.Cast(ctx, "poll-1", voter, []models.Selection{
		{FieldID: "f1", OptionID: "o1"},
	}))
}
