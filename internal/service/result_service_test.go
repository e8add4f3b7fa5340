package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

func TestComputeResults_TalliesByPair(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	votes := NewVoteService(store, zap.NewNop())
	results := NewResultService(store)

	poll := models.Poll{
		ID:     "poll-1",
		Active: true,
		Fields: []models.PollField{
			{ID: "f1", Name: "Restaurant", Options: []models.PollOption{
				{ID: "oa", Option: "Sushi"},
				{ID: "ob", Option: "Pizza"},
			}},
		},
	}
	require.NoError(t, store.Create(ctx, &poll))

	cast := func(userID, optionID string) {
		t.Helper()
		user := &models.User{ID: userID, Email: userID + "@x.io"}
		require.NoError(t, votes.Cast(ctx, "poll-1", user, []models.Selection{
			{FieldID: "f1", OptionID: optionID},
		}))
	}
	cast("u1", "oa")
	cast("u2", "oa")
	cast("u3", "ob")

	rows, err := results.Compute(ctx, "poll-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.ResultRow{Field: "Restaurant", Option: "Sushi", Count: 2}, rows[0])
	assert.Equal(t, models.ResultRow{Field: "Restaurant", Option: "Pizza", Count: 1}, rows[1])
}

// Pairs nobody picked produce no row at all, not a zero-count row.
func TestComputeResults_SparseRows(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	results := NewResultService(store)

	poll := models.Poll{
		ID:     "poll-1",
		Active: true,
		Fields: []models.PollField{
			{ID: "f1", Name: "Restaurant", Options: []models.PollOption{
				{ID: "oa", Option: "Sushi"},
				{ID: "ob", Option: "Pizza"},
				{ID: "oc", Option: "Tacos"},
			}},
		},
	}
	require.NoError(t, store.Create(ctx, &poll))
	require.NoError(t, store.AppendVote(ctx, "poll-1", models.Vote{
		UserID: "u1",
		Vote:   []models.Selection{{FieldID: "f1", OptionID: "ob"}},
	}))

	rows, err := results.Compute(ctx, "poll-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Pizza", rows[0].Option)
}

func TestComputeResults_EmptyLedger(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	results := NewResultService(store)

	require.NoError(t, store.Create(ctx, &models.Poll{ID: "poll-1"}))

	rows, err := results.Compute(ctx, "poll-1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestComputeResults_MissingPoll(t *testing.T) {
	results := NewResultService(repository.NewMemoryStore())
	_, err := results.Compute(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrPollNotFound)
}

// Ledger entries that no longer resolve against the poll definition (the
// field or option was edited away) are skipped rather than rendered with an
// empty name.
func TestComputeResults_SkipsUnresolvablePairs(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	results := NewResultService(store)

	poll := models.Poll{
		ID: "poll-1",
		Fields: []models.PollField{
			{ID: "f1", Name: "Restaurant", Options: []models.PollOption{
				{ID: "oa", Option: "Sushi"},
			}},
		},
	}
	require.NoError(t, store.Create(ctx, &poll))
	require.NoError(t, store.AppendVote(ctx, "poll-1", models.Vote{
		UserID: "u1",
		Vote: []models.Selection{
			{FieldID: "f1", OptionID: "oa"},
			{FieldID: "gone", OptionID: "oa"},
			{FieldID: "f1", OptionID: "gone"},
		},
	}))

	rows, err := results.Compute(ctx, "poll-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ResultRow{Field: "Restaurant", Option: "Sushi", Count: 1}, rows[0])
}
