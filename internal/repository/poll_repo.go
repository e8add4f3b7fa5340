package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/models"
)

const pollIndexKey = "polls"

func pollKey(pollID string) string        { return "poll:" + pollID }
func pollVotersKey(pollID string) string  { return "poll:" + pollID + ":voters" }
func pollVotesKey(pollID string) string   { return "poll:" + pollID + ":votes" }
func pollInvitedKey(pollID string) string { return "poll:" + pollID + ":invited" }
func creatorIndexKey(userID string) string {
	return "polls:creator:" + userID
}

// RedisPollRepository stores each poll as a JSON document plus three side
// keys: the voter set, the append-only vote list and the invite set. Keeping
// the ledger outside the document means the sweep's active-flag rewrite never
// touches cast votes.
type RedisPollRepository struct {
	rdb *redis.Client
	log *zap.Logger
}

func NewRedisPollRepository(rdb *redis.Client, log *zap.Logger) *RedisPollRepository {
	return &RedisPollRepository{rdb: rdb, log: log}
}

func (r *RedisPollRepository) Create(ctx context.Context, poll *models.Poll) error {
	data, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("marshal poll: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, pollKey(poll.ID), data, 0)
	pipe.SAdd(ctx, pollIndexKey, poll.ID)
	pipe.SAdd(ctx, creatorIndexKey(poll.CreatedBy), poll.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store poll: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) Get(ctx context.Context, pollID string) (*models.Poll, error) {
	data, err := r.rdb.Get(ctx, pollKey(pollID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch poll: %w", err)
	}

	var poll models.Poll
	if err := json.Unmarshal(data, &poll); err != nil {
		return nil, fmt.Errorf("decode poll %s: %w", pollID, err)
	}
	return &poll, nil
}

func (r *RedisPollRepository) Save(ctx context.Context, poll *models.Poll) error {
	data, err := json.Marshal(poll)
	if err != nil {
		return fmt.Errorf("marshal poll: %w", err)
	}
	if err := r.rdb.Set(ctx, pollKey(poll.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("store poll: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) Delete(ctx context.Context, pollID string) error {
	poll, err := r.Get(ctx, pollID)
	if err != nil {
		return err
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, pollKey(pollID), pollVotersKey(pollID), pollVotesKey(pollID), pollInvitedKey(pollID))
	pipe.SRem(ctx, pollIndexKey, pollID)
	pipe.SRem(ctx, creatorIndexKey(poll.CreatedBy), pollID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) All(ctx context.Context) ([]models.Poll, error) {
	ids, err := r.rdb.SMembers(ctx, pollIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list polls: %w", err)
	}
	return r.collect(ctx, ids)
}

func (r *RedisPollRepository) ByCreator(ctx context.Context, userID string) ([]models.Poll, error) {
	ids, err := r.rdb.SMembers(ctx, creatorIndexKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list polls by creator: %w", err)
	}
	return r.collect(ctx, ids)
}

func (r *RedisPollRepository) collect(ctx context.Context, ids []string) ([]models.Poll, error) {
	polls := make([]models.Poll, 0, len(ids))
	for _, id := range ids {
		poll, err := r.Get(ctx, id)
		if err == ErrNotFound {
			// Index can briefly point at a deleted poll.
			r.log.Debug("skipping dangling poll index entry", zap.String("poll_id", id))
			continue
		}
		if err != nil {
			return nil, err
		}
		polls = append(polls, *poll)
	}
	return polls, nil
}

func (r *RedisPollRepository) HasVoted(ctx context.Context, pollID, userID string) (bool, error) {
	voted, err := r.rdb.SIsMember(ctx, pollVotersKey(pollID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("check voter set: %w", err)
	}
	return voted, nil
}

// AdmitVoter is the single point that enforces one vote per (poll, user).
// SADD reports how many members were newly added, which makes admission a
// conditional insert rather than a read-then-append.
func (r *RedisPollRepository) AdmitVoter(ctx context.Context, pollID, userID string) (bool, error) {
	added, err := r.rdb.SAdd(ctx, pollVotersKey(pollID), userID).Result()
	if err != nil {
		return false, fmt.Errorf("admit voter: %w", err)
	}
	return added == 1, nil
}

func (r *RedisPollRepository) RetractVoter(ctx context.Context, pollID, userID string) error {
	if err := r.rdb.SRem(ctx, pollVotersKey(pollID), userID).Err(); err != nil {
		return fmt.Errorf("retract voter: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) AppendVote(ctx context.Context, pollID string, vote models.Vote) error {
	data, err := json.Marshal(vote)
	if err != nil {
		return fmt.Errorf("marshal vote: %w", err)
	}
	if err := r.rdb.RPush(ctx, pollVotesKey(pollID), data).Err(); err != nil {
		return fmt.Errorf("append vote: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) Votes(ctx context.Context, pollID string) ([]models.Vote, error) {
	entries, err := r.rdb.LRange(ctx, pollVotesKey(pollID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read vote ledger: %w", err)
	}

	votes := make([]models.Vote, 0, len(entries))
	for _, entry := range entries {
		var vote models.Vote
		if err := json.Unmarshal([]byte(entry), &vote); err != nil {
			return nil, fmt.Errorf("decode vote record: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

func (r *RedisPollRepository) AddInvited(ctx context.Context, pollID string, emails []string) error {
	members := make([]interface{}, 0, len(emails))
	for _, email := range emails {
		members = append(members, strings.ToLower(email))
	}
	if len(members) == 0 {
		return nil
	}
	if err := r.rdb.SAdd(ctx, pollInvitedKey(pollID), members...).Err(); err != nil {
		return fmt.Errorf("add invited voters: %w", err)
	}
	return nil
}

func (r *RedisPollRepository) IsInvited(ctx context.Context, pollID, email string) (bool, error) {
	invited, err := r.rdb.SIsMember(ctx, pollInvitedKey(pollID), strings.ToLower(email)).Result()
	if err != nil {
		return false, fmt.Errorf("check invite set: %w", err)
	}
	return invited, nil
}

func (r *RedisPollRepository) Invited(ctx context.Context, pollID string) ([]string, error) {
	emails, err := r.rdb.SMembers(ctx, pollInvitedKey(pollID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read invite set: %w", err)
	}
	return emails, nil
}
