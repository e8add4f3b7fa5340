package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

type VoteService struct {
	polls repository.PollRepository
	log   *zap.Logger
}

func NewVoteService(polls repository.PollRepository, log *zap.Logger) *VoteService {
	return &VoteService{polls: polls, log: log}
}

// Cast runs the full admission pipeline for one vote: eligibility, payload
// validation against the poll's own schema, then the conditional ledger
// append. The eligibility checks run in a fixed order; the first failure is
// the one the caller sees.
func (s *VoteService) Cast(ctx context.Context, pollID string, user *models.User, selections []models.Selection) error {
	// 1. Poll must exist.
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return ErrPollNotFound
	}
	if err != nil {
		return err
	}

	// 2. Poll must be inside its voting window.
	if !poll.Active {
		return ErrVotingClosed
	}

	// 3. One vote per user. Checked here for error precedence; enforced for
	// real by the conditional insert below.
	voted, err := s.polls.HasVoted(ctx, pollID, user.ID)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}

	// 4. Invite-only polls require the user's email on the list.
	if poll.IsInviteOnly {
		invited, err := s.polls.IsInvited(ctx, pollID, user.Email)
		if err != nil {
			return err
		}
		if !invited {
			return ErrNotInvited
		}
	}

	if err := ValidateSelections(poll, selections); err != nil {
		return err
	}

	// Conditional insert: if another vote from the same user landed between
	// the check above and now, this reports false and nothing is appended.
	admitted, err := s.polls.AdmitVoter(ctx, pollID, user.ID)
	if err != nil {
		return err
	}
	if !admitted {
		return ErrAlreadyVoted
	}

	vote := models.Vote{
		UserID: user.ID,
		Vote:   selections,
		CastAt: time.Now(),
	}
	if err := s.polls.AppendVote(ctx, pollID, vote); err != nil {
		// The admission must not outlive a failed append, or the user's
		// retry would be refused as a duplicate while no vote exists.
		if rerr := s.polls.RetractVoter(ctx, pollID, user.ID); rerr != nil {
			s.log.Error("voter retraction failed",
				zap.String("poll_id", pollID),
				zap.String("user_id", user.ID),
				zap.Error(rerr))
		}
		return err
	}

	s.log.Info("vote cast",
		zap.String("poll_id", pollID),
		zap.String("user_id", user.ID),
		zap.Int("selections", len(selections)))
	return nil
}

// ValidateSelections checks every selection against the poll's field and
// option sets. Option ids are validated against the poll-global option set,
// not the paired field's options; a payload naming a real option under the
// wrong field is accepted. Rejection is wholesale: one bad reference fails
// the entire payload.
func ValidateSelections(poll *models.Poll, selections []models.Selection) error {
	if len(selections) == 0 {
		return fmt.Errorf("%w: Please provide at least one selection", ErrValidation)
	}

	fieldIDs := make(map[string]bool, len(poll.Fields))
	optionIDs := make(map[string]bool)
	for _, field := range poll.Fields {
		fieldIDs[field.ID] = true
		for _, option := range field.Options {
			optionIDs[option.ID] = true
		}
	}

	for _, sel := range selections {
		if !fieldIDs[sel.FieldID] {
			return fmt.Errorf("%w: Unknown field %s", ErrValidation, sel.FieldID)
		}
		if !optionIDs[sel.OptionID] {
			return fmt.Errorf("%w: Unknown option %s", ErrValidation, sel.OptionID)
		}
	}
	return nil
}
