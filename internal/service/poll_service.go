package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

// OptionInput and FieldInput describe a poll's structure as submitted by the
// creator. IDs are assigned server-side.
type OptionInput struct {
	Option string `json:"option" binding:"required"`
	Image  string `json:"image"`
}

type FieldInput struct {
	Name    string        `json:"name" binding:"required"`
	Options []OptionInput `json:"options" binding:"required,min=1,dive"`
}

type CreatePollInput struct {
	Name           string       `json:"name" binding:"required"`
	Description    string       `json:"description" binding:"required"`
	Fields         []FieldInput `json:"fields" binding:"required,min=1,dive"`
	StartDate      *time.Time   `json:"startDate"`
	ExpirationDate time.Time    `json:"expirationDate" binding:"required"`
	IsInviteOnly   bool         `json:"isInviteOnly"`
}

// UpdatePollInput carries the only fields a creator may change. Pointers
// distinguish "not provided" from zero values.
type UpdatePollInput struct {
	Name         *string      `json:"name"`
	Description  *string      `json:"description"`
	Fields       []FieldInput `json:"fields" binding:"omitempty,dive"`
	IsInviteOnly *bool        `json:"isInviteOnly"`
}

type PollService struct {
	polls repository.PollRepository
	log   *zap.Logger
}

func NewPollService(polls repository.PollRepository, log *zap.Logger) *PollService {
	return &PollService{polls: polls, log: log}
}

// Create validates the voting window, assigns ids and persists the poll with
// its computed active state.
func (s *PollService) Create(ctx context.Context, creatorID string, input CreatePollInput) (*models.Poll, error) {
	now := time.Now()

	start := now
	if input.StartDate != nil {
		if now.After(*input.StartDate) {
			return nil, fmt.Errorf("%w: Active date must be in the future", ErrValidation)
		}
		start = *input.StartDate
	}
	if !input.ExpirationDate.After(now) {
		return nil, fmt.Errorf("%w: Expiration date must be in the future", ErrValidation)
	}
	if !input.ExpirationDate.After(start) {
		return nil, fmt.Errorf("%w: Expiration date must be after the start date", ErrValidation)
	}

	poll := &models.Poll{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(input.Name),
		Description:    strings.TrimSpace(input.Description),
		Fields:         buildFields(input.Fields),
		StartDate:      start,
		ExpirationDate: input.ExpirationDate,
		Active:         ComputeActiveState(start, input.ExpirationDate, now),
		IsInviteOnly:   input.IsInviteOnly,
		CreatedBy:      creatorID,
		CreatedAt:      now,
	}

	if err := s.polls.Create(ctx, poll); err != nil {
		return nil, err
	}
	s.log.Info("poll created",
		zap.String("poll_id", poll.ID),
		zap.String("created_by", creatorID),
		zap.Bool("active", poll.Active),
		zap.Bool("invite_only", poll.IsInviteOnly))
	return poll, nil
}

// Update applies the allowed subset of fields. Order of checks matters: a
// missing poll reports NotFound, an active poll rejects the edit before
// ownership is considered.
func (s *PollService) Update(ctx context.Context, pollID, userID string, input UpdatePollInput) (*models.Poll, error) {
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}

	if !CanEdit(poll) {
		return nil, ErrPollActive
	}
	if poll.CreatedBy != userID {
		return nil, ErrNotOwner
	}

	if input.Name != nil {
		poll.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		poll.Description = strings.TrimSpace(*input.Description)
	}
	if input.Fields != nil {
		poll.Fields = buildFields(input.Fields)
	}
	if input.IsInviteOnly != nil {
		poll.IsInviteOnly = *input.IsInviteOnly
	}
	poll.Active = ComputeActiveState(poll.StartDate, poll.ExpirationDate, time.Now())

	if err := s.polls.Save(ctx, poll); err != nil {
		return nil, err
	}
	s.log.Info("poll updated", zap.String("poll_id", poll.ID), zap.String("updated_by", userID))
	return poll, nil
}

// Delete removes a poll and its ledger. Creator-only; the active state does
// not block deletion.
func (s *PollService) Delete(ctx context.Context, pollID, userID string) error {
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return ErrPollNotFound
	}
	if err != nil {
		return err
	}
	if poll.CreatedBy != userID {
		return ErrNotOwner
	}

	if err := s.polls.Delete(ctx, pollID); err != nil {
		return err
	}
	s.log.Info("poll deleted", zap.String("poll_id", pollID), zap.String("deleted_by", userID))
	return nil
}

func (s *PollService) Get(ctx context.Context, pollID string) (*models.Poll, error) {
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return nil, ErrPollNotFound
	}
	return poll, err
}

func (s *PollService) All(ctx context.Context) ([]models.Poll, error) {
	return s.polls.All(ctx)
}

func (s *PollService) ByCreator(ctx context.Context, userID string) ([]models.Poll, error) {
	return s.polls.ByCreator(ctx, userID)
}

// AddVoters merges emails into the poll's invite list. Creator-only. Calling
// it repeatedly is a set union, never a replacement.
func (s *PollService) AddVoters(ctx context.Context, pollID, userID string, emails []string) error {
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return ErrPollNotFound
	}
	if err != nil {
		return err
	}
	if poll.CreatedBy != userID {
		return ErrNotOwner
	}
	if len(emails) == 0 {
		return fmt.Errorf("%w: Please provide at least one email", ErrValidation)
	}

	if err := s.polls.AddInvited(ctx, pollID, emails); err != nil {
		return err
	}
	s.log.Info("invited voters added",
		zap.String("poll_id", pollID),
		zap.Int("emails", len(emails)))
	return nil
}

func buildFields(inputs []FieldInput) []models.PollField {
	fields := make([]models.PollField, 0, len(inputs))
	for _, fi := range inputs {
		field := models.PollField{
			ID:   uuid.New().String(),
			Name: strings.TrimSpace(fi.Name),
		}
		for _, oi := range fi.Options {
			field.Options = append(field.Options, models.PollOption{
				ID:     uuid.New().String(),
				Option: strings.TrimSpace(oi.Option),
				Image:  oi.Image,
			})
		}
		fields = append(fields, field)
	}
	return fields
}
