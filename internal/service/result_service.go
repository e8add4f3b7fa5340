package service

import (
	"context"

	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

type ResultService struct {
	polls repository.PollRepository
}

func NewResultService(polls repository.PollRepository) *ResultService {
	return &ResultService{polls: polls}
}

// Compute tallies the vote ledger into per-(field, option) counts joined to
// the poll's current field names and option labels. The output is sparse:
// pairs nobody picked produce no row. Rows appear in first-vote order. Pure
// read; the ledger is never touched.
func (s *ResultService) Compute(ctx context.Context, pollID string) ([]models.ResultRow, error) {
	poll, err := s.polls.Get(ctx, pollID)
	if err == repository.ErrNotFound {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}

	votes, err := s.polls.Votes(ctx, pollID)
	if err != nil {
		return nil, err
	}

	type pair struct{ fieldID, optionID string }
	counts := make(map[pair]int64)
	order := make([]pair, 0)
	for _, vote := range votes {
		for _, sel := range vote.Vote {
			p := pair{sel.FieldID, sel.OptionID}
			if _, seen := counts[p]; !seen {
				order = append(order, p)
			}
			counts[p]++
		}
	}

	optionLabels := make(map[string]string)
	fieldNames := make(map[string]string, len(poll.Fields))
	for _, field := range poll.Fields {
		fieldNames[field.ID] = field.Name
		for _, option := range field.Options {
			optionLabels[option.ID] = option.Option
		}
	}

	rows := make([]models.ResultRow, 0, len(order))
	for _, p := range order {
		fieldName, fieldOK := fieldNames[p.fieldID]
		optionLabel, optionOK := optionLabels[p.optionID]
		if !fieldOK || !optionOK {
			// Selections that no longer resolve against the poll definition
			// cannot be joined to a name; skip them.
			continue
		}
		rows = append(rows, models.ResultRow{
			Field:  fieldName,
			Option: optionLabel,
			Count:  counts[p],
		})
	}
	return rows, nil
}
