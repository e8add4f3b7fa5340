package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/votetrack/votetrack/internal/models"
)

// MemoryStore implements PollRepository and UserRepository with in-process
// maps. Tests use it in place of Redis; the admission semantics (conditional
// voter insert, invite-set merge) match the Redis implementation exactly.
type MemoryStore struct {
	mu      sync.RWMutex
	polls   map[string]models.Poll
	voters  map[string]map[string]bool
	votes   map[string][]models.Vote
	invited map[string]map[string]bool
	users   map[string]models.User
	emails  map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		polls:   make(map[string]models.Poll),
		voters:  make(map[string]map[string]bool),
		votes:   make(map[string][]models.Vote),
		invited: make(map[string]map[string]bool),
		users:   make(map[string]models.User),
		emails:  make(map[string]string),
	}
}

func (s *MemoryStore) Create(ctx context.Context, poll *models.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.ID] = *poll
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, pollID string) (*models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[pollID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := poll
	return &copied, nil
}

func (s *MemoryStore) Save(ctx context.Context, poll *models.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.ID] = *poll
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, pollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.polls[pollID]; !ok {
		return ErrNotFound
	}
	delete(s.polls, pollID)
	delete(s.voters, pollID)
	delete(s.votes, pollID)
	delete(s.invited, pollID)
	return nil
}

func (s *MemoryStore) All(ctx context.Context) ([]models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	polls := make([]models.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		polls = append(polls, poll)
	}
	return polls, nil
}

func (s *MemoryStore) ByCreator(ctx context.Context, userID string) ([]models.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	polls := make([]models.Poll, 0)
	for _, poll := range s.polls {
		if poll.CreatedBy == userID {
			polls = append(polls, poll)
		}
	}
	return polls, nil
}

func (s *MemoryStore) HasVoted(ctx context.Context, pollID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voters[pollID][userID], nil
}

func (s *MemoryStore) AdmitVoter(ctx context.Context, pollID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voters[pollID] == nil {
		s.voters[pollID] = make(map[string]bool)
	}
	if s.voters[pollID][userID] {
		return false, nil
	}
	s.voters[pollID][userID] = true
	return true, nil
}

func (s *MemoryStore) RetractVoter(ctx context.Context, pollID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voters[pollID], userID)
	return nil
}

func (s *MemoryStore) AppendVote(ctx context.Context, pollID string, vote models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes[pollID] = append(s.votes[pollID], vote)
	return nil
}

func (s *MemoryStore) Votes(ctx context.Context, pollID string) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vote(nil), s.votes[pollID]...), nil
}

func (s *MemoryStore) AddInvited(ctx context.Context, pollID string, emails []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.invited[pollID] == nil {
		s.invited[pollID] = make(map[string]bool)
	}
	for _, email := range emails {
		s.invited[pollID][strings.ToLower(email)] = true
	}
	return nil
}

func (s *MemoryStore) IsInvited(ctx context.Context, pollID, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invited[pollID][strings.ToLower(email)], nil
}

func (s *MemoryStore) Invited(ctx context.Context, pollID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emails := make([]string, 0, len(s.invited[pollID]))
	for email := range s.invited[pollID] {
		emails = append(emails, email)
	}
	return emails, nil
}

// User methods.

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.emails[email]; taken {
		return ErrDuplicate
	}
	s.emails[email] = user.ID
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) SaveUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) ByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *MemoryStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.emails[strings.ToLower(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.ByID(ctx, id)
}

func (s *MemoryStore) ByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.ConfirmationToken != "" && user.ConfirmationToken == token {
			copied := user
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

// Users returns a MemoryStore view satisfying UserRepository; the store's
// user methods are named CreateUser/SaveUser to avoid clashing with the poll
// methods on the same receiver.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

type memoryUsers struct{ store *MemoryStore }

func (m memoryUsers) Create(ctx context.Context, user *models.User) error {
	return m.store.CreateUser(ctx, user)
}
func (m memoryUsers) Save(ctx context.Context, user *models.User) error {
	return m.store.SaveUser(ctx, user)
}
func (m memoryUsers) ByID(ctx context.Context, id string) (*models.User, error) {
	return m.store.ByID(ctx, id)
}
func (m memoryUsers) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.store.ByEmail(ctx, email)
}
func (m memoryUsers) ByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	return m.store.ByConfirmationToken(ctx, token)
}
