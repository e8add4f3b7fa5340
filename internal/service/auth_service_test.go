package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/votetrack/votetrack/internal/mailer"
	"github.com/votetrack/votetrack/internal/models"
	"github.com/votetrack/votetrack/internal/repository"
)

func newAuthService(t *testing.T) (*AuthService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	log := zap.NewNop()
	return NewAuthService(store.Users(), mailer.NewLog(log), "test-secret", log), store
}

func TestRegisterLoginConfirmRoundTrip(t *testing.T) {
	svc, store := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Name:     "Ada",
		Email:    "Ada@X.io",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@x.io", user.Email)
	assert.Equal(t, []string{models.RoleRegularUser}, user.Roles)
	assert.False(t, user.EmailConfirmed)
	assert.NotEmpty(t, user.ConfirmationToken)
	assert.NotEqual(t, "hunter2hunter2", user.Password)

	// Unconfirmed accounts cannot log in, even with the right password.
	_, err = svc.Login(ctx, "ada@x.io", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrEmailNotConfirmed)

	require.NoError(t, svc.ConfirmEmail(ctx, user.ConfirmationToken))

	confirmed, err := store.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, confirmed.EmailConfirmed)
	assert.Empty(t, confirmed.ConfirmationToken)

	token, err := svc.Login(ctx, "ada@x.io", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	input := RegisterInput{Name: "Ada", Email: "ada@x.io", Password: "hunter2hunter2"}
	_, err := svc.Register(ctx, input)
	require.NoError(t, err)

	input.Name = "Other Ada"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "nobody@x.io", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@x.io", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.NoError(t, svc.ConfirmEmail(ctx, user.ConfirmationToken))

	_, err = svc.Login(ctx, "ada@x.io", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConfirmEmail_InvalidToken(t *testing.T) {
	svc, _ := newAuthService(t)
	assert.ErrorIs(t, svc.ConfirmEmail(context.Background(), "not-a-token"), ErrInvalidToken)
}

func TestResendConfirmation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ResendConfirmation(ctx, "nobody@x.io"), ErrUserNotFound)

	user, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@x.io", Password: "hunter2hunter2"})
	require.NoError(t, err)

	assert.NoError(t, svc.ResendConfirmation(ctx, "ada@x.io"))

	require.NoError(t, svc.ConfirmEmail(ctx, user.ConfirmationToken))
	err = svc.ResendConfirmation(ctx, "ada@x.io")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseToken_Rejections(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.ParseToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// A token signed with a different secret does not verify.
	other := NewAuthService(repository.NewMemoryStore().Users(), mailer.NewLog(zap.NewNop()), "other-secret", zap.NewNop())
	foreign, err := other.SignToken("u1")
	require.NoError(t, err)
	_, err = svc.ParseToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
