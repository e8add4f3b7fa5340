package service

import "errors"

// Error kinds reported to clients. The HTTP layer maps each to a status
// code; everything else coming out of a service is treated as internal and
// reported with a generic message.
var (
	ErrPollNotFound = errors.New("Poll not found")
	ErrUserNotFound = errors.New("User not found")

	ErrVotingClosed = errors.New("Voting is closed for this poll")
	ErrAlreadyVoted = errors.New("You have already voted in this poll")
	ErrNotInvited   = errors.New("Access denied. This poll is invite-only")

	ErrPollActive = errors.New("Cannot update an active poll")
	ErrNotOwner   = errors.New("Not Authorized")

	ErrEmailTaken         = errors.New("Email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrEmailNotConfirmed  = errors.New("Email not confirmed. Please check your email and confirm your account")
	ErrInvalidToken       = errors.New("Invalid Token")

	// ErrValidation is wrapped by every 400-class input failure.
	ErrValidation = errors.New("validation failed")
)
