package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/redis/go-redis/v9"

	"github.com/votetrack/votetrack/internal/models"
)

func userKey(id string) string { return "user:" + id }
func emailIndexKey(email string) string {
	return "user:email:" + strings.ToLower(email)
}
func confirmIndexKey(token string) string { return "user:confirm:" + token }

// userHash is the flat string form a user takes inside a Redis hash.
type userHash struct {
	ID                string `mapstructure:"id"`
	Name              string `mapstructure:"name"`
	Email             string `mapstructure:"email"`
	Password          string `mapstructure:"password"`
	Roles             string `mapstructure:"roles"`
	EmailConfirmed    string `mapstructure:"email_confirmed"`
	ConfirmationToken string `mapstructure:"confirmation_token"`
}

// RedisUserRepository stores users as hashes with secondary indexes for the
// unique email and the pending confirmation token.
type RedisUserRepository struct {
	rdb *redis.Client
}

func NewRedisUserRepository(rdb *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{rdb: rdb}
}

// Create claims the email index first with SETNX so duplicate registrations
// lose deterministically, then writes the user hash.
func (r *RedisUserRepository) Create(ctx context.Context, user *models.User) error {
	claimed, err := r.rdb.SetNX(ctx, emailIndexKey(user.Email), user.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		return ErrDuplicate
	}
	return r.write(ctx, user)
}

func (r *RedisUserRepository) Save(ctx context.Context, user *models.User) error {
	return r.write(ctx, user)
}

func (r *RedisUserRepository) write(ctx context.Context, user *models.User) error {
	oldToken, err := r.rdb.HGet(ctx, userKey(user.ID), "confirmation_token").Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("read confirmation token: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, userKey(user.ID), map[string]interface{}{
		"id":                 user.ID,
		"name":               user.Name,
		"email":              strings.ToLower(user.Email),
		"password":           user.Password,
		"roles":              strings.Join(user.Roles, ","),
		"email_confirmed":    strconv.FormatBool(user.EmailConfirmed),
		"confirmation_token": user.ConfirmationToken,
	})
	// A retired or replaced token takes its index entry with it.
	if oldToken != "" && oldToken != user.ConfirmationToken {
		pipe.Del(ctx, confirmIndexKey(oldToken))
	}
	if user.ConfirmationToken != "" {
		pipe.Set(ctx, confirmIndexKey(user.ConfirmationToken), user.ID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

func (r *RedisUserRepository) ByID(ctx context.Context, id string) (*models.User, error) {
	data, err := r.rdb.HGetAll(ctx, userKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}

	var hash userHash
	if err := mapstructure.Decode(data, &hash); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}

	user := models.User{
		ID:                hash.ID,
		Name:              hash.Name,
		Email:             hash.Email,
		Password:          hash.Password,
		EmailConfirmed:    hash.EmailConfirmed == "true",
		ConfirmationToken: hash.ConfirmationToken,
	}
	if hash.Roles != "" {
		user.Roles = strings.Split(hash.Roles, ",")
	}
	return &user, nil
}

func (r *RedisUserRepository) ByEmail(ctx context.Context, email string) (*models.User, error) {
	id, err := r.rdb.Get(ctx, emailIndexKey(email)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve email: %w", err)
	}
	return r.ByID(ctx, id)
}

func (r *RedisUserRepository) ByConfirmationToken(ctx context.Context, token string) (*models.User, error) {
	id, err := r.rdb.Get(ctx, confirmIndexKey(token)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolve confirmation token: %w", err)
	}

	user, err := r.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The index entry outlives confirmation; only a live token matches.
	if user.ConfirmationToken != token {
		return nil, ErrNotFound
	}
	return user, nil
}
