package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RefreshStore keeps opaque refresh tokens in Redis, keyed by token, valued
// by user id.
type RefreshStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRefreshStore(client *redis.Client, ttl time.Duration) *RefreshStore {
	return &RefreshStore{client: client, ttl: ttl}
}

func (s *RefreshStore) key(token string) string {
	return "staybook:refresh:" + token
}

// Issue creates and stores a new refresh token for userID.
func (s *RefreshStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Consume returns the owner of token and deletes it, so each refresh token
// works once.
func (s *RefreshStore) Consume(ctx context.Context, token string) (int64, error) {
	if _, err := uuid.Parse(token); err != nil {
		return 0, ErrInvalidToken
	}
	val, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// Revoke deletes token. Unknown tokens are ignored.
func (s *RefreshStore) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
