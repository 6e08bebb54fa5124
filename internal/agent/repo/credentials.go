package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pollenai/assistant/internal/agent/model"
	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// RedisCredentialStore keeps one hash per user with the externally-issued
// tokens. The login flow owns creation; the core only refreshes.
type RedisCredentialStore struct {
	rdb redis.Cmdable
}

func NewRedisCredentialStore(rdb redis.Cmdable) *RedisCredentialStore {
	return &RedisCredentialStore{rdb: rdb}
}

func (r *RedisCredentialStore) credKey(userID string) string {
	return fmt.Sprintf("credentials:%s", userID)
}

// Get returns nil (no error) when the user has no stored credential.
func (r *RedisCredentialStore) Get(ctx context.Context, userID string) (*model.UserCredential, error) {
	key := r.credKey(userID)
	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load credential from redis")
		return nil, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return &model.UserCredential{
		UserID:       userID,
		AccessToken:  fields["access_token"],
		RefreshToken: fields["refresh_token"],
		Email:        fields["email"],
		Name:         fields["name"],
	}, nil
}

// Put upserts the credential hash for the user.
func (r *RedisCredentialStore) Put(ctx context.Context, cred model.UserCredential) error {
	key := r.credKey(cred.UserID)
	err := r.rdb.HSet(ctx, key,
		"access_token", cred.AccessToken,
		"refresh_token", cred.RefreshToken,
		"email", cred.Email,
		"name", cred.Name,
	).Err()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save credential to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.CredentialStore = (*RedisCredentialStore)(nil)
