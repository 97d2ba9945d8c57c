package verifier

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	id "verireg/pkg/domain"
)

const defaultSetKey = "verireg:verifiers"

// RedisStore keeps the verifier set in a Redis set. Membership changes are
// not part of a PostgreSQL transaction; they take effect immediately.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

// NewRedis creates a store backed by the set at key. An empty key uses the
// default.
func NewRedis(client redis.UniversalClient, key string) *RedisStore {
	if key == "" {
		key = defaultSetKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Add(ctx context.Context, account id.AccountID) (bool, error) {
	n, err := s.client.SAdd(ctx, s.key, account.String()).Result()
	if err != nil {
		return false, fmt.Errorf("add verifier: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Remove(ctx context.Context, account id.AccountID) (bool, error) {
	n, err := s.client.SRem(ctx, s.key, account.String()).Result()
	if err != nil {
		return false, fmt.Errorf("remove verifier: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Contains(ctx context.Context, account id.AccountID) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, account.String()).Result()
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) List(ctx context.Context) ([]id.AccountID, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("list verifiers: %w", err)
	}
	slices.Sort(members)
	out := make([]id.AccountID, 0, len(members))
	for _, m := range members {
		out = append(out, id.AccountID(m))
	}
	return out, nil
}
