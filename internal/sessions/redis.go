package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"pulse-service/pkg/response"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store keeps session tokens in redis with a TTL. Tokens are opaque uuids;
// the value is the owning user id.
type Store struct {
	client *redis.Client
}

func New(redisAddr string) (*Store, error) {
	const op = "sessions.New"

	client := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Create(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	const op = "sessions.Store.Create"

	token := uuid.NewString()

	key := fmt.Sprintf("session:%s", token)
	if err := s.client.Set(ctx, key, strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// ValidateSession resolves a token back to its user id. Unknown or expired
// tokens map to response.ErrUnauthorized.
func (s *Store) ValidateSession(ctx context.Context, token string) (int64, error) {
	const op = "sessions.Store.ValidateSession"

	key := fmt.Sprintf("session:%s", token)

	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return userID, nil
}

func (s *Store) Delete(ctx context.Context, token string) error {
	const op = "sessions.Store.Delete"

	key := fmt.Sprintf("session:%s", token)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
