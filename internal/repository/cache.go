package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thiagojorgelins/to-do-list/internal/model"
)

var ErrCacheMiss = errors.New("cache miss")

const userCachePrefix = "user:email:"

// cachedUser is the Redis representation of a user. The password hash is never cached.
type cachedUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserCache keeps recently resolved users in Redis, keyed by email.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	opt.PoolSize = 20
	opt.MinIdleConns = 2
	opt.DialTimeout = 2 * time.Second
	opt.ReadTimeout = 500 * time.Millisecond
	opt.WriteTimeout = 500 * time.Millisecond
	opt.ConnMaxIdleTime = 5 * time.Minute

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// NewUserCache creates a UserCache whose entries expire after ttl.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{client: client, ttl: ttl}
}

// Get returns the cached user for email, or ErrCacheMiss.
func (c *UserCache) Get(ctx context.Context, email string) (*model.User, error) {
	raw, err := c.client.Get(ctx, userCachePrefix+email).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return decodeUser(raw)
}

// Set stores user under its email.
func (c *UserCache) Set(ctx context.Context, user *model.User) error {
	raw, err := encodeUser(user)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, userCachePrefix+user.Email, raw, c.ttl).Err()
}

func encodeUser(user *model.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
}

func decodeUser(raw []byte) (*model.User, error) {
	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, fmt.Errorf("decoding cached user: %w", err)
	}
	return &model.User{
		ID:        cu.ID,
		Username:  cu.Username,
		Email:     cu.Email,
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}, nil
}
