// Package otp provides an expiring one-time-code store backed by Redis.
//
// Codes are keyed by an opaque subject (typically "dealer:<phone>" or
// "customer:<phone>"), bcrypt-hashed before storage, and limited to a
// fixed number of verification attempts within their TTL.
package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"savdo/internal/core/apperror"
)

// Config holds one-time-code settings.
type Config struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

// DefaultConfig returns default code settings.
func DefaultConfig() Config {
	return Config{
		Length:      6,
		TTL:         5 * time.Minute,
		MaxAttempts: 5,
	}
}

// Store issues and verifies one-time codes.
type Store struct {
	client *redis.Client
	prefix string
	cfg    Config
}

// NewStore creates a store with an existing Redis client.
func NewStore(client *redis.Client, cfg Config) *Store {
	if cfg.Length == 0 {
		cfg = DefaultConfig()
	}
	return &Store{
		client: client,
		prefix: "otp:",
		cfg:    cfg,
	}
}

// Issue generates a fresh numeric code for the subject, replacing any
// previous one, and returns the plain code for delivery out of band.
func (s *Store) Issue(ctx context.Context, subject string) (string, error) {
	if subject == "" {
		return "", apperror.NewValidation("otp subject is required")
	}

	code, err := generateCode(s.cfg.Length)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.codeKey(subject), string(hash), s.cfg.TTL)
	pipe.Set(ctx, s.attemptsKey(subject), 0, s.cfg.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}

	return code, nil
}

// Verify checks the code for the subject. A successful verification
// consumes the code; failures count against the attempt limit.
func (s *Store) Verify(ctx context.Context, subject, code string) error {
	if subject == "" || code == "" {
		return apperror.NewValidation("otp subject and code are required")
	}

	hash, err := s.client.Get(ctx, s.codeKey(subject)).Result()
	if err == redis.Nil {
		return apperror.NewUnauthorized("code expired or not issued")
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	attempts, err := s.client.Incr(ctx, s.attemptsKey(subject)).Result()
	if err != nil {
		return fmt.Errorf("count attempt: %w", err)
	}
	if attempts > int64(s.cfg.MaxAttempts) {
		s.Invalidate(ctx, subject)
		return apperror.NewUnauthorized("too many attempts, request a new code")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return apperror.NewUnauthorized("invalid code")
	}

	return s.Invalidate(ctx, subject)
}

// Invalidate removes any outstanding code for the subject.
func (s *Store) Invalidate(ctx context.Context, subject string) error {
	return s.client.Del(ctx, s.codeKey(subject), s.attemptsKey(subject)).Err()
}

func (s *Store) codeKey(subject string) string {
	return s.prefix + subject
}

func (s *Store) attemptsKey(subject string) string {
	return s.prefix + subject + ":attempts"
}

// generateCode produces a zero-padded numeric code of the given length.
func generateCode(length int) (string, error) {
	max := big.NewInt(1)
	for i := 0; i < length; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}
