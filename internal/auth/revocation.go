package auth

import (
	"context"
	"strconv"
	"time"

	"github.com/mkurbatov/jobhub/internal/tokens"
)

// KV is the minimal key/value contract the revocation store needs from its
// backend. Single-key operations are atomic by contract of that backend.
type KV interface {
	SetEx(ctx context.Context, key, val string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	SAdd(ctx context.Context, key, member string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Del(ctx context.Context, keys ...string) error
	ExpireGT(ctx context.Context, key string, ttl time.Duration) error
}

// RevocationStore tracks issued token ids so they can be revoked server-side.
// A jti present in the store is active; expiry removes it automatically, so
// an expired token can never be found active by omission.
type RevocationStore struct {
	kv KV
}

func NewRevocationStore(kv KV) *RevocationStore {
	return &RevocationStore{kv: kv}
}

func tokenKey(jti string) string { return "tokens:" + jti }
func userKey(userID uint) string { return "user_tokens:" + strconv.FormatUint(uint64(userID), 10) }

// Record stores jti -> user id with the token's remaining lifetime and adds
// the jti to the per-user index. The index TTL only ever grows, so it covers
// the longest-lived outstanding token.
func (s *RevocationStore) Record(ctx context.Context, claims *tokens.Claims) error {
	if claims == nil || claims.ExpiresAt == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	uid := strconv.FormatUint(uint64(claims.UserID), 10)
	if err := s.kv.SetEx(ctx, tokenKey(claims.ID), uid, ttl); err != nil {
		return err
	}
	if err := s.kv.SAdd(ctx, userKey(claims.UserID), claims.ID); err != nil {
		return err
	}
	return s.kv.ExpireGT(ctx, userKey(claims.UserID), ttl)
}

func (s *RevocationStore) IsActive(ctx context.Context, jti string) (bool, error) {
	return s.kv.Exists(ctx, tokenKey(jti))
}

// RevokeAll deletes every recorded token of the user, then the index itself.
func (s *RevocationStore) RevokeAll(ctx context.Context, userID uint) error {
	jtis, err := s.kv.SMembers(ctx, userKey(userID))
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, tokenKey(jti))
	}
	keys = append(keys, userKey(userID))
	return s.kv.Del(ctx, keys...)
}
