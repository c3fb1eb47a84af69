package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshTokenPrefix = "digitalogic:refresh_token:"
	tokenFamilyPrefix  = "digitalogic:token_family:"
	userTokensPrefix   = "digitalogic:user_tokens:"
)

// TokenData is what we know about an outstanding refresh token. Tokens are
// grouped into families so one stolen token can take down its whole rotation
// chain.
type TokenData struct {
	UserID    string    `json:"user_id"`
	FamilyID  string    `json:"family_id"`
	CreatedAt time.Time `json:"created_at"`
	UserAgent string    `json:"user_agent"`
	IP        string    `json:"ip"`
}

type TokenRepository interface {
	StoreToken(ctx context.Context, tokenHash, userID, familyID, userAgent, ip string, ttl time.Duration) error
	GetToken(ctx context.Context, tokenHash string) (*TokenData, error)
	RevokeToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID string) error
}

type tokenRepository struct {
	client *redis.Client
}

func NewTokenRepository(client *redis.Client) TokenRepository {
	return &tokenRepository{client: client}
}

func (r *tokenRepository) StoreToken(ctx context.Context, tokenHash, userID, familyID, userAgent, ip string, ttl time.Duration) error {
	data, err := json.Marshal(TokenData{
		UserID:    userID,
		FamilyID:  familyID,
		CreatedAt: time.Now(),
		UserAgent: userAgent,
		IP:        ip,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal token data: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, refreshTokenPrefix+tokenHash, data, ttl)
	pipe.SAdd(ctx, tokenFamilyPrefix+familyID, tokenHash)
	pipe.Expire(ctx, tokenFamilyPrefix+familyID, ttl)
	pipe.SAdd(ctx, userTokensPrefix+userID, tokenHash)
	pipe.Expire(ctx, userTokensPrefix+userID, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *tokenRepository) GetToken(ctx context.Context, tokenHash string) (*TokenData, error) {
	data, err := r.client.Get(ctx, refreshTokenPrefix+tokenHash).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var tokenData TokenData
	if err := json.Unmarshal([]byte(data), &tokenData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token data: %w", err)
	}
	return &tokenData, nil
}

func (r *tokenRepository) RevokeToken(ctx context.Context, tokenHash string) error {
	tokenData, err := r.GetToken(ctx, tokenHash)
	if err != nil {
		return err
	}
	if tokenData == nil {
		return nil
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, refreshTokenPrefix+tokenHash)
	pipe.SRem(ctx, tokenFamilyPrefix+tokenData.FamilyID, tokenHash)
	pipe.SRem(ctx, userTokensPrefix+tokenData.UserID, tokenHash)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *tokenRepository) RevokeAllUserTokens(ctx context.Context, userID string) error {
	userKey := userTokensPrefix + userID

	tokens, err := r.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return fmt.Errorf("failed to get user tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}

	families := make(map[string]bool)
	pipe := r.client.Pipeline()
	for _, tokenHash := range tokens {
		tokenData, err := r.GetToken(ctx, tokenHash)
		if err == nil && tokenData != nil {
			families[tokenData.FamilyID] = true
		}
		pipe.Del(ctx, refreshTokenPrefix+tokenHash)
	}
	pipe.Del(ctx, userKey)
	for familyID := range families {
		pipe.Del(ctx, tokenFamilyPrefix+familyID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to revoke all user tokens: %w", err)
	}
	return nil
}
