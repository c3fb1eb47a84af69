package auth

import (
	"context"
	"errors"
	"time"

	"github.com/digitalogic/catalog/internal/database"
	"github.com/digitalogic/catalog/internal/user"
	"github.com/digitalogic/catalog/pkg/auth"
	"github.com/digitalogic/catalog/pkg/parser"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Signup(ctx context.Context, input SignupInput, userAgent, ip string) (*SignupResult, *rest.ApiErr)
	Signin(ctx context.Context, credentials SigninInput, userAgent, ip string) (*SigninResult, *rest.ApiErr)
	RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*TokenPair, *rest.ApiErr)
	Logout(ctx context.Context, refreshToken string) error
	LogoutAll(ctx context.Context, userID string) error
}

type service struct {
	users           user.Repository
	tokenRepo       TokenRepository
	jwtSecret       string
	accessTokenExp  int
	refreshTokenExp int
}

func NewService(users user.Repository, tokenRepo TokenRepository, jwtSecret string, accessExp, refreshExp int) Service {
	return &service{
		users:           users,
		tokenRepo:       tokenRepo,
		jwtSecret:       jwtSecret,
		accessTokenExp:  accessExp,
		refreshTokenExp: refreshExp,
	}
}

func (s *service) Signup(ctx context.Context, input SignupInput, userAgent, ip string) (*SignupResult, *rest.ApiErr) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to hash password")
	}

	created, err := s.users.CreateUser(ctx, user.CreateUserParams{
		Name:       input.Name,
		Email:      input.Email,
		Password:   string(hashedPassword),
		Capability: auth.CapabilityManageCatalog,
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok {
			return nil, database.GetError(pgErr, pgErr.ConstraintName)
		}
		return nil, rest.NewInternalServerError("failed to create user")
	}

	userID, _ := parser.PgUUIDToString(created.ID)
	tokens, err := s.generateTokenPair(ctx, userID, created.Email, created.Capability, userAgent, ip)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to generate tokens")
	}

	return &SignupResult{
		User: SignupOutput{
			ID:         created.ID,
			Name:       created.Name,
			Email:      created.Email,
			Capability: created.Capability,
		},
		Tokens: tokens,
	}, nil
}

func (s *service) Signin(ctx context.Context, credentials SigninInput, userAgent, ip string) (*SigninResult, *rest.ApiErr) {
	found, err := s.users.FindByEmail(ctx, credentials.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, rest.NewUnauthorizedRequestError("invalid credentials")
		}
		return nil, rest.NewInternalServerError("internal server error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(credentials.Password)); err != nil {
		return nil, rest.NewUnauthorizedRequestError("invalid credentials")
	}

	userID, _ := parser.PgUUIDToString(found.ID)
	tokens, err := s.generateTokenPair(ctx, userID, found.Email, found.Capability, userAgent, ip)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to generate tokens")
	}

	return &SigninResult{
		User: SigninOutput{
			ID:         found.ID,
			Name:       found.Name,
			Email:      found.Email,
			Capability: found.Capability,
		},
		Tokens: tokens,
	}, nil
}

func (s *service) RefreshTokens(ctx context.Context, refreshToken, userAgent, ip string) (*TokenPair, *rest.ApiErr) {
	tokenHash := auth.HashToken(refreshToken)

	tokenData, err := s.tokenRepo.GetToken(ctx, tokenHash)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to validate token")
	}
	if tokenData == nil {
		return nil, rest.NewUnauthorizedRequestError("refresh token invalid or expired")
	}

	userID, err := parseUUID(tokenData.UserID)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to parse user id")
	}

	found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, rest.NewUnauthorizedRequestError("user not found")
	}

	// Rotation: the presented token is single use.
	if err := s.tokenRepo.RevokeToken(ctx, tokenHash); err != nil {
		return nil, rest.NewInternalServerError("failed to revoke old token")
	}

	newRefreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, rest.NewInternalServerError("failed to generate new token")
	}

	ttl := time.Duration(s.refreshTokenExp) * time.Second
	if err := s.tokenRepo.StoreToken(ctx, auth.HashToken(newRefreshToken), tokenData.UserID, tokenData.FamilyID, userAgent, ip, ttl); err != nil {
		return nil, rest.NewInternalServerError("failed to store new token")
	}

	jwtClaims := auth.NewClaims(tokenData.UserID, found.Email, found.Capability, s.accessTokenExp)
	accessToken, err := auth.GenerateJWT(jwtClaims, s.jwtSecret)
	if err != nil {
		return nil, rest.NewInternalServerError("failed to generate access token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

func (s *service) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.RevokeToken(ctx, auth.HashToken(refreshToken))
}

func (s *service) LogoutAll(ctx context.Context, userID string) error {
	return s.tokenRepo.RevokeAllUserTokens(ctx, userID)
}

func (s *service) generateTokenPair(ctx context.Context, userID, email, capability, userAgent, ip string) (*TokenPair, error) {
	jwtClaims := auth.NewClaims(userID, email, capability, s.accessTokenExp)
	accessToken, err := auth.GenerateJWT(jwtClaims, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(s.refreshTokenExp) * time.Second
	if err := s.tokenRepo.StoreToken(ctx, auth.HashToken(refreshToken), userID, auth.GenerateFamilyID(), userAgent, ip, ttl); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func parseUUID(id string) (pgtype.UUID, error) {
	var pgUUID pgtype.UUID
	err := pgUUID.Scan(id)
	return pgUUID, err
}
