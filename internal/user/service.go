package user

import (
	"context"
	"errors"

	"github.com/digitalogic/catalog/internal/database"
	"github.com/digitalogic/catalog/pkg/rest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	FindByID(ctx context.Context, userID pgtype.UUID) (UserOutput, *rest.ApiErr)
	FindByEmail(ctx context.Context, email string) (User, *rest.ApiErr)
	UpdateUser(ctx context.Context, userID pgtype.UUID, input UpdateUserInput) (UserOutput, *rest.ApiErr)
}

type svc struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &svc{repo: repo}
}

func (s *svc) FindByID(ctx context.Context, userID pgtype.UUID) (UserOutput, *rest.ApiErr) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserOutput{}, rest.NewNotFoundError("user not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			return UserOutput{}, database.GetError(pgErr, pgErr.ColumnName)
		}
		return UserOutput{}, rest.NewInternalServerError("internal server error")
	}

	return toUserOutput(user), nil
}

func (s *svc) FindByEmail(ctx context.Context, email string) (User, *rest.ApiErr) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, rest.NewNotFoundError("user not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			return User{}, database.GetError(pgErr, pgErr.ColumnName)
		}
		return User{}, rest.NewInternalServerError("internal server error")
	}

	return user, nil
}

func (s *svc) UpdateUser(ctx context.Context, userID pgtype.UUID, input UpdateUserInput) (UserOutput, *rest.ApiErr) {
	params := UpdateUserParams{
		ID: userID,
	}

	if input.Name != nil {
		params.Name = pgtype.Text{String: *input.Name, Valid: true}
	}

	if input.Email != nil {
		params.Email = pgtype.Text{String: *input.Email, Valid: true}
	}

	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return UserOutput{}, rest.NewInternalServerError("failed to hash password")
		}
		params.Password = pgtype.Text{String: string(hashedPassword), Valid: true}
	}

	user, err := s.repo.UpdateUser(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserOutput{}, rest.NewNotFoundError("user not found")
		}
		if pgErr, ok := err.(*pgconn.PgError); ok {
			return UserOutput{}, database.GetError(pgErr, pgErr.ConstraintName)
		}
		return UserOutput{}, rest.NewInternalServerError("internal server error")
	}

	return toUserOutput(user), nil
}

func toUserOutput(user User) UserOutput {
	return UserOutput{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Capability: user.Capability,
		CreatedAt:  user.CreatedAt,
	}
}
