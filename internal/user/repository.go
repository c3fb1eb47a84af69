package user

import (
	"context"

	"github.com/digitalogic/catalog/internal/database/postgres"
	"github.com/jackc/pgx/v5/pgtype"
)

type CreateUserParams struct {
	Name       string
	Email      string
	Password   string
	Capability string
}

type UpdateUserParams struct {
	ID       pgtype.UUID
	Name     pgtype.Text
	Email    pgtype.Text
	Password pgtype.Text
}

type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	FindByID(ctx context.Context, id pgtype.UUID) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, params UpdateUserParams) (User, error)
}

type repository struct {
	db postgres.DBTX
}

func NewRepository(db postgres.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = "id, name, email, password, capability, created_at"

func scanUser(row interface{ Scan(dest ...any) error }) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Capability, &u.CreatedAt)
	return u, err
}

func (r *repository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password, capability)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		params.Name, params.Email, params.Password, params.Capability,
	))
}

func (r *repository) FindByID(ctx context.Context, id pgtype.UUID) (User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (r *repository) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		UPDATE users SET
			name = COALESCE(NULLIF($2, ''), name),
			email = COALESCE(NULLIF($3, ''), email),
			password = COALESCE(NULLIF($4, ''), password)
		WHERE id = $1
		RETURNING `+userColumns,
		params.ID, params.Name.String, params.Email.String, params.Password.String,
	))
}
