package user

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID         pgtype.UUID
	Name       string
	Email      string
	Password   string
	Capability string
	CreatedAt  time.Time
}

type UserOutput struct {
	ID         pgtype.UUID `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Capability string      `json:"capability"`
	CreatedAt  time.Time   `json:"created_at"`
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}
