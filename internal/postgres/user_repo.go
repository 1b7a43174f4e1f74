package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/watch-party/internal/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepository reads the users table owned by the auth service. It never writes.
type UserRepository struct {
	q querier
}

func NewUserRepository(q querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) Get(ctx context.Context, id domain.UserID) (*domain.UserSummary, error) {
	var u domain.UserSummary
	err := r.q.QueryRow(ctx, queryGetUser, id).Scan(&u.ID, &u.Email, &u.DisplayName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
