package postgres

import (
	"context"

	"github.com/cwrk-planet/watch-party/internal/domain"

	"github.com/jackc/pgx/v5"
)

type MemberRepository struct {
	q querier
}

func NewMemberRepository(q querier) *MemberRepository {
	return &MemberRepository{q: q}
}

func NewMemberRepositoryFromTx(tx pgx.Tx) *MemberRepository {
	return &MemberRepository{q: tx}
}

func (r *MemberRepository) Exists(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx, queryMemberExists, roomID, userID).Scan(&exists)
	return exists, err
}

// Add reports whether a new row was inserted; an existing membership is left untouched.
func (r *MemberRepository) Add(ctx context.Context, roomID string, userID domain.UserID) (bool, error) {
	cmd, err := r.q.Exec(ctx, queryInsertMember, roomID, userID)
	if err != nil {
		return false, mapPgError(err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *MemberRepository) ListByRoom(ctx context.Context, roomID string) ([]domain.Member, error) {
	rows, err := r.q.Query(ctx, queryListMembers, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Member, 0, 8)
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.JoinedAt, &m.User.Email, &m.User.DisplayName); err != nil {
			return nil, err
		}
		m.User.ID = m.UserID
		list = append(list, m)
	}

	return list, rows.Err()
}
