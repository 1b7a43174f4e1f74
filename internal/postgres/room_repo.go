package postgres

import (
	"context"
	"errors"

	"github.com/cwrk-planet/watch-party/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, queryRoomCodeExists, code).Scan(&exists)
	return exists, err
}

// CreateWithCreator inserts the room and the creator's membership in one transaction.
// A room_code unique violation comes back as domain.ErrRoomCodeTaken.
func (r *RoomRepository) CreateWithCreator(ctx context.Context, room *domain.Room) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, queryInsertRoom, room.RoomCode, room.CreatorID).
			Scan(&room.ID, &room.CreatedAt); err != nil {
			return mapPgError(err)
		}
		room.IsActive = true

		if _, err := NewMemberRepositoryFromTx(tx).Add(ctx, room.ID, room.CreatorID); err != nil {
			return err
		}
		return nil
	})
}

// GetByCode returns the room whatever its is_active flag.
func (r *RoomRepository) GetByCode(ctx context.Context, code string) (*domain.Room, error) {
	var rm domain.Room
	err := r.db.QueryRow(ctx, queryGetRoomByCode, code).Scan(
		&rm.ID,
		&rm.RoomCode,
		&rm.IsActive,
		&rm.CreatorID,
		&rm.CurrentVideoID,
		&rm.CreatedAt,
		&rm.Creator.Email,
		&rm.Creator.DisplayName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}
	rm.Creator.ID = rm.CreatorID

	return &rm, nil
}

func (r *RoomRepository) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.db.Exec(ctx, querySetRoomActive, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) SetCurrentVideo(ctx context.Context, code string, videoID int64) error {
	cmd, err := r.db.Exec(ctx, querySetCurrentVideo, code, videoID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}
