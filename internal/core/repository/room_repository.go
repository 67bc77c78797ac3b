package repository

import (
	"context"
	"errors"
	"fmt"

	database "github.com/duynhne/room-service/internal/core"
	"github.com/duynhne/room-service/internal/core/domain"
)

// RoomRepository implements domain.RoomRepository. Each method is one
// transaction; the outcome sentinels it returns roll that transaction back.
type RoomRepository struct {
	db database.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db database.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create inserts the room and the owner's membership in one transaction.
func (r *RoomRepository) Create(ctx context.Context, ownerID int64, name, description string) (int64, error) {
	var roomID int64
	err := r.db.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		err := q.QueryRow(ctx,
			`INSERT INTO rooms (owner, name, description) VALUES ($1, $2, $3) RETURNING id`,
			ownerID, name, description).Scan(&roomID)
		if err != nil {
			return fmt.Errorf("insert room: %w", err)
		}

		if _, err := q.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)`,
			roomID, ownerID); err != nil {
			return fmt.Errorf("insert owner membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return roomID, nil
}

// ListForMember returns every room userID belongs to, oldest first.
func (r *RoomRepository) ListForMember(ctx context.Context, userID int64) ([]domain.Room, error) {
	query := `
		SELECT r.id, r.owner, r.name, r.description
		FROM rooms r
		JOIN room_members rm ON rm.room_id = r.id
		WHERE rm.user_id = $1
		ORDER BY r.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := make([]domain.Room, 0)
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.OwnerID, &room.Name, &room.Description); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rooms, nil
}

// IsOwner reports whether roomID exists and is owned by userID.
func (r *RoomRepository) IsOwner(ctx context.Context, roomID, userID int64) (bool, error) {
	return isOwner(ctx, r.db, roomID, userID)
}

func isOwner(ctx context.Context, q database.Querier, roomID, userID int64) (bool, error) {
	var owns bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM rooms WHERE id = $1 AND owner = $2)`,
		roomID, userID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("check room owner: %w", err)
	}
	return owns, nil
}

// Join resolves code and inserts the membership. The (room_id, user_id)
// primary key makes a concurrent double join report ErrAlreadyMember.
func (r *RoomRepository) Join(ctx context.Context, userID int64, code string) (int64, error) {
	var roomID int64
	err := r.db.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		resolved, found, err := resolveCode(ctx, q, code)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("join with code %q: %w", code, domain.ErrInvalidCode)
		}
		roomID = resolved

		inserted, err := q.Exec(ctx,
			`INSERT INTO room_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			roomID, userID)
		if err != nil {
			if errors.Is(err, database.ErrForeignKeyViolation) {
				// room deleted between resolve and insert
				return fmt.Errorf("join room %d: %w", roomID, domain.ErrInvalidCode)
			}
			return fmt.Errorf("insert membership: %w", err)
		}
		if inserted == 0 {
			return fmt.Errorf("join room %d: %w", roomID, domain.ErrAlreadyMember)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return roomID, nil
}

// Leave removes a non-owner's membership. Owners must delete the room instead.
func (r *RoomRepository) Leave(ctx context.Context, userID, roomID int64) error {
	return r.db.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		var ownerID int64
		err := q.QueryRow(ctx, `SELECT owner FROM rooms WHERE id = $1`, roomID).Scan(&ownerID)
		switch {
		case errors.Is(err, database.ErrNoRows):
			return fmt.Errorf("leave room %d: %w", roomID, domain.ErrNotMember)
		case err != nil:
			return fmt.Errorf("lookup room owner: %w", err)
		case ownerID == userID:
			return fmt.Errorf("leave room %d: %w", roomID, domain.ErrOwnerCannotLeave)
		}

		deleted, err := q.Exec(ctx,
			`DELETE FROM room_members WHERE room_id = $1 AND user_id = $2`,
			roomID, userID)
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		if deleted == 0 {
			return fmt.Errorf("leave room %d: %w", roomID, domain.ErrNotMember)
		}
		return nil
	})
}

// Delete removes the room together with its invitation code and memberships.
// A room that does not exist is reported as ErrNotOwner.
func (r *RoomRepository) Delete(ctx context.Context, ownerID, roomID int64) error {
	return r.db.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		owns, err := isOwner(ctx, q, roomID, ownerID)
		if err != nil {
			return err
		}
		if !owns {
			return fmt.Errorf("delete room %d: %w", roomID, domain.ErrNotOwner)
		}

		if _, err := q.Exec(ctx, `DELETE FROM invitation_codes WHERE room_id = $1`, roomID); err != nil {
			return fmt.Errorf("delete invitation code: %w", err)
		}
		if _, err := q.Exec(ctx, `DELETE FROM room_members WHERE room_id = $1`, roomID); err != nil {
			return fmt.Errorf("delete memberships: %w", err)
		}
		deleted, err := q.Exec(ctx, `DELETE FROM rooms WHERE id = $1 AND owner = $2`, roomID, ownerID)
		if err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		if deleted == 0 {
			return fmt.Errorf("delete room %d: %w", roomID, domain.ErrNotOwner)
		}
		return nil
	})
}
