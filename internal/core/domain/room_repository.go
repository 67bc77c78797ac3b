package domain

import "context"

// Room is a named room as seen by one of its members.
type Room struct {
	ID          int64  `json:"id"`
	OwnerID     int64  `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RoomRepository defines the data-access contract for rooms and their
// memberships. Every method runs as one store transaction.
type RoomRepository interface {
	// Create inserts the room and the owner's membership atomically and
	// returns the new room id.
	Create(ctx context.Context, ownerID int64, name, description string) (int64, error)

	// ListForMember returns every room userID is a member of.
	ListForMember(ctx context.Context, userID int64) ([]Room, error)

	// IsOwner reports whether roomID exists and is owned by userID.
	IsOwner(ctx context.Context, roomID, userID int64) (bool, error)

	// Join adds userID to the room the invitation code resolves to and returns
	// that room id. Returns ErrInvalidCode or ErrAlreadyMember.
	Join(ctx context.Context, userID int64, code string) (int64, error)

	// Leave removes userID's membership of roomID.
	// Returns ErrOwnerCannotLeave or ErrNotMember.
	Leave(ctx context.Context, userID, roomID int64) error

	// Delete removes the room with its memberships and invitation code.
	// Returns ErrNotOwner when ownerID does not own an existing room.
	Delete(ctx context.Context, ownerID, roomID int64) error
}

// InvitationCodeRepository allocates and resolves room invitation codes.
type InvitationCodeRepository interface {
	// GetOrCreate returns the room's code, allocating a fresh collision-free
	// one on first request.
	GetOrCreate(ctx context.Context, roomID int64) (string, error)

	// Resolve returns the room id the code admits to, and false when the
	// code is unknown.
	Resolve(ctx context.Context, code string) (int64, bool, error)
}
