package repository

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	database "github.com/duynhne/room-service/internal/core"
	"github.com/duynhne/room-service/internal/core/domain"
)

const (
	// CodeLength is the number of characters in an invitation code.
	CodeLength = 6

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// Bytes at or above this value are rejected so every character is
	// equally likely.
	unbiasedByteLimit = 256 - 256%len(codeAlphabet)

	defaultMaxCodeAttempts = 16
)

// ErrCodeSpaceExhausted is returned when every candidate collided with an
// existing code. It is an infrastructure failure, not a domain outcome.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique invitation code")

// CodeGenerator produces candidate invitation codes.
type CodeGenerator func() (string, error)

// RandomCode returns a CodeLength code drawn uniformly from [A-Za-z0-9]
// using crypto/rand.
func RandomCode() (string, error) {
	code := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for len(code) < CodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= unbiasedByteLimit {
				continue
			}
			code = append(code, codeAlphabet[int(b)%len(codeAlphabet)])
			if len(code) == CodeLength {
				break
			}
		}
	}
	return string(code), nil
}

// InvitationCodeRepository implements domain.InvitationCodeRepository.
//
// Uniqueness rests on the store: invitation_codes.code is the primary key and
// room_id is unique, and candidates are written with INSERT ... ON CONFLICT
// DO NOTHING. Two concurrent allocations can never both claim one code, and
// two concurrent first requests for one room converge on a single code.
type InvitationCodeRepository struct {
	db          database.DB
	generate    CodeGenerator
	maxAttempts int
}

// InvitationOption customises an InvitationCodeRepository.
type InvitationOption func(*InvitationCodeRepository)

// WithCodeGenerator replaces RandomCode.
func WithCodeGenerator(gen CodeGenerator) InvitationOption {
	return func(r *InvitationCodeRepository) {
		r.generate = gen
	}
}

// WithMaxCodeAttempts bounds how many colliding candidates are tried before
// giving up with ErrCodeSpaceExhausted.
func WithMaxCodeAttempts(n int) InvitationOption {
	return func(r *InvitationCodeRepository) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewInvitationCodeRepository creates a new InvitationCodeRepository.
func NewInvitationCodeRepository(db database.DB, opts ...InvitationOption) *InvitationCodeRepository {
	r := &InvitationCodeRepository{
		db:          db,
		generate:    RandomCode,
		maxAttempts: defaultMaxCodeAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the room's existing code, or allocates one.
// The caller is responsible for checking ownership first; a room that
// disappears mid-allocation yields domain.ErrNotOwner.
func (r *InvitationCodeRepository) GetOrCreate(ctx context.Context, roomID int64) (string, error) {
	var code string
	err := r.db.WithinTransaction(ctx, func(ctx context.Context, q database.Querier) error {
		existing, found, err := codeForRoom(ctx, q, roomID)
		if err != nil {
			return err
		}
		if found {
			code = existing
			return nil
		}

		for attempt := 1; attempt <= r.maxAttempts; attempt++ {
			candidate, err := r.generate()
			if err != nil {
				return fmt.Errorf("generate invitation code: %w", err)
			}

			inserted, err := q.Exec(ctx,
				`INSERT INTO invitation_codes (code, room_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				candidate, roomID)
			if err != nil {
				if errors.Is(err, database.ErrForeignKeyViolation) {
					return fmt.Errorf("allocate code for room %d: %w", roomID, domain.ErrNotOwner)
				}
				return fmt.Errorf("insert invitation code: %w", err)
			}
			if inserted == 1 {
				code = candidate
				return nil
			}

			// Either the candidate is taken or a concurrent caller already
			// allocated this room's code.
			existing, found, err := codeForRoom(ctx, q, roomID)
			if err != nil {
				return err
			}
			if found {
				code = existing
				return nil
			}
			log.Ctx(ctx).Debug().Int64("room_id", roomID).Int("attempt", attempt).Msg("Invitation code collision, retrying")
		}
		return fmt.Errorf("room %d after %d attempts: %w", roomID, r.maxAttempts, ErrCodeSpaceExhausted)
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// Resolve returns the room id the code admits to.
func (r *InvitationCodeRepository) Resolve(ctx context.Context, code string) (int64, bool, error) {
	return resolveCode(ctx, r.db, code)
}

func resolveCode(ctx context.Context, q database.Querier, code string) (int64, bool, error) {
	var roomID int64
	err := q.QueryRow(ctx, `SELECT room_id FROM invitation_codes WHERE code = $1`, code).Scan(&roomID)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("resolve invitation code: %w", err)
	}
	return roomID, true, nil
}

func codeForRoom(ctx context.Context, q database.Querier, roomID int64) (string, bool, error) {
	var code string
	err := q.QueryRow(ctx, `SELECT code FROM invitation_codes WHERE room_id = $1`, roomID).Scan(&code)
	if err != nil {
		if errors.Is(err, database.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("lookup invitation code: %w", err)
	}
	return code, true, nil
}
