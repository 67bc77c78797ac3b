package v1

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/duynhne/room-service/internal/core/domain"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	args := m.Called(ctx, email)
	row, _ := args.Get(0).(*domain.UserRow)
	return row, args.Error(1)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(*domain.UserRow)
	return row, args.Error(1)
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) Create(ctx context.Context, name, surname, email, passwordHash string) (int64, error) {
	args := m.Called(ctx, name, surname, email, passwordHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

type mockSessionRepository struct {
	mock.Mock
}

func (m *mockSessionRepository) Create(ctx context.Context, userID int64, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

func (m *mockSessionRepository) GetByToken(ctx context.Context, token string) (*domain.SessionRow, error) {
	args := m.Called(ctx, token)
	row, _ := args.Get(0).(*domain.SessionRow)
	return row, args.Error(1)
}

func (m *mockSessionRepository) Delete(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

type mockRoomRepository struct {
	mock.Mock
}

func (m *mockRoomRepository) Create(ctx context.Context, ownerID int64, name, description string) (int64, error) {
	args := m.Called(ctx, ownerID, name, description)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRoomRepository) ListForMember(ctx context.Context, userID int64) ([]domain.Room, error) {
	args := m.Called(ctx, userID)
	rooms, _ := args.Get(0).([]domain.Room)
	return rooms, args.Error(1)
}

func (m *mockRoomRepository) IsOwner(ctx context.Context, roomID, userID int64) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRoomRepository) Join(ctx context.Context, userID int64, code string) (int64, error) {
	args := m.Called(ctx, userID, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRoomRepository) Leave(ctx context.Context, userID, roomID int64) error {
	return m.Called(ctx, userID, roomID).Error(0)
}

func (m *mockRoomRepository) Delete(ctx context.Context, ownerID, roomID int64) error {
	return m.Called(ctx, ownerID, roomID).Error(0)
}

type mockInvitationCodeRepository struct {
	mock.Mock
}

func (m *mockInvitationCodeRepository) GetOrCreate(ctx context.Context, roomID int64) (string, error) {
	args := m.Called(ctx, roomID)
	return args.String(0), args.Error(1)
}

func (m *mockInvitationCodeRepository) Resolve(ctx context.Context, code string) (int64, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}
