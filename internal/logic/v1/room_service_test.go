package v1

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/duynhne/room-service/internal/core/domain"
)

func newRoomService() (*RoomService, *mockRoomRepository, *mockInvitationCodeRepository) {
	rooms := new(mockRoomRepository)
	codes := new(mockInvitationCodeRepository)
	gate := NewGate(NewSessionManager(new(mockSessionRepository)), rooms)
	return NewRoomService(rooms, codes, gate), rooms, codes
}

func TestRoomService_Create(t *testing.T) {
	svc, rooms, _ := newRoomService()
	rooms.On("Create", mock.Anything, int64(1), "R1", "").Return(int64(7), nil).Once()

	id, err := svc.Create(context.Background(), 1, domain.CreateRoomRequest{Name: "  R1 "})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	rooms.AssertExpectations(t)
}

func TestRoomService_CreateRejectsBlankName(t *testing.T) {
	svc, rooms, _ := newRoomService()

	_, err := svc.Create(context.Background(), 1, domain.CreateRoomRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	rooms.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_List(t *testing.T) {
	svc, rooms, _ := newRoomService()
	want := []domain.Room{{ID: 1, OwnerID: 1, Name: "R1"}}
	rooms.On("ListForMember", mock.Anything, int64(1)).Return(want, nil).Once()

	got, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRoomService_JoinOutcomes(t *testing.T) {
	svc, rooms, _ := newRoomService()
	ctx := context.Background()

	rooms.On("Join", mock.Anything, int64(2), "ABC123").Return(int64(1), nil).Once()
	rooms.On("Join", mock.Anything, int64(2), "ABC123").
		Return(int64(0), fmt.Errorf("join: %w", domain.ErrAlreadyMember)).Once()
	rooms.On("Join", mock.Anything, int64(2), "ZZZZZZ").
		Return(int64(0), fmt.Errorf("join: %w", domain.ErrInvalidCode)).Once()

	id, err := svc.Join(ctx, 2, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = svc.Join(ctx, 2, "ABC123")
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = svc.Join(ctx, 2, "ZZZZZZ")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.Join(ctx, 2, "")
	assert.ErrorIs(t, err, ErrInvalidCode)
	rooms.AssertExpectations(t)
}

func TestRoomService_Leave(t *testing.T) {
	svc, rooms, _ := newRoomService()
	rooms.On("Leave", mock.Anything, int64(1), int64(5)).
		Return(fmt.Errorf("leave: %w", domain.ErrOwnerCannotLeave)).Once()

	err := svc.Leave(context.Background(), 1, 5)
	assert.ErrorIs(t, err, ErrOwnerCannotLeave)
	assert.Equal(t, OutcomeOwnerCannotLeave, Outcome(err))
}

func TestRoomService_DeleteRequiresOwner(t *testing.T) {
	svc, rooms, _ := newRoomService()
	ctx := context.Background()

	rooms.On("IsOwner", mock.Anything, int64(5), int64(2)).Return(false, nil).Once()
	assert.ErrorIs(t, svc.Delete(ctx, 2, 5), ErrNotOwner)
	rooms.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)

	rooms.On("IsOwner", mock.Anything, int64(5), int64(1)).Return(true, nil).Once()
	rooms.On("Delete", mock.Anything, int64(1), int64(5)).Return(nil).Once()
	assert.NoError(t, svc.Delete(ctx, 1, 5))
	rooms.AssertExpectations(t)
}

func TestRoomService_InvitationCode(t *testing.T) {
	svc, rooms, codes := newRoomService()
	ctx := context.Background()

	rooms.On("IsOwner", mock.Anything, int64(5), int64(1)).Return(true, nil)
	rooms.On("IsOwner", mock.Anything, int64(5), int64(2)).Return(false, nil)
	codes.On("GetOrCreate", mock.Anything, int64(5)).Return("ABC123", nil).Once()

	code, err := svc.InvitationCode(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)

	_, err = svc.InvitationCode(ctx, 2, 5)
	assert.ErrorIs(t, err, ErrNotOwner)
	codes.AssertNumberOfCalls(t, "GetOrCreate", 1)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{fmt.Errorf("x: %w", ErrUserExists), OutcomeUserAlreadyExists},
		{ErrUserNotFound, OutcomeUserDoesNotExist},
		{ErrInvalidCredentials, OutcomeInvalidCredentials},
		{ErrNotLoggedIn, OutcomeNotLoggedIn},
		{ErrSessionNotFound, OutcomeNotLoggedIn},
		{ErrNotOwner, OutcomeNotOwner},
		{ErrAlreadyMember, OutcomeAlreadyMember},
		{ErrInvalidCode, OutcomeInvalidCode},
		{ErrNotMember, OutcomeNotMember},
		{ErrOwnerCannotLeave, OutcomeOwnerCannotLeave},
		{ErrInvalidInput, OutcomeInvalidInput},
		{errStore, OutcomeInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
			assert.Equal(t, tt.err != nil && tt.want != OutcomeInternalServerError, IsOutcome(tt.err))
		})
	}
}
