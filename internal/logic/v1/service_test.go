package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/room-service/internal/core/credential"
	"github.com/duynhne/room-service/internal/core/domain"
)

var errStore = errors.New("connection refused")

func newAuthService(t *testing.T) (*AuthService, *mockUserRepository, *mockSessionRepository) {
	t.Helper()
	users := new(mockUserRepository)
	sessions := new(mockSessionRepository)
	svc := NewAuthService(users, NewSessionManager(sessions), credential.NewHasher(bcrypt.MinCost))
	return svc, users, sessions
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := credential.NewHasher(bcrypt.MinCost).Hash(password)
	require.NoError(t, err)
	return hash
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, users, _ := newAuthService(t)
	ctx := context.Background()

	users.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, nil).Once()
	users.On("Create", mock.Anything, "Ada", "Lovelace", "a@x.com", mock.MatchedBy(func(hash string) bool {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw1")) == nil
	})).Return(int64(5), nil).Once()

	user, err := svc.Register(ctx, domain.RegisterRequest{
		Name: "Ada", Surname: "Lovelace", Email: " a@x.com ", Password: "pw1",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.User{ID: 5, Name: "Ada", Surname: "Lovelace", Email: "a@x.com"}, *user)
	users.AssertExpectations(t)
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, users, _ := newAuthService(t)

	users.On("ExistsByEmail", mock.Anything, "a@x.com").Return(true, nil).Once()

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "pw2"})
	assert.ErrorIs(t, err, ErrUserExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Register_RaceOnInsert(t *testing.T) {
	svc, users, _ := newAuthService(t)

	users.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, nil).Once()
	users.On("Create", mock.Anything, "", "", "a@x.com", mock.Anything).
		Return(int64(0), fmt.Errorf("insert: %w", domain.ErrUserExists)).Once()

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAuthService_Register_PasswordTooLong(t *testing.T) {
	svc, users, _ := newAuthService(t)

	users.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, nil).Once()

	_, err := svc.Register(context.Background(), domain.RegisterRequest{
		Email: "a@x.com", Password: strings.Repeat("x", credential.MaxPasswordBytes+1),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, credential.ErrHashingFailure)
	assert.Equal(t, OutcomeInvalidInput, Outcome(err))
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_EmailIsCaseInsensitive(t *testing.T) {
	svc, users, sessions := newAuthService(t)

	users.On("ExistsByEmail", mock.Anything, "ada@x.com").Return(true, nil).Once()
	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "Ada@X.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserExists)

	row := &domain.UserRow{ID: 3, Email: "ada@x.com", PasswordHash: hashOf(t, "pw")}
	users.On("GetByEmail", mock.Anything, "ada@x.com").Return(row, nil).Once()
	users.On("UpdateLastLogin", mock.Anything, int64(3)).Return(nil).Once()
	sessions.On("Create", mock.Anything, int64(3), mock.Anything).Return(nil).Once()

	_, err = svc.Login(context.Background(), domain.LoginRequest{Email: " ADA@x.com", Password: "pw"})
	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAuthService_Register_StoreFailure(t *testing.T) {
	svc, users, _ := newAuthService(t)

	users.On("ExistsByEmail", mock.Anything, "a@x.com").Return(false, errStore).Once()

	_, err := svc.Register(context.Background(), domain.RegisterRequest{Email: "a@x.com", Password: "pw"})
	require.Error(t, err)
	assert.False(t, IsOutcome(err))
	assert.Equal(t, OutcomeInternalServerError, Outcome(err))
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, users, sessions := newAuthService(t)

	row := &domain.UserRow{ID: 3, Name: "Ada", Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(row, nil).Once()
	users.On("UpdateLastLogin", mock.Anything, int64(3)).Return(nil).Once()

	var issued string
	sessions.On("Create", mock.Anything, int64(3), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { issued = args.String(2) }).
		Return(nil).Once()

	resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.Equal(t, issued, resp.Token)
	assert.Len(t, resp.Token, 2*tokenBytes)
	assert.Equal(t, int64(3), resp.User.ID)
	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestAuthService_Login_WrongPasswordCreatesNoSession(t *testing.T) {
	svc, users, sessions := newAuthService(t)

	row := &domain.UserRow{ID: 3, Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(row, nil).Once()

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	users.AssertNotCalled(t, "UpdateLastLogin", mock.Anything, mock.Anything)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, users, sessions := newAuthService(t)

	users.On("GetByEmail", mock.Anything, "who@x.com").Return(nil, nil).Once()

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "who@x.com", Password: "pw"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, OutcomeUserDoesNotExist, Outcome(err))
	sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthService_Login_MalformedHashIsFailure(t *testing.T) {
	svc, users, _ := newAuthService(t)

	users.On("GetByEmail", mock.Anything, "a@x.com").
		Return(&domain.UserRow{ID: 1, PasswordHash: "not-a-hash"}, nil).Once()

	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw"})
	assert.ErrorIs(t, err, credential.ErrHashingFailure)
	assert.False(t, IsOutcome(err))
}

func TestAuthService_Login_LastLoginFailureIsIgnored(t *testing.T) {
	svc, users, sessions := newAuthService(t)

	row := &domain.UserRow{ID: 3, Email: "a@x.com", PasswordHash: hashOf(t, "pw1")}
	users.On("GetByEmail", mock.Anything, "a@x.com").Return(row, nil).Once()
	users.On("UpdateLastLogin", mock.Anything, int64(3)).Return(errStore).Once()
	sessions.On("Create", mock.Anything, int64(3), mock.Anything).Return(nil).Once()

	resp, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@x.com", Password: "pw1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, sessions := newAuthService(t)
	ctx := context.Background()

	sessions.On("Delete", mock.Anything, "tok").Return(true, nil).Once()
	sessions.On("Delete", mock.Anything, "tok").Return(false, nil).Once()

	require.NoError(t, svc.Logout(ctx, "tok"))
	assert.ErrorIs(t, svc.Logout(ctx, "tok"), ErrNotLoggedIn)
	assert.ErrorIs(t, svc.Logout(ctx, ""), ErrNotLoggedIn)
	sessions.AssertExpectations(t)
}

func TestAuthService_IsLoggedIn(t *testing.T) {
	svc, _, sessions := newAuthService(t)
	ctx := context.Background()

	sessions.On("GetByToken", mock.Anything, "live").Return(&domain.SessionRow{Token: "live", UserID: 1}, nil)
	sessions.On("GetByToken", mock.Anything, "dead").Return(nil, nil)

	ok, err := svc.IsLoggedIn(ctx, "live")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsLoggedIn(ctx, "dead")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsLoggedIn(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_GetUserByToken(t *testing.T) {
	svc, users, sessions := newAuthService(t)
	ctx := context.Background()

	sessions.On("GetByToken", mock.Anything, "live").Return(&domain.SessionRow{Token: "live", UserID: 9}, nil)
	sessions.On("GetByToken", mock.Anything, "dead").Return(nil, nil)
	users.On("GetByID", mock.Anything, int64(9)).
		Return(&domain.UserRow{ID: 9, Name: "Ada", Surname: "L", Email: "a@x.com"}, nil)

	user, err := svc.GetUserByToken(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.Equal(t, "a@x.com", user.Email)

	_, err = svc.GetUserByToken(ctx, "dead")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = svc.GetUserByToken(ctx, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}
