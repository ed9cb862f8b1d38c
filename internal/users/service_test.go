package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/internal/config"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, offset, limit int) ([]User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]User), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountByRole(ctx context.Context, role Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

var testAuthCfg = config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	user, err := service.Register(ctx, RegisterRequest{
		FullName:  " Ada Lovelace ",
		Email:     " Ada@Campus.EDU ",
		StudentID: "S12345",
		Password:  "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ada Lovelace", user.FullName)
	assert.Equal(t, "ada@campus.edu", user.Email)
	assert.Equal(t, RoleStudent, user.Role)
	assert.False(t, user.Verified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*users.User")).Return(gorm.ErrDuplicatedKey)

	_, err := service.Register(ctx, RegisterRequest{
		FullName: "Ada", Email: "ada@campus.edu", StudentID: "S1", Password: "correct horse",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)
}

func TestLoginIssuesToken(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.On("GetByEmail", ctx, "ada@campus.edu").Return(&User{
		ID: 42, Email: "ada@campus.edu", PasswordHash: string(hash), Role: RoleStudent,
	}, nil)

	user, token, err := service.Login(ctx, "Ada@Campus.edu", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, uint(42), user.ID)

	claims, err := auth.ParseToken(testAuthCfg.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "student", claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.On("GetByEmail", ctx, "ada@campus.edu").Return(&User{
		ID: 42, PasswordHash: string(hash),
	}, nil)
	repo.On("GetByEmail", ctx, "nobody@campus.edu").Return(nil, nil)

	_, _, err = service.Login(ctx, "ada@campus.edu", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)

	// Unknown accounts fail with the same message as bad passwords.
	_, _, err = service.Login(ctx, "nobody@campus.edu", "whatever")
	require.Error(t, err)
	assert.Equal(t, apperrors.From(err).Message, "invalid email or password")
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.On("GetByID", ctx, uint(42)).Return(&User{ID: 42, PasswordHash: string(hash)}, nil)

	err = service.ChangePassword(ctx, 42, "wrong", "new password!")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)

	err = service.ChangePassword(ctx, 42, "old password", "short")
	require.Error(t, err)

	repo.On("Update", ctx, mock.AnythingOfType("*users.User")).Return(nil)
	assert.NoError(t, service.ChangePassword(ctx, 42, "old password", "new password!"))
}

func TestSetRoleValidates(t *testing.T) {
	repo := new(MockRepository)
	service := NewService(repo, testAuthCfg, zap.NewNop())
	ctx := context.Background()

	_, err := service.SetRole(ctx, 42, "superuser")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.From(err).Code)

	repo.On("GetByID", ctx, uint(42)).Return(&User{ID: 42, Role: RoleStudent}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	user, err := service.SetRole(ctx, 42, RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
}
