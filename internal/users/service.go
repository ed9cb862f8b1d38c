package users

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"campus-find/lostfound-backend/internal/apperrors"
	"campus-find/lostfound-backend/internal/auth"
	"campus-find/lostfound-backend/internal/config"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
	GetByID(ctx context.Context, id uint) (*User, error)
	UpdateProfile(ctx context.Context, userID uint, req ProfileRequest) (*User, error)
	ChangePassword(ctx context.Context, userID uint, current, next string) error

	ListUsers(ctx context.Context, offset, limit int) ([]User, int64, error)
	SetVerified(ctx context.Context, userID uint, verified bool) (*User, error)
	SetRole(ctx context.Context, userID uint, role Role) (*User, error)
	DeleteUser(ctx context.Context, userID uint) error
}

type RegisterRequest struct {
	FullName  string `json:"fullName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	StudentID string `json:"studentId" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
	Phone     string `json:"phone"`
}

type ProfileRequest struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type userService struct {
	repo    Repository
	authCfg config.AuthConfig
	logger  *zap.Logger
}

func NewService(repo Repository, authCfg config.AuthConfig, logger *zap.Logger) Service {
	return &userService{repo: repo, authCfg: authCfg, logger: logger}
}

func (s *userService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return nil, apperrors.Storage()
	}

	user := &User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		StudentID:    strings.TrimSpace(req.StudentID),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         RoleStudent,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Validation("an account with this email or student ID already exists")
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, apperrors.Storage()
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		s.logger.Error("failed to look up user", zap.Error(err))
		return nil, "", apperrors.Storage()
	}
	if user == nil {
		return nil, "", apperrors.Validation("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.Validation("invalid email or password")
	}

	token, err := auth.GenerateToken(s.authCfg.JWTSecret, s.authCfg.TokenTTL, user.ID, string(user.Role))
	if err != nil {
		s.logger.Error("failed to sign token", zap.Error(err))
		return nil, "", apperrors.Storage()
	}

	return user, token, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load user", zap.Error(err))
		return nil, apperrors.Storage()
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, req ProfileRequest) (*User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	user.Phone = strings.TrimSpace(req.Phone)

	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update profile", zap.Error(err))
		return nil, apperrors.Storage()
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return apperrors.Validation("current password is incorrect")
	}
	if len(next) < 8 {
		return apperrors.Validation("new password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", zap.Error(err))
		return apperrors.Storage()
	}

	user.PasswordHash = string(hash)
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update password", zap.Error(err))
		return apperrors.Storage()
	}
	return nil
}

func (s *userService) ListUsers(ctx context.Context, offset, limit int) ([]User, int64, error) {
	list, total, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, 0, apperrors.Storage()
	}
	return list, total, nil
}

func (s *userService) SetVerified(ctx context.Context, userID uint, verified bool) (*User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Verified = verified
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update verification flag", zap.Error(err))
		return nil, apperrors.Storage()
	}
	return user, nil
}

func (s *userService) SetRole(ctx context.Context, userID uint, role Role) (*User, error) {
	if role != RoleStudent && role != RoleAdmin {
		return nil, apperrors.Validation("role must be 'student' or 'admin'")
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := s.repo.Update(ctx, user); err != nil {
		s.logger.Error("failed to update role", zap.Error(err))
		return nil, apperrors.Storage()
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uint) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		s.logger.Error("failed to delete user", zap.Error(err))
		return apperrors.Storage()
	}
	return nil
}
