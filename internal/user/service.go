// Package user はユーザープロフィールに関するビジネスロジックを提供する。
package user

import (
	"context"

	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
	"github.com/hitoshi/spinbux/internal/security"
)

// Service はユーザープロフィールのビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	sanitizer security.NameSanitizerService
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, sanitizer security.NameSanitizerService) *Service {
	return &Service{
		userRepo:  userRepo,
		sanitizer: sanitizer,
	}
}

// GetProfile は指定ユーザーのプロフィールを取得する。
func (s *Service) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// UpdateProfile は表示名を更新し、更新後のプロフィールを返す。
// 表示名はサニタイズ後に保存する。空文字列になった場合は更新しない。
func (s *Service) UpdateProfile(ctx context.Context, userID int64, username string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	cleaned := s.sanitizer.SanitizeUsername(username)
	if cleaned == "" {
		return nil, model.NewInvalidRequestError("usernameが不正です")
	}

	if cleaned != user.Username {
		if err := s.userRepo.UpdateUsername(ctx, userID, cleaned); err != nil {
			return nil, err
		}
		user.Username = cleaned
	}

	return user, nil
}
