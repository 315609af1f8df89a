// Package leaderboard は残高ランキングに関するビジネスロジックを提供する。
package leaderboard

import (
	"context"

	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
)

// Entry はランキングの1行を表す。
type Entry struct {
	Rank       int
	UserID     int64
	Username   string
	Balance    int64
	TotalSpins int
	TotalKeys  int
	Wins       int64
}

// Page はランキングの1ページを表す。
// UserRankは認証済みリクエストでのみ設定され、匿名リクエストではnilになる。
type Page struct {
	Entries  []Entry
	Total    int
	UserRank *int
	Limit    int
	Offset   int
}

// Service はランキングに関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// List は残高降順のランキングを返す。
// currentUserIDが非nilの場合、そのユーザーの順位も併せて返す。
// 識別のないリクエストは匿名として扱い、順位なしでランキングのみ返す。
func (s *Service) List(ctx context.Context, currentUserID *int64, limit, offset int) (*Page, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	users, total, err := s.userRepo.ListTopByBalance(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(users))
	for i, u := range users {
		entries = append(entries, Entry{
			Rank:       offset + i + 1,
			UserID:     u.ID,
			Username:   u.Username,
			Balance:    u.Balance,
			TotalSpins: u.TotalSpins,
			TotalKeys:  u.TotalKeys,
			Wins:       u.Wins,
		})
	}

	page := &Page{
		Entries: entries,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	}

	if currentUserID != nil {
		rank, err := s.userRepo.RankByBalance(ctx, *currentUserID)
		if err != nil {
			return nil, err
		}
		if rank > 0 {
			page.UserRank = &rank
		}
	}

	return page, nil
}

// UserRank は指定ユーザーの順位と台帳情報を返す。
func (s *Service) UserRank(ctx context.Context, userID int64) (*Entry, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	rank, err := s.userRepo.RankByBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Entry{
		Rank:       rank,
		UserID:     user.ID,
		Username:   user.Username,
		Balance:    user.Balance,
		TotalSpins: user.TotalSpins,
		TotalKeys:  user.TotalKeys,
		Wins:       user.Wins,
	}, nil
}
