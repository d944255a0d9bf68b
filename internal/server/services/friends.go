package services

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/hisabkitab/internal/common"
	"github.com/dmitrijs2005/hisabkitab/internal/dbx"
	"github.com/dmitrijs2005/hisabkitab/internal/server/repositories/repomanager"
)

// FriendService edits the per-user list of friend names. Edits lock the
// user row so concurrent adds do not overwrite each other.
type FriendService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFriendService(db *sql.DB, m repomanager.RepositoryManager) *FriendService {
	return &FriendService{db: db, repomanager: m}
}

func (s *FriendService) List(ctx context.Context, userID string) ([]string, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Friends == nil {
		return []string{}, nil
	}
	return user.Friends, nil
}

func (s *FriendService) Add(ctx context.Context, userID, name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: friend name is required", common.ErrorValidation)
	}

	return s.edit(ctx, userID, func(friends []string) ([]string, error) {
		if slices.Contains(friends, name) {
			return nil, fmt.Errorf("%w: friend already exists", common.ErrorValidation)
		}
		return append(friends, name), nil
	})
}

func (s *FriendService) Remove(ctx context.Context, userID, name string) ([]string, error) {
	return s.edit(ctx, userID, func(friends []string) ([]string, error) {
		if !slices.Contains(friends, name) {
			return nil, fmt.Errorf("%w: friend not found", common.ErrorNotFound)
		}
		return slices.DeleteFunc(friends, func(f string) bool { return f == name }), nil
	})
}

func (s *FriendService) Clear(ctx context.Context, userID string) ([]string, error) {
	return s.edit(ctx, userID, func([]string) ([]string, error) {
		return []string{}, nil
	})
}

func (s *FriendService) edit(ctx context.Context, userID string, fn func([]string) ([]string, error)) ([]string, error) {
	return dbx.InTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) ([]string, error) {
		repo := s.repomanager.Users(tx)

		friends, err := repo.GetFriendsForUpdate(ctx, userID)
		if err != nil {
			return nil, err
		}

		updated, err := fn(friends)
		if err != nil {
			return nil, err
		}

		if err := repo.SetFriends(ctx, userID, updated); err != nil {
			return nil, err
		}
		return updated, nil
	})
}
