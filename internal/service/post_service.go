package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postloom/postloom/internal/ai"
	"github.com/postloom/postloom/internal/models"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/repository"
	"github.com/postloom/postloom/internal/transfer"
)

// ErrPostDelivered marks a remove attempt on a post whose delivery has
// started. Delivery outcomes are kept as history, not deleted.
var ErrPostDelivered = errors.New("post has entered delivery and can no longer be removed")

type PostService interface {
	CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Post, error)
	PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error)
	Status(ctx context.Context, postID, userID int64) (*transfer.PostStatus, error)
	Remove(ctx context.Context, userID, postID int64) error
}

// StatusCache is the read cache consulted by Status; *cache.StatusCache
// satisfies it. A nil value disables caching.
type StatusCache interface {
	GetStatus(ctx context.Context, postID int64, dest any) bool
	SetStatus(ctx context.Context, postID int64, value any)
	Invalidate(ctx context.Context, postID int64)
}

type postService struct {
	db        *sql.DB
	pr        repository.PostRepository
	pp        repository.PostPlatformRepository
	ac        repository.SocialAccountRepository
	registry  *platform.Registry
	optimizer ai.ContentOptimizer
	statuses  StatusCache
}

func NewPostService(
	db *sql.DB,
	pr repository.PostRepository,
	pp repository.PostPlatformRepository,
	ac repository.SocialAccountRepository,
	registry *platform.Registry,
	optimizer ai.ContentOptimizer,
	statuses StatusCache) PostService {
	return &postService{
		db:        db,
		pr:        pr,
		pp:        pp,
		ac:        ac,
		registry:  registry,
		optimizer: optimizer,
		statuses:  statuses,
	}
}

// CreatePost stores the post as a draft together with one pending delivery
// row per selected account. Scheduling is a separate step.
func (s *postService) CreatePost(ctx context.Context, userID int64, pc *transfer.PostCreation) (int64, error) {
	if pc == nil {
		err := errors.New("post creation data is nil")
		slog.Error(err.Error())
		return 0, err
	}
	if pc.Content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}
	if len(pc.AccountIDs) == 0 {
		err := errors.New("no social accounts selected")
		slog.Error(err.Error())
		return 0, err
	}

	accounts, err := s.resolveAccounts(ctx, userID, pc.AccountIDs)
	if err != nil {
		return 0, err
	}

	content := pc.Content
	hashtags := pc.Hashtags
	if pc.Optimize && s.optimizer != nil {
		opt, err := s.optimizer.Optimize(ctx, content, platformNames(accounts))
		if err != nil {
			// Optimization is best effort, the original copy still posts.
			slog.Info(err.Error())
		} else {
			content = opt.Content
			if len(opt.Hashtags) > 0 {
				hashtags = opt.Hashtags
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	post := models.Post{
		UserID:    userID,
		Content:   content,
		MediaURLs: pc.MediaURLs,
		Hashtags:  hashtags,
		Status:    models.PostStatusDraft,
	}

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, fmt.Errorf("error creating post: %w", err)
	}

	for _, account := range accounts {
		pp := models.PostPlatform{
			PostID:    postID,
			AccountID: account.ID,
			Platform:  account.Platform,
		}
		if _, err = s.pp.Create(ctx, tx, &pp); err != nil {
			return 0, fmt.Errorf("error saving platform target %d: %w", account.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return postID, nil
}

// resolveAccounts validates that every selected account belongs to the user,
// is still connected, and targets a supported platform.
func (s *postService) resolveAccounts(ctx context.Context, userID int64, accountIDs []int64) ([]*models.SocialAccount, error) {
	accounts := make([]*models.SocialAccount, 0, len(accountIDs))
	for _, accountID := range accountIDs {
		account, err := s.ac.GetByID(ctx, accountID)
		if err != nil {
			return nil, fmt.Errorf("error checking social account %d: %w", accountID, err)
		}
		if account == nil || account.UserID != userID {
			return nil, fmt.Errorf("social account %d does not exist", accountID)
		}
		if !account.IsConnected {
			return nil, fmt.Errorf("social account %d is disconnected", accountID)
		}
		if !s.registry.IsSupported(account.Platform) {
			return nil, fmt.Errorf("platform %s: %w", account.Platform, platform.ErrUnsupportedPlatform)
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func platformNames(accounts []*models.SocialAccount) []string {
	seen := make(map[string]struct{}, len(accounts))
	var names []string
	for _, account := range accounts {
		if _, ok := seen[account.Platform]; ok {
			continue
		}
		seen[account.Platform] = struct{}{}
		names = append(names, account.Platform)
	}
	return names
}

func (s *postService) PostInfo(ctx context.Context, postID, userID int64) (*models.Post, error) {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if postID == 0 {
		err = errors.New("post id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}

	return post, nil
}

// Status reports the post status with its per-platform breakdown. Results
// are cached briefly since clients poll this while a publish is in flight.
// Ownership is always checked against the store; only the assembled payload
// may come from the cache.
func (s *postService) Status(ctx context.Context, postID, userID int64) (*transfer.PostStatus, error) {
	if userID == 0 {
		err := errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	if s.statuses != nil {
		var cached transfer.PostStatus
		if s.statuses.GetStatus(ctx, postID, &cached) {
			return &cached, nil
		}
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("Error getting post info")
	}
	if post == nil {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	rows, err := s.pp.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	status := &transfer.PostStatus{
		PostID:    post.ID,
		Status:    post.Status,
		Platforms: make([]transfer.PlatformStatus, 0, len(rows)),
	}
	for _, row := range rows {
		status.Platforms = append(status.Platforms, transfer.PlatformStatus{
			ID:            row.ID,
			Platform:      row.Platform,
			Status:        row.Status,
			RemotePostID:  row.RemotePostID,
			RemotePostURL: row.RemotePostURL,
			ErrorMessage:  row.ErrorMessage,
		})
	}

	if s.statuses != nil {
		s.statuses.SetStatus(ctx, postID, status)
	}
	return status, nil
}

func (s *postService) List(ctx context.Context, userID int64) ([]*models.Post, error) {
	posts, err := s.pr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting posts")
	}
	return posts, nil
}

func (s *postService) Remove(ctx context.Context, userID, postID int64) error {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return err
	}

	if postID == 0 {
		err = errors.New("post_id is not valid")
		slog.Info(err.Error())
		return err
	}

	isValid, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}

	if !isValid {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		err = errors.New("Post doesn't exist")
		slog.Info(err.Error())
		return err
	}

	// Only posts that never reached a platform may go away. Everything past
	// scheduled keeps its row as the delivery record.
	switch post.Status {
	case models.PostStatusDraft, models.PostStatusScheduled:
	default:
		return ErrPostDelivered
	}

	err = s.pr.Remove(ctx, postID)
	if err != nil {
		return fmt.Errorf("Error removing post")
	}

	if s.statuses != nil {
		s.statuses.Invalidate(ctx, postID)
	}
	return nil
}
