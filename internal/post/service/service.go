package service

import (
	"context"
	"errors"
	"time"

	commoncrypto "blogspace/internal/common/crypto"
	commonerrors "blogspace/internal/common/errors"
	"blogspace/internal/common/logger"
	"blogspace/internal/post/domain"
	postrepo "blogspace/internal/post/repository"
)

// Notifier is told when the set of posts changed so connected clients can
// refresh. Implementations must be safe for concurrent use.
type Notifier interface {
	PostsChanged()
}

// Identity is the verified caller a mutation runs as.
type Identity struct {
	UserID   string
	Username string
}

type PostService struct {
	repo        postrepo.Repository
	idGenerator commoncrypto.IDGenerator
	notifier    Notifier
	now         func() time.Time
	log         *logger.Logger
}

func NewPostService(
	repo postrepo.Repository,
	idGenerator commoncrypto.IDGenerator,
	notifier Notifier,
	log *logger.Logger,
) *PostService {
	return &PostService{
		repo:        repo,
		idGenerator: idGenerator,
		notifier:    notifier,
		now:         time.Now,
		log:         log,
	}
}

type CreateInput struct {
	Title   string
	Content string
}

type UpdateInput struct {
	Title   string
	Content string
}

func (s *PostService) List(ctx context.Context) ([]domain.PostWithAuthor, error) {
	posts, err := s.repo.List(ctx)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "list_posts_failed",
		}).Errorf("list posts failed: %v", err)
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id domain.ID) (domain.PostWithAuthor, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			return domain.PostWithAuthor{}, commonerrors.ErrPostNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"action":  "get_post_failed",
		}).Errorf("get post failed: %v", err)
		return domain.PostWithAuthor{}, commonerrors.ErrInternalError.WithCause(err)
	}
	return post, nil
}

// Create builds a post owned by the caller. The author fields are taken
// from the verified identity, never from the request body.
func (s *PostService) Create(ctx context.Context, input CreateInput, caller Identity) (domain.Post, error) {
	id, err := s.idGenerator.NewID()
	if err != nil {
		return domain.Post{}, err
	}

	now := s.now()
	post := domain.Post{
		ID:         domain.ID(id),
		Title:      input.Title,
		Content:    input.Content,
		AuthorID:   caller.UserID,
		AuthorName: caller.Username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": id,
			"user_id": caller.UserID,
			"action":  "create_post_failed",
		}).Errorf("create post failed: %v", err)
		return domain.Post{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": id,
		"user_id": caller.UserID,
		"action":  "create_post_success",
	}).Info("post created")
	incrementPostsCreated()
	s.notifyPostsChanged()

	return post, nil
}

// Update overwrites title, content and the updated timestamp. The post is
// resolved first so a missing id answers not-found before any ownership
// verdict.
func (s *PostService) Update(ctx context.Context, id domain.ID, input UpdateInput, callerID string) (domain.Post, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return domain.Post{}, err
	}

	if existing.AuthorID != callerID {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"user_id": callerID,
			"action":  "update_post_denied",
		}).Warn("update denied: caller is not the author")
		incrementOwnershipDenied()
		return domain.Post{}, commonerrors.ErrNotPostAuthor
	}

	updated := existing.Post
	updated.Title = input.Title
	updated.Content = input.Content
	updated.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, updated); err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			return domain.Post{}, commonerrors.ErrPostNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"user_id": callerID,
			"action":  "update_post_failed",
		}).Errorf("update post failed: %v", err)
		return domain.Post{}, commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": string(id),
		"user_id": callerID,
		"action":  "update_post_success",
	}).Info("post updated")
	incrementPostsUpdated()
	s.notifyPostsChanged()

	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, id domain.ID, callerID string) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if existing.AuthorID != callerID {
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"user_id": callerID,
			"action":  "delete_post_denied",
		}).Warn("delete denied: caller is not the author")
		incrementOwnershipDenied()
		return commonerrors.ErrNotPostAuthor
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			return commonerrors.ErrPostNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"post_id": string(id),
			"user_id": callerID,
			"action":  "delete_post_failed",
		}).Errorf("delete post failed: %v", err)
		return commonerrors.ErrInternalError.WithCause(err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"post_id": string(id),
		"user_id": callerID,
		"action":  "delete_post_success",
	}).Info("post deleted")
	incrementPostsDeleted()
	s.notifyPostsChanged()

	return nil
}

func (s *PostService) notifyPostsChanged() {
	if s.notifier != nil {
		s.notifier.PostsChanged()
	}
}
