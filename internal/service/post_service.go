package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/blog-api/internal/cache"
	"github.com/d60-Lab/blog-api/internal/model"
	"github.com/d60-Lab/blog-api/internal/repository"
)

// PostService mediates every read and write of the post collection
// between the store and the snapshot cache. Mutations are durable-first:
// the row is committed before the cache slot is dropped, so a failed
// invalidation leaves a stale snapshot (bounded by the TTL) but never
// loses a write.
type PostService interface {
	FetchAll(ctx context.Context) ([]model.Post, error)
	GetOne(ctx context.Context, id uint) (*model.Post, error)
	Create(ctx context.Context, authorID uint, title, content string) (*model.Post, error)
	Update(ctx context.Context, id, authorID uint, title, content string) (*model.Post, error)
	Delete(ctx context.Context, id, authorID uint) error
}

type postService struct {
	posts  repository.PostRepository
	cache  *cache.PostCollectionCache
	logger *zap.Logger
}

func NewPostService(posts repository.PostRepository, c *cache.PostCollectionCache, logger *zap.Logger) PostService {
	return &postService{posts: posts, cache: c, logger: logger}
}

// FetchAll serves the collection from the snapshot when present, and
// repopulates it from the store on a miss. A cache transport failure
// degrades to a direct store read.
func (s *postService) FetchAll(ctx context.Context) ([]model.Post, error) {
	cached, ok, err := s.cache.GetAll(ctx)
	if err != nil {
		s.logger.Warn("post cache read failed, falling back to store", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAll(ctx, posts); err != nil {
		s.logger.Warn("post cache population failed", zap.Error(err))
	}
	return posts, nil
}

// GetOne always reads the store; single posts are intentionally never
// cached, only the full collection is.
func (s *postService) GetOne(ctx context.Context, id uint) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) Create(ctx context.Context, authorID uint, title, content string) (*model.Post, error) {
	post := &model.Post{Title: title, Content: content, AuthorID: authorID}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx, post.ID)
	return post, nil
}

func (s *postService) Update(ctx context.Context, id, authorID uint, title, content string) (*model.Post, error) {
	post, err := s.authorize(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.Content = content
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.invalidate(ctx, post.ID)
	return post, nil
}

func (s *postService) Delete(ctx context.Context, id, authorID uint) error {
	post, err := s.authorize(ctx, id, authorID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	s.invalidate(ctx, post.ID)
	return nil
}

// authorize loads the post and checks ownership. No store write and no
// invalidation happen when this fails.
func (s *postService) authorize(ctx context.Context, id, authorID uint) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	if post.AuthorID != authorID {
		return nil, ErrForbidden
	}
	return post, nil
}

// invalidate drops the collection snapshot after a committed mutation.
// The write already succeeded, so a cache failure here is surfaced as a
// warning instead of failing the request; staleness stays bounded by
// the snapshot TTL.
func (s *postService) invalidate(ctx context.Context, postID uint) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("post cache invalidation failed after mutation",
			zap.Uint("post_id", postID),
			zap.Error(err))
	}
}
