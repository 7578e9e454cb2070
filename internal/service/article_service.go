package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"driftblog/internal/domain"
	"driftblog/internal/logger"
	"driftblog/internal/metrics"
	"driftblog/internal/repository"
	"driftblog/internal/validator"
)

// MediaStore abstracts image storage and the post-save resampling hook.
type MediaStore interface {
	// Save writes an upload to disk and returns its path relative to the
	// media root.
	Save(title, filename string, size int64, r io.Reader) (string, error)
	// Process resamples the image at path so its width does not exceed
	// the configured maximum.
	Process(path string) error
	// Remove deletes the stored file.
	Remove(path string) error
}

// ArticleService implements the article lifecycle: creation, publication,
// view counting, and the image post-save hook.
type ArticleService struct {
	articleRepo repository.ArticleRepository
	userRepo    repository.UserRepository
	validator   *validator.Validator
	media       MediaStore
}

// NewArticleService creates a new ArticleService.
func NewArticleService(
	articleRepo repository.ArticleRepository,
	userRepo repository.UserRepository,
	v *validator.Validator,
	media MediaStore,
) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		userRepo:    userRepo,
		validator:   v,
		media:       media,
	}
}

// CreateArticleInput carries the fields accepted at article creation.
type CreateArticleInput struct {
	Title           string
	Body            string
	MetaDescription string
	Published       *bool
}

// Create validates and persists a new article. A missing meta description
// is generated from the first words of the body.
func (s *ArticleService) Create(ctx context.Context, author *domain.User, in CreateArticleInput) (*domain.Article, error) {
	now := time.Now()
	article := &domain.Article{
		ID:              uuid.New().String(),
		Title:           strings.TrimSpace(in.Title),
		Body:            strings.TrimSpace(in.Body),
		AuthorID:        author.ID,
		Published:       true,
		MetaDescription: strings.TrimSpace(in.MetaDescription),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if in.Published != nil {
		article.Published = *in.Published
	}

	if err := s.validator.ValidateArticle(article); err != nil {
		return nil, err
	}

	if article.MetaDescription == "" {
		article.MetaDescription = domain.AutoMetaDescription(article.Body)
	}

	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	logger.Info("article created",
		slog.String("article_id", article.ID),
		slog.String("author_id", author.ID),
		slog.String("title", article.Title))

	return article, nil
}

// UpdateArticleInput carries the fields accepted at article update. Nil
// fields are left unchanged.
type UpdateArticleInput struct {
	Title           *string
	Body            *string
	MetaDescription *string
	Published       *bool
}

// Update mutates an article. Only the author or staff may update.
func (s *ArticleService) Update(ctx context.Context, id string, actor *domain.User, in UpdateArticleInput) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if !article.CanEdit(actor) {
		return nil, domain.ErrPermissionDenied
	}

	if in.Title != nil {
		article.Title = strings.TrimSpace(*in.Title)
	}
	if in.Body != nil {
		article.Body = strings.TrimSpace(*in.Body)
	}
	if in.MetaDescription != nil {
		article.MetaDescription = strings.TrimSpace(*in.MetaDescription)
	}
	if in.Published != nil {
		article.Published = *in.Published
	}
	article.UpdatedAt = time.Now()

	if err := s.validator.ValidateArticle(article); err != nil {
		return nil, err
	}

	if err := s.articleRepo.Update(ctx, article); err != nil {
		return nil, err
	}

	s.postSave(article)

	return article, nil
}

// postSave runs the image resampling hook after a persist. Failures are
// logged and counted, never silently dropped.
func (s *ArticleService) postSave(article *domain.Article) {
	if !article.HasImage() {
		return
	}

	timer := metrics.NewTimer()
	if err := s.media.Process(*article.ImagePath); err != nil {
		metrics.ImageProcessingFailures.Inc()
		logger.WithArticleID(article.ID).Error("image processing failed",
			slog.String("image_path", *article.ImagePath),
			slog.String("error", err.Error()))
		return
	}
	timer.ObserveDuration(metrics.ImageProcessingDuration)
}

// Delete removes an article together with its comments (database cascade)
// and its stored image, if any. Only the author or staff may delete.
func (s *ArticleService) Delete(ctx context.Context, id string, actor *domain.User) error {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return domain.ErrNotFound
	}
	if !article.CanDelete(actor) {
		return domain.ErrPermissionDenied
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return err
	}

	if article.HasImage() {
		if err := s.media.Remove(*article.ImagePath); err != nil {
			logger.Warn("failed to remove article image",
				slog.String("article_id", id),
				slog.String("image_path", *article.ImagePath),
				slog.String("error", err.Error()))
		}
	}

	logger.Info("article deleted",
		slog.String("article_id", id),
		slog.String("actor_id", actor.ID))

	return nil
}

// GetPublished loads a publicly visible article and counts the view. The
// view counter is never incremented for the article's own author; for any
// other viewer it is incremented by exactly one via a single-column
// atomic update. The viewer may be nil (anonymous).
func (s *ArticleService) GetPublished(ctx context.Context, id string, viewer *domain.User) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if !article.Published && (viewer == nil || !article.CanEdit(viewer)) {
		return nil, domain.ErrNotFound
	}

	if article.Published && (viewer == nil || viewer.ID != article.AuthorID) {
		if err := s.articleRepo.IncrementViews(ctx, id); err != nil {
			return nil, fmt.Errorf("increment views: %w", err)
		}
		article.ViewsCount++
		metrics.ArticleViews.Inc()
	}

	return article, nil
}

// List returns published articles matching the query, newest first.
func (s *ArticleService) List(ctx context.Context, search, authorUsername string, limit, offset int) ([]domain.Article, error) {
	articles, err := s.articleRepo.List(ctx, repository.ArticleFilter{
		Search:         search,
		AuthorUsername: authorUsername,
		PublishedOnly:  true,
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	return articles, nil
}

// Recent returns the latest published articles, newest first.
func (s *ArticleService) Recent(ctx context.Context, limit int) ([]domain.Article, error) {
	return s.List(ctx, "", "", limit, 0)
}

// ListByAuthor returns an author's published articles, newest first.
// Fails with domain.ErrNotFound when the author does not exist.
func (s *ArticleService) ListByAuthor(ctx context.Context, username string, limit, offset int) ([]domain.Article, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load author: %w", err)
	}
	if author == nil {
		return nil, domain.ErrNotFound
	}

	return s.List(ctx, "", username, limit, offset)
}

// AttachImage stores an uploaded image for the article and runs the
// post-save resampling hook. Only the author or staff may attach.
func (s *ArticleService) AttachImage(ctx context.Context, id string, actor *domain.User, filename string, size int64, r io.Reader) (*domain.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if !article.CanEdit(actor) {
		return nil, domain.ErrPermissionDenied
	}

	oldPath := article.ImagePath

	path, err := s.media.Save(article.Title, filename, size, r)
	if err != nil {
		return nil, err
	}

	if err := s.articleRepo.SetImagePath(ctx, id, &path); err != nil {
		return nil, err
	}
	article.ImagePath = &path

	if err := s.media.Process(path); err != nil {
		metrics.ImageProcessingFailures.Inc()
		logger.WithArticleID(id).Error("image processing failed",
			slog.String("image_path", path),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("process image: %w", err)
	}

	if oldPath != nil && *oldPath != path {
		if err := s.media.Remove(*oldPath); err != nil {
			logger.Warn("failed to remove replaced image",
				slog.String("article_id", id),
				slog.String("image_path", *oldPath),
				slog.String("error", err.Error()))
		}
	}

	return article, nil
}

// SetPublished bulk publishes or unpublishes articles. Staff only.
func (s *ArticleService) SetPublished(ctx context.Context, actor *domain.User, ids []string, published bool) (int64, error) {
	if !actor.IsStaff() {
		return 0, domain.ErrPermissionDenied
	}

	updated, err := s.articleRepo.SetPublished(ctx, ids, published)
	if err != nil {
		return 0, err
	}

	logger.Info("bulk publication update",
		slog.String("actor_id", actor.ID),
		slog.Bool("published", published),
		slog.Int64("updated", updated))

	return updated, nil
}
