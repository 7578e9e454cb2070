package repository

import (
	"context"

	"driftblog/internal/domain"
)

// ArticleFilter narrows article listings. Zero values mean "no filter".
type ArticleFilter struct {
	Search         string
	AuthorUsername string
	PublishedOnly  bool
	Limit          int
	Offset         int
}

// UserRepository defines methods for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// ArticleRepository defines methods for article data access.
type ArticleRepository interface {
	Create(ctx context.Context, article *domain.Article) error
	GetByID(ctx context.Context, id string) (*domain.Article, error)
	List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error)
	Update(ctx context.Context, article *domain.Article) error
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
	SetImagePath(ctx context.Context, id string, path *string) error
	SetPublished(ctx context.Context, ids []string, published bool) (int64, error)
	StreamAll(ctx context.Context, callback func(domain.Article) error) error
}

// CommentRepository defines methods for comment data access.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error)
	ListByArticleAuthor(ctx context.Context, articleAuthorID string) ([]domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	SoftDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	HasReplies(ctx context.Context, id string) (bool, error)
	StreamAll(ctx context.Context, callback func(domain.Comment) error) error
}
