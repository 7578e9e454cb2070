package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"driftblog/internal/domain"
)

// PostgresCommentRepository implements CommentRepository using PostgreSQL.
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository.
func NewPostgresCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `id, article_id, author_id, parent_id, content, state, is_edited, created_at, updated_at`

func scanComment(row pgx.Row) (*domain.Comment, error) {
	var c domain.Comment
	err := row.Scan(&c.ID, &c.ArticleID, &c.AuthorID, &c.ParentID, &c.Content,
		&c.State, &c.Edited, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a comment.
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (id, article_id, author_id, parent_id, content, state, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, comment.ID, comment.ArticleID, comment.AuthorID, comment.ParentID, comment.Content,
		comment.State, comment.Edited, comment.CreatedAt, comment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	return nil
}

// GetByID retrieves a comment by ID. Returns nil when no row matches.
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	c, err := scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}

	return c, nil
}

// ListByArticle retrieves all comments for an article ordered by creation
// time. Tree assembly happens in the service layer.
func (r *PostgresCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE article_id = $1 ORDER BY created_at`, articleID)
}

// ListByAuthor retrieves a user's comments, newest first.
func (r *PostgresCommentRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	return r.list(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
}

// ListByArticleAuthor retrieves comments left on any article owned by the
// given author, newest first. Used by the moderation screen.
func (r *PostgresCommentRepository) ListByArticleAuthor(ctx context.Context, articleAuthorID string) ([]domain.Comment, error) {
	return r.list(ctx, `
		SELECT c.id, c.article_id, c.author_id, c.parent_id, c.content, c.state, c.is_edited, c.created_at, c.updated_at
		FROM comments c
		JOIN articles a ON a.id = c.article_id
		WHERE a.author_id = $1
		ORDER BY c.created_at DESC
	`, articleAuthorID)
}

func (r *PostgresCommentRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Comment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}

	return comments, rows.Err()
}

// Update persists edited content and the edited flag.
func (r *PostgresCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE comments
		SET content = $2, is_edited = $3, updated_at = $4
		WHERE id = $1
	`, comment.ID, comment.Content, comment.Edited, comment.UpdatedAt)

	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// SoftDelete replaces content with the deletion sentinel and clears the
// author reference, preserving the subtree.
func (r *PostgresCommentRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE comments
		SET content = $2, author_id = NULL, state = $3, updated_at = NOW()
		WHERE id = $1
	`, id, domain.DeletedContent, domain.CommentStateDeleted)

	if err != nil {
		return fmt.Errorf("soft delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a comment row outright. Callers must ensure the comment
// has no replies first.
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HasReplies reports whether any comment references this one as parent.
func (r *PostgresCommentRepository) HasReplies(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM comments WHERE parent_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check replies: %w", err)
	}
	return exists, nil
}

// StreamAll streams all comments for export with O(1) memory.
func (r *PostgresCommentRepository) StreamAll(ctx context.Context, callback func(domain.Comment) error) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+commentColumns+` FROM comments ORDER BY created_at`)
	if err != nil {
		return fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return fmt.Errorf("scan comment: %w", err)
		}

		if err := callback(*c); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("callback error: %w", err)
		}
	}

	return rows.Err()
}
