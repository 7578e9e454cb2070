package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"driftblog/internal/domain"
)

// PostgresArticleRepository implements ArticleRepository using PostgreSQL.
type PostgresArticleRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresArticleRepository creates a new PostgresArticleRepository.
func NewPostgresArticleRepository(pool *pgxpool.Pool) *PostgresArticleRepository {
	return &PostgresArticleRepository{pool: pool}
}

// Create inserts an article. Titles are unique case-insensitively; a
// conflict maps to domain.ErrDuplicateTitle.
func (r *PostgresArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO articles (id, title, body, image_path, author_id, is_published,
			meta_description, views_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, article.ID, article.Title, article.Body, article.ImagePath, article.AuthorID,
		article.Published, article.MetaDescription, article.ViewsCount,
		article.CreatedAt, article.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			strings.Contains(pgErr.ConstraintName, "title") {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("insert article: %w", err)
	}

	return nil
}

// GetByID retrieves an article by ID. Returns nil when no row matches.
func (r *PostgresArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	var a domain.Article

	err := r.pool.QueryRow(ctx, `
		SELECT id, title, body, image_path, author_id, is_published,
			meta_description, views_count, created_at, updated_at
		FROM articles
		WHERE id = $1
	`, id).Scan(&a.ID, &a.Title, &a.Body, &a.ImagePath, &a.AuthorID, &a.Published,
		&a.MetaDescription, &a.ViewsCount, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}

	return &a, nil
}

// List retrieves articles matching the filter, newest first.
func (r *PostgresArticleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.Article, error) {
	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.PublishedOnly {
		conditions = append(conditions, "a.is_published = TRUE")
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(a.title ILIKE $%d OR a.body ILIKE $%d OR u.username ILIKE $%d)", argNum, argNum, argNum))
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}
	if filter.AuthorUsername != "" {
		conditions = append(conditions, fmt.Sprintf("u.username = $%d", argNum))
		args = append(args, filter.AuthorUsername)
		argNum++
	}

	query := `
		SELECT a.id, a.title, a.body, a.image_path, a.author_id, a.is_published,
			a.meta_description, a.views_count, a.created_at, a.updated_at
		FROM articles a
		JOIN users u ON u.id = a.author_id`
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\t\tORDER BY a.created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.ImagePath, &a.AuthorID, &a.Published,
			&a.MetaDescription, &a.ViewsCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, a)
	}

	return articles, rows.Err()
}

// Update persists mutable article fields. Title conflicts map to
// domain.ErrDuplicateTitle.
func (r *PostgresArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles
		SET title = $2, body = $3, is_published = $4, meta_description = $5, updated_at = $6
		WHERE id = $1
	`, article.ID, article.Title, article.Body, article.Published,
		article.MetaDescription, article.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" &&
			strings.Contains(pgErr.ConstraintName, "title") {
			return domain.ErrDuplicateTitle
		}
		return fmt.Errorf("update article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes an article. Comments cascade at the database level.
func (r *PostgresArticleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// IncrementViews atomically increments the view counter by one. Only the
// counter column is touched.
func (r *PostgresArticleRepository) IncrementViews(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles SET views_count = views_count + 1 WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetImagePath updates only the image path column.
func (r *PostgresArticleRepository) SetImagePath(ctx context.Context, id string, path *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE articles SET image_path = $2, updated_at = NOW() WHERE id = $1
	`, id, path)
	if err != nil {
		return fmt.Errorf("set image path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetPublished flips the publication flag on the given articles and
// returns how many rows changed.
func (r *PostgresArticleRepository) SetPublished(ctx context.Context, ids []string, published bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE articles SET is_published = $2, updated_at = NOW() WHERE id = ANY($1)
	`, ids, published)
	if err != nil {
		return 0, fmt.Errorf("set published: %w", err)
	}

	return tag.RowsAffected(), nil
}

// StreamAll streams all articles for export with O(1) memory.
func (r *PostgresArticleRepository) StreamAll(ctx context.Context, callback func(domain.Article) error) error {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, body, image_path, author_id, is_published,
			meta_description, views_count, created_at, updated_at
		FROM articles
		ORDER BY created_at
	`)
	if err != nil {
		return fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Article
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.ImagePath, &a.AuthorID, &a.Published,
			&a.MetaDescription, &a.ViewsCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return fmt.Errorf("scan article: %w", err)
		}

		if err := callback(a); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("callback error: %w", err)
		}
	}

	return rows.Err()
}
