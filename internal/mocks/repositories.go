// Package mocks provides in-memory repository fakes for unit tests.
package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"driftblog/internal/domain"
	"driftblog/internal/repository"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.Mutex
	Users map[string]*domain.User
	Err   error
}

// NewMockUserRepository creates an empty MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{Users: make(map[string]*domain.User)}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.Users {
		if existing.Username == user.Username {
			return domain.ErrDuplicateUsername
		}
	}
	u := *user
	m.Users[user.ID] = &u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

// MockArticleRepository is an in-memory implementation of ArticleRepository.
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[string]*domain.Article
	Users    *MockUserRepository
	Err      error

	IncrementViewsCalls int
	SetImagePathCalls   int
}

// NewMockArticleRepository creates an empty MockArticleRepository. The
// user repository is used to resolve author usernames in List.
func NewMockArticleRepository(users *MockUserRepository) *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[string]*domain.Article), Users: users}
}

func (m *MockArticleRepository) Create(ctx context.Context, article *domain.Article) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Articles {
		if strings.EqualFold(a.Title, article.Title) {
			return domain.ErrDuplicateTitle
		}
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id string) (*domain.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Articles[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (m *MockArticleRepository) List(ctx context.Context, filter repository.ArticleFilter) ([]domain.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []domain.Article
	for _, a := range m.Articles {
		if filter.PublishedOnly && !a.Published {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(a.Title), needle) &&
				!strings.Contains(strings.ToLower(a.Body), needle) {
				continue
			}
		}
		if filter.AuthorUsername != "" && m.Users != nil {
			author, _ := m.Users.GetByUsername(ctx, filter.AuthorUsername)
			if author == nil || author.ID != a.AuthorID {
				continue
			}
		}
		result = append(result, *a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}

	return result, nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *domain.Article) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[article.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, a := range m.Articles {
		if id != article.ID && strings.EqualFold(a.Title, article.Title) {
			return domain.ErrDuplicateTitle
		}
	}
	copied := *article
	m.Articles[article.ID] = &copied
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Articles[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) IncrementViews(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ViewsCount++
	m.IncrementViewsCalls++
	return nil
}

func (m *MockArticleRepository) SetImagePath(ctx context.Context, id string, path *string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return domain.ErrNotFound
	}
	a.ImagePath = path
	m.SetImagePathCalls++
	return nil
}

func (m *MockArticleRepository) SetPublished(ctx context.Context, ids []string, published bool) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, id := range ids {
		if a, ok := m.Articles[id]; ok {
			a.Published = published
			updated++
		}
	}
	return updated, nil
}

func (m *MockArticleRepository) StreamAll(ctx context.Context, callback func(domain.Article) error) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	articles := make([]domain.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		articles = append(articles, *a)
	}
	m.mu.Unlock()

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].CreatedAt.Before(articles[j].CreatedAt)
	})
	for _, a := range articles {
		if err := callback(a); err != nil {
			return err
		}
	}
	return nil
}

// MockCommentRepository is an in-memory implementation of CommentRepository.
type MockCommentRepository struct {
	mu       sync.Mutex
	Comments map[string]*domain.Comment
	Articles *MockArticleRepository
	Err      error
}

// NewMockCommentRepository creates an empty MockCommentRepository. The
// article repository is used to resolve article authors in
// ListByArticleAuthor.
func NewMockCommentRepository(articles *MockArticleRepository) *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[string]*domain.Comment), Articles: articles}
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *comment
	m.Comments[comment.ID] = &copied
	return nil
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.Comments[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (m *MockCommentRepository) sorted(filter func(*domain.Comment) bool, newestFirst bool) []domain.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []domain.Comment
	for _, c := range m.Comments {
		if filter(c) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if newestFirst {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (m *MockCommentRepository) ListByArticle(ctx context.Context, articleID string) ([]domain.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(c *domain.Comment) bool { return c.ArticleID == articleID }, false), nil
}

func (m *MockCommentRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(c *domain.Comment) bool {
		return c.AuthorID != nil && *c.AuthorID == authorID
	}, true), nil
}

func (m *MockCommentRepository) ListByArticleAuthor(ctx context.Context, articleAuthorID string) ([]domain.Comment, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.sorted(func(c *domain.Comment) bool {
		if m.Articles == nil {
			return false
		}
		a, _ := m.Articles.GetByID(ctx, c.ArticleID)
		return a != nil && a.AuthorID == articleAuthorID
	}, true), nil
}

func (m *MockCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[comment.ID]; !ok {
		return domain.ErrNotFound
	}
	copied := *comment
	m.Comments[comment.ID] = &copied
	return nil
}

func (m *MockCommentRepository) SoftDelete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.Comments[id]
	if !ok {
		return domain.ErrNotFound
	}
	c.Content = domain.DeletedContent
	c.AuthorID = nil
	c.State = domain.CommentStateDeleted
	return nil
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.Comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.Comments, id)
	return nil
}

func (m *MockCommentRepository) HasReplies(ctx context.Context, id string) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.Comments {
		if c.ParentID != nil && *c.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockCommentRepository) StreamAll(ctx context.Context, callback func(domain.Comment) error) error {
	if m.Err != nil {
		return m.Err
	}
	for _, c := range m.sorted(func(*domain.Comment) bool { return true }, false) {
		if err := callback(c); err != nil {
			return err
		}
	}
	return nil
}
