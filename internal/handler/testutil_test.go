package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"driftblog/internal/domain"
	"driftblog/internal/middleware"
	"driftblog/internal/mocks"
	"driftblog/internal/service"
	"driftblog/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubMediaStore satisfies service.MediaStore without touching disk.
type stubMediaStore struct {
	processErr error
}

func (s *stubMediaStore) Save(title, filename string, size int64, r io.Reader) (string, error) {
	return "articles/" + filename, nil
}

func (s *stubMediaStore) Process(path string) error { return s.processErr }

func (s *stubMediaStore) Remove(path string) error { return nil }

// apiFixture wires the full route table against in-memory repositories.
type apiFixture struct {
	router   *gin.Engine
	users    *mocks.MockUserRepository
	articles *mocks.MockArticleRepository
	comments *mocks.MockCommentRepository
	media    *stubMediaStore
}

func newAPIFixture() *apiFixture {
	users := mocks.NewMockUserRepository()
	articles := mocks.NewMockArticleRepository(users)
	comments := mocks.NewMockCommentRepository(articles)
	mediaStore := &stubMediaStore{}
	v := validator.NewValidator()

	userHandler := NewUserHandler(service.NewUserService(users, v))
	articleHandler := NewArticleHandler(service.NewArticleService(articles, users, v, mediaStore))
	commentHandler := NewCommentHandler(service.NewCommentService(articles, comments, v))
	adminHandler := NewAdminHandler(
		service.NewArticleService(articles, users, v, mediaStore),
		service.NewExportService(articles, comments),
	)

	router := gin.New()
	router.Use(middleware.RequestID())

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Actor(users))
	{
		v1.POST("/users", userHandler.Create)
		v1.GET("/users/:id", userHandler.Get)

		v1.GET("/articles", articleHandler.List)
		v1.POST("/articles", articleHandler.Create)
		v1.GET("/articles/:id", articleHandler.Get)
		v1.PUT("/articles/:id", articleHandler.Update)
		v1.DELETE("/articles/:id", articleHandler.Delete)
		v1.POST("/articles/:id/image", articleHandler.AttachImage)

		v1.GET("/articles/:id/comments", commentHandler.ListByArticle)
		v1.POST("/articles/:id/comments", commentHandler.Create)
		v1.POST("/articles/:id/comments/:commentID/replies", commentHandler.Reply)
		v1.PUT("/articles/:id/comments/:commentID", commentHandler.Edit)
		v1.DELETE("/articles/:id/comments/:commentID", commentHandler.Delete)

		v1.GET("/authors/:username/articles", articleHandler.ListByAuthor)
		v1.GET("/comments/mine", commentHandler.Mine)
		v1.GET("/moderation/comments", commentHandler.Moderation)

		v1.POST("/admin/articles/published", adminHandler.SetPublished)
		v1.GET("/admin/exports", adminHandler.Export)
	}

	return &apiFixture{
		router:   router,
		users:    users,
		articles: articles,
		comments: comments,
		media:    mediaStore,
	}
}

func (f *apiFixture) seedUser(id, role string) *domain.User {
	u := &domain.User{
		ID:       id,
		Username: id,
		Email:    id + "@example.com",
		Role:     role,
		Active:   true,
	}
	f.users.Users[id] = u
	return u
}

// do performs a JSON request as the given user. An empty userID makes an
// anonymous request.
func (f *apiFixture) do(t *testing.T, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.ActorHeader, userID)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), "body: %s", w.Body.String())
}

func validArticleBody() map[string]any {
	return map[string]any{
		"title": "Trazadas y transferencias de peso",
		"body": "Una explicación extensa sobre cómo la transferencia de peso " +
			"condiciona la trazada ideal en cada curva del circuito.",
	}
}

func (f *apiFixture) createArticle(t *testing.T, authorID string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/articles", validArticleBody(), authorID)
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var resp ArticleResponse
	decodeJSON(t, w, &resp)
	return resp.ID
}
