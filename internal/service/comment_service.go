package service

import (
	"context"
	"fmt"
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

// CommentService enforces the comment tree rules: parent/child
// relationships, depth limits, and the soft-delete policy.
type CommentService struct {
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
	validator   *validator.Validator
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	articleRepo repository.ArticleRepository,
	commentRepo repository.CommentRepository,
	v *validator.Validator,
) *CommentService {
	return &CommentService{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
		validator:   v,
	}
}

// CommentNode is a comment with its direct replies, for article feeds.
type CommentNode struct {
	domain.Comment
	Replies []CommentNode `json:"replies,omitempty"`
}

// CreateRootComment creates a top-level comment on a published article.
// The edited flag is never set at creation time.
func (s *CommentService) CreateRootComment(ctx context.Context, articleID string, author *domain.User, content string) (*domain.Comment, error) {
	return s.create(ctx, articleID, author, nil, content)
}

// CreateReply creates a reply to an existing comment. Fails with
// domain.ErrDepthExceeded when the parent already sits at the maximum
// nesting level, and with domain.ErrCrossArticleParent when the parent
// belongs to a different article.
func (s *CommentService) CreateReply(ctx context.Context, articleID string, author *domain.User, parentID, content string) (*domain.Comment, error) {
	parent, err := s.commentRepo.GetByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("load parent comment: %w", err)
	}
	if parent == nil {
		return nil, domain.ErrNotFound
	}
	if parent.ArticleID != articleID {
		return nil, domain.ErrCrossArticleParent
	}

	depth, err := s.Depth(ctx, parent)
	if err != nil {
		return nil, err
	}
	if depth >= domain.MaxNestingLevel {
		return nil, domain.ErrDepthExceeded
	}

	return s.create(ctx, articleID, author, &parentID, content)
}

func (s *CommentService) create(ctx context.Context, articleID string, author *domain.User, parentID *string, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if err := s.validator.ValidateCommentContent(content); err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}
	if !article.Published {
		return nil, domain.ErrNotPublished
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		AuthorID:  &author.ID,
		ParentID:  parentID,
		Content:   content,
		State:     domain.CommentStateActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	metrics.CommentsCreated.WithLabelValues(commentKind(parentID)).Inc()
	logger.Info("comment created",
		slog.String("comment_id", comment.ID),
		slog.String("article_id", articleID),
		slog.String("author_id", author.ID))

	return comment, nil
}

func commentKind(parentID *string) string {
	if parentID == nil {
		return "root"
	}
	return "reply"
}

// EditComment replaces a comment's content. Only the comment's author or
// staff may edit; the edited flag is set on every save after the first.
func (s *CommentService) EditComment(ctx context.Context, commentID string, editor *domain.User, newContent string) (*domain.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("load comment: %w", err)
	}
	if comment == nil {
		return nil, domain.ErrNotFound
	}
	if !comment.CanEdit(editor) {
		return nil, domain.ErrPermissionDenied
	}

	newContent = strings.TrimSpace(newContent)
	if err := s.validator.ValidateCommentContent(newContent); err != nil {
		return nil, err
	}

	comment.Content = newContent
	comment.Edited = true
	comment.UpdatedAt = time.Now()

	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment. A comment with replies is soft-deleted:
// its content is replaced with a sentinel and the author reference is
// cleared, preserving the subtree. A leaf comment is removed outright.
// The actor must be the comment's author, staff, or the article's author.
func (s *CommentService) DeleteComment(ctx context.Context, commentID string, actor *domain.User) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("load comment: %w", err)
	}
	if comment == nil {
		return domain.ErrNotFound
	}

	article, err := s.articleRepo.GetByID(ctx, comment.ArticleID)
	if err != nil {
		return fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return domain.ErrNotFound
	}

	if !comment.CanDelete(actor, article.AuthorID) {
		return domain.ErrPermissionDenied
	}

	hasReplies, err := s.commentRepo.HasReplies(ctx, commentID)
	if err != nil {
		return fmt.Errorf("check replies: %w", err)
	}

	if hasReplies {
		if err := s.commentRepo.SoftDelete(ctx, commentID); err != nil {
			return fmt.Errorf("soft delete comment: %w", err)
		}
		metrics.CommentsDeleted.WithLabelValues("soft").Inc()
	} else {
		if err := s.commentRepo.Delete(ctx, commentID); err != nil {
			return fmt.Errorf("delete comment: %w", err)
		}
		metrics.CommentsDeleted.WithLabelValues("hard").Inc()
	}

	logger.Info("comment deleted",
		slog.String("comment_id", commentID),
		slog.String("actor_id", actor.ID),
		slog.Bool("soft", hasReplies))

	return nil
}

// Depth walks the parent chain and returns the number of ancestor hops to
// the nearest root, capped at domain.MaxReplyDepth. Depth is recomputed
// rather than stored; the walk is bounded so the lookup cost stays small.
func (s *CommentService) Depth(ctx context.Context, comment *domain.Comment) (int, error) {
	depth := 0
	current := comment

	for current.ParentID != nil && depth < domain.MaxReplyDepth {
		parent, err := s.commentRepo.GetByID(ctx, *current.ParentID)
		if err != nil {
			return 0, fmt.Errorf("walk parent chain: %w", err)
		}
		if parent == nil {
			break
		}
		depth++
		current = parent
	}

	return depth, nil
}

// ListByArticle returns the comment tree for an article: root comments
// newest first, each with its replies oldest first.
func (s *CommentService) ListByArticle(ctx context.Context, articleID string) ([]CommentNode, error) {
	article, err := s.articleRepo.GetByID(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("load article: %w", err)
	}
	if article == nil {
		return nil, domain.ErrNotFound
	}

	comments, err := s.commentRepo.ListByArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	return buildTree(comments), nil
}

// buildTree assembles flat rows (ordered oldest first) into nested nodes.
// Roots are reversed to newest-first for display; replies keep their
// oldest-first order.
func buildTree(comments []domain.Comment) []CommentNode {
	children := make(map[string][]domain.Comment)
	var roots []domain.Comment

	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			children[*c.ParentID] = append(children[*c.ParentID], c)
		}
	}

	var attach func(c domain.Comment) CommentNode
	attach = func(c domain.Comment) CommentNode {
		node := CommentNode{Comment: c}
		for _, child := range children[c.ID] {
			node.Replies = append(node.Replies, attach(child))
		}
		return node
	}

	nodes := make([]CommentNode, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		nodes = append(nodes, attach(roots[i]))
	}
	return nodes
}

// ListByAuthor returns the comments a user has written, newest first.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Comment, error) {
	comments, err := s.commentRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("list comments by author: %w", err)
	}
	return comments, nil
}

// ListForModeration returns comments left on any of the actor's articles,
// newest first.
func (s *CommentService) ListForModeration(ctx context.Context, actor *domain.User) ([]domain.Comment, error) {
	comments, err := s.commentRepo.ListByArticleAuthor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments for moderation: %w", err)
	}
	return comments, nil
}
