package domain

import "time"

// CommentState represents the lifecycle state of a comment.
type CommentState string

const (
	CommentStateActive  CommentState = "active"
	CommentStateDeleted CommentState = "deleted"
)

const (
	// MaxReplyDepth is the cap used when walking a comment's ancestry.
	MaxReplyDepth = 3

	// MaxNestingLevel is the deepest parent a reply may attach to. A reply
	// to a parent at this depth or beyond is rejected, so real nesting
	// stops at depth 2 even though Depth can report up to 3.
	MaxNestingLevel = 2

	// DeletedContent replaces the content of a soft-deleted comment.
	DeletedContent = "[comentario eliminado]"
)

// Comment represents a comment entity in the system. AuthorID is nil only
// for soft-deleted comments whose author reference has been cleared.
type Comment struct {
	ID        string       `json:"id"`
	ArticleID string       `json:"article_id"`
	AuthorID  *string      `json:"author_id,omitempty"`
	ParentID  *string      `json:"parent_id,omitempty"`
	Content   string       `json:"content"`
	State     CommentState `json:"state"`
	Edited    bool         `json:"is_edited"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentID == nil
}

// IsDeleted reports whether the comment has been soft-deleted.
func (c *Comment) IsDeleted() bool {
	return c.State == CommentStateDeleted
}

// CanEdit reports whether the user may edit this comment.
func (c *Comment) CanEdit(u *User) bool {
	if u == nil || c.IsDeleted() {
		return false
	}
	return (c.AuthorID != nil && *c.AuthorID == u.ID) || u.IsStaff()
}

// CanDelete reports whether the user may delete this comment. The article
// author may moderate comments on their own articles.
func (c *Comment) CanDelete(u *User, articleAuthorID string) bool {
	if u == nil {
		return false
	}
	if c.AuthorID != nil && *c.AuthorID == u.ID {
		return true
	}
	return u.IsStaff() || u.ID == articleAuthorID
}
