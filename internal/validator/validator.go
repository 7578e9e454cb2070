package validator

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"driftblog/internal/domain"
)

const (
	// MinTitleLength and MaxTitleLength bound article titles.
	MinTitleLength = 5
	MaxTitleLength = 255

	// MinBodyLength is the minimum article body length in characters.
	MinBodyLength = 50

	// MinContentLength and MaxContentLength bound comment content.
	MinContentLength = 5
	MaxContentLength = 1000

	// MaxMetaDescriptionLength bounds the SEO meta description.
	MaxMetaDescriptionLength = domain.MetaDescriptionMaxLength
)

var validRoles = []interface{}{"admin", "user", "moderator"}

// Validator provides validation methods for domain entities.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateUser validates a User entity.
func (v *Validator) ValidateUser(u *domain.User) error {
	return validation.ValidateStruct(u,
		validation.Field(&u.Username,
			validation.Required.Error("username_required"),
		),
		validation.Field(&u.Email,
			validation.Required.Error("email_required"),
			is.Email.Error("invalid_email_format"),
		),
		validation.Field(&u.Role,
			validation.Required.Error("role_required"),
			validation.In(validRoles...).Error("invalid_role"),
		),
	)
}

// ValidateArticle validates an Article entity.
func (v *Validator) ValidateArticle(a *domain.Article) error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Title,
			validation.Required.Error("title_required"),
			validation.Length(MinTitleLength, MaxTitleLength).Error("title_length_out_of_range"),
		),
		validation.Field(&a.Body,
			validation.Required.Error("body_required"),
			validation.Length(MinBodyLength, 0).Error("body_too_short"),
		),
		validation.Field(&a.AuthorID,
			validation.Required.Error("author_id_required"),
		),
		validation.Field(&a.MetaDescription,
			validation.Length(0, MaxMetaDescriptionLength).Error("meta_description_too_long"),
		),
	)
}

// ValidateCommentContent validates comment content against the length
// bounds. Used for both creation and edits.
func (v *Validator) ValidateCommentContent(content string) error {
	return validation.Validate(content,
		validation.Required.Error("content_required"),
		validation.Length(MinContentLength, MaxContentLength).Error("content_length_out_of_range"),
	)
}

// ValidateComment validates a Comment entity.
func (v *Validator) ValidateComment(c *domain.Comment) error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Content,
			validation.Required.Error("content_required"),
			validation.Length(MinContentLength, MaxContentLength).Error("content_length_out_of_range"),
		),
		validation.Field(&c.ArticleID,
			validation.Required.Error("article_id_required"),
		),
		validation.Field(&c.AuthorID,
			validation.Required.Error("author_id_required"),
		),
	)
}

// FieldErrors flattens an ozzo validation error into a field -> reason map
// suitable for API responses. Non-validation errors map to a single
// "unknown" entry.
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	if ve, ok := err.(validation.Errors); ok {
		for field, fieldErr := range ve {
			fields[field] = fieldErr.Error()
		}
	} else {
		fields["unknown"] = err.Error()
	}
	return fields
}

// IsValidationError reports whether err came from ozzo validation.
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(validation.Errors); ok {
		return true
	}
	_, ok := err.(validation.Error)
	return ok
}
