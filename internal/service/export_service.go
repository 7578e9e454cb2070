package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"driftblog/internal/domain"
	"driftblog/internal/metrics"
	"driftblog/internal/repository"
)

// timeFormat is the timestamp layout used in CSV exports.
const timeFormat = time.RFC3339

// ExportService streams articles or comments to a writer in CSV or NDJSON
// format. Rows are streamed straight from the repository with O(1) memory.
type ExportService struct {
	articleRepo repository.ArticleRepository
	commentRepo repository.CommentRepository
}

// NewExportService creates a new ExportService.
func NewExportService(articleRepo repository.ArticleRepository, commentRepo repository.CommentRepository) *ExportService {
	return &ExportService{
		articleRepo: articleRepo,
		commentRepo: commentRepo,
	}
}

// ValidExportResources lists the streamable resource types.
var ValidExportResources = []string{"articles", "comments"}

// IsValidExportResource checks if a resource type can be exported.
func IsValidExportResource(resource string) bool {
	for _, r := range ValidExportResources {
		if r == resource {
			return true
		}
	}
	return false
}

// ValidExportFormats lists the supported output formats.
var ValidExportFormats = []string{"csv", "ndjson"}

// IsValidExportFormat checks if an export format is supported.
func IsValidExportFormat(format string) bool {
	for _, f := range ValidExportFormats {
		if f == format {
			return true
		}
	}
	return false
}

// Stream writes all rows of the resource to w and returns the record count.
func (s *ExportService) Stream(ctx context.Context, w io.Writer, resource, format string) (int, error) {
	timer := metrics.NewTimer()

	var count int
	var err error
	switch resource {
	case "articles":
		count, err = s.streamArticles(ctx, w, format)
	case "comments":
		count, err = s.streamComments(ctx, w, format)
	default:
		return 0, fmt.Errorf("unsupported export resource: %s", resource)
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.ExportsTotal.WithLabelValues(resource, format, result).Inc()
	timer.ObserveDuration(metrics.ExportDuration.WithLabelValues(resource, format))

	return count, err
}

func (s *ExportService) streamArticles(ctx context.Context, w io.Writer, format string) (int, error) {
	count := 0

	if format == "csv" {
		writer := csv.NewWriter(w)
		header := []string{"id", "title", "body", "image_path", "author_id", "is_published", "meta_description", "views_count", "created_at", "updated_at"}
		if err := writer.Write(header); err != nil {
			return count, fmt.Errorf("write csv header: %w", err)
		}

		err := s.articleRepo.StreamAll(ctx, func(a domain.Article) error {
			imagePath := ""
			if a.ImagePath != nil {
				imagePath = *a.ImagePath
			}
			record := []string{
				a.ID, a.Title, a.Body, imagePath, a.AuthorID,
				strconv.FormatBool(a.Published), a.MetaDescription,
				strconv.Itoa(a.ViewsCount),
				a.CreatedAt.Format(timeFormat), a.UpdatedAt.Format(timeFormat),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
			count++
			return nil
		})
		writer.Flush()
		if err != nil {
			return count, err
		}
		return count, writer.Error()
	}

	encoder := json.NewEncoder(w)
	err := s.articleRepo.StreamAll(ctx, func(a domain.Article) error {
		if err := encoder.Encode(a); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

func (s *ExportService) streamComments(ctx context.Context, w io.Writer, format string) (int, error) {
	count := 0

	if format == "csv" {
		writer := csv.NewWriter(w)
		header := []string{"id", "article_id", "author_id", "parent_id", "content", "state", "is_edited", "created_at", "updated_at"}
		if err := writer.Write(header); err != nil {
			return count, fmt.Errorf("write csv header: %w", err)
		}

		err := s.commentRepo.StreamAll(ctx, func(c domain.Comment) error {
			authorID := ""
			if c.AuthorID != nil {
				authorID = *c.AuthorID
			}
			parentID := ""
			if c.ParentID != nil {
				parentID = *c.ParentID
			}
			record := []string{
				c.ID, c.ArticleID, authorID, parentID, c.Content,
				string(c.State), strconv.FormatBool(c.Edited),
				c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
			count++
			return nil
		})
		writer.Flush()
		if err != nil {
			return count, err
		}
		return count, writer.Error()
	}

	encoder := json.NewEncoder(w)
	err := s.commentRepo.StreamAll(ctx, func(c domain.Comment) error {
		if err := encoder.Encode(c); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
