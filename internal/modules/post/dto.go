package post

import (
	"time"

	"microblog/internal/domain"
)

// PostPayload is the "post" JSON part of the multipart request. ImagePath is
// a pointer so the service can tell "field absent" (keep the current image)
// from "explicitly empty" (detach and delete it). Title, description and
// hashtags are always full-replace on update.
type PostPayload struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"max=1000"`
	Hashtags    string  `json:"hashtags" validate:"max=500"`
	ImagePath   *string `json:"imagePath"`
}

type OwnerResponse struct {
	Username string `json:"username"`
}

// PostResponse keeps the original API field names (camelCase) for
// client compatibility.
type PostResponse struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImagePath   string        `json:"imagePath,omitempty"`
	Hashtags    string        `json:"hashtags"`
	CreatedAt   time.Time     `json:"createdAt"`
	User        OwnerResponse `json:"user"`
}

// PageResponse mirrors the paging envelope clients already consume:
// content plus 0-based page number and first/last markers.
type PageResponse struct {
	Content    []PostResponse `json:"content"`
	TotalPages int            `json:"totalPages"`
	Number     int            `json:"number"`
	First      bool           `json:"first"`
	Last       bool           `json:"last"`
}

func toPostResponse(p *domain.Post) PostResponse {
	return PostResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImagePath:   p.Image(),
		Hashtags:    p.Hashtags,
		CreatedAt:   p.CreatedAt,
		User:        OwnerResponse{Username: p.User.Username},
	}
}

func toPageResponse(posts []domain.Post, total int64, page, size int) PageResponse {
	content := make([]PostResponse, 0, len(posts))
	for i := range posts {
		content = append(content, toPostResponse(&posts[i]))
	}

	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}

	return PageResponse{
		Content:    content,
		TotalPages: totalPages,
		Number:     page,
		First:      page == 0,
		Last:       page >= totalPages-1,
	}
}
