package post

import (
	"context"
	"mime/multipart"

	"microblog/internal/domain"
)

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) error
	GetByID(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, tag string, page, size int) ([]domain.Post, int64, error)
	Save(ctx context.Context, p *domain.Post) error
	Delete(ctx context.Context, p *domain.Post) error
}

// MediaStore manages the stored image files referenced by posts.
type MediaStore interface {
	Save(fh *multipart.FileHeader) (string, error)
	Delete(path string) error
}
