package post

import (
	"context"
	"errors"
	"mime/multipart"

	"gorm.io/gorm"

	"microblog/internal/domain"
)

// Service implements post CRUD with the image-file lifecycle. File writes
// happen before the row commit; file deletions happen after, so a crash can
// orphan a file on disk but never leaves a committed row pointing at a
// missing file.
type Service struct {
	posts PostRepository
	media MediaStore
}

func NewService(posts PostRepository, media MediaStore) *Service {
	return &Service{posts: posts, media: media}
}

// Create stores the optional image, then the row. Owner and creation time
// are stamped server-side; the payload cannot supply either.
func (s *Service) Create(ctx context.Context, ownerID int64, payload PostPayload, image *multipart.FileHeader) (*domain.Post, error) {
	var imagePath string
	if image != nil {
		path, err := s.media.Save(image)
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	p := &domain.Post{
		Title:       payload.Title,
		Description: payload.Description,
		Hashtags:    payload.Hashtags,
		UserID:      ownerID,
	}
	if imagePath != "" {
		p.ImagePath = &imagePath
	}

	if err := s.posts.Create(ctx, p); err != nil {
		if imagePath != "" {
			_ = s.media.Delete(imagePath)
		}
		return nil, err
	}

	return s.posts.GetByID(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns a page ordered by creation time descending. A non-empty tag
// filters posts whose hashtags contain the tag as a substring.
func (s *Service) List(ctx context.Context, tag string, page, size int) ([]domain.Post, int64, error) {
	return s.posts.List(ctx, tag, page, size)
}

// Update overwrites title/description/hashtags and applies the image rules:
// a new upload replaces the stored file, an explicitly empty imagePath with
// no upload detaches and deletes it, an absent field leaves it untouched.
func (s *Service) Update(ctx context.Context, id int64, payload PostPayload, image *multipart.FileHeader) (*domain.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Title = payload.Title
	p.Description = payload.Description
	p.Hashtags = payload.Hashtags

	oldPath := p.Image()

	switch {
	case image != nil:
		newPath, err := s.media.Save(image)
		if err != nil {
			return nil, err
		}
		p.ImagePath = &newPath
		if err := s.posts.Save(ctx, p); err != nil {
			_ = s.media.Delete(newPath)
			return nil, err
		}
		if oldPath != "" && oldPath != newPath {
			if err := s.media.Delete(oldPath); err != nil {
				return nil, err
			}
		}

	case payload.ImagePath != nil && *payload.ImagePath == "":
		p.ImagePath = nil
		if err := s.posts.Save(ctx, p); err != nil {
			return nil, err
		}
		if oldPath != "" {
			if err := s.media.Delete(oldPath); err != nil {
				return nil, err
			}
		}

	default:
		if err := s.posts.Save(ctx, p); err != nil {
			return nil, err
		}
	}

	return s.posts.GetByID(ctx, p.ID)
}

// Delete removes the stored image first, then the row. A file-system
// failure aborts the delete and surfaces; there is no automatic retry.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if path := p.Image(); path != "" {
		if err := s.media.Delete(path); err != nil {
			return err
		}
	}

	return s.posts.Delete(ctx, p)
}
