package repository

import (
	"context"

	"gorm.io/gorm"

	"microblog/internal/domain"
)

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	var p domain.Post
	tx := r.db.WithContext(ctx).Preload("User").First(&p, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &p, nil
}

// List returns one page of posts ordered by creation time descending, plus
// the total row count. tag, when non-empty, filters by substring containment
// of the hashtags column (original behavior, deliberately not exact match).
func (r *PostRepository) List(ctx context.Context, tag string, page, size int) ([]domain.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Post{})
	if tag != "" {
		q = q.Where("hashtags LIKE ?", "%"+tag+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []domain.Post
	// id DESC tie-break keeps paging stable for posts created in the same instant
	err := q.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(page * size).
		Find(&posts).Error
	return posts, total, err
}

func (r *PostRepository) Save(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *PostRepository) Delete(ctx context.Context, p *domain.Post) error {
	return r.db.WithContext(ctx).Delete(p).Error
}
