package domain

import "time"

// Post is a single blog entry. Owner and CreatedAt are stamped server-side
// at creation and never accepted from the client.
type Post struct {
	ID          int64     `gorm:"column:id;primaryKey" json:"id"`
	Title       string    `gorm:"column:title" json:"title"`
	Description string    `gorm:"column:description;size:1000" json:"description"`
	ImagePath   *string   `gorm:"column:image_path" json:"image_path,omitempty"`
	Hashtags    string    `gorm:"column:hashtags;size:500" json:"hashtags"`
	UserID      int64     `gorm:"column:user_id" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) Image() string {
	if p.ImagePath == nil {
		return ""
	}
	return *p.ImagePath
}
