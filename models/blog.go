package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultAuthorName is stored when a post is created without an author.
const DefaultAuthorName = "JKUAT TECH DIGEST ADMIN"

// BlogPost is the legacy post aggregate. Comments, likes and images cascade with it.
type BlogPost struct {
	PostID        string        `gorm:"column:post_id;type:varchar(36);primaryKey" json:"post_id"`
	Title         string        `gorm:"size:255;not null" json:"title"`
	Content       string        `gorm:"type:text;not null" json:"content"`
	AuthorName    string        `gorm:"size:100;not null" json:"author_name"`
	Excerpt       *string       `gorm:"size:500" json:"excerpt"`
	FeaturedImage *string       `gorm:"type:text" json:"featured_image"`
	Tags          *string       `gorm:"type:text" json:"tags"`
	CreatedAt     time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt     *time.Time    `gorm:"autoUpdateTime:false" json:"updated_at"`
	PublishedAt   *time.Time    `gorm:"index" json:"published_at"`
	IsPublished   bool          `gorm:"not null;default:false;index" json:"is_published"`
	IsFeatured    *bool         `json:"is_featured"`
	CommentCount  int           `gorm:"not null;default:0" json:"comment_count"`
	LikeCount     int           `gorm:"not null;default:0" json:"like_count"`
	Comments      []BlogComment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"-"`
	Likes         []BlogLike    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"-"`
	Images        []BlogImage   `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName keeps the legacy table name.
func (BlogPost) TableName() string { return "blog_posts" }

// BeforeCreate assigns the UUID identity.
func (p *BlogPost) BeforeCreate(tx *gorm.DB) error {
	if p.PostID == "" {
		p.PostID = uuid.NewString()
	}
	if p.AuthorName == "" {
		p.AuthorName = DefaultAuthorName
	}
	return nil
}

// BlogComment is a reader comment on a legacy post.
type BlogComment struct {
	CommentID      string     `gorm:"column:comment_id;type:varchar(36);primaryKey" json:"comment_id"`
	PostID         string     `gorm:"column:post_id;type:varchar(36);index;not null" json:"post_id"`
	CommenterName  string     `gorm:"size:100;not null" json:"commenter_name"`
	CommenterEmail *string    `gorm:"size:100" json:"commenter_email,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (BlogComment) TableName() string { return "blog_comments" }

func (c *BlogComment) BeforeCreate(tx *gorm.DB) error {
	if c.CommentID == "" {
		c.CommentID = uuid.NewString()
	}
	return nil
}

// BlogLike records that a post was liked; it carries no identity of the liker.
type BlogLike struct {
	LikeID    string    `gorm:"column:like_id;type:varchar(36);primaryKey" json:"like_id"`
	PostID    string    `gorm:"column:post_id;type:varchar(36);index;not null" json:"post_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (BlogLike) TableName() string { return "blog_likes" }

func (l *BlogLike) BeforeCreate(tx *gorm.DB) error {
	if l.LikeID == "" {
		l.LikeID = uuid.NewString()
	}
	return nil
}

// BlogImage is an image attached to a legacy post. PublicID references the hosted asset.
type BlogImage struct {
	ImageID   string     `gorm:"column:image_id;type:varchar(36);primaryKey" json:"image_id"`
	PostID    string     `gorm:"column:post_id;type:varchar(36);index;not null" json:"post_id"`
	ImageURL  string     `gorm:"type:text;not null" json:"image_url"`
	AltText   *string    `gorm:"type:text" json:"alt_text"`
	PublicID  *string    `gorm:"size:255" json:"public_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (BlogImage) TableName() string { return "blog_image" }

func (i *BlogImage) BeforeCreate(tx *gorm.DB) error {
	if i.ImageID == "" {
		i.ImageID = uuid.NewString()
	}
	return nil
}

// All lists every model for migration, episodes first.
func All() []interface{} {
	return []interface{}{
		&Episode{}, &Comment{},
		&BlogPost{}, &BlogComment{}, &BlogLike{}, &BlogImage{},
		&PageView{},
	}
}
