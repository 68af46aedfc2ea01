// models/post.go
package models

// Post is a blog demo entry. CreatedAt is a KST timestamp string.
type Post struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Author    string    `gorm:"not null" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Slug      string    `gorm:"type:varchar(160);index" json:"slug"`
	CreatedAt string    `gorm:"type:varchar(19);not null;index;autoCreateTime:false" json:"createdAt"`
	Comments  []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// Comment belongs to a Post. ReadAt/LikedAt are nil until the matching action.
type Comment struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint    `gorm:"index;not null" json:"postId"`
	Author    string  `gorm:"not null" json:"author"`
	Content   string  `gorm:"type:text;not null" json:"content"`
	CreatedAt string  `gorm:"type:varchar(19);not null;autoCreateTime:false" json:"createdAt"`
	ReadAt    *string `gorm:"type:varchar(19)" json:"readAt"`
	LikedAt   *string `gorm:"type:varchar(19)" json:"likedAt"`
}

// CommentAction is a metadata toggle applied through PATCH /api/comments/:id.
type CommentAction string

const (
	CommentActionRead   CommentAction = "read"
	CommentActionUnread CommentAction = "unread"
	CommentActionLike   CommentAction = "like"
	CommentActionUnlike CommentAction = "unlike"
)

// Valid reports whether a is one of the four supported actions.
func (a CommentAction) Valid() bool {
	switch a {
	case CommentActionRead, CommentActionUnread, CommentActionLike, CommentActionUnlike:
		return true
	}
	return false
}
