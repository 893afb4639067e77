package models

import "time"

// PreviewLength is the number of characters shown when a post is rendered in
// compact listings.
const PreviewLength = 15

// Post is a text entry written by a user, optionally attached to a group and
// carrying an optional image.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Image     string    `gorm:"size:512" json:"image"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Group     *Group    `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Comments  []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
}

// Preview returns the first PreviewLength characters of the post text.
// Truncation counts runes, not bytes, so multi-byte text is not split.
func (p Post) Preview() string {
	runes := []rune(p.Text)
	if len(runes) <= PreviewLength {
		return p.Text
	}
	return string(runes[:PreviewLength])
}

// String implements fmt.Stringer for logs and compact listings.
func (p Post) String() string {
	return p.Preview()
}
