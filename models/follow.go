package models

import "time"

// Follow is a directed edge meaning the user follows the author. The composite
// unique index makes duplicate edges impossible at the storage layer, so a
// concurrent double-submit cannot create two rows.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;uniqueIndex:idx_follow_user_author;not null" json:"user_id"`
	AuthorID  uint      `gorm:"index;uniqueIndex:idx_follow_user_author;not null" json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}
