package models

import (
	"time"
)

// MaxContentLength is the size of the content column, counted in characters.
const MaxContentLength = 2000

// Confession represents a single anonymous post.
type Confession struct {
	ID      uint   `gorm:"primarykey" json:"id"`
	Content string `gorm:"type:varchar(2000);not null" json:"content"`
	// Filled by the database clock, never by the application.
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;autoCreateTime:false;index" json:"created_at"`
	Upvotes   int       `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int       `gorm:"not null;default:0" json:"downvotes"`
}

// VoteTally is what the vote endpoints return.
type VoteTally struct {
	ID        uint `json:"id"`
	Upvotes   int  `json:"upvotes"`
	Downvotes int  `json:"downvotes"`
}

// Tally projects the counters of c.
func (c Confession) Tally() VoteTally {
	return VoteTally{ID: c.ID, Upvotes: c.Upvotes, Downvotes: c.Downvotes}
}
