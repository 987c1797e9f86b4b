package entities

import "time"

// MaxHashtagLength matches the hashtags.name column.
const MaxHashtagLength = 50

// Hashtag is a unique tag name shared by every article that mentions it.
type Hashtag struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
