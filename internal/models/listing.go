package models

import "time"

const (
	ListingActive   = "ACTIVE"
	ListingSold     = "SOLD"
	ListingArchived = "ARCHIVED"
)

type Listing struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	Images      []string  `json:"images"`
	Status      string    `json:"status"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingUpdate carries the PATCH body. Nil fields are left untouched.
type ListingUpdate struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price"`
	Status      *string  `json:"status"`
}

// SearchFilter holds the /search query parameters.
type SearchFilter struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
}
