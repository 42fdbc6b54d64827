package models

import "time"

type Store struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	OwnerID   *string   `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StoreSummary is a store row plus its rating aggregate, as returned by
// listings. MyRating carries the calling user's own rating when known.
type StoreSummary struct {
	Store
	AverageRating float64 `json:"averageRating"`
	RatingCount   int64   `json:"ratingCount"`
	MyRating      *int    `json:"myRating,omitempty"`
}

// StoreView is the full detail payload for a single store.
type StoreView struct {
	Store
	AverageRating float64           `json:"averageRating"`
	RatingCount   int64             `json:"ratingCount"`
	Ratings       []RatingWithRater `json:"ratings"`
}
