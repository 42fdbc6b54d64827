package models

import "time"

// Rating is a single user's rating of a single store. At most one row exists
// per (store, user) pair; resubmission updates the row in place and keeps its
// identity.
type Rating struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	UserID    string    `json:"userId"`
	Value     int       `json:"value"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingAggregate is the derived average/count summary for a store. Average
// is the arithmetic mean rounded to one decimal place, 0 when no ratings
// exist.
type RatingAggregate struct {
	Average float64 `json:"averageRating"`
	Count   int64   `json:"ratingCount"`
}

// RatingOutcome tells the caller whether a submission created a new rating
// or overwrote an existing one.
type RatingOutcome string

const (
	OutcomeCreated RatingOutcome = "created"
	OutcomeUpdated RatingOutcome = "updated"
)

// RatingWithRater decorates a rating with the rater's display name for store
// views. The rater's email and credentials are never exposed here.
type RatingWithRater struct {
	Rating
	RaterName string `json:"raterName"`
}

// RatingWithStore decorates a rating with the store name for user views.
type RatingWithStore struct {
	Rating
	StoreName string `json:"storeName"`
}
