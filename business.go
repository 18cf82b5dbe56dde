package freedome

import (
	"time"
)

// Coordinates is a WGS84 position in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BusinessSearchRequest is passed to Service.BusinessSearch to find
// businesses. Empty fields don't filter.
//
// The radius filter only applies when Near is set. A zero RadiusKM means the
// default radius.
type BusinessSearchRequest struct {
	Category string       `json:"category"`
	Location string       `json:"location"`
	Keyword  string       `json:"keyword"`
	Near     *Coordinates `json:"near,omitempty"`
	RadiusKM float64      `json:"radiusKM"`
}

// BusinessDetail is everything shown on a business page.
type BusinessDetail struct {
	Business User     `json:"business"`
	Offers   []Offer  `json:"offers"`
	Events   []Event  `json:"events"`
	Reviews  []Review `json:"reviews"`
	Rating   Rating   `json:"rating"`

	// PlaceRating is the maps provider's rating for the business, when the
	// profile has a PlaceID and the lookup succeeded.
	PlaceRating *Place `json:"placeRating,omitempty"`
}

// ReviewID identifies a Review.
type ReviewID string

// Review is a user's rating of a business.
type Review struct {
	ID         ReviewID   `json:"id"`
	BusinessID BusinessID `json:"businessID"`
	AuthorID   UserID     `json:"authorID"`
	AuthorName string     `json:"authorName"`
	Rating     int        `json:"rating"`
	Comment    string     `json:"comment"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// A ReviewCreateRequest is sent by a user reviewing a business.
type ReviewCreateRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Rating aggregates a business's reviews for display.
type Rating struct {
	Count int `json:"count"`
	// Average is nil when there are no reviews.
	Average *float64 `json:"average,omitempty"`
	Stars   Stars    `json:"stars"`
}

// Stars is a five position star rendering of an average rating.
type Stars struct {
	Full  int `json:"full"`
	Half  int `json:"half"`
	Empty int `json:"empty"`
}

// Place is a maps provider place, as returned by autocomplete and place
// details lookups.
type Place struct {
	PlaceID     string        `json:"placeID"`
	Description string        `json:"description"`
	Name        string        `json:"name,omitempty"`
	Address     string        `json:"address,omitempty"`
	Coordinates *Coordinates  `json:"coordinates,omitempty"`
	Rating      float64       `json:"rating,omitempty"`
	RatingCount int           `json:"ratingCount,omitempty"`
	Reviews     []PlaceReview `json:"reviews,omitempty"`
}

// PlaceReview is a review hosted by the maps provider.
type PlaceReview struct {
	AuthorName string    `json:"authorName"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	Time       time.Time `json:"time"`
}

// UploadReply is returned after an image upload.
type UploadReply struct {
	URL string `json:"url"`
}

// GeocodeBackfillReply reports the result of a geocoding pass over the
// businesses that have no coordinates.
type GeocodeBackfillReply struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
