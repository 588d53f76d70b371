package store

import "time"

// Kind identifies the record category a retrieval result came from.
type Kind string

const (
	KindService Kind = "service"
	KindNews    Kind = "news"
	KindStadium Kind = "stadium"
	KindPlace   Kind = "place"
)

// Record is one retrieved row from any of the four domain tables,
// carrying the trilingual name columns plus the category-specific fields
// that are set for its Kind. Similarity is the cosine similarity in [0,1]
// computed by the datastore.
type Record struct {
	ID         int64
	Kind       Kind
	Similarity float64

	NameEN string
	NameFR string
	NameAR string

	// Service fields
	Address  string
	Phone    string
	Category string

	// Stadium / place fields
	City     string
	Capacity int
	Lat      *float64
	Lng      *float64

	// News fields
	PublishedAt time.Time
}

// Filters narrows category searches by optional city and category ids.
// Nil means no filtering on that dimension.
type Filters struct {
	CityID     *int64
	CategoryID *int64
}
