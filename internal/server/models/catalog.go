package models

// Category groups titles ("Films", "Books", ...).
type Category struct {
	Name string
	Slug string
}

// Genre is attached to titles many-to-many.
type Genre struct {
	Name string
	Slug string
}

// Title is a reviewable work.
type Title struct {
	ID          int64
	Name        string
	Year        int
	Description string
	Category    *Category
	Genres      []Genre
	// Rating is the average review score, nil while there are no reviews.
	Rating *float64
}
