package models

import "time"

// Review is a user's scored opinion of a title. One per author and title.
type Review struct {
	ID       int64
	TitleID  int64
	AuthorID string
	Author   string
	Text     string
	Score    int
	PubDate  time.Time
}

// Comment is attached to a review.
type Comment struct {
	ID       int64
	ReviewID int64
	AuthorID string
	Author   string
	Text     string
	PubDate  time.Time
}
