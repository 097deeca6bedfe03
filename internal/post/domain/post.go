package domain

import "time"

type ID string

// Post is a blog entry. AuthorID is set once at creation from the
// authenticated caller and never changes; AuthorName is a snapshot of the
// author's username at creation time and is not kept in sync with later
// username changes.
type Post struct {
	ID         ID
	Title      string
	Content    string
	AuthorID   string
	AuthorName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuthorRef is the expanded author shape returned by reads.
type AuthorRef struct {
	ID       string
	Username string
}

type PostWithAuthor struct {
	Post
	Author AuthorRef
}
