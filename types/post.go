package types

import "time"

// Post represents a blog post owned by the user who created it.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the post headline.
	Title string `json:"title" db:"title"`

	// Content is the full post body.
	Content string `json:"content" db:"content"`

	// Author is the username of the post's owner. Mutations are accepted
	// only when the requester's resolved identity equals this value, and
	// that check is evaluated inside the same statement as the mutation.
	Author string `json:"author" db:"author"`

	// Category is the category the post belongs to. Every post has one.
	Category Category `json:"category"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Category groups posts under a human-readable name with a URL-safe slug.
// Categories are created on demand when a post names one that does not
// exist yet, and garbage-collected after a delete leaves them empty.
type Category struct {
	// ID is the unique identifier of the category.
	ID int `json:"id" db:"id"`

	// Name is the display name, unique across categories.
	Name string `json:"name" db:"name"`

	// Slug is the URL-safe form of the name used in list filters.
	Slug string `json:"slug" db:"slug"`

	// Color is a display hint picked at creation time.
	Color string `json:"color,omitempty" db:"color"`

	// PostCount is the number of posts in the category. Only populated by
	// the categories listing.
	PostCount int `json:"post_count,omitempty" db:"post_count"`
}

// PostPatch is a partial update to a post. Nil fields are left untouched.
// A patch with no fields set is a no-op and never reaches storage.
type PostPatch struct {
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	CategoryName *string `json:"category_name"`
}

// Empty reports whether the patch would change nothing.
func (p PostPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.CategoryName == nil
}

// PostSummary is the trimmed representation returned by the post listing.
type PostSummary struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	Excerpt   string    `json:"excerpt"`
	Category  Category  `json:"category"`
}
