// Package store contains the SQL repositories. Every repository comes in two
// flavors, postgres (lib/pq) and sqlite (modernc.org/sqlite), selected at
// startup; the services only ever see the repository interfaces they declare
// themselves.
package store

// PostUpdate is the set of post columns a partial update may touch. Nil
// fields are omitted from the generated SET clause. At least one field must
// be set; callers short-circuit empty updates before reaching the store.
type PostUpdate struct {
	Title      *string
	Content    *string
	CategoryID *int
}

// Empty reports whether no column would change.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Content == nil && u.CategoryID == nil
}
