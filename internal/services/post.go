package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/titanium/backend/internal/cache"
	"github.com/titanium/backend/internal/mq"
	"github.com/titanium/backend/internal/store"
	"github.com/titanium/backend/types"
)

// ErrNoChanges is returned for a patch with no fields set. Detected before
// any repository call, so an empty patch costs nothing and bumps nothing.
var ErrNoChanges = errors.New("no changes")

// excerptLength is how much of the content the post listing shows.
const excerptLength = 120

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Get(ctx context.Context, id int) (types.Post, error)
	List(ctx context.Context, offset, limit int, categorySlug string) ([]types.Post, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, title, content, author string, categoryID int) (types.Post, error)
	UpdateIfAuthor(ctx context.Context, id int, author string, upd store.PostUpdate) (types.Post, error)
	DeleteIfAuthor(ctx context.Context, id int, author string) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetOrCreate(ctx context.Context, name string) (types.Category, error)
	ListWithCounts(ctx context.Context) ([]types.Category, error)
	DeleteEmpty(ctx context.Context) (int, error)
}

// PostService encapsulates blog content use-cases, fronted by the redis
// cache and publishing lifecycle events after successful mutations.
type PostService struct {
	posts      PostRepository
	categories CategoryRepository
	cache      *cache.Cache
	events     *mq.Publisher
}

func NewPostService(posts PostRepository, categories CategoryRepository, c *cache.Cache, events *mq.Publisher) *PostService {
	return &PostService{posts: posts, categories: categories, cache: c, events: events}
}

// ListPosts returns a page of post summaries, newest first, optionally
// filtered by category slug.
func (s *PostService) ListPosts(ctx context.Context, offset, limit int, categorySlug string) ([]types.PostSummary, error) {
	page := 0
	if limit > 0 {
		page = offset / limit
	}

	var summaries []types.PostSummary
	if s.cache.GetPostList(ctx, page, limit, categorySlug, &summaries) {
		return summaries, nil
	}

	posts, err := s.posts.List(ctx, offset, limit, categorySlug)
	if err != nil {
		return nil, err
	}

	summaries = make([]types.PostSummary, 0, len(posts))
	for _, post := range posts {
		summaries = append(summaries, summarize(post))
	}

	s.cache.SetPostList(ctx, page, limit, categorySlug, summaries)
	return summaries, nil
}

func (s *PostService) GetPost(ctx context.Context, id int) (types.Post, error) {
	var post types.Post
	if s.cache.GetPost(ctx, id, &post) {
		return post, nil
	}

	post, err := s.posts.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}

	s.cache.SetPost(ctx, id, post)
	return post, nil
}

// CreatePost stores a new post under author, creating the named category on
// demand.
func (s *PostService) CreatePost(ctx context.Context, title, content, author, categoryName string) (types.Post, error) {
	category, err := s.categories.GetOrCreate(ctx, categoryName)
	if err != nil {
		return types.Post{}, err
	}

	post, err := s.posts.Create(ctx, title, content, author, category.ID)
	if err != nil {
		return types.Post{}, err
	}

	s.cache.InvalidatePosts(ctx)
	s.events.PostCreated(ctx, post.ID, author)
	return post, nil
}

// UpdatePost applies a partial update on behalf of author. The post must
// exist and belong to author or the whole call fails with store.ErrNotFound;
// whether it was missing or merely someone else's is not distinguished.
func (s *PostService) UpdatePost(ctx context.Context, id int, author string, patch types.PostPatch) (types.Post, error) {
	if patch.Empty() {
		return types.Post{}, ErrNoChanges
	}

	upd := store.PostUpdate{Title: patch.Title, Content: patch.Content}
	if patch.CategoryName != nil {
		category, err := s.categories.GetOrCreate(ctx, *patch.CategoryName)
		if err != nil {
			return types.Post{}, err
		}
		upd.CategoryID = &category.ID
	}

	post, err := s.posts.UpdateIfAuthor(ctx, id, author, upd)
	if err != nil {
		return types.Post{}, err
	}

	s.cache.InvalidatePosts(ctx)
	s.events.PostUpdated(ctx, id, author)
	return post, nil
}

// DeletePost removes the post when it belongs to author, then sweeps
// categories the delete may have emptied. The sweep is advisory; its
// failure never fails the delete.
func (s *PostService) DeletePost(ctx context.Context, id int, author string) error {
	if err := s.posts.DeleteIfAuthor(ctx, id, author); err != nil {
		return err
	}

	if deleted, err := s.categories.DeleteEmpty(ctx); err != nil {
		log.Printf("services: empty category sweep failed after deleting post %d: %v", id, err)
	} else if deleted > 0 {
		log.Printf("services: removed %d empty categories", deleted)
	}

	s.cache.InvalidatePosts(ctx)
	s.events.PostDeleted(ctx, id, author)
	return nil
}

func (s *PostService) ListCategories(ctx context.Context) ([]types.Category, error) {
	var categories []types.Category
	if s.cache.GetCategories(ctx, &categories) {
		return categories, nil
	}

	categories, err := s.categories.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetCategories(ctx, categories)
	return categories, nil
}

// CountPosts reports the total number of posts, used by the stats endpoint.
func (s *PostService) CountPosts(ctx context.Context) (int, error) {
	return s.posts.Count(ctx)
}

func summarize(post types.Post) types.PostSummary {
	content := strings.NewReplacer("\r", " ", "\n", " ").Replace(post.Content)
	excerpt := content
	// Truncation counts runes, not bytes, so multibyte content is never cut
	// mid-character.
	if runes := []rune(content); len(runes) > excerptLength {
		excerpt = string(runes[:excerptLength]) + "..."
	}
	return types.PostSummary{
		ID:        post.ID,
		Title:     post.Title,
		Author:    post.Author,
		CreatedAt: post.CreatedAt,
		Excerpt:   excerpt,
		Category:  post.Category,
	}
}
