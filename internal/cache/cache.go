// Package cache is a read-through redis layer for blog content. Every
// operation degrades to a miss (or a no-op) when redis is unreachable, so
// the database stays the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	postListTTL   = time.Minute
	postTTL       = 5 * time.Minute
	categoriesTTL = 10 * time.Minute
	userTTL       = 5 * time.Minute

	categoriesKey = "categories:list"

	// matches both post:{id} and posts:list:* keys
	postKeyPattern = "post*"
)

type Cache struct {
	rdb *redis.Client
}

// New wraps a redis client. A nil client yields a cache that always misses.
func New(rdb *redis.Client) *Cache {
	return &Cache{rdb: rdb}
}

func postListKey(page, limit int, categorySlug string) string {
	return fmt.Sprintf("posts:list:page:%d:limit:%d:cat:%s", page, limit, categorySlug)
}

func postKey(id int) string {
	return fmt.Sprintf("post:%d", id)
}

// GetPostList loads a cached page of posts into dest and reports a hit.
func (c *Cache) GetPostList(ctx context.Context, page, limit int, categorySlug string, dest any) bool {
	return c.get(ctx, postListKey(page, limit, categorySlug), dest)
}

func (c *Cache) SetPostList(ctx context.Context, page, limit int, categorySlug string, val any) {
	c.set(ctx, postListKey(page, limit, categorySlug), val, postListTTL)
}

func (c *Cache) GetPost(ctx context.Context, id int, dest any) bool {
	return c.get(ctx, postKey(id), dest)
}

func (c *Cache) SetPost(ctx context.Context, id int, val any) {
	c.set(ctx, postKey(id), val, postTTL)
}

func (c *Cache) GetUser(ctx context.Context, username string, dest any) bool {
	return c.get(ctx, "user:"+username, dest)
}

func (c *Cache) SetUser(ctx context.Context, username string, val any) {
	c.set(ctx, "user:"+username, val, userTTL)
}

func (c *Cache) GetCategories(ctx context.Context, dest any) bool {
	return c.get(ctx, categoriesKey, dest)
}

func (c *Cache) SetCategories(ctx context.Context, val any) {
	c.set(ctx, categoriesKey, val, categoriesTTL)
}

// InvalidatePosts drops every post and post-list entry. Any write to any
// post clears them all; entries are short-lived so precision is not worth
// the bookkeeping.
func (c *Cache) InvalidatePosts(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}

	var keys []string
	iter := c.rdb.Scan(ctx, 0, postKeyPattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		log.Printf("cache: scan failed during invalidation: %v", err)
		return
	}

	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: failed to invalidate %d post entries: %v", len(keys), err)
	}
}

func (c *Cache) get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("cache: get %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache: corrupt entry at %s: %v", key, err)
		return false
	}
	return true
}

func (c *Cache) set(ctx context.Context, key string, val any, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}

	data, err := json.Marshal(val)
	if err != nil {
		log.Printf("cache: marshal for %s: %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}
