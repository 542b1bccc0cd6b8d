package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// Post lifecycle event kinds.
const (
	PostCreated = "post.created"
	PostUpdated = "post.updated"
	PostDeleted = "post.deleted"
)

// PostEvent is the JSON payload published to PostEventsChannel.
type PostEvent struct {
	Kind       string    `json:"kind"`
	PostID     int       `json:"post_id"`
	Author     string    `json:"author"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits post lifecycle events. It is safe to use with a nil MQ,
// in which case every publish is a no-op. Publish failures are logged and
// swallowed; events never block or fail a write.
type Publisher struct {
	mq *MQ
}

func NewPublisher(mq *MQ) *Publisher {
	return &Publisher{mq: mq}
}

func (p *Publisher) PostCreated(ctx context.Context, postID int, author string) {
	p.publish(ctx, PostEvent{Kind: PostCreated, PostID: postID, Author: author, OccurredAt: time.Now()})
}

func (p *Publisher) PostUpdated(ctx context.Context, postID int, author string) {
	p.publish(ctx, PostEvent{Kind: PostUpdated, PostID: postID, Author: author, OccurredAt: time.Now()})
}

func (p *Publisher) PostDeleted(ctx context.Context, postID int, author string) {
	p.publish(ctx, PostEvent{Kind: PostDeleted, PostID: postID, Author: author, OccurredAt: time.Now()})
}

func (p *Publisher) publish(ctx context.Context, event PostEvent) {
	if p == nil || p.mq == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("mq: failed to marshal %s event for post %d: %v", event.Kind, event.PostID, err)
		return
	}
	attrs := map[string]string{"kind": event.Kind}
	if _, err := p.mq.Publish(ctx, PostEventsChannel, data, attrs); err != nil {
		log.Printf("mq: failed to publish %s event for post %d: %v", event.Kind, event.PostID, err)
	}
}
