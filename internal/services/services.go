// Package services implements the write paths and aggregation queries over
// the store. Every successful write is followed by a live notification and,
// when configured, a published change event.
package services

import (
	"context"

	"lexify/internal/core"
	"lexify/internal/live"
	"lexify/internal/log"
)

// ChangePublisher announces committed writes to other processes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, change core.Change) error
}

// notifier bundles the post-commit side effects shared by the services.
type notifier struct {
	hub       *live.Hub
	publisher ChangePublisher
	logger    *log.Logger
}

// committed signals subscribers and publishes the change. Publication
// failures are logged and never fail the write.
func (n notifier) committed(ctx context.Context, topic live.Topic, change core.Change) {
	n.hub.Notify(topic)
	n.publish(ctx, change)
}

func (n notifier) publish(ctx context.Context, change core.Change) {
	if n.publisher == nil {
		return
	}
	if err := n.publisher.PublishChange(ctx, change); err != nil {
		n.logger.WarnContext(ctx, "Failed to publish change",
			log.NewFields().
				WithOperation(log.OpPublish).
				WithRecord(string(change.Kind), change.ID).
				WithError(err).
				ToSlice()...)
	}
}
