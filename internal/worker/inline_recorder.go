package worker

import (
	"context"

	"brandcatalog/internal/model"
)

// InlineRecorder stores audit events synchronously. It stands in for the
// queue when no broker is configured.
type InlineRecorder struct {
	store BrandEventStore
}

func NewInlineRecorder(store BrandEventStore) *InlineRecorder {
	return &InlineRecorder{store: store}
}

func (r *InlineRecorder) Publish(ctx context.Context, event model.BrandEvent) error {
	event.ID = 0
	return r.store.Create(ctx, &event)
}
