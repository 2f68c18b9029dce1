package event

import (
	"context"

	"github.com/osamo/dreamshops/internal/domain"
)

// Nop is a Publisher that drops every event. It is used when Kafka is disabled.
type Nop struct{}

func (Nop) PublishProductCreated(context.Context, *domain.Product) error   { return nil }
func (Nop) PublishProductUpdated(context.Context, *domain.Product) error   { return nil }
func (Nop) PublishProductDeleted(context.Context, int64) error             { return nil }
func (Nop) PublishCategoryCreated(context.Context, *domain.Category) error { return nil }
func (Nop) PublishCategoryUpdated(context.Context, *domain.Category) error { return nil }
func (Nop) PublishCategoryDeleted(context.Context, int64) error            { return nil }
func (Nop) PublishImageUploaded(context.Context, *domain.Image) error      { return nil }
func (Nop) PublishImageUpdated(context.Context, *domain.Image) error       { return nil }
func (Nop) PublishImageDeleted(context.Context, *domain.Image) error       { return nil }

var (
	_ Publisher = Nop{}
	_ Publisher = (*Producer)(nil)
)
