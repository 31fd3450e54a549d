package stage

import (
	"context"

	"bipv/internal/store"
)

// Handler describes the contract the workflow manager needs from each stage.
type Handler interface {
	Prepare(context.Context, *store.Element) error
	Execute(context.Context, *store.Element) error
	HealthCheck(context.Context) Health
}
