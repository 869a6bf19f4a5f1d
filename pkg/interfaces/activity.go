package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord is the go-users record written for every committed
// deletion, restore, purge and synced write.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink persists activity records. go-users activity stores satisfy it.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}

// ActivitySinkFunc adapts a function to ActivitySink.
type ActivitySinkFunc func(ctx context.Context, record ActivityRecord) error

func (fn ActivitySinkFunc) Log(ctx context.Context, record ActivityRecord) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, record)
}
