package replica

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for copy events.
var (
	SignalCopyStart           = capitan.NewSignal("replica.copy.start", "Deep copy beginning")
	SignalCopyComplete        = capitan.NewSignal("replica.copy.complete", "Deep copy finished")
	SignalPlaceholderResolved = capitan.NewSignal("replica.placeholder.resolved", "Placeholder resolved to its real value")
	SignalPlanBuilt           = capitan.NewSignal("replica.plan.built", "Field plan built for a struct type")
)

// Keys for typed event data.
var (
	KeyCopyID        = capitan.NewStringKey("copy_id")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
	KeyNodeCount     = capitan.NewIntKey("node_count")
	KeyResolvedCount = capitan.NewIntKey("resolved_count")
	KeyFieldCount    = capitan.NewIntKey("field_count")
)

// emitCopyStart emits an event when a deep copy begins. Every event of one
// DeepCopy call carries the same copy ID.
func emitCopyStart(ctx context.Context, copyID, typeName string) {
	capitan.Emit(ctx, SignalCopyStart,
		KeyCopyID.Field(copyID),
		KeyTypeName.Field(typeName),
	)
}

// emitCopyComplete emits an event when a deep copy finishes.
func emitCopyComplete(ctx context.Context, copyID, typeName string, duration time.Duration, nodes, resolved int, err error) {
	fields := []capitan.Field{
		KeyCopyID.Field(copyID),
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
		KeyNodeCount.Field(nodes),
		KeyResolvedCount.Field(resolved),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalCopyComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalCopyComplete, fields...)
	}
}

// emitPlaceholderResolved emits an event after each resolve attempt.
// copyID is empty outside a DeepCopy call.
func emitPlaceholderResolved(ctx context.Context, copyID, typeName string, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyTypeName.Field(typeName),
		KeyDuration.Field(duration),
	}
	if copyID != "" {
		fields = append(fields, KeyCopyID.Field(copyID))
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalPlaceholderResolved, fields...)
	} else {
		capitan.Emit(ctx, SignalPlaceholderResolved, fields...)
	}
}

// emitPlanBuilt emits an event when a struct type is planned for the first time.
func emitPlanBuilt(ctx context.Context, typeName string, fieldCount int) {
	capitan.Emit(ctx, SignalPlanBuilt,
		KeyTypeName.Field(typeName),
		KeyFieldCount.Field(fieldCount),
	)
}
