package domain

import "github.com/google/uuid"

// TraceStep names a decision taken by the engine.
type TraceStep string

const (
	TraceWindow          TraceStep = "window"
	TracePlaced          TraceStep = "placed"
	TraceRejected        TraceStep = "rejected"
	TraceSnapWorkHours   TraceStep = "snap_work_hours"
	TraceProbeBlocked    TraceStep = "probe_blocked"
	TraceBreak           TraceStep = "break"
	TraceBreakDeferred   TraceStep = "break_deferred"
	TraceActivitySkipped TraceStep = "activity_skipped"
)

// TraceEvent is one engine decision.
type TraceEvent struct {
	Step     TraceStep
	TaskID   uuid.UUID
	Title    string
	Cursor   Clock
	Attempt  int
	Consumed int
	Reason   RejectReason
}

// Tracer observes engine decisions. It must not block.
type Tracer interface {
	Trace(TraceEvent)
}

// TraceFunc adapts a function to Tracer.
type TraceFunc func(TraceEvent)

func (f TraceFunc) Trace(e TraceEvent) { f(e) }

type noopTracer struct{}

func (noopTracer) Trace(TraceEvent) {}
