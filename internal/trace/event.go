package trace

import "time"

// Kind is the type of a trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

func (k Kind) String() string {
	switch k {
	case KindSpanBegin:
		return "begin"
	case KindSpanEnd:
		return "end"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeRun      Scope = iota + 1 // one CLI invocation
	ScopeDocument                  // one registry document
	ScopePhase                     // load, build, emit, write
	ScopeFunction                  // per-function detail
)

func (s Scope) String() string {
	switch s {
	case ScopeRun:
		return "run"
	case ScopeDocument:
		return "document"
	case ScopePhase:
		return "phase"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Event is a single trace record.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for root spans
	Name     string // "run", "document:gl", "emit"
	Detail   string
	Extra    map[string]string
}
