// Package events defines the single generic Event every engine emits on
// state change: a dotted type name plus a string attribute map, following
// the attribute-map shape the teacher's core/events package used.
package events

// Event is the wire shape every module emits. Type is a dotted
// module.action name (e.g. "staking.deposit"); Attributes holds the
// event's fields pre-rendered to strings, matching spec.md §6's event
// table column-for-column.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}

// Emitter is implemented by anything that can record an Event: the node's
// in-process event log, a test spy, or (eventually) a log/slog sink.
type Emitter interface {
	Emit(evt *Event)
}

// NopEmitter discards every event. Used by engines constructed without a
// wired emitter, e.g. in unit tests that only assert on return values.
type NopEmitter struct{}

func (NopEmitter) Emit(*Event) {}

// Recorder is an in-memory Emitter, used by tests and held by the node
// (node.Node.Events); no RPC method exposes it.
type Recorder struct {
	events []*Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(evt *Event) { r.events = append(r.events, evt) }

func (r *Recorder) Events() []*Event { return r.events }

func (r *Recorder) Len() int { return len(r.events) }

// New builds an Event from alternating key/value strings, e.g.
// events.New("staking.deposit", "account", addr, "amount", amt).
func New(typ string, kv ...string) *Event {
	attrs := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		attrs[kv[i]] = kv[i+1]
	}
	return &Event{Type: typ, Attributes: attrs}
}

