package observer

import (
	"strings"
	"sync"
	"time"

	"github.com/loykin/httpstep/internal/common"
	"github.com/loykin/httpstep/internal/constants"
)

// EventKind names a transport lifecycle event.
type EventKind string

const (
	Connect          EventKind = "connect"
	SentHeaders      EventKind = "sentHeaders"
	SentBodyPart     EventKind = "sentBodyPart"
	SentBody         EventKind = "sentBody"
	ReceivedHeaders  EventKind = "receivedHeaders"
	ReceivedBodyPart EventKind = "receivedBodyPart"
	ReceivedBody     EventKind = "receivedBody"
	Disconnect       EventKind = "disconnect"
)

// DefaultEvents is the set recorded when no event list is configured.
func DefaultEvents() []EventKind {
	return []EventKind{Connect, SentHeaders, SentBodyPart, ReceivedHeaders, ReceivedBody, Disconnect}
}

// ParseEvents splits a list on spaces, commas and semicolons. Names are kept
// verbatim; an empty list yields DefaultEvents.
func ParseEvents(list string) []EventKind {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return strings.ContainsRune(constants.ObserverEventDelimiters, r)
	})
	if len(fields) == 0 {
		return DefaultEvents()
	}
	out := make([]EventKind, 0, len(fields))
	for _, f := range fields {
		out = append(out, EventKind(f))
	}
	return out
}

// Event is one recorded notification.
type Event struct {
	Kind  EventKind
	At    time.Time
	Attrs []any
}

// Recorder receives every lifecycle callback of one exchange and keeps (and
// logs) those whose kind is in its configured set. A nil *Recorder is the
// disabled state: every method is a no-op.
type Recorder struct {
	mu     sync.Mutex
	kinds  []EventKind
	filter map[EventKind]struct{}
	events []Event
	logger *common.Logger
}

// NewRecorder returns a recorder for kinds (DefaultEvents when empty).
func NewRecorder(kinds []EventKind, logger *common.Logger) *Recorder {
	if len(kinds) == 0 {
		kinds = DefaultEvents()
	}
	if logger == nil {
		logger = common.GetLogger()
	}
	r := &Recorder{
		kinds:  append([]EventKind(nil), kinds...),
		filter: make(map[EventKind]struct{}, len(kinds)),
		logger: logger.WithComponent("observer"),
	}
	for _, k := range kinds {
		r.filter[k] = struct{}{}
	}
	return r
}

// Kinds returns the configured event kinds in configuration order.
func (r *Recorder) Kinds() []EventKind {
	if r == nil {
		return nil
	}
	return append([]EventKind(nil), r.kinds...)
}

// Enabled reports whether kind is recorded.
func (r *Recorder) Enabled(kind EventKind) bool {
	if r == nil {
		return false
	}
	_, ok := r.filter[kind]
	return ok
}

// Notify records kind with its transport metadata and emits one info line.
func (r *Recorder) Notify(kind EventKind, attrs ...any) {
	if !r.Enabled(kind) {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, Event{Kind: kind, At: time.Now(), Attrs: attrs})
	r.mu.Unlock()
	r.logger.Info("observer event", append([]any{"event", string(kind)}, attrs...)...)
}

// Events returns a copy of everything recorded so far, in arrival order.
func (r *Recorder) Events() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Sequence returns just the kinds of the recorded events.
func (r *Recorder) Sequence() []EventKind {
	evs := r.Events()
	out := make([]EventKind, len(evs))
	for i, e := range evs {
		out[i] = e.Kind
	}
	return out
}
