package dom

// Event is a browser event replayed against the server-side document.
type Event struct {
	Type   string
	Target *Element

	// Keyboard fields, zero for pointer events.
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Listener wraps an event callback. Listeners are compared by identity, so the
// same *Listener must be passed to RemoveEventListener that was added.
type Listener struct {
	fn func(*Event)
}

// NewListener creates a listener value for fn.
func NewListener(fn func(*Event)) *Listener {
	return &Listener{fn: fn}
}

// target holds the listeners of an element or of the document itself.
type target struct {
	listeners map[string][]*Listener
}

// AddEventListener registers l for events of type typ. Adding the same
// listener twice for one type has no effect.
func (t *target) AddEventListener(typ string, l *Listener) {
	if l == nil {
		return
	}
	if t.listeners == nil {
		t.listeners = make(map[string][]*Listener)
	}
	for _, existing := range t.listeners[typ] {
		if existing == l {
			return
		}
	}
	t.listeners[typ] = append(t.listeners[typ], l)
}

// RemoveEventListener unregisters l for events of type typ.
func (t *target) RemoveEventListener(typ string, l *Listener) {
	ls := t.listeners[typ]
	for i, existing := range ls {
		if existing == l {
			t.listeners[typ] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// ListenerCount reports how many listeners are registered for typ.
func (t *target) ListenerCount(typ string) int {
	return len(t.listeners[typ])
}

// invoke calls the listeners registered at the moment of invocation. Listeners
// added while a dispatch is running only see later targets on the path.
func (t *target) invoke(ev *Event) {
	ls := t.listeners[ev.Type]
	if len(ls) == 0 {
		return
	}
	snapshot := make([]*Listener, len(ls))
	copy(snapshot, ls)
	for _, l := range snapshot {
		if !t.has(ev.Type, l) {
			continue
		}
		l.fn(ev)
	}
}

func (t *target) has(typ string, l *Listener) bool {
	for _, existing := range t.listeners[typ] {
		if existing == l {
			return true
		}
	}
	return false
}
