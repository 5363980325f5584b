package engine

import "sync"

type EventKind string

const (
	StagingChanged   EventKind = "staging_changed"
	CommittedChanged EventKind = "committed_changed"
)

type Concern string

const (
	ConcernShifts      Concern = "shifts"
	ConcernConstraints Concern = "constraints"
	ConcernPresets     Concern = "presets"
)

type Event struct {
	Kind    EventKind
	Concern Concern
}

type bus struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(Event)
}

// Subscribe 注册事件回调，回调在触发状态转换的 goroutine 中同步执行，不能再调用 Subscribe
func (e *Engine) Subscribe(fn func(Event)) (unsubscribe func()) {
	e.bus.mu.Lock()
	defer e.bus.mu.Unlock()

	if e.bus.handlers == nil {
		e.bus.handlers = make(map[int]func(Event))
	}
	id := e.bus.next
	e.bus.next++
	e.bus.handlers[id] = fn

	return func() {
		e.bus.mu.Lock()
		defer e.bus.mu.Unlock()
		delete(e.bus.handlers, id)
	}
}

func (e *Engine) emit(kind EventKind, concern Concern) {
	e.bus.mu.Lock()
	handlers := make([]func(Event), 0, len(e.bus.handlers))
	for _, h := range e.bus.handlers {
		handlers = append(handlers, h)
	}
	e.bus.mu.Unlock()

	ev := Event{Kind: kind, Concern: concern}
	for _, h := range handlers {
		h(ev)
	}
}
