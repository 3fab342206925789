package watch

import (
	"sync"
	"time"
)

// eventDebouncer collects events per path and flushes them once no event has arrived
// for the debounce interval. The latest event for a path wins.
type eventDebouncer struct {
	mu       sync.Mutex
	events   map[string]EventType
	debounce time.Duration
	timer    *time.Timer
	stopped  bool
	flushFn  func(map[string]EventType)
	inFlight sync.WaitGroup
}

func newEventDebouncer(debounce time.Duration, flush func(map[string]EventType)) *eventDebouncer {
	return &eventDebouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		flushFn:  flush,
	}
}

func (d *eventDebouncer) addEvent(path string, eventType EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	// a write after a create is still a create
	if prev, ok := d.events[path]; ok && prev == EventCreate && eventType == EventWrite {
		eventType = EventCreate
	}
	d.events[path] = eventType

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *eventDebouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.events) == 0 {
		d.mu.Unlock()
		return
	}
	events := d.events
	d.events = make(map[string]EventType)
	d.inFlight.Add(1)
	d.mu.Unlock()

	defer d.inFlight.Done()
	d.flushFn(events)
}

// stop discards pending events and prevents further flushes.
func (d *eventDebouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]EventType)
}

// wait blocks until a flush that started before stop has finished.
func (d *eventDebouncer) wait() {
	d.inFlight.Wait()
}
