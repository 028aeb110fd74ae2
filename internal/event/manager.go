package event

import "sync"

// registered listener for a single event type
type listener struct {
	id      int
	evtType EventType
	channel chan Event
}

// EventManager implements the Manager interface. Delivery happens on a
// per-listener goroutine so producers like the scan fan-in loop never
// block on a slow consumer.
type EventManager struct {
	mux       sync.Mutex
	nextID    int
	listeners []*listener
}

// NewEventManager returns a new instance of EventManager
func NewEventManager() *EventManager {
	return &EventManager{
		mux:       sync.Mutex{},
		nextID:    1,
		listeners: []*listener{},
	}
}

// RegisterListener registers a channel to receive events of the given
// type. Register with AnyEventType to receive every event.
func (m *EventManager) RegisterListener(eventType EventType, channel chan Event) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	l := &listener{
		id:      m.nextID,
		evtType: eventType,
		channel: channel,
	}

	m.listeners = append(m.listeners, l)
	m.nextID++

	return l.id
}

// RemoveListener removes a previously registered listener and returns
// its id
func (m *EventManager) RemoveListener(id int) int {
	m.mux.Lock()
	defer m.mux.Unlock()

	listeners := []*listener{}

	for _, l := range m.listeners {
		if l.id != id {
			listeners = append(listeners, l)
		}
	}

	m.listeners = listeners

	return id
}

// Send delivers an event to every listener registered for its type
func (m *EventManager) Send(evt Event) {
	m.mux.Lock()
	defer m.mux.Unlock()

	for _, l := range m.listeners {
		if l.evtType == evt.Type || l.evtType == AnyEventType {
			go func(c chan Event) {
				c <- evt
			}(l.channel)
		}
	}
}

// ReportFatalError sends a fatal error event
func (m *EventManager) ReportFatalError(err error) {
	m.Send(Event{Type: FatalErrorEventType, Payload: err})
}

// ReportError sends an error event
func (m *EventManager) ReportError(err error) {
	m.Send(Event{Type: ErrorEventType, Payload: err})
}
