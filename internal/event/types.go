package event

type EventType string

const (
	// AnyEventType registers a listener for every event type
	AnyEventType EventType = "*"

	ScanStartedEventType   EventType = "scan-started"
	ScanCompletedEventType EventType = "scan-completed"
	ScanCancelledEventType EventType = "scan-cancelled"
	ScanFailedEventType    EventType = "scan-failed"
	CameraUpdateEventType  EventType = "camera-update"
	ErrorEventType         EventType = "error"
	FatalErrorEventType    EventType = "fatal-error"
)

// Event data structure representing any event we may want to react to
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}
