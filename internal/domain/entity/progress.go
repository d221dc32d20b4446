package entity

// ProgressFunc is invoked after each processed frame with the 1-based index of
// the frame just finished and the constant batch total. A nil ProgressFunc
// disables reporting. The pipeline calls it synchronously, so observers that
// do slow work should hand the pair off to their own goroutine (see Event).
type ProgressFunc func(current, total int)

// EventType tags the three pipeline state transitions an observer can see.
type EventType string

const (
	EventProgress EventType = "progress"
	EventDone     EventType = "done"
	EventError    EventType = "error"
)

// Event is the message a presentation shell receives over its channel: a
// per-frame progress update, a final done with the output location, or a
// final error. Exactly one done or error event ends every run.
type Event struct {
	Type    EventType
	Current int
	Total   int
	Output  string
	Err     string
}

// ProgressEvent builds a per-frame update.
func ProgressEvent(current, total int) Event {
	return Event{Type: EventProgress, Current: current, Total: total}
}

// DoneEvent builds the terminal success event.
func DoneEvent(output string) Event {
	return Event{Type: EventDone, Output: output}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(err error) Event {
	return Event{Type: EventError, Err: err.Error()}
}
