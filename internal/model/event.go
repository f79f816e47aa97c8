package model

// StreamEventType tags a chat stream event.
type StreamEventType string

const (
	StreamEventStart    StreamEventType = "start"
	StreamEventDelta    StreamEventType = "delta"
	StreamEventComplete StreamEventType = "complete"
	StreamEventError    StreamEventType = "error"
)

// StreamEvent is one event in a streaming chat turn. For a turn, exactly
// one start is emitted first, zero or more deltas follow in send order,
// and the sequence ends with exactly one complete or error.
type StreamEvent struct {
	Type StreamEventType `json:"type"`
	Data any             `json:"data"`
}

// StartData accompanies a start event. TempID is the id of the already
// persisted user message, so clients can show an in-progress indicator
// before any model output exists.
type StartData struct {
	TempID string `json:"tempId"`
}

// DeltaData accompanies a delta event.
type DeltaData struct {
	Content string `json:"content"`
}

// CompleteData accompanies a complete event. Content is the fully
// composed persisted assistant text, not just the concatenated deltas.
type CompleteData struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// ErrorData accompanies an error event.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// StartEvent builds a start event.
func StartEvent(tempID string) StreamEvent {
	return StreamEvent{Type: StreamEventStart, Data: StartData{TempID: tempID}}
}

// DeltaEvent builds a delta event.
func DeltaEvent(content string) StreamEvent {
	return StreamEvent{Type: StreamEventDelta, Data: DeltaData{Content: content}}
}

// CompleteEvent builds a complete event.
func CompleteEvent(id, content string) StreamEvent {
	return StreamEvent{Type: StreamEventComplete, Data: CompleteData{ID: id, Content: content}}
}

// ErrorEvent builds an error event.
func ErrorEvent(code, message string) StreamEvent {
	return StreamEvent{Type: StreamEventError, Data: ErrorData{Code: code, Message: message}}
}
