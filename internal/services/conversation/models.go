package conversation

import (
	"encoding/json"
	"fmt"
)

type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// Message is a single transcript entry. Messages are never modified after
// they are appended.
type Message struct {
	Sender Sender `json:"sender"`
	Text   string `json:"text"`
}

// Transcript is the ordered, append-only message history of one widget
type Transcript []Message

// Append returns a new transcript with m at the end. The receiver is left
// untouched so snapshots handed out earlier stay valid.
func (t Transcript) Append(m Message) Transcript {
	next := make(Transcript, len(t), len(t)+1)
	copy(next, t)
	return append(next, m)
}

// MarshalJSON encodes an empty transcript as [] rather than null
func (t Transcript) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Message(t))
}

// RequestState gates whether a new outbound request may start
type RequestState int

const (
	StateIdle RequestState = iota
	StatePending
	// StateTimedOut is entered when the agent misses its deadline. It accepts
	// submissions exactly like StateIdle.
	StateTimedOut
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

func (s RequestState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent copy of a widget's observable state
type Snapshot struct {
	ID       string       `json:"id"`
	Messages Transcript   `json:"messages"`
	State    RequestState `json:"state"`
	Pending  bool         `json:"pending"`
	Version  uint64       `json:"version"`
}

const (
	// NotConfiguredText is shown instead of calling an agent that has no endpoint
	NotConfiguredText = "ERROR: Agent API Endpoint is not set. Please set AGENT_API_ENDPOINT to your agent's URL."
	// NoAnswerText replaces a successful response that carried no answer
	NoAnswerText = "No specific answer received, check agent logs."
)

func errorText(reason string) string {
	return fmt.Sprintf("Sorry, there was an error: %s. Please check the server logs for details.", reason)
}

func timeoutText(limit fmt.Stringer) string {
	return fmt.Sprintf("The agent did not respond within %s. Please try again.", limit)
}
