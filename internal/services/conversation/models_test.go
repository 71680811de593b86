package conversation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotJSON(t *testing.T) {
	empty, err := json.Marshal(Snapshot{ID: "c1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","messages":[],"state":"idle","pending":false,"version":0}`, string(empty))

	full, err := json.Marshal(Snapshot{
		ID:       "c1",
		Messages: Transcript{{Sender: SenderUser, Text: "hi"}},
		State:    StateTimedOut,
		Version:  3,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1","messages":[{"sender":"user","text":"hi"}],"state":"timed_out","pending":false,"version":3}`, string(full))
}

func TestTranscriptAppendLeavesReceiver(t *testing.T) {
	base := Transcript{}.Append(Message{Sender: SenderUser, Text: "one"})
	next := base.Append(Message{Sender: SenderAgent, Text: "two"})

	assert.Len(t, base, 1)
	assert.Len(t, next, 2)
}
