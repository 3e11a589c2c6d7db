package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptJSON(t *testing.T) {
	id := uuid.MustParse("5f0c1c9e-2b7a-4d8e-9a43-0d7f6b1f2a11")
	at := time.Date(2025, 5, 16, 9, 0, 0, 0, time.UTC)
	tr := Transcript{ID: id, Text: "hello", Language: "en-US", CreatedAt: at, UpdatedAt: at}

	data, err := json.Marshal(tr)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"_id": "5f0c1c9e-2b7a-4d8e-9a43-0d7f6b1f2a11",
		"id": "5f0c1c9e-2b7a-4d8e-9a43-0d7f6b1f2a11",
		"text": "hello",
		"language": "en-US",
		"createdAt": "2025-05-16T09:00:00Z",
		"updatedAt": "2025-05-16T09:00:00Z"
	}`, string(data))

	var back Transcript
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tr, back)
}

func TestTranscriptJSONPointerAndSlice(t *testing.T) {
	tr := &Transcript{ID: uuid.New(), Text: "x"}

	data, err := json.Marshal([]*Transcript{tr})
	require.NoError(t, err)
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, tr.ID.String(), out[0]["_id"])
}
