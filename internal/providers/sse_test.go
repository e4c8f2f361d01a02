package providers

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenario 5 from the spec's testable scenarios: a scripted SSE source
// delivers three chunks in order; concatenation reconstructs "Hello" and
// the final finish reason is Stop.
func TestDecodeStream_ConcatenationAndOrder(t *testing.T) {
	script := "data: {\"delta\":{\"content\":\"Hel\"}}\n\n" +
		"data: {\"delta\":{\"content\":\"lo\"}}\n\n" +
		"data: {\"finished\":true,\"finish_reason\":\"stop\"}\n\n" +
		"data: [DONE]\n\n"

	mapper := func(payload string) (StreamChunk, bool, error) {
		var raw struct {
			Delta        Delta  `json:"delta"`
			Finished     bool   `json:"finished"`
			FinishReason string `json:"finish_reason"`
		}
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return StreamChunk{}, false, err
		}
		chunk := StreamChunk{Delta: raw.Delta, Finished: raw.Finished}
		if raw.FinishReason != "" {
			fr := FinishReason(raw.FinishReason)
			chunk.FinishReason = &fr
		}
		return chunk, false, nil
	}

	out := make(chan StreamChunk, 16)
	DecodeStream(strings.NewReader(script), mapper, out)

	var chunks []StreamChunk
	for c := range out {
		chunks = append(chunks, c)
	}
	require.Len(t, chunks, 3)

	var text string
	for _, c := range chunks {
		text += c.Delta.Content
	}
	assert.Equal(t, "Hello", text)
	require.NotNil(t, chunks[2].FinishReason)
	assert.Equal(t, FinishStop, *chunks[2].FinishReason)
}

func TestDecodeStream_MalformedChunkDoesNotAbort(t *testing.T) {
	script := "data: not-json\n\n" +
		"data: {\"delta\":{\"content\":\"ok\"}}\n\n" +
		"data: [DONE]\n\n"

	mapper := JSONChunkMapper(func(d struct {
		Delta Delta `json:"delta"`
	}) StreamChunk {
		return StreamChunk{Delta: d.Delta}
	})

	out := make(chan StreamChunk, 16)
	DecodeStream(strings.NewReader(script), mapper, out)

	var chunks []StreamChunk
	for c := range out {
		chunks = append(chunks, c)
	}
	require.Len(t, chunks, 2)
	assert.Error(t, chunks[0].Err)
	assert.Equal(t, "ok", chunks[1].Delta.Content)
}

func TestMapGeminiFinishReason_Safety(t *testing.T) {
	assert.Equal(t, FinishContentFilter, MapGeminiFinishReason("SAFETY"))
	assert.Equal(t, FinishContentFilter, MapGeminiFinishReason("RECITATION"))
	assert.Equal(t, FinishStop, MapGeminiFinishReason("STOP"))
	assert.Equal(t, FinishLength, MapGeminiFinishReason("MAX_TOKENS"))
}

func TestConcatenateStream(t *testing.T) {
	chunks := make(chan StreamChunk, 4)
	stop := FinishStop
	chunks <- StreamChunk{Delta: Delta{Content: "Hel"}}
	chunks <- StreamChunk{Delta: Delta{Content: "lo"}}
	chunks <- StreamChunk{Finished: true, FinishReason: &stop}
	close(chunks)

	text, finish, err := ConcatenateStream(chunks)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
	assert.Equal(t, FinishStop, finish)
}
