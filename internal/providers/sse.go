package providers

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// SSEEvent is one complete server-sent event: the `data:` lines of a block
// terminated by a blank line, already joined.
type SSEEvent struct {
	Data string
}

// SSEDecoder parses a rolling byte stream into complete SSE events one at a
// time. Parsing is stateful: the decoder owns the trailing partial event
// across reads so a response body split mid-event by the transport is
// tolerated transparently. This is the one place in the gateway where
// partial reads must be tolerated, per the streaming contract.
type SSEDecoder struct {
	scanner *bufio.Scanner
	lines   []string
}

func NewSSEDecoder(r io.Reader) *SSEDecoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &SSEDecoder{scanner: scanner}
}

// Next returns the next complete event (one or more `data:` lines
// terminated by a blank line), or io.EOF when the underlying stream is
// exhausted with no further events.
func (d *SSEDecoder) Next() (SSEEvent, error) {
	var dataLines []string
	for d.scanner.Scan() {
		line := d.scanner.Text()
		if line == "" {
			if len(dataLines) > 0 {
				return SSEEvent{Data: strings.Join(dataLines, "\n")}, nil
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data: "); ok {
			dataLines = append(dataLines, rest)
		} else if rest, ok := strings.CutPrefix(line, "data:"); ok {
			dataLines = append(dataLines, rest)
		}
		// Non-data fields (event:, id:, retry:) are ignored; the gateway's
		// wire formats never use them.
	}
	if err := d.scanner.Err(); err != nil {
		return SSEEvent{}, err
	}
	if len(dataLines) > 0 {
		return SSEEvent{Data: strings.Join(dataLines, "\n")}, nil
	}
	return SSEEvent{}, io.EOF
}

// ChunkMapper turns one SSE event payload into a StreamChunk, returning
// (chunk, false, nil) for an ordinary chunk, (zero, true, nil) on the
// `[DONE]` terminator, or (zero, false, err) when the payload fails to
// parse as JSON.
type ChunkMapper func(payload string) (StreamChunk, bool, error)

// DecodeStream drives an SSEDecoder to completion, pushing mapped chunks
// onto out in server order. A malformed chunk is surfaced as a single
// error StreamChunk without aborting subsequent events, matching the
// gateway's streaming error contract. DecodeStream closes out before
// returning.
func DecodeStream(r io.Reader, mapFn ChunkMapper, out chan<- StreamChunk) {
	defer close(out)
	dec := NewSSEDecoder(r)
	for {
		event, err := dec.Next()
		if err == io.EOF {
			return
		}
		if err != nil {
			out <- StreamChunk{Err: err, Finished: true}
			return
		}
		if strings.TrimSpace(event.Data) == "[DONE]" {
			return
		}
		chunk, done, mapErr := mapFn(event.Data)
		if mapErr != nil {
			out <- StreamChunk{Err: mapErr}
			continue
		}
		if done {
			return
		}
		out <- chunk
	}
}

// JSONChunkMapper builds a ChunkMapper that unmarshals payload into T and
// delegates to convert. Convenience for the common case where a provider's
// stream payload is a flat JSON object.
func JSONChunkMapper[T any](convert func(T) StreamChunk) ChunkMapper {
	return func(payload string) (StreamChunk, bool, error) {
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return StreamChunk{}, false, err
		}
		return convert(v), false, nil
	}
}
