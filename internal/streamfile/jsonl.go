package streamfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"pkt.systems/flowdeck/schema"
)

var errMissingType = errors.New("event type is required")

// Reader decodes a recorded push-event stream, one JSON event per line.
// Blank lines are skipped.
type Reader struct {
	reader *bufio.Reader
}

// DecodeError wraps a line that failed to decode.
type DecodeError struct {
	line []byte
	err  error
}

func (e *DecodeError) Error() string {
	if e == nil || e.err == nil {
		return "stream decode error"
	}
	return e.err.Error()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Line returns the raw line that failed to decode.
func (e *DecodeError) Line() []byte {
	if e == nil {
		return nil
	}
	return e.line
}

// NewReader constructs a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{reader: bufio.NewReader(r)}
}

// Next returns the next decoded event, io.EOF at end of stream, or a
// *DecodeError for a malformed line.
func (r *Reader) Next(ctx context.Context) (schema.StreamEvent, error) {
	for {
		if ctx.Err() != nil {
			return schema.StreamEvent{}, ctx.Err()
		}
		line, err := r.reader.ReadBytes('\n')
		if len(line) == 0 && err != nil {
			return schema.StreamEvent{}, err
		}
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			if err != nil {
				return schema.StreamEvent{}, err
			}
			continue
		}
		event, decodeErr := decodeEvent(line)
		if decodeErr != nil {
			return schema.StreamEvent{}, &DecodeError{line: append([]byte(nil), line...), err: decodeErr}
		}
		return event, nil
	}
}

// ReadAll decodes the entire stream, skipping malformed lines.
func ReadAll(ctx context.Context, r io.Reader) ([]schema.StreamEvent, []error, error) {
	reader := NewReader(r)
	var events []schema.StreamEvent
	var decodeErrs []error
	for {
		event, err := reader.Next(ctx)
		if err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				decodeErrs = append(decodeErrs, err)
				continue
			}
			if errors.Is(err, io.EOF) {
				return events, decodeErrs, nil
			}
			return events, decodeErrs, err
		}
		events = append(events, event)
	}
}

func decodeEvent(line []byte) (schema.StreamEvent, error) {
	var event schema.StreamEvent
	if err := json.Unmarshal(line, &event); err != nil {
		return schema.StreamEvent{}, err
	}
	if event.Type == "" {
		return schema.StreamEvent{}, errMissingType
	}
	event.Raw = append([]byte(nil), line...)
	return event, nil
}
