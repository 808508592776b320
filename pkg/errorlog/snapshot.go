package errorlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNoSnapshot indicates no snapshot has been persisted yet.
	ErrNoSnapshot = errors.New("no error log snapshot")

	// ErrCorruptSnapshot indicates the persisted snapshot could not be decoded.
	ErrCorruptSnapshot = errors.New("corrupt error log snapshot")
)

// Snapshotter persists the error log state as a single document.
type Snapshotter interface {
	// Load returns the persisted state, ErrNoSnapshot if none exists or an
	// error wrapping ErrCorruptSnapshot if it is malformed.
	Load(ctx context.Context) (*State, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state *State) error
}

// Encode serializes state to the persisted JSON layout:
//
//	{"errors":[{"timestamp":"...","message":"..."}],"totalRequests":0}
func Encode(state *State) ([]byte, error) {
	out := *state
	if out.Errors == nil {
		out.Errors = []Event{}
	}
	data, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("marshal error log: %w", err)
	}
	return data, nil
}

// Decode parses a persisted document. Empty documents, JSON null, a missing
// errors array and negative counters are all reported as ErrCorruptSnapshot.
func Decode(data []byte) (*State, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrCorruptSnapshot)
	}

	var raw struct {
		Errors        *[]Event `json:"errors"`
		TotalRequests *int64   `json:"totalRequests"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if raw.Errors == nil {
		return nil, fmt.Errorf("%w: missing errors array", ErrCorruptSnapshot)
	}

	state := &State{Errors: *raw.Errors}
	if raw.TotalRequests != nil {
		if *raw.TotalRequests < 0 {
			return nil, fmt.Errorf("%w: negative totalRequests", ErrCorruptSnapshot)
		}
		state.TotalRequests = *raw.TotalRequests
	}
	return state, nil
}
