package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// payloadEnvelope is the object form of a source payload.
type payloadEnvelope struct {
	Postings []RawPosting `json:"postings"`
}

// DecodeCandidates normalises a raw source payload into candidate postings.
// Source feeds are loosely typed: both an object carrying a "postings" list
// and a bare list are accepted. The ambiguity stops here; everything inward
// works on RawPosting values only.
func DecodeCandidates(data []byte) ([]RawPosting, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidInput)
	}

	var candidates []RawPosting
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &candidates); err != nil {
			return nil, fmt.Errorf("%w: decoding payload list: %v", ErrInvalidInput, err)
		}
	} else {
		var envelope payloadEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, fmt.Errorf("%w: decoding payload object: %v", ErrInvalidInput, err)
		}
		candidates = envelope.Postings
	}

	for i, c := range candidates {
		if c.Title == "" {
			return nil, fmt.Errorf("%w: posting %d has no title", ErrInvalidInput, i)
		}
	}
	return candidates, nil
}
