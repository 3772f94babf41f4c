package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope is the outer response shape common to every DramaBox endpoint.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Decode unmarshals an endpoint response and checks the success flag,
// then unmarshals the data payload into out.
func Decode(body []byte, out any) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "unknown error"
		}
		return fmt.Errorf("api error: %s", msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// StringID decodes identifiers that the API serves inconsistently as either
// JSON strings or numbers.
type StringID string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringID) UnmarshalJSON(data []byte) error {
	trimmed := strings.Trim(string(data), `"`)
	if trimmed == "null" {
		trimmed = ""
	}
	*s = StringID(trimmed)
	return nil
}
