package processor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TextList decodes a JSON array of arbitrary values, or a single string, into strings.
// Generation models are loose about list element types.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case nil:
		*l = nil
	case string:
		if strings.TrimSpace(v) == "" {
			*l = nil
		} else {
			*l = TextList{v}
		}
	case []interface{}:
		out := make(TextList, 0, len(v))
		for _, item := range v {
			switch s := item.(type) {
			case nil:
			case string:
				out = append(out, s)
			default:
				b, err := json.Marshal(s)
				if err != nil {
					return err
				}
				out = append(out, string(b))
			}
		}
		*l = out
	default:
		*l = TextList{fmt.Sprint(v)}
	}
	return nil
}

func (n Note) empty() bool {
	return n.Title == "" && len(n.KeyPoints) == 0 && len(n.ActionItems) == 0 &&
		n.FormattedTranscript == "" && n.Transcript == ""
}

// decodeNote parses a generation response. When the body carries a string
// "response" field, that string is the payload; otherwise the body itself is.
func decodeNote(body []byte) (Note, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Note{}, fmt.Errorf("%w: decode response body: %w", ErrParse, err)
	}

	payload := body
	if raw, ok := envelope["response"]; ok {
		var nested string
		if err := json.Unmarshal(raw, &nested); err == nil {
			payload = stripFence([]byte(nested))
		}
	}

	return parseNote(payload)
}

func parseNote(payload []byte) (Note, error) {
	var n Note
	if err := json.Unmarshal(payload, &n); err != nil {
		return Note{}, fmt.Errorf("%w: decode note: %w", ErrParse, err)
	}
	if n.empty() {
		return Note{}, fmt.Errorf("%w: response has no note fields", ErrParse)
	}
	return n, nil
}

// stripFence removes a surrounding ```json ... ``` block some models add.
func stripFence(b []byte) []byte {
	b = bytes.TrimSpace(b)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = bytes.TrimPrefix(b, []byte("```json"))
	b = bytes.TrimPrefix(b, []byte("```"))
	b = bytes.TrimSuffix(b, []byte("```"))
	return bytes.TrimSpace(b)
}
