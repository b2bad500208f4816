package generation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnrecognizedShape = errors.New("unrecognized generation shape")

// Document is the canonical plan content. Subject entries are kept verbatim.
type Document struct {
	Subjects []json.RawMessage `json:"subjects"`
}

func (d *Document) Encode() (string, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	return string(b), nil
}

// A matcher returns ok=false when the payload is not its shape.
type matcher func(raw json.RawMessage) (*Document, bool)

// Order matters: the first matcher that recognizes the payload wins.
var matchers []matcher

func init() {
	matchers = []matcher{
		matchArrayWrapper,
		matchOutputSubjects,
		matchSubjects,
		matchOutputString,
		matchBareSequence,
	}
}

// Normalize maps any known upstream payload onto a Document.
func Normalize(payload []byte) (*Document, error) {
	payload = bytes.TrimSpace(payload)
	if !json.Valid(payload) {
		return nil, fmt.Errorf("payload is not json: %w", ErrUnrecognizedShape)
	}

	doc, ok := match(payload)
	if !ok || len(doc.Subjects) == 0 {
		return nil, ErrUnrecognizedShape
	}
	return doc, nil
}

func match(raw json.RawMessage) (*Document, bool) {
	for _, m := range matchers {
		if doc, ok := m(raw); ok {
			return doc, true
		}
	}
	return nil, false
}

func matchArrayWrapper(raw json.RawMessage) (*Document, bool) {
	items, ok := asArray(raw)
	if !ok || len(items) == 0 {
		return nil, false
	}
	return match(items[0])
}

func matchOutputSubjects(raw json.RawMessage) (*Document, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	output, ok := asObject(obj["output"])
	if !ok {
		return nil, false
	}
	subjects, ok := asArray(output["subjects"])
	if !ok {
		return nil, false
	}
	return &Document{Subjects: subjects}, true
}

func matchSubjects(raw json.RawMessage) (*Document, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	subjects, ok := asArray(obj["subjects"])
	if !ok {
		return nil, false
	}
	return &Document{Subjects: subjects}, true
}

// matchOutputString handles agents that return the document as a JSON string.
// A string that is not JSON, or JSON without subjects, still counts as this
// shape and yields an empty document.
func matchOutputString(raw json.RawMessage) (*Document, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return nil, false
	}
	var s string
	if err := json.Unmarshal(obj["output"], &s); err != nil {
		return nil, false
	}

	inner := json.RawMessage(bytes.TrimSpace([]byte(s)))
	if !json.Valid(inner) {
		return &Document{}, true
	}
	if innerObj, ok := asObject(inner); ok {
		if subjects, ok := asArray(innerObj["subjects"]); ok {
			return &Document{Subjects: subjects}, true
		}
	}

	var doc Document
	if err := json.Unmarshal(inner, &doc); err != nil {
		return &Document{}, true
	}
	return &doc, true
}

func matchBareSequence(raw json.RawMessage) (*Document, bool) {
	items, ok := asArray(raw)
	if !ok {
		return nil, false
	}
	return &Document{Subjects: items}, true
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
