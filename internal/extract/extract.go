// Package extract pulls a JSON object out of free-form model output and
// decodes it into task fields.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Extraction errors.
var (
	ErrNoJSONFound          = errors.New("no JSON object found in reply")
	ErrMalformedJSON        = errors.New("malformed JSON in reply")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field value")
	ErrUnknownExtractor     = errors.New("unknown extractor")
)

// Strategy names accepted by New.
const (
	NameGreedy   = "greedy"
	NameBalanced = "balanced"
)

// MissingFieldError names the required field that was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// Is makes errors.Is(err, ErrMissingRequiredField) match.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingRequiredField
}

// Extractor turns raw reply text into a JSON object.
type Extractor interface {
	Extract(text string) (map[string]any, error)
}

// New returns the extractor registered under name. An empty name selects Greedy.
func New(name string) (Extractor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameGreedy:
		return Greedy{}, nil
	case NameBalanced:
		return Balanced{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtractor, name)
	}
}

// Greedy takes everything from the first '{' to the last '}'.
//
// It does not look at nesting, so a reply carrying two separate objects
// yields one invalid span and fails with ErrMalformedJSON.
type Greedy struct{}

// Extract implements Extractor.
func (Greedy) Extract(text string) (map[string]any, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return nil, ErrNoJSONFound
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return nil, ErrNoJSONFound
	}
	return parseObject(text[start : end+1])
}

// Balanced returns the first brace-balanced span that parses as an object.
// Braces inside string literals are ignored.
type Balanced struct{}

// Extract implements Extractor.
func (Balanced) Extract(text string) (map[string]any, error) {
	spans := balancedSpans(text)
	if len(spans) == 0 {
		return nil, ErrNoJSONFound
	}

	var firstErr error
	for _, span := range spans {
		fields, err := parseObject(span)
		if err == nil {
			return fields, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, firstErr
}

// balancedSpans lists every top-level {...} span in text, in order.
func balancedSpans(text string) []string {
	var (
		spans    []string
		depth    int
		start    int
		inString bool
		escaped  bool
	)

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			// Quotes only matter once we are inside an object.
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, text[start:i+1])
			}
		}
	}

	return spans
}

func parseObject(span string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(span), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return fields, nil
}
