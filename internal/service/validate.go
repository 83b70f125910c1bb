package service

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// Step is a single check in a validation chain. A nil return lets the
// next step run.
type Step[T any] func(in T) error

// runChain runs steps in order and stops at the first failure.
func runChain[T any](in T, steps ...Step[T]) error {
	for _, step := range steps {
		if err := step(in); err != nil {
			return err
		}
	}
	return nil
}

func absent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || string(raw) == "null"
}

// text returns raw as a string when it holds a JSON string.
func text(raw json.RawMessage) (string, bool) {
	if absent(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func nonBlank(raw json.RawMessage) bool {
	s, ok := text(raw)
	return ok && strings.TrimSpace(s) != ""
}

// literal returns a string value as is and any other non-null value in its
// JSON form, so a wrong-typed value never compares equal to a valid one.
func literal(raw json.RawMessage) string {
	if absent(raw) {
		return ""
	}
	if s, ok := text(raw); ok {
		return s
	}
	return string(bytes.TrimSpace(raw))
}

// falsy reports whether raw holds no usable value: absent, null, false, 0
// or "".
func falsy(raw json.RawMessage) bool {
	if absent(raw) {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch v := v.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	}
	return false
}

// positiveInt accepts JSON numbers with no fractional part that are > 0.
func positiveInt(raw json.RawMessage) (int, bool) {
	if absent(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f <= 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int(f), true
}
