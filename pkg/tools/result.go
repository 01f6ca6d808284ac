package tools

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Result is the tagged outcome of one tool call: either success carrying
// tool-specific fields, or failure carrying a message. The two variants are
// unioned only at the serialization boundary, where they become
// {"success":true, ...fields} or {"success":false, "error": message}.
type Result struct {
	ok     bool
	errMsg string
	fields map[string]interface{}
}

// OK creates a success result.
func OK() Result {
	return Result{ok: true, fields: make(map[string]interface{})}
}

// Fail creates a failure result with an explanatory message.
func Fail(message string) Result {
	return Result{ok: false, errMsg: message}
}

// Failf creates a failure result with a formatted message.
func Failf(format string, args ...interface{}) Result {
	return Fail(fmt.Sprintf(format, args...))
}

// With attaches one tool-specific field to a success result and returns the
// result for chaining. Calling With on a failure is a no-op.
func (r Result) With(key string, value interface{}) Result {
	if !r.ok {
		return r
	}
	r.fields[key] = value
	return r
}

// IsError reports whether the result is the failure variant.
func (r Result) IsError() bool {
	return !r.ok
}

// ErrorMessage returns the failure message, or "" for a success.
func (r Result) ErrorMessage() string {
	return r.errMsg
}

// Field returns a success field by name.
func (r Result) Field(key string) (interface{}, bool) {
	v, ok := r.fields[key]
	return v, ok
}

// MarshalJSON serializes the union shape. Field order is deterministic:
// "success" first, then tool fields sorted by name.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.ok {
		return json.Marshal(map[string]interface{}{
			"success": false,
			"error":   r.errMsg,
		})
	}

	// Build ordered JSON by hand so the envelope is deterministic.
	keys := make([]string, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := []byte(`{"success":true`)
	for _, k := range keys {
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(r.fields[k])
		if err != nil {
			return nil, err
		}
		out = append(out, ',')
		out = append(out, kb...)
		out = append(out, ':')
		out = append(out, vb...)
	}
	out = append(out, '}')
	return out, nil
}

// serialize renders the result into the single text payload carried by the
// response envelope. Indentation is cosmetic.
func (r Result) serialize() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		// Marshal of a Result can only fail on an unserializable field
		// value; degrade to a failure shape rather than propagate.
		msg, _ := json.Marshal(fmt.Sprintf("result serialization failed: %s", err))
		return fmt.Sprintf(`{"success":false,"error":%s}`, msg)
	}
	return string(data)
}
