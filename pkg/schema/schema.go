// Package schema defines input contracts for tools: a named, ordered set of
// field definitions sharing one canonical form that yields both the
// validation function and the JSON schema descriptor exposed through
// tools/list. The two views can never drift because both are derived from
// the same field list.
package schema

import (
	"fmt"
	"strings"

	"mcp-document-service/pkg/errors"
)

// FieldType is the primitive type of a contract field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInteger FieldType = "integer"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
)

// Field describes one named input field.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool

	// Default is filled in for absent optional fields. nil means "leave
	// absent". Must be type-correct for Type; validated output always
	// carries it when set.
	Default interface{}

	// Enum restricts string fields to a closed value set.
	Enum []string

	// Minimum/Maximum bound integer fields when non-nil.
	Minimum *int
	Maximum *int

	// MaxLength bounds string fields when > 0.
	MaxLength int
}

// Refinement is a whole-object predicate run after per-field validation.
// It receives the fully-defaulted value map and returns a descriptive
// message when the object is rejected.
type Refinement func(values map[string]interface{}) *errors.StructuredError

// Contract is an input contract: ordered fields plus optional refinements.
// Contracts are built once at startup and immutable afterwards.
type Contract struct {
	fields      []Field
	refinements []Refinement
}

// NewContract creates a contract over the given fields, in order.
func NewContract(fields ...Field) *Contract {
	return &Contract{fields: fields}
}

// Refine appends a whole-object refinement and returns the contract for
// chaining during construction.
func (c *Contract) Refine(r Refinement) *Contract {
	c.refinements = append(c.refinements, r)
	return c
}

// Fields returns the contract's field definitions in declaration order.
func (c *Contract) Fields() []Field {
	return c.fields
}

// RequireOneOf returns a refinement demanding that at least one of the named
// fields is present with a non-empty value. Both being present is allowed.
func RequireOneOf(a, b string) Refinement {
	message := fmt.Sprintf("one of %q or %q must be provided", a, b)
	return func(values map[string]interface{}) *errors.StructuredError {
		for _, name := range []string{a, b} {
			v, ok := values[name]
			if !ok {
				continue
			}
			if s, isStr := v.(string); isStr && s == "" {
				continue
			}
			return nil
		}
		return errors.NewValidationError(errors.ErrCodeMissingField, message, nil)
	}
}

// Validate checks raw against the contract. On success it returns a new map
// carrying every supplied field plus filled defaults; raw is never mutated.
// On failure it returns a structured validation error naming the offending
// field. Validate never panics and never returns a partial object.
func (c *Contract) Validate(raw map[string]interface{}) (map[string]interface{}, *errors.StructuredError) {
	values := make(map[string]interface{}, len(c.fields))

	for _, f := range c.fields {
		v, present := raw[f.Name]
		if !present || v == nil {
			if f.Required {
				return nil, errors.NewValidationError(errors.ErrCodeMissingField,
					fmt.Sprintf("missing required argument: %s", f.Name), nil)
			}
			if f.Default != nil {
				values[f.Name] = f.Default
			}
			continue
		}

		checked, err := checkField(f, v)
		if err != nil {
			return nil, err
		}
		values[f.Name] = checked
	}

	// Unknown fields are carried through untouched so handlers can stay
	// forward compatible with older clients.
	for name, v := range raw {
		if _, known := values[name]; known {
			continue
		}
		if c.fieldByName(name) == nil {
			values[name] = v
		}
	}

	for _, refine := range c.refinements {
		if err := refine(values); err != nil {
			return nil, err
		}
	}

	return values, nil
}

func (c *Contract) fieldByName(name string) *Field {
	for i := range c.fields {
		if c.fields[i].Name == name {
			return &c.fields[i]
		}
	}
	return nil
}

// checkField validates a single supplied value against its field definition
// and returns the normalized value.
func checkField(f Field, v interface{}) (interface{}, *errors.StructuredError) {
	switch f.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, typeError(f.Name, "a string")
		}
		if f.MaxLength > 0 && len(s) > f.MaxLength {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidParams,
				fmt.Sprintf("field %s exceeds maximum length of %d", f.Name, f.MaxLength), nil)
		}
		if len(f.Enum) > 0 && !containsString(f.Enum, s) {
			return nil, errors.NewValidationError(errors.ErrCodeEnumViolation,
				fmt.Sprintf("field %s must be one of: %s", f.Name, strings.Join(f.Enum, ", ")), nil)
		}
		return s, nil

	case TypeInteger:
		// JSON numbers decode as float64; accept ints from in-process callers.
		var n int
		switch num := v.(type) {
		case int:
			n = num
		case int64:
			n = int(num)
		case float64:
			if num != float64(int(num)) {
				return nil, typeError(f.Name, "an integer")
			}
			n = int(num)
		default:
			return nil, typeError(f.Name, "an integer")
		}
		if f.Minimum != nil && n < *f.Minimum {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidParams,
				fmt.Sprintf("field %s must be at least %d", f.Name, *f.Minimum), nil)
		}
		if f.Maximum != nil && n > *f.Maximum {
			return nil, errors.NewValidationError(errors.ErrCodeInvalidParams,
				fmt.Sprintf("field %s must be at most %d", f.Name, *f.Maximum), nil)
		}
		return n, nil

	case TypeNumber:
		switch num := v.(type) {
		case float64:
			return num, nil
		case int:
			return float64(num), nil
		default:
			return nil, typeError(f.Name, "a number")
		}

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeError(f.Name, "a boolean")
		}
		return b, nil
	}

	return nil, errors.NewValidationError(errors.ErrCodeInvalidParams,
		fmt.Sprintf("field %s has unsupported contract type %q", f.Name, f.Type), nil)
}

func typeError(name, expected string) *errors.StructuredError {
	return errors.NewValidationError(errors.ErrCodeInvalidFieldType,
		fmt.Sprintf("field %s must be %s", name, expected), nil)
}

func containsString(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// JSONSchema renders the introspection view of the contract as a JSON
// schema object, derived from the same field list Validate uses.
func (c *Contract) JSONSchema() map[string]interface{} {
	properties := make(map[string]interface{}, len(c.fields))
	var required []string

	for _, f := range c.fields {
		prop := map[string]interface{}{
			"type":        string(f.Type),
			"description": f.Description,
		}
		if f.Default != nil {
			prop["default"] = f.Default
		}
		if len(f.Enum) > 0 {
			prop["enum"] = f.Enum
		}
		if f.Minimum != nil {
			prop["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			prop["maximum"] = *f.Maximum
		}
		if f.MaxLength > 0 {
			prop["maxLength"] = f.MaxLength
		}
		properties[f.Name] = prop

		if f.Required {
			required = append(required, f.Name)
		}
	}

	s := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// IntRange is a convenience for building Minimum/Maximum pointers inline.
func IntRange(min, max int) (*int, *int) {
	return &min, &max
}
