package validate

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors wrapped by [ValidationError]; match with errors.Is.
var (
	// ErrInvalidJSON is returned when the payload is not well-formed JSON
	// or its top level is not an object.
	ErrInvalidJSON = errors.New("invalid JSON format")

	// ErrMissingKey is returned when a key declared by the template is
	// absent from the payload.
	ErrMissingKey = errors.New("missing key")

	// ErrTypeMismatch is returned when a present key fails its template.
	ErrTypeMismatch = errors.New("type validation failure")
)

// ValidationError reports which key of the payload failed validation.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("key %q: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateMessage decodes raw JSON and validates it against an object
// template. On success the returned map contains exactly the declared
// keys: anything extra the client sent has been stripped.
func ValidateMessage(raw []byte, template map[string]Template) (map[string]any, error) {
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ValidationError{Err: ErrInvalidJSON}
	}

	if err := validateObject(decoded, template); err != nil {
		return nil, err
	}

	return decoded, nil
}

// validateObject checks decoded member-wise against the template,
// mutating decoded to strip undeclared keys. Unknown keys are stripped
// silently: clients legitimately send server-populated attributes back
// (timestamps, ids) and rejecting them would break round-tripping.
func validateObject(decoded map[string]any, template map[string]Template) error {
	for key := range decoded {
		if _, declared := template[key]; !declared {
			delete(decoded, key)
		}
	}

	for key, tmpl := range template {
		value, present := decoded[key]
		if !present {
			return &ValidationError{Key: key, Err: ErrMissingKey}
		}

		if !tmpl.matches(value) {
			return &ValidationError{Key: key, Err: ErrTypeMismatch}
		}
	}

	return nil
}
