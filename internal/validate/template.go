// Package validate implements structural validation of untrusted JSON
// payloads against declared templates.
//
// A template is a closed set of variants fixed at authoring time:
// primitive markers, regular-expression patterns, nested objects and
// homogeneous arrays. Validation is forward-compatible: unknown keys sent
// by richer clients are silently stripped rather than rejected, while
// missing or mistyped declared keys fail with an error naming the key.
package validate

import (
	"regexp"
	"strconv"
)

// Kind enumerates the primitive template markers.
type Kind int

const (
	// String accepts any JSON string.
	String Kind = iota

	// Int accepts JSON numbers without a fractional part and numeric
	// strings (clients routinely send counters as text).
	Int

	// Bool accepts JSON booleans and the literal strings "true"/"false".
	Bool

	// Any skips validation of the value entirely. Used for free-form
	// sub-documents such as the answers map, whose shape is governed by
	// the questionnaire schema rather than the request template.
	Any
)

// Template is one node of a validation template tree.
//
// Exactly one of the variant constructors below should be used to build a
// node; the zero value is not a valid template.
type Template struct {
	kind    Kind
	pattern *regexp.Regexp
	object  map[string]Template
	elem    *Template
	tag     tag
}

type tag int

const (
	tagPrimitive tag = iota
	tagPattern
	tagObject
	tagArrayOf
)

// Primitive builds a template matching a primitive marker.
func Primitive(kind Kind) Template {
	return Template{tag: tagPrimitive, kind: kind}
}

// Pattern builds a template requiring the value to be a string matching
// the given anchored regular expression. The expression is compiled once,
// at template-authoring time.
func Pattern(expr string) Template {
	return Template{tag: tagPattern, pattern: regexp.MustCompile("^" + expr + "$")}
}

// Object builds a template validating a JSON object member-wise.
func Object(fields map[string]Template) Template {
	return Template{tag: tagObject, object: fields}
}

// ArrayOf builds a template validating each element of a JSON array
// against the single element template. An empty array always validates.
func ArrayOf(elem Template) Template {
	return Template{tag: tagArrayOf, elem: &elem}
}

// matches reports whether a decoded JSON value conforms to the template.
// nil values are accepted for every template, matching the permissive
// treatment of absent optional values in the original protocol.
func (t Template) matches(value any) bool {
	if value == nil {
		return true
	}

	switch t.tag {
	case tagPrimitive:
		return matchPrimitive(t.kind, value)

	case tagPattern:
		s, ok := value.(string)
		return ok && t.pattern.MatchString(s)

	case tagObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return false
		}
		return validateObject(obj, t.object) == nil

	case tagArrayOf:
		arr, ok := value.([]any)
		if !ok {
			return false
		}
		for _, elem := range arr {
			if !t.elem.matches(elem) {
				return false
			}
		}
		return true
	}

	return false
}

func matchPrimitive(kind Kind, value any) bool {
	switch kind {
	case Any:
		return true

	case String:
		_, ok := value.(string)
		return ok

	case Int:
		switch v := value.(type) {
		case float64:
			return v == float64(int64(v))
		case string:
			_, err := strconv.ParseInt(v, 10, 64)
			return err == nil
		}
		return false

	case Bool:
		switch v := value.(type) {
		case bool:
			return true
		case string:
			return v == "true" || v == "false"
		}
		return false
	}

	return false
}
