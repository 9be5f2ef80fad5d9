package models

import (
	"bytes"
	"encoding/json"
)

// TemplateWhistleblowerIdentity is the reserved template id of the field
// collecting the whistleblower's identity. Its presence in a questionnaire
// enables the identity-provided flow on submissions.
const TemplateWhistleblowerIdentity = "whistleblower_identity"

// LocalizedMap holds a text value translated into multiple languages,
// keyed by language code (e.g. "en", "it").
type LocalizedMap map[string]string

// In returns the text for the given language, or the empty string when the
// language is not present. Matches the fallback the questionnaire renderer
// applies to missing translations.
func (m LocalizedMap) In(language string) string {
	if m == nil {
		return ""
	}
	return m[language]
}

// Copy returns an independent copy of the map.
func (m LocalizedMap) Copy() LocalizedMap {
	if m == nil {
		return nil
	}
	out := make(LocalizedMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FieldAttr is a typed attribute attached to a field by the questionnaire
// author. Attributes of type "localized" carry translations in Value and
// are resolved to a single language when the schema is materialized; any
// other attribute type carries its value string-coerced in Raw.
type FieldAttr struct {
	Type  string
	Value LocalizedMap
	Raw   string
}

// MarshalJSON serializes the attribute under a single "value" key: the
// translation map for localized attributes, the coerced scalar otherwise.
func (a FieldAttr) MarshalJSON() ([]byte, error) {
	if a.Type == "localized" {
		return json.Marshal(struct {
			Type  string       `json:"type"`
			Value LocalizedMap `json:"value,omitempty"`
		}{a.Type, a.Value})
	}
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value string `json:"value,omitempty"`
	}{a.Type, a.Raw})
}

// UnmarshalJSON is the inverse of MarshalJSON. Scalar attribute values are
// string-coerced the same way answer leaves are.
func (a *FieldAttr) UnmarshalJSON(data []byte) error {
	var wire struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	*a = FieldAttr{Type: wire.Type}
	if len(wire.Value) == 0 || string(wire.Value) == "null" {
		return nil
	}

	if wire.Type == "localized" {
		return json.Unmarshal(wire.Value, &a.Value)
	}

	dec := json.NewDecoder(bytes.NewReader(wire.Value))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	value, err := coerceScalar(raw)
	if err != nil {
		return err
	}
	a.Raw = value

	return nil
}

// FieldOption is one selectable option of a selectbox/checkbox field.
type FieldOption struct {
	ID    string       `json:"id"`
	Label LocalizedMap `json:"label"`
	Score int          `json:"score_points"`
}

// Field is a node of the questionnaire schema tree. Fields are authored
// elsewhere; at submission time the tree is read-only and a content-hashed
// snapshot of it is frozen alongside the submission.
type Field struct {
	// ID keys the answers map: every answer node is stored under the id of
	// the field it answers.
	ID string `json:"id"`

	// TemplateID links the field to a built-in template
	// (e.g. whistleblower_identity). Empty for plain authored fields.
	TemplateID string `json:"template_id"`

	// Type is the widget type (inputbox, textarea, fieldgroup, ...).
	Type string `json:"type"`

	Label       LocalizedMap `json:"label"`
	Description LocalizedMap `json:"description"`
	Hint        LocalizedMap `json:"hint"`

	// Preview marks the field for inclusion in list-view summaries.
	Preview bool `json:"preview"`

	// SensitiveData marks the field's answers for redaction: viewers
	// without the sensitive-data grant see a mask instead of the value.
	SensitiveData bool `json:"sensitive_data"`

	// Multientry marks a repeatable group: the answer is an ordered list
	// of group instances rather than a single value.
	Multientry bool `json:"multi_entry"`

	Required bool `json:"required"`

	Options  []FieldOption        `json:"options,omitempty"`
	Children []Field              `json:"children,omitempty"`
	Attrs    map[string]FieldAttr `json:"attrs,omitempty"`
}

// Step is a top-level page of the questionnaire. Step children are the
// root fields the answers map is keyed by.
type Step struct {
	ID          string       `json:"id"`
	Label       LocalizedMap `json:"label"`
	Description LocalizedMap `json:"description"`
	Children    []Field      `json:"children"`
}

// ArchivedSchema is an immutable content-addressed snapshot of a
// questionnaire's step tree, frozen at submission time so later edits to
// the live questionnaire never change what a submission answered.
type ArchivedSchema struct {
	// Hash is the hex digest of the canonical serialization of Steps.
	// Archiving is idempotent: the same steps always produce the same
	// hash and a single stored row.
	Hash string `json:"hash"`

	Steps []Step `json:"steps"`

	// Preview is the subset of fields flagged previewable, precomputed at
	// archive time for list views.
	Preview []Field `json:"preview"`
}

// TableName returns the name of the database table associated with the
// ArchivedSchema model.
func (a ArchivedSchema) TableName() string {
	return "archived_schemas"
}
