package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerNode is one node of a submitted answer tree: either a leaf holding
// a string-coerced scalar, or a non-leaf holding an ordered sequence of
// repeated group instances. Exactly one of Value/Groups is meaningful,
// selected by IsLeaf.
type AnswerNode struct {
	IsLeaf bool
	Value  string
	Groups []AnswerGroup
}

// AnswerGroup is a single instance of a repeatable group: a mapping from
// field id to the answer given for that field within the instance.
type AnswerGroup map[string]*AnswerNode

// UnmarshalJSON decodes a group instance, normalizing null elements into
// empty leaves. encoding/json stores a JSON null directly as a nil map
// element without consulting AnswerNode's decoder, so the coercion has to
// happen at the map level.
func (g *AnswerGroup) UnmarshalJSON(data []byte) error {
	var raw map[string]*AnswerNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = replaceNilNodes(raw)
	return nil
}

// Answers is the root of an answer tree, keyed by top-level field id.
type Answers map[string]*AnswerNode

// UnmarshalJSON decodes the answer tree root with the same null
// normalization as [AnswerGroup.UnmarshalJSON].
func (a *Answers) UnmarshalJSON(data []byte) error {
	var raw map[string]*AnswerNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = replaceNilNodes(raw)
	return nil
}

func replaceNilNodes(m map[string]*AnswerNode) map[string]*AnswerNode {
	for key, node := range m {
		if node == nil {
			m[key] = Leaf("")
		}
	}
	return m
}

// Leaf constructs a leaf answer node.
func Leaf(value string) *AnswerNode {
	return &AnswerNode{IsLeaf: true, Value: value}
}

// Group constructs a non-leaf answer node from ordered group instances.
func Group(groups ...AnswerGroup) *AnswerNode {
	return &AnswerNode{Groups: groups}
}

// UnmarshalJSON decodes the client's answer representation: a JSON array
// becomes an ordered list of group instances, anything else becomes a
// string-coerced leaf (numbers and booleans arrive as their literal text,
// null as the empty string).
func (n *AnswerNode) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var groups []AnswerGroup
		if err := json.Unmarshal(data, &groups); err != nil {
			return err
		}
		*n = AnswerNode{Groups: groups}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	value, err := coerceScalar(raw)
	if err != nil {
		return err
	}

	*n = AnswerNode{IsLeaf: true, Value: value}
	return nil
}

// MarshalJSON is the inverse of UnmarshalJSON: leaves serialize as their
// string value, non-leaves as the array of group instances.
func (n *AnswerNode) MarshalJSON() ([]byte, error) {
	if n.IsLeaf {
		return json.Marshal(n.Value)
	}
	if n.Groups == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(n.Groups)
}

func coerceScalar(raw any) (string, error) {
	switch v := raw.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("answer value of unsupported type %T", raw)
	}
}
