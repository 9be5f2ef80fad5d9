// Package redact applies sensitive-data policy to reconstructed answer
// trees before they are shown to a viewer.
//
// A field flagged sensitive taints its whole answer subtree: every leaf
// below it is either masked (for viewers without the sensitive-data grant)
// or pulled out into a labelled list (for viewers with it). The taint is
// an explicit flag threaded through the recursive walk, scoped per
// subtree; it is never shared mutable state.
package redact

import (
	"github.com/tiplinehq/tipline/internal/archive"
	"github.com/tiplinehq/tipline/models"
)

// Mask is the fixed string sensitive leaf values are overwritten with.
const Mask = "********"

// Obfuscate walks the answer tree depth-first and overwrites the value of
// every leaf owned by a sensitive field subtree with Mask. The tree is
// modified in place; non-sensitive siblings are left untouched.
func Obfuscate(answers models.Answers, fields archive.FieldIndex) {
	obfuscate(answers, fields, false)
}

func obfuscate(answers map[string]*models.AnswerNode, fields archive.FieldIndex, tainted bool) {
	for key, node := range answers {
		sensitive := tainted
		if field := fields.Lookup(key); field != nil && field.SensitiveData {
			sensitive = true
		}

		if node.IsLeaf {
			if sensitive {
				node.Value = Mask
			}
			continue
		}

		for _, instance := range node.Groups {
			obfuscate(instance, fields, sensitive)
		}
	}
}

// Extract walks the answer tree the same way Obfuscate does, but instead
// of masking it collects sensitive leaf values as "<label>: <value>"
// lines, the field label resolved to the given language. Later finds are
// inserted at the front of the list. The tree itself is not modified.
func Extract(answers models.Answers, fields archive.FieldIndex, language string) []string {
	return extract(answers, fields, language, "", nil)
}

func extract(answers map[string]*models.AnswerNode, fields archive.FieldIndex, language, label string, out []string) []string {
	for key, node := range answers {
		owner := label
		if field := fields.Lookup(key); field != nil && field.SensitiveData {
			owner = field.Label.In(language)
		}

		if node.IsLeaf {
			if owner != "" {
				out = append([]string{owner + ": " + node.Value}, out...)
			}
			continue
		}

		for _, instance := range node.Groups {
			out = extract(instance, fields, language, owner, out)
		}
	}

	return out
}
