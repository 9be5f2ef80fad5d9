// Package archive computes content addresses for questionnaire schema
// snapshots and materializes localized copies of archived schemas.
//
// A snapshot is addressed by the hash of its canonical serialization, so
// archiving the same step tree twice always lands on the same row and a
// submission's schema reference survives any later edit to the live
// questionnaire.
package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/tiplinehq/tipline/models"
)

// Hash returns the hex digest of the canonical serialization of the step
// tree. encoding/json serializes struct fields in declaration order and
// map keys sorted, so equal trees always produce equal bytes.
func Hash(steps []models.Step) (string, error) {
	canonical, err := json.Marshal(steps)
	if err != nil {
		return "", fmt.Errorf("error serializing schema for hashing: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Preview returns the fields flagged previewable across all steps, in
// schema order. Stored alongside the snapshot for list-view rendering.
func Preview(steps []models.Step) []models.Field {
	var preview []models.Field
	for _, step := range steps {
		for _, field := range step.Children {
			if field.Preview {
				preview = append(preview, field)
			}
		}
	}
	return preview
}

// Snapshot bundles a step tree with its content address and preview
// subset, ready for idempotent archiving.
func Snapshot(steps []models.Step) (models.ArchivedSchema, error) {
	hash, err := Hash(steps)
	if err != nil {
		return models.ArchivedSchema{}, err
	}

	return models.ArchivedSchema{
		Hash:    hash,
		Steps:   steps,
		Preview: Preview(steps),
	}, nil
}
