package archive

import "github.com/tiplinehq/tipline/models"

// FieldIndex is an O(1) field-id lookup over an archived schema. Answer
// trees can contain many leaves and the redactor resolves field metadata
// per leaf, so the index is built once per schema and shared.
type FieldIndex map[string]*models.Field

// NewFieldIndex walks the step tree and indexes every field, nested
// children included, by id.
func NewFieldIndex(steps []models.Step) FieldIndex {
	index := make(FieldIndex)
	for i := range steps {
		indexFields(index, steps[i].Children)
	}
	return index
}

func indexFields(index FieldIndex, fields []models.Field) {
	for i := range fields {
		index[fields[i].ID] = &fields[i]
		indexFields(index, fields[i].Children)
	}
}

// Lookup returns the field with the given id, or nil when the id does not
// belong to the schema (answers may carry stale keys after a schema edit;
// those are treated as non-sensitive plain values).
func (idx FieldIndex) Lookup(id string) *models.Field {
	return idx[id]
}

// WhistleblowerIdentityField returns the field derived from the
// whistleblower-identity template, or nil when the schema has none.
func (idx FieldIndex) WhistleblowerIdentityField() *models.Field {
	for _, field := range idx {
		if field.TemplateID == models.TemplateWhistleblowerIdentity {
			return field
		}
	}
	return nil
}
