package archive

import "github.com/tiplinehq/tipline/models"

// LocalizedOption is a field option with its label resolved to one
// language.
type LocalizedOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Score int    `json:"score_points"`
}

// LocalizedField is a schema field with every localized attribute —
// its own texts, its options and its attrs, recursively through children —
// resolved to one language.
type LocalizedField struct {
	ID            string `json:"id"`
	TemplateID    string `json:"template_id"`
	Type          string `json:"type"`
	Label         string `json:"label"`
	Description   string `json:"description"`
	Hint          string `json:"hint"`
	Preview       bool   `json:"preview"`
	SensitiveData bool   `json:"sensitive_data"`
	Multientry    bool   `json:"multi_entry"`
	Required      bool   `json:"required"`

	Options  []LocalizedOption `json:"options"`
	Children []LocalizedField  `json:"children"`
	Attrs    map[string]string `json:"attrs"`
}

// LocalizedStep is a questionnaire step resolved to one language.
type LocalizedStep struct {
	ID          string           `json:"id"`
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Children    []LocalizedField `json:"children"`
}

// Localize materializes an archived step tree for one target language.
// The archived original is read, never written: the output is a fresh tree
// of localized view values.
func Localize(steps []models.Step, language string) []LocalizedStep {
	out := make([]LocalizedStep, 0, len(steps))
	for _, step := range steps {
		out = append(out, LocalizedStep{
			ID:          step.ID,
			Label:       step.Label.In(language),
			Description: step.Description.In(language),
			Children:    localizeFields(step.Children, language),
		})
	}
	return out
}

func localizeFields(fields []models.Field, language string) []LocalizedField {
	out := make([]LocalizedField, 0, len(fields))
	for _, field := range fields {
		out = append(out, localizeField(field, language))
	}
	return out
}

func localizeField(field models.Field, language string) LocalizedField {
	localized := LocalizedField{
		ID:            field.ID,
		TemplateID:    field.TemplateID,
		Type:          field.Type,
		Label:         field.Label.In(language),
		Description:   field.Description.In(language),
		Hint:          field.Hint.In(language),
		Preview:       field.Preview,
		SensitiveData: field.SensitiveData,
		Multientry:    field.Multientry,
		Required:      field.Required,
		Children:      localizeFields(field.Children, language),
	}

	for _, option := range field.Options {
		localized.Options = append(localized.Options, LocalizedOption{
			ID:    option.ID,
			Label: option.Label.In(language),
			Score: option.Score,
		})
	}

	if len(field.Attrs) > 0 {
		localized.Attrs = make(map[string]string, len(field.Attrs))
		for name, attr := range field.Attrs {
			if attr.Type == "localized" {
				localized.Attrs[name] = attr.Value.In(language)
				continue
			}
			localized.Attrs[name] = attr.Raw
		}
	}

	return localized
}
