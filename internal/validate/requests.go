package validate

// UUIDPattern matches the canonical textual form of a UUID. Context,
// questionnaire, receiver and field identifiers all use it.
const UUIDPattern = `[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}`

// SubmissionDesc is the template of the finalize-submission payload.
//
// The answers map is deliberately declared Any: its shape is a recursive
// answer tree governed by the questionnaire schema, which the submission
// pipeline resolves and persists; the request template only guards the
// envelope around it.
func SubmissionDesc() map[string]Template {
	return map[string]Template{
		"context_id":        Pattern(UUIDPattern),
		"receivers":         ArrayOf(Pattern(UUIDPattern)),
		"identity_provided": Primitive(Bool),
		"total_score":       Primitive(Int),
		"answers":           Primitive(Any),
	}
}

// AuthDesc is the template of the login payload.
func AuthDesc() map[string]Template {
	return map[string]Template{
		"username": Primitive(String),
		"password": Primitive(String),
	}
}
