package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intStrTemplate() map[string]Template {
	return map[string]Template{
		"a": Primitive(Int),
		"b": ArrayOf(Primitive(String)),
	}
}

func TestValidateMessage_StripsUnknownKeys(t *testing.T) {
	payload := []byte(`{"a": "5", "b": ["x","y"], "c": "extra"}`)

	got, err := ValidateMessage(payload, intStrTemplate())

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": "5", "b": []any{"x", "y"}}, got)
	assert.NotContains(t, got, "c", "undeclared keys must be stripped")
}

func TestValidateMessage_MissingKey(t *testing.T) {
	payload := []byte(`{"a": "5"}`)

	_, err := ValidateMessage(payload, intStrTemplate())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingKey)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "b", verr.Key)
}

func TestValidateMessage_TypeMismatch(t *testing.T) {
	payload := []byte(`{"a": "notanint", "b": []}`)

	_, err := ValidateMessage(payload, intStrTemplate())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "a", verr.Key)
}

func TestValidateMessage_InvalidJSON(t *testing.T) {
	_, err := ValidateMessage([]byte(`{`), intStrTemplate())

	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestPrimitive_IntAcceptsWholeNumbersAndNumericStrings(t *testing.T) {
	tmpl := Primitive(Int)

	assert.True(t, tmpl.matches(float64(42)))
	assert.True(t, tmpl.matches("42"))
	assert.False(t, tmpl.matches(4.5))
	assert.False(t, tmpl.matches("4.5"))
	assert.False(t, tmpl.matches(true))
}

func TestPrimitive_BoolAcceptsLiteralsAndStrings(t *testing.T) {
	tmpl := Primitive(Bool)

	assert.True(t, tmpl.matches(true))
	assert.True(t, tmpl.matches("true"))
	assert.True(t, tmpl.matches("false"))
	assert.False(t, tmpl.matches("yes"))
	assert.False(t, tmpl.matches(float64(1)))
}

func TestPrimitive_NilAlwaysPasses(t *testing.T) {
	assert.True(t, Primitive(Int).matches(nil))
	assert.True(t, Pattern("x+").matches(nil))
}

func TestPattern_IsAnchored(t *testing.T) {
	tmpl := Pattern(`[0-9]{4}`)

	assert.True(t, tmpl.matches("1234"))
	assert.False(t, tmpl.matches("a1234b"), "pattern must match the whole value")
}

func TestArrayOf_EmptyArrayValidates(t *testing.T) {
	assert.True(t, ArrayOf(Pattern(UUIDPattern)).matches([]any{}))
}

func TestObject_NestedTemplate(t *testing.T) {
	tmpl := map[string]Template{
		"outer": Object(map[string]Template{
			"inner": Primitive(String),
		}),
	}

	_, err := ValidateMessage([]byte(`{"outer": {"inner": "ok", "junk": 1}}`), tmpl)
	require.NoError(t, err)

	_, err = ValidateMessage([]byte(`{"outer": {"inner": 3}}`), tmpl)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSubmissionDesc_AcceptsRealisticPayload(t *testing.T) {
	payload := []byte(`{
		"context_id": "11111111-2222-3333-4444-555555555555",
		"receivers": ["aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"],
		"identity_provided": false,
		"total_score": 0,
		"answers": {"some-field": "value"},
		"creation_date": "ignored-client-noise"
	}`)

	got, err := ValidateMessage(payload, SubmissionDesc())

	require.NoError(t, err)
	assert.NotContains(t, got, "creation_date")
}

func TestSubmissionDesc_RejectsMalformedContextID(t *testing.T) {
	payload := []byte(`{
		"context_id": "not-a-uuid",
		"receivers": [],
		"identity_provided": false,
		"total_score": 0,
		"answers": {}
	}`)

	_, err := ValidateMessage(payload, SubmissionDesc())

	assert.ErrorIs(t, err, ErrTypeMismatch)
}
