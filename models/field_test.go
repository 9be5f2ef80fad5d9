package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAttr_LocalizedRoundTrip(t *testing.T) {
	attr := FieldAttr{Type: "localized", Value: LocalizedMap{"en": "type here", "it": "scrivi qui"}}

	encoded, err := json.Marshal(attr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"localized","value":{"en":"type here","it":"scrivi qui"}}`, string(encoded))

	var decoded FieldAttr
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, attr, decoded)
}

func TestFieldAttr_ScalarValuesAreStringCoerced(t *testing.T) {
	tests := []struct {
		payload string
		want    FieldAttr
	}{
		{`{"type":"int","value":10}`, FieldAttr{Type: "int", Raw: "10"}},
		{`{"type":"bool","value":true}`, FieldAttr{Type: "bool", Raw: "true"}},
		{`{"type":"unicode","value":"dd/mm/yyyy"}`, FieldAttr{Type: "unicode", Raw: "dd/mm/yyyy"}},
		{`{"type":"int"}`, FieldAttr{Type: "int"}},
	}

	for _, tt := range tests {
		var attr FieldAttr
		require.NoError(t, json.Unmarshal([]byte(tt.payload), &attr), tt.payload)
		assert.Equal(t, tt.want, attr, tt.payload)
	}
}

func TestFieldAttr_CoercedScalarSurvivesReencoding(t *testing.T) {
	var attr FieldAttr
	require.NoError(t, json.Unmarshal([]byte(`{"type":"int","value":10}`), &attr))

	encoded, err := json.Marshal(attr)
	require.NoError(t, err)

	var again FieldAttr
	require.NoError(t, json.Unmarshal(encoded, &again))
	assert.Equal(t, attr, again)
}
