package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCriteriaSpec_EnvelopeCarriesType(t *testing.T) {
	spec := CriteriaSpec{Criteria: ThresholdCriteria{Stat: StatMessages, Value: 500}}

	data, err := json.Marshal(spec)
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, "threshold", envelope["type"])
	assert.Equal(t, "messages", envelope["stat"])
	assert.Equal(t, float64(500), envelope["value"])
}

func TestCriteriaSpec_RoundTripDispatchesOnType(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
	}{
		{"exact", ExactCriteria{Stat: StatCurrentStreak, Value: 7}},
		{"threshold", ThresholdCriteria{Stat: StatVoiceMinutes, Value: 600}},
		{"special", SpecialCriteria{Predicate: "weekend_warrior"}},
		{"combo", ComboCriteria{Parts: []StatThreshold{
			{Stat: StatMessages, Value: 1000},
			{Stat: StatTotalDays, Value: 30},
		}}},
		{"meta", MetaCriteria{Count: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(CriteriaSpec{Criteria: tt.criteria})
			require.NoError(t, err)

			var got CriteriaSpec
			require.NoError(t, json.Unmarshal(data, &got))
			assert.Equal(t, tt.criteria, got.Criteria)
		})
	}
}

func TestCriteriaSpec_UnknownTypeIsAnError(t *testing.T) {
	var spec CriteriaSpec
	err := spec.UnmarshalJSON([]byte(`{"type":"lottery","value":1}`))
	assert.Error(t, err)
}

func TestCriteriaSpec_NullMeansNoCriteria(t *testing.T) {
	var spec CriteriaSpec
	require.NoError(t, spec.UnmarshalJSON([]byte("null")))
	assert.Nil(t, spec.Criteria)

	data, err := json.Marshal(CriteriaSpec{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))
}

func TestCriteriaSpec_ScanAcceptsBytesAndString(t *testing.T) {
	var fromBytes CriteriaSpec
	require.NoError(t, fromBytes.Scan([]byte(`{"type":"meta","count":5}`)))
	assert.Equal(t, MetaCriteria{Count: 5}, fromBytes.Criteria)

	var fromString CriteriaSpec
	require.NoError(t, fromString.Scan(`{"type":"exact","stat":"streak","value":3}`))
	assert.Equal(t, ExactCriteria{Stat: StatCurrentStreak, Value: 3}, fromString.Criteria)
}
