package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ReviewPulse/pkg/errors"
)

func TestDecodeQuery_Valid(t *testing.T) {
	q, err := DecodeQuery([]byte(`{
		"groups": [
			{"kind": "merge", "label": "Selection A", "entities": ["A", "B"]},
			{"kind": "competitors", "entities": ["C"]}
		],
		"percent_threshold": 15,
		"detail": {"topic": "Service", "search": "gut", "rating_bound": {"mode": "between", "lower": 2, "upper": 4}}
	}`))
	require.NoError(t, err)

	require.Len(t, q.Groups, 2)
	assert.Equal(t, SelectionMerge, q.Groups[0].Kind)
	assert.Equal(t, []string{"A", "B"}, q.Groups[0].Entities)
	require.NotNil(t, q.PercentThreshold)
	assert.Equal(t, 15.0, *q.PercentThreshold)
	assert.Nil(t, q.RatingThreshold)
	require.NotNil(t, q.Detail)
	assert.Equal(t, RatingBound{Mode: BoundBetween, Lower: 2, Upper: 4}, *q.Detail.RatingBound)
}

func TestDecodeQuery_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"not json", `{"groups":`, ""},
		{"missing groups", `{}`, "groups"},
		{"empty groups", `{"groups": []}`, "groups"},
		{"unknown kind", `{"groups": [{"kind": "all", "entities": []}]}`, "kind"},
		{"unknown field", `{"groups": [{"kind": "entity", "entities": ["A"]}], "limit": 3}`, "limit"},
		{"string threshold", `{"groups": [{"kind": "entity", "entities": ["A"]}], "rating_threshold": "1.0"}`, "rating_threshold"},
		{"detail without topic", `{"groups": [{"kind": "entity", "entities": ["A"]}], "detail": {}}`, "topic"},
		{"fractional bound", `{"groups": [{"kind": "entity", "entities": ["A"]}], "detail": {"topic": "Service", "rating_bound": {"mode": "below", "upper": 4.5}}}`, "upper"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeQuery([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeQuerySchemaViolation))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDecodeQuery_RangesAreLeftToValidate(t *testing.T) {
	q, err := DecodeQuery([]byte(`{"groups": [{"kind": "entity", "entities": ["A"]}], "percent_threshold": 99}`))
	require.NoError(t, err)
	assert.Equal(t, 99.0, *q.PercentThreshold)
}

//Personal.AI order the ending
