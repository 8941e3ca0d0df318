package domain_test

import (
	"testing"

	"github.com/tradestreak/wall-street-service/domain"

	"github.com/stretchr/testify/assert"
)

func fptr(f float64) *float64 { return &f }

func TestEarningsEvent_Result(t *testing.T) {
	cases := []struct {
		name      string
		estimated *float64
		actual    *float64
		want      domain.EarningsPredictionType
	}{
		{"clear beat", fptr(1.00), fptr(1.10), domain.PredictionBeat},
		{"clear miss", fptr(1.00), fptr(0.90), domain.PredictionMiss},
		{"within threshold", fptr(1.00), fptr(1.01), domain.PredictionMeet},
		{"exactly on estimate", fptr(2.50), fptr(2.50), domain.PredictionMeet},
		{"negative estimate beat", fptr(-1.00), fptr(-0.90), domain.PredictionBeat},
		{"missing actual", fptr(1.00), nil, domain.PredictionMeet},
		{"missing estimate", nil, fptr(1.00), domain.PredictionMeet},
		{"zero estimate", fptr(0), fptr(1.00), domain.PredictionMeet},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := domain.EarningsEvent{EstimatedEPS: tc.estimated, ActualEPS: tc.actual}
			assert.Equal(t, tc.want, event.Result())
		})
	}
}

func TestParsePredictionType(t *testing.T) {
	got, ok := domain.ParsePredictionType(" beat ")
	assert.True(t, ok)
	assert.Equal(t, domain.PredictionBeat, got)

	_, ok = domain.ParsePredictionType("crush")
	assert.False(t, ok)
}
