package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "teamperf/pkg/errors"
)

type member struct {
	Name string `json:"name" validate:"required,max=10"`
}

type payload struct {
	TeamID  string   `json:"team_id" validate:"required,uuid"`
	Value   int      `json:"value" validate:"min=1,max=5"`
	Members []member `json:"members" validate:"dive"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name        string
		in          payload
		wantDetails map[string]interface{}
	}{
		{
			name: "valid",
			in:   payload{TeamID: "6f1c2f7e-8a3b-4c41-9d47-5f3bd2a2b6a1", Value: 3},
		},
		{
			name: "value out of range and missing team",
			in:   payload{Value: 6},
			wantDetails: map[string]interface{}{
				"team_id": "required",
				"value":   "max=5",
			},
		},
		{
			name: "nested member name",
			in: payload{
				TeamID:  "6f1c2f7e-8a3b-4c41-9d47-5f3bd2a2b6a1",
				Value:   1,
				Members: []member{{Name: "ok"}, {Name: ""}},
			},
			wantDetails: map[string]interface{}{
				"members[1].name": "required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantDetails == nil {
				assert.NoError(t, err)
				return
			}
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
			assert.Equal(t, tt.wantDetails, appErr.Details)
		})
	}
}
