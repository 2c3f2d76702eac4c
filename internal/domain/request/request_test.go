package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusAssigned, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},
		{StatusAssigned, StatusInProgress, true},
		{StatusAssigned, StatusCancelled, true},
		{StatusAssigned, StatusCompleted, false},
		{StatusAssigned, StatusPending, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusAssigned, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusPending, false},
		{StatusCancelled, StatusAssigned, false},
	}

	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAssigned.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestDraftValidate(t *testing.T) {
	valid := func() Draft {
		return Draft{
			UserID:        1,
			ServiceType:   "Towing",
			UserLatitude:  floatPtr(40.7128),
			UserLongitude: floatPtr(-74.0060),
			UserAddress:   "123 Main St",
		}
	}

	t.Run("defaults priority to normal", func(t *testing.T) {
		d := valid()
		assert.NoError(t, d.Validate())
		assert.Equal(t, PriorityNormal, d.Priority)
	})

	t.Run("keeps explicit priority", func(t *testing.T) {
		d := valid()
		d.Priority = PriorityEmergency
		assert.NoError(t, d.Validate())
		assert.Equal(t, PriorityEmergency, d.Priority)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		d := valid()
		d.ServiceType = ""
		assert.ErrorIs(t, d.Validate(), ErrMissingServiceType)

		d = valid()
		d.UserLatitude = nil
		assert.ErrorIs(t, d.Validate(), ErrMissingLocation)

		d = valid()
		d.UserAddress = ""
		assert.ErrorIs(t, d.Validate(), ErrMissingAddress)

		d = valid()
		d.Priority = Priority("urgent")
		assert.ErrorIs(t, d.Validate(), ErrInvalidPriority)
	})
}
