package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfile_Validate(t *testing.T) {
	assert.NoError(t, (&Profile{}).Validate())
	assert.NoError(t, (&Profile{Gender: GenderFemale, ActivityLevel: ActivityVeryActive, Goal: GoalLose, Equipment: EquipmentGym}).Validate())

	assert.ErrorIs(t, (&Profile{Gender: "robot"}).Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, (&Profile{ActivityLevel: "extreme"}).Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, (&Profile{Goal: "bulk"}).Validate(), ErrInvalidProfile)
	assert.ErrorIs(t, (&Profile{Equipment: "pool"}).Validate(), ErrInvalidProfile)
}
