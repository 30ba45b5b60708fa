package models

import "fmt"

// DefaultDailyGoal is the calorie target used when a user has none stored.
const DefaultDailyGoal = 2000

// User is the identity every read and write is scoped to.
type User struct {
	ID    string
	Email string
}

// Settings holds per-user preferences.
type Settings struct {
	UserID    string `json:"user_id"`
	DailyGoal int    `json:"daily_goal"`
	Onboarded bool   `json:"onboarded"`
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

func (a ActivityLevel) Valid() bool {
	switch a {
	case "", ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return true
	}
	return false
}

type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

func (g Goal) Valid() bool {
	switch g {
	case "", GoalLose, GoalMaintain, GoalGain:
		return true
	}
	return false
}

type EquipmentAccess string

const (
	EquipmentNone EquipmentAccess = "none"
	EquipmentHome EquipmentAccess = "home"
	EquipmentGym  EquipmentAccess = "gym"
)

func (e EquipmentAccess) Valid() bool {
	switch e {
	case "", EquipmentNone, EquipmentHome, EquipmentGym:
		return true
	}
	return false
}

// Profile holds optional per-user attributes. At most one exists per user.
type Profile struct {
	UserID        string          `json:"user_id"`
	DisplayName   string          `json:"display_name,omitempty"`
	HeightCm      *float64        `json:"height_cm,omitempty"`
	WeightKg      *float64        `json:"weight_kg,omitempty"`
	Age           *int            `json:"age,omitempty"`
	Gender        Gender          `json:"gender,omitempty"`
	ActivityLevel ActivityLevel   `json:"activity_level,omitempty"`
	Goal          Goal            `json:"goal,omitempty"`
	Equipment     EquipmentAccess `json:"equipment,omitempty"`
	TargetWeight  *float64        `json:"target_weight,omitempty"`
}

// Validate reports an unknown enum value as ErrInvalidProfile.
func (p *Profile) Validate() error {
	switch {
	case !p.Gender.Valid():
		return fmt.Errorf("%w: gender %q", ErrInvalidProfile, p.Gender)
	case !p.ActivityLevel.Valid():
		return fmt.Errorf("%w: activity level %q", ErrInvalidProfile, p.ActivityLevel)
	case !p.Goal.Valid():
		return fmt.Errorf("%w: goal %q", ErrInvalidProfile, p.Goal)
	case !p.Equipment.Valid():
		return fmt.Errorf("%w: equipment %q", ErrInvalidProfile, p.Equipment)
	}
	return nil
}
