package enums

import "fmt"

// StepOutcome is the result of a logged checkout step.
type StepOutcome string

const (
	StepOutcomeSucceeded StepOutcome = "succeeded"
	StepOutcomeFailed    StepOutcome = "failed"
	StepOutcomeSkipped   StepOutcome = "skipped"
	// StepOutcomeReported closes a failure that was handed to an operator.
	StepOutcomeReported  StepOutcome = "reported"
)

var validStepOutcomeValues = []StepOutcome{
	StepOutcomeSucceeded,
	StepOutcomeFailed,
	StepOutcomeSkipped,
	StepOutcomeReported,
}

func (v StepOutcome) String() string {
	return string(v)
}

// IsValid reports whether the value is a known step outcome.
func (v StepOutcome) IsValid() bool {
	for _, candidate := range validStepOutcomeValues {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseStepOutcome converts the raw string to StepOutcome.
func ParseStepOutcome(value string) (StepOutcome, error) {
	for _, candidate := range validStepOutcomeValues {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid step outcome %q", value)
}
