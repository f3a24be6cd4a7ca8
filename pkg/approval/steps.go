package approval

import (
	"context"

	"github.com/sirupsen/logrus"
)

// step is one follow-up of an admin decision.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// StepResult records how a follow-up step went.
type StepResult struct {
	Step    string
	Success bool
	Error   string
}

func newStepResult(name string, err error) StepResult {
	if err != nil {
		return StepResult{Step: name, Success: false, Error: err.Error()}
	}
	return StepResult{Step: name, Success: true}
}

// runSteps executes steps in order. A failing step is logged and the
// remaining steps still run.
func runSteps(ctx context.Context, bookingID string, steps []step) []StepResult {
	results := make([]StepResult, 0, len(steps))

	for _, s := range steps {
		logrus.Debugf("running step %s for booking %s", s.name, bookingID)

		err := s.run(ctx)
		if err != nil {
			logrus.Errorf("step %s failed for booking %s: %v", s.name, bookingID, err)
		} else {
			logrus.Debugf("step %s completed for booking %s", s.name, bookingID)
		}
		results = append(results, newStepResult(s.name, err))
	}

	return results
}
