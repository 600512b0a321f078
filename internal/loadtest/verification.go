package loadtest

import (
	"context"
	"fmt"

	"github.com/okian/gamerec/pkg/logger"
)

// verifyResults checks that every selection got a concurrency outcome and
// that each widget settled on a committed value, or kept its initial one.
func verifyResults(ctx context.Context, selections []Selection, initial map[string]int, final map[string]widgetState, refreshesBefore, refreshesAfter int) error {
	log := logger.Get().Named("loadtest")
	log.Info(ctx, "verifying results")

	committed := make(map[string]map[int]bool)
	total := 0
	for _, s := range selections {
		switch s.Outcome {
		case "committed":
			if committed[s.Subject] == nil {
				committed[s.Subject] = make(map[int]bool)
			}
			committed[s.Subject][s.Value] = true
			total++
		case "busy", "failed":
		default:
			return fmt.Errorf("%w: selection on %s answered %q", ErrInconsistent, s.Subject, s.Outcome)
		}
	}

	for subject, st := range final {
		if st.Submitting {
			return fmt.Errorf("%w: widget %s still submitting", ErrInconsistent, subject)
		}
		values := committed[subject]
		if len(values) == 0 {
			if st.Current != initial[subject] {
				return fmt.Errorf("%w: widget %s shows %d without a committed selection", ErrInconsistent, subject, st.Current)
			}
			continue
		}
		if !values[st.Current] {
			return fmt.Errorf("%w: widget %s shows %d, which was never committed", ErrInconsistent, subject, st.Current)
		}
	}

	// The panel refetches asynchronously, so a lag here is only reported.
	if total > 0 && refreshesAfter <= refreshesBefore {
		log.Warn(ctx, "recommendations have not refreshed yet",
			logger.Int("before", refreshesBefore),
			logger.Int("after", refreshesAfter),
		)
	}

	log.Info(ctx, "result verification completed", logger.Int("committed", total))
	return nil
}
