package rating

// Outcome is the result of Widget.Select.
type Outcome int

// Select outcomes.
const (
	// OutcomeCommitted: the backend accepted the rating and the widget shows it.
	OutcomeCommitted Outcome = iota
	// OutcomeFailed: the backend call failed; nothing changed.
	OutcomeFailed
	// OutcomeBusy: a submission was already in flight; the call was ignored.
	OutcomeBusy
	// OutcomeAnonymous: nobody is signed in; the call was ignored.
	OutcomeAnonymous
	// OutcomeInvalid: the value is outside one to five.
	OutcomeInvalid
	// OutcomeDiscarded: the widget was unmounted, before or during the call.
	OutcomeDiscarded
)

var outcomeNames = [...]string{
	OutcomeCommitted: "committed",
	OutcomeFailed:    "failed",
	OutcomeBusy:      "busy",
	OutcomeAnonymous: "anonymous",
	OutcomeInvalid:   "invalid",
	OutcomeDiscarded: "discarded",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// MarshalText renders the outcome name in JSON responses.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
