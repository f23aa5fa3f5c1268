package domain

// OutcomeStatus classifies the terminal state of one nutrient's dose.
type OutcomeStatus string

const (
	OutcomeApplied            OutcomeStatus = "applied"
	OutcomeBlocked            OutcomeStatus = "blocked"
	OutcomeInsufficient       OutcomeStatus = "insufficient_inventory"
	OutcomeActuationFailed    OutcomeStatus = "actuation_failed"
	OutcomePartialApplication OutcomeStatus = "partial_application"
	OutcomePersistenceFailure OutcomeStatus = "persistence_failure"
)

// NutrientOutcome is the per-nutrient result of an apply. One nutrient's
// failure never aborts the rest of the batch, so callers always receive
// one outcome per requested nutrient, in request order.
type NutrientOutcome struct {
	Nutrient NutrientID    `json:"nutrient"`
	Status   OutcomeStatus `json:"status"`

	// AppliedML and RemainingML are set when Status is applied (and for
	// partial_application, where the debit committed).
	AppliedML   float64 `json:"applied_ml,omitempty"`
	RemainingML float64 `json:"remaining_ml,omitempty"`

	// WaitHours is set when Status is blocked.
	WaitHours float64 `json:"wait_hours,omitempty"`

	// Detail carries the operator-facing reason for failed outcomes.
	Detail string `json:"detail,omitempty"`
}

// ApplyResponse aggregates the per-nutrient outcomes of one confirmed
// submission.
type ApplyResponse struct {
	UserID   string            `json:"user_id"`
	Species  string            `json:"species"`
	Outcomes []NutrientOutcome `json:"outcomes"`
}
