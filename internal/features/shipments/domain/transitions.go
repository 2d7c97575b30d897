package domain

// transitions lists the legal destinations of every non-terminal status.
// ON_HOLD additionally returns to the status it was held from; see CheckTransition.
var transitions = map[ShipmentStatus][]ShipmentStatus{
	StatusCreated:        {StatusReceived, StatusInTransit, StatusOnHold, StatusCancelled},
	StatusReceived:       {StatusInTransit, StatusOnHold, StatusCancelled},
	StatusInTransit:      {StatusArrived, StatusOnHold},
	StatusArrived:        {StatusOutForDelivery, StatusOnHold},
	StatusOutForDelivery: {StatusDelivered, StatusFailedDelivery, StatusOnHold},
	StatusFailedDelivery: {StatusOutForDelivery, StatusReturned},
	StatusOnHold:         {StatusReturned, StatusCancelled},
}

// AllowedTransitions returns the destinations reachable from `from`.
// heldFrom is only consulted when from is ON_HOLD.
func AllowedTransitions(from, heldFrom ShipmentStatus) []ShipmentStatus {
	base := transitions[from]
	out := make([]ShipmentStatus, 0, len(base)+1)
	if from == StatusOnHold && heldFrom.IsValid() && heldFrom != StatusOnHold && !heldFrom.IsTerminal() {
		out = append(out, heldFrom)
	}
	return append(out, base...)
}

// CheckTransition validates from -> to. It returns ErrInvalidStatus for
// unknown values and an *IllegalTransitionError for edges outside the table.
func CheckTransition(from, to, heldFrom ShipmentStatus) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if from.IsTerminal() {
		return &IllegalTransitionError{From: from, To: to, Reason: "shipment is in a terminal state"}
	}
	for _, allowed := range AllowedTransitions(from, heldFrom) {
		if allowed == to {
			return nil
		}
	}
	if from == StatusOnHold && !heldFrom.IsValid() {
		return &IllegalTransitionError{From: from, To: to, Reason: "no held-from status recorded"}
	}
	return &IllegalTransitionError{From: from, To: to}
}

// DeliveryAttemptStatus is the only status in which attempts are recorded.
const DeliveryAttemptStatus = StatusOutForDelivery

// CheckAttemptAllowed enforces that attempts are only recorded while the
// shipment is OUT_FOR_DELIVERY. A shipment in FAILED_DELIVERY must go back
// through the explicit FAILED_DELIVERY -> OUT_FOR_DELIVERY edge first.
func CheckAttemptAllowed(current ShipmentStatus, outcome AttemptOutcome) error {
	if current == DeliveryAttemptStatus {
		return nil
	}
	return &IllegalTransitionError{
		From:   current,
		To:     outcome.DerivedStatus(),
		Reason: "delivery attempts require status " + string(DeliveryAttemptStatus),
	}
}
