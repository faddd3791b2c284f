package checkout

import "errors"

var (
	// ErrNotOpen is returned when an operation hits a machine that was
	// never opened or has already been closed.
	ErrNotOpen = errors.New("checkout is not open")

	// ErrSubmissionInFlight guards the single-submission invariant.
	ErrSubmissionInFlight = errors.New("a payment submission is already in flight")

	// ErrNoUserID and ErrNoMethodSelected are precondition failures for
	// saved-method payment. Callers keep them away from the end user.
	ErrNoUserID         = errors.New("no user id available")
	ErrNoMethodSelected = errors.New("no payment method selected")

	// ErrInvalidCard means the new-card form failed local validation;
	// the field errors are available on the view.
	ErrInvalidCard = errors.New("card validation failed")

	// ErrProcessing blocks closing while a submission is in flight.
	ErrProcessing = errors.New("cannot close while a payment is processing")
)
