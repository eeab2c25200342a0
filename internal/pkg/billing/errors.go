package billing

import "errors"

var (
	// ErrMalformedPayload marks a structural parse failure. The provider is
	// expected to retry delivery, so handlers answer with a 500-class status.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrInvalidSignature marks a failed signature check. The whole event is
	// rejected with no state change.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrUnknownSubscriber means no local user matches the event. Not a
	// fault: the event is logged and dropped.
	ErrUnknownSubscriber = errors.New("no subscriber matches event")
)
