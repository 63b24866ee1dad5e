package order

import "github.com/georgemunganga/tablepos/internal/platform/apperrors"

// validTransitions defines the allowed order status state machine.
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentUnpaid:   {PaymentPaid},
	PaymentPaid:     {PaymentRefunded},
	PaymentRefunded: {},
}

// legalPayments lists the payment states each order status may coexist with.
var legalPayments = map[Status][]PaymentStatus{
	StatusPending:    {PaymentUnpaid, PaymentPaid},
	StatusProcessing: {PaymentUnpaid, PaymentPaid},
	StatusCompleted:  {PaymentUnpaid, PaymentPaid},
	StatusCancelled:  {PaymentUnpaid, PaymentRefunded},
	StatusRefunded:   {PaymentRefunded},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	_, ok := validPaymentTransitions[p]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to Status) bool {
	return contains(validTransitions[from], to)
}

// Legal reports whether status and payment may coexist on one order.
func Legal(s Status, p PaymentStatus) bool {
	return contains(legalPayments[s], p)
}

// applyStatus moves o to next, carrying payment along: cancelling or refunding
// a paid order refunds the payment, and refunding an unpaid order is refused.
func applyStatus(o Order, next Status) (Order, error) {
	if !next.Valid() {
		return o, apperrors.Validationf("status", "unknown order status %q", next)
	}
	if !CanTransition(o.Status, next) {
		return o, apperrors.Transition("order", o.Status, next)
	}
	switch next {
	case StatusCancelled, StatusRefunded:
		if o.PaymentStatus == PaymentPaid {
			o.PaymentStatus = PaymentRefunded
		}
	}
	if !Legal(next, o.PaymentStatus) {
		return o, apperrors.Conflictf("paymentStatus", "order cannot be %s while payment is %s", next, o.PaymentStatus)
	}
	o.Status = next
	return o, nil
}

// applyPayment moves o's payment to next.
func applyPayment(o Order, next PaymentStatus) (Order, error) {
	if !next.Valid() {
		return o, apperrors.Validationf("paymentStatus", "unknown payment status %q", next)
	}
	if !contains(validPaymentTransitions[o.PaymentStatus], next) {
		return o, apperrors.Transition("payment", o.PaymentStatus, next)
	}
	if !Legal(o.Status, next) {
		return o, apperrors.Conflictf("paymentStatus", "payment cannot be %s while order is %s", next, o.Status)
	}
	o.PaymentStatus = next
	return o, nil
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
