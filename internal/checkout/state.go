package checkout

import "time"

// The methods below return the next state of a checkout without touching
// storage. Every transition is refused once the checkout is finalized.

// StartPayment moves an open checkout to pending_payment and replaces any
// previous payment session.
func (c Checkout) StartPayment(session PaymentSession) (Checkout, error) {
	if c.Finalized {
		return c, ErrAlreadyFinalized
	}
	c.Status = StatusPendingPayment
	c.PaymentStatus = PaymentPending
	c.PaymentSession = &session
	return c, nil
}

// MarkPaid completes and finalizes the checkout. A canceled checkout that
// is not finalized can still be completed.
func (c Checkout) MarkPaid(now time.Time) (Checkout, error) {
	if c.Finalized {
		return c, ErrAlreadyFinalized
	}
	c.Status = StatusCompleted
	c.PaymentStatus = PaymentPaid
	c.Finalized = true
	c.FinalizedAt = &now
	return c, nil
}

// MarkFailed reopens the checkout for another payment attempt.
func (c Checkout) MarkFailed() (Checkout, error) {
	if c.Finalized {
		return c, ErrAlreadyFinalized
	}
	c.Status = StatusAwaitingPayment
	c.PaymentStatus = PaymentFailed
	c.FinalizedAt = nil
	return c, nil
}

func (c Checkout) Cancel(now time.Time) (Checkout, error) {
	if c.Finalized {
		return c, ErrAlreadyFinalized
	}
	c.Status = StatusCanceled
	c.Finalized = true
	c.FinalizedAt = &now
	return c, nil
}
