package checkout

import (
	"errors"
	"fmt"
	"time"
)

type PaymentMethod string

const (
	Online     PaymentMethod = "online"
	UPI        PaymentMethod = "upi"
	PayAtVenue PaymentMethod = "pay_at_venue"
	Wallet     PaymentMethod = "wallet"
)

func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Online, UPI, PayAtVenue, Wallet}
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case Online, UPI, PayAtVenue, Wallet:
		return true
	}
	return false
}

// RequiresProcessing reports whether the method goes through the simulated gateway.
func (m PaymentMethod) RequiresProcessing() bool {
	return m == Online || m == UPI || m == Wallet
}

type State string

const (
	NoMethodSelected State = "no_method_selected"
	MethodSelected   State = "method_selected"
	Processing       State = "processing"
	Confirmed        State = "confirmed"
)

type ConfirmationStatus string

const (
	StatusPendingPayment ConfirmationStatus = "pending_payment"
	StatusConfirmed      ConfirmationStatus = "confirmed"
)

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentFailed  PaymentStatus = "failed"
)

const (
	MessageSelectMethod = "Please select a payment method"
	MessageRedirecting  = "Redirecting to payment gateway..."
	MessageConfirmed    = "Booking confirmed!"
)

var (
	ErrNoPaymentMethod      = errors.New("no payment method selected")
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	ErrPaymentInProgress    = errors.New("payment is already processing")
	ErrAlreadyConfirmed     = errors.New("booking is already confirmed")
	ErrNotProcessing        = errors.New("payment is not processing")
)

// Confirmation is the outcome of a completed payment selection.
type Confirmation struct {
	BookingID     string             `json:"booking_id"`
	PaymentMethod PaymentMethod      `json:"payment_method"`
	TotalAmount   int64              `json:"total_amount"`
	Status        ConfirmationStatus `json:"status"`
	PaymentStatus PaymentStatus      `json:"payment_status"`
	Title         string             `json:"title"`
	Message       string             `json:"message"`
	ConfirmedAt   time.Time          `json:"confirmed_at"`
}

// PaymentSnapshot is the serialisable form of a PaymentFlow.
type PaymentSnapshot struct {
	State        State         `json:"state"`
	Method       PaymentMethod `json:"method,omitempty"`
	Amount       int64         `json:"amount,omitempty"`
	Confirmation *Confirmation `json:"confirmation,omitempty"`
}

// PaymentFlow is the payment-selection state machine:
//
//	no_method_selected -> method_selected -> processing -> confirmed
//	                                      \-> confirmed (pay at venue)
type PaymentFlow struct {
	snap PaymentSnapshot
	ids  *IDGenerator
	now  Clock
}

func NewPaymentFlow(ids *IDGenerator, now Clock) *PaymentFlow {
	return RestorePaymentFlow(PaymentSnapshot{State: NoMethodSelected}, ids, now)
}

func RestorePaymentFlow(snap PaymentSnapshot, ids *IDGenerator, now Clock) *PaymentFlow {
	if now == nil {
		now = time.Now
	}
	if ids == nil {
		ids = NewIDGenerator(now)
	}
	if snap.State == "" {
		snap.State = NoMethodSelected
	}
	return &PaymentFlow{snap: snap, ids: ids, now: now}
}

func (f *PaymentFlow) Snapshot() PaymentSnapshot {
	return f.snap
}

func (f *PaymentFlow) State() State {
	return f.snap.State
}

func (f *PaymentFlow) Method() PaymentMethod {
	return f.snap.Method
}

func (f *PaymentFlow) Confirmation() *Confirmation {
	return f.snap.Confirmation
}

// Status reports pending_payment while the gateway is processing and
// confirmed once a confirmation exists. It is empty before submission.
func (f *PaymentFlow) Status() ConfirmationStatus {
	switch f.snap.State {
	case Processing:
		return StatusPendingPayment
	case Confirmed:
		return StatusConfirmed
	}
	return ""
}

// SelectMethod makes m the single active method. Allowed until submission.
func (f *PaymentFlow) SelectMethod(m PaymentMethod) error {
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, m)
	}
	switch f.snap.State {
	case Processing:
		return ErrPaymentInProgress
	case Confirmed:
		return ErrAlreadyConfirmed
	}
	f.snap.Method = m
	f.snap.State = MethodSelected
	return nil
}

// Submit starts confirmation for amount. Pay at venue confirms immediately;
// gateway methods move to Processing and wait for Complete. Without a
// method nothing changes and ErrNoPaymentMethod is returned.
func (f *PaymentFlow) Submit(amount int64) (State, error) {
	switch f.snap.State {
	case NoMethodSelected:
		return f.snap.State, ErrNoPaymentMethod
	case Processing:
		return f.snap.State, ErrPaymentInProgress
	case Confirmed:
		return f.snap.State, ErrAlreadyConfirmed
	}
	if !f.snap.Method.Valid() {
		return f.snap.State, ErrNoPaymentMethod
	}

	f.snap.Amount = amount
	if f.snap.Method.RequiresProcessing() {
		f.snap.State = Processing
		return f.snap.State, nil
	}
	f.confirm()
	return f.snap.State, nil
}

// Complete resolves a Processing payment.
func (f *PaymentFlow) Complete() (*Confirmation, error) {
	if f.snap.State != Processing {
		return nil, ErrNotProcessing
	}
	f.confirm()
	return f.snap.Confirmation, nil
}

// Revert drops a pending or issued confirmation and returns to MethodSelected,
// used when the booking could not be recorded.
func (f *PaymentFlow) Revert() {
	f.snap.Confirmation = nil
	f.snap.Amount = 0
	if f.snap.Method.Valid() {
		f.snap.State = MethodSelected
	} else {
		f.snap.State = NoMethodSelected
	}
}

func (f *PaymentFlow) confirm() {
	id := f.ids.Next()
	c := &Confirmation{
		BookingID:     id,
		PaymentMethod: f.snap.Method,
		TotalAmount:   f.snap.Amount,
		Status:        StatusConfirmed,
		PaymentStatus: PaymentPaid,
		Title:         MessageConfirmed,
		ConfirmedAt:   f.now().UTC(),
	}
	if f.snap.Method == PayAtVenue {
		c.PaymentStatus = PaymentPending
		c.Message = fmt.Sprintf("Your booking ID is %s. Please pay at the workspace when you arrive.", id)
	} else {
		c.Message = fmt.Sprintf("Your booking ID is %s. Confirmation details sent to your email.", id)
	}
	f.snap.Confirmation = c
	f.snap.State = Confirmed
}
