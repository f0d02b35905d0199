package order

// OrderState implements the state pattern for order lifecycle transitions.
// CREATED moves forward exactly once; both outcomes are terminal.
type OrderState interface {
	Status() Status
	OnPaymentSucceeded() (OrderState, error)
	OnPaymentFailed() (OrderState, error)
}

func stateOf(s Status) (OrderState, error) {
	switch s {
	case StatusCreated:
		return createdState{}, nil
	case StatusPlaced:
		return placedState{}, nil
	case StatusPaymentFailed:
		return paymentFailedState{}, nil
	default:
		return nil, ErrInvalidStatus
	}
}

type createdState struct{}

func (createdState) Status() Status { return StatusCreated }

func (createdState) OnPaymentSucceeded() (OrderState, error) {
	return placedState{}, nil
}

func (createdState) OnPaymentFailed() (OrderState, error) {
	return paymentFailedState{}, nil
}

type placedState struct{}

func (placedState) Status() Status { return StatusPlaced }

func (placedState) OnPaymentSucceeded() (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (placedState) OnPaymentFailed() (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

type paymentFailedState struct{}

func (paymentFailedState) Status() Status { return StatusPaymentFailed }

func (paymentFailedState) OnPaymentSucceeded() (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

func (paymentFailedState) OnPaymentFailed() (OrderState, error) {
	return nil, ErrInvalidStateTransition
}

// CheckTransition reports whether a stored order may move from one status to
// another. Stores use it to keep status writes forward-only.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return ErrInvalidStatus
	}
	st, err := stateOf(from)
	if err != nil {
		return err
	}
	switch to {
	case StatusPlaced:
		_, err = st.OnPaymentSucceeded()
	case StatusPaymentFailed:
		_, err = st.OnPaymentFailed()
	default:
		err = ErrInvalidStateTransition
	}
	return err
}
