package payment

import (
	"context"
	"math/rand"
	"testing"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
)

func validRequest() domain.Request {
	return domain.Request{OrderID: 1, Amount: 500, Mode: domain.ModeCard}
}

func TestSimulator_AlwaysApprovesAtFullRate(t *testing.T) {
	s := NewSimulator(1, nil)
	for i := 0; i < 20; i++ {
		if res := s.Pay(context.Background(), validRequest()); res.Status != domain.StatusSuccess {
			t.Fatalf("attempt %d: got %+v", i, res)
		}
	}
}

func TestSimulator_AlwaysDeclinesAtZeroRate(t *testing.T) {
	s := NewSimulator(0, nil)
	for i := 0; i < 20; i++ {
		res := s.Pay(context.Background(), validRequest())
		if res.Status != domain.StatusFailed || res.Reason != domain.ReasonDeclined {
			t.Fatalf("attempt %d: got %+v", i, res)
		}
	}
}

func TestSimulator_ClampsRate(t *testing.T) {
	if got := NewSimulator(3, nil).SuccessRate(); got != 1 {
		t.Fatalf("rate = %v, want 1", got)
	}
	if got := NewSimulator(-1, nil).SuccessRate(); got != 0 {
		t.Fatalf("rate = %v, want 0", got)
	}
}

func TestSimulator_MixedOutcomesAreDeterministicWithSeed(t *testing.T) {
	a := newSimulator(0.5, rand.New(rand.NewSource(7)), nil)
	b := newSimulator(0.5, rand.New(rand.NewSource(7)), nil)

	var successes int
	for i := 0; i < 200; i++ {
		ra := a.Pay(context.Background(), validRequest())
		rb := b.Pay(context.Background(), validRequest())
		if ra != rb {
			t.Fatalf("attempt %d diverged: %+v vs %+v", i, ra, rb)
		}
		if ra.Status == domain.StatusSuccess {
			successes++
		}
	}
	if successes == 0 || successes == 200 {
		t.Fatalf("expected a mix of outcomes, got %d successes", successes)
	}
}

func TestSimulator_RejectsInvalidRequests(t *testing.T) {
	s := NewSimulator(1, nil)
	for _, req := range []domain.Request{
		{OrderID: 1, Amount: 1},
		{OrderID: 1, Amount: -1, Mode: domain.ModeCash},
		{OrderID: 0, Amount: 1, Mode: domain.ModeCash},
	} {
		if res := s.Pay(context.Background(), req); res.Reason != domain.ReasonInvalidRequest {
			t.Fatalf("request %+v: got %+v", req, res)
		}
	}
}

func TestSimulator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if res := NewSimulator(1, nil).Pay(ctx, validRequest()); res.Reason != domain.ReasonTimeout {
		t.Fatalf("got %+v", res)
	}
}
