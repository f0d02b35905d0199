package payment

import (
	"context"
	"math/rand"
	"sync"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/observability/logctx"
)

const DefaultSuccessRate = 0.7

// Simulator approves payments at random with a fixed success rate. It stands
// in for the payment service when PAYMENT_SERVICE_URL is not configured.
type Simulator struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	log         observability.Logger
}

var _ domain.Processor = (*Simulator)(nil)

func NewSimulator(successRate float64, logger observability.Logger) *Simulator {
	return newSimulator(successRate, rand.New(rand.NewSource(time.Now().UnixNano())), logger)
}

func newSimulator(successRate float64, random *rand.Rand, logger observability.Logger) *Simulator {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Simulator{
		random:      random,
		successRate: successRate,
		log:         logger.With(observability.F("component", "payment_simulator")),
	}
}

func (s *Simulator) Pay(ctx context.Context, req domain.Request) domain.Result {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("order_id", req.OrderID))

	switch {
	case !req.Mode.Valid(), req.Amount < 0, req.OrderID <= 0:
		logger.Warn("payment_rejected", observability.F("reason", domain.ReasonInvalidRequest))
		return domain.Failed(domain.ReasonInvalidRequest)
	case ctx.Err() != nil:
		return domain.Failed(domain.ReasonTimeout)
	}

	s.mu.Lock()
	roll := s.random.Float64()
	s.mu.Unlock()

	if roll < s.successRate {
		logger.Debug("payment_approved", observability.F("amount", req.Amount))
		return domain.Succeeded()
	}
	logger.Debug("payment_declined", observability.F("amount", req.Amount))
	return domain.Failed(domain.ReasonDeclined)
}

func (s *Simulator) SuccessRate() float64 { return s.successRate }
