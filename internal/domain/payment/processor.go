package payment

import "context"

// Processor executes payments. Declines and transport failures are reported
// through Result rather than as errors.
type Processor interface {
	Pay(ctx context.Context, req Request) Result
}
