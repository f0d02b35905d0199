package application

import "context"

// UseCase is the shape every application entry point exposes to adapters.
type UseCase[C any, R any] interface {
	Execute(ctx context.Context, cmd C) (R, error)
}
