package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
)

func newOrder(t *testing.T) *domain.Order {
	t.Helper()
	o, err := domain.New(10, 2, 500, time.Now())
	if err != nil {
		t.Fatalf("new order: %v", err)
	}
	return o
}

func TestOrderRepository_CreateUpdateFind(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	o := newOrder(t)
	if err := repo.Create(ctx, o); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID != 1 {
		t.Fatalf("id = %d, want 1", o.ID)
	}

	if err := repo.UpdateStatus(ctx, o.ID, domain.StatusPlaced); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.FindByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.StatusPlaced || got.ProductID != 10 || got.Quantity != 2 || got.Amount != 500 {
		t.Fatalf("unexpected order: %+v", got)
	}

	// callers get copies
	got.Status = domain.StatusCreated
	again, _ := repo.FindByID(ctx, o.ID)
	if again.Status != domain.StatusPlaced {
		t.Fatalf("stored order was mutated through a returned copy")
	}
}

func TestOrderRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	if _, err := repo.FindByID(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("find: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, 999, domain.StatusPlaced); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
}

func TestOrderRepository_RejectsInvalidStatus(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newOrder(t)
	_ = repo.Create(ctx, o)

	if err := repo.UpdateStatus(ctx, o.ID, domain.Status(0)); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestOrderRepository_StatusMovesForwardOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()
	o := newOrder(t)
	_ = repo.Create(ctx, o)

	if err := repo.UpdateStatus(ctx, o.ID, domain.StatusCreated); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("CREATED -> CREATED: expected ErrInvalidStateTransition, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, o.ID, domain.StatusPlaced); err != nil {
		t.Fatalf("CREATED -> PLACED: %v", err)
	}
	if err := repo.UpdateStatus(ctx, o.ID, domain.StatusPaymentFailed); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("PLACED -> PAYMENT_FAILED: expected ErrInvalidStateTransition, got %v", err)
	}
	if err := repo.UpdateStatus(ctx, o.ID, domain.StatusCreated); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("PLACED -> CREATED: expected ErrInvalidStateTransition, got %v", err)
	}

	got, _ := repo.FindByID(ctx, o.ID)
	if got.Status != domain.StatusPlaced {
		t.Fatalf("rejected writes changed the status to %s", got.Status)
	}
}

func TestOrderRepository_ConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	repo := NewOrderRepository()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, _ := domain.New(1, 1, 1, time.Now())
			if err := repo.Create(ctx, o); err != nil {
				t.Errorf("create: %v", err)
				return
			}
			ids <- o.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d ids, want %d", len(seen), n)
	}
}
