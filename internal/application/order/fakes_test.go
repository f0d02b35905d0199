package order

import (
	"context"
	"errors"
	"sync"
	"time"

	domain "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/order"
	domoutbox "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/outbox"
	domainPayment "github.com/HacAtac/Ecom-Order-Microservice/internal/domain/payment"
	"github.com/HacAtac/Ecom-Order-Microservice/internal/domain/product"
)

var fixedNow = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

// callLog records the order in which collaborators were touched.
type callLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *callLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

func (l *callLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.steps...)
}

type fakeOrders struct {
	log       *callLog
	nextID    int64
	orders    map[int64]*domain.Order
	created   []domain.Order
	createErr error
	updateErr error
	findErr   error
	// honourCtx makes writes fail on a done context, as pgx does.
	honourCtx bool
}

func newFakeOrders(log *callLog) *fakeOrders {
	return &fakeOrders{log: log, nextID: 1, orders: map[int64]*domain.Order{}}
}

func (f *fakeOrders) Create(ctx context.Context, o *domain.Order) error {
	f.log.add("create:" + o.Status.String())
	if f.createErr != nil {
		return f.createErr
	}
	if f.honourCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	o.ID = f.nextID
	f.nextID++
	f.orders[o.ID] = o.Clone()
	f.created = append(f.created, *o.Clone())
	return nil
}

func (f *fakeOrders) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	f.log.add("update:" + status.String())
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.honourCtx && ctx.Err() != nil {
		return ctx.Err()
	}
	o, ok := f.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

func (f *fakeOrders) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	f.log.add("find")
	if f.findErr != nil {
		return nil, f.findErr
	}
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o.Clone(), nil
}

type fakeInventory struct {
	log   *callLog
	err   error
	calls int
}

func (f *fakeInventory) Reserve(_ context.Context, _, _ int64) error {
	f.calls++
	f.log.add("reserve")
	return f.err
}

type fakePayments struct {
	log      *callLog
	result   domainPayment.Result
	requests []domainPayment.Request
	onPay    func(ctx context.Context)
}

func (f *fakePayments) Pay(ctx context.Context, req domainPayment.Request) domainPayment.Result {
	f.log.add("pay")
	f.requests = append(f.requests, req)
	if f.onPay != nil {
		f.onPay(ctx)
	}
	return f.result
}

type fakeProducts struct {
	log      *callLog
	products map[int64]product.Product
	err      error
	calls    int
}

func (f *fakeProducts) Product(_ context.Context, id int64) (product.Product, error) {
	f.calls++
	f.log.add("product")
	if f.err != nil {
		return product.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

type capturePublisher struct {
	events []domoutbox.Event
	err    error
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type fixture struct {
	log       *callLog
	orders    *fakeOrders
	inventory *fakeInventory
	payments  *fakePayments
	products  *fakeProducts
	publisher *capturePublisher
}

func newFixture() *fixture {
	log := &callLog{}
	return &fixture{
		log:       log,
		orders:    newFakeOrders(log),
		inventory: &fakeInventory{log: log},
		payments:  &fakePayments{log: log, result: domainPayment.Succeeded()},
		products:  &fakeProducts{log: log, products: map[int64]product.Product{}},
		publisher: &capturePublisher{},
	}
}

func (f *fixture) deps() Deps {
	return Deps{
		Orders:    f.orders,
		Inventory: f.inventory,
		Payments:  f.payments,
		Products:  f.products,
		Publisher: f.publisher,
		Clock:     func() time.Time { return fixedNow },
	}
}

var errBoom = errors.New("boom")
