package order

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/pkg/pdf"
)

type fakeRepo struct {
	mu         sync.Mutex
	orders     map[uint]*Order
	nextID     uint
	clearedFor []uint
	createErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: map[uint]*Order{}, nextID: 1}
}

func cloneOrder(o *Order) *Order {
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]OrderStatusHistory(nil), o.StatusHistory...)
	return &cp
}

func (r *fakeRepo) CreateFromCart(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = r.nextID
	r.nextID++
	o.OrderCode = generateOrderCode(o.ID, fixedNow)
	o.CreatedAt = fixedNow
	r.orders[o.ID] = cloneOrder(o)
	r.clearedFor = append(r.clearedFor, o.UserID)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uint) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *fakeRepo) List(_ context.Context, f ListFilter) ([]Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if f.UserID > 0 && o.UserID != f.UserID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeRepo) ChangeStatus(_ context.Context, o *Order, change StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return ErrOrderNotFound
	}
	if stored.Status != change.From {
		return ErrConcurrentUpdate
	}
	stored.Status = change.To
	stored.CancelReason = o.CancelReason
	stored.DeliveredAt = o.DeliveredAt
	stored.StatusHistory = append(stored.StatusHistory, change.History)
	return nil
}

func (r *fakeRepo) UpdateDetails(_ context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok || stored.Status != OrderStatusPending {
		return ErrOrderNotEditable
	}
	stored.RecipientName = o.RecipientName
	stored.RecipientGender = o.RecipientGender
	stored.RecipientEmail = o.RecipientEmail
	stored.RecipientPhone = o.RecipientPhone
	stored.DeliveryMethod = o.DeliveryMethod
	stored.ShippingAddress = o.ShippingAddress
	stored.Note = o.Note
	return nil
}

func (r *fakeRepo) HasDeliveredProduct(_ context.Context, userID, productID uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID != userID || o.Status != OrderStatusDelivered {
			continue
		}
		for _, it := range o.Items {
			if it.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeCarts struct {
	carts map[uint]*cart.Cart
}

func (f *fakeCarts) GetCart(_ context.Context, userID uint) (*cart.Cart, error) {
	if c, ok := f.carts[userID]; ok {
		return c, nil
	}
	return &cart.Cart{}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeInvoices struct {
	enabled bool
	last    pdf.Invoice
}

func (f *fakeInvoices) Enabled() bool { return f.enabled }

func (f *fakeInvoices) GenerateInvoice(inv pdf.Invoice) ([]byte, error) {
	f.last = inv
	return []byte("%PDF-1.4"), nil
}
