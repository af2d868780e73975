package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"orderdesk/internal/model"
	"orderdesk/internal/notify"
)

// NewMemory returns a Repository kept entirely in process. Order changes are
// published to pub the same way the Postgres trigger reports them, which
// makes it a drop-in backend for development and tests.
func NewMemory(pub notify.Publisher) *Repository {
	return &Repository{
		Orders:  &memOrders{pub: pub, byID: make(map[string]*memOrder), byKey: make(map[string]string), now: time.Now},
		Coupons: &memCoupons{byID: make(map[int64]model.Coupon)},
		Menu:    &memMenu{byID: make(map[int64]model.MenuItem)},
	}
}

type memOrder struct {
	order     model.Order
	alertedAt *time.Time
}

type memOrders struct {
	mu    sync.Mutex
	pubMu sync.Mutex
	pub   notify.Publisher
	byID  map[string]*memOrder
	byKey map[string]string
	now   func() time.Time
}

func cloneOrder(o model.Order) model.Order {
	o.Items = model.Cart{Items: o.Items}.Clone().Items
	if o.AppliedCouponCode != nil {
		code := *o.AppliedCouponCode
		o.AppliedCouponCode = &code
	}
	o.IdempotencyKey = nil
	return o
}

func (r *memOrders) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()

	if o.IdempotencyKey != nil {
		if id, ok := r.byKey[*o.IdempotencyKey]; ok {
			key := o.IdempotencyKey
			*o = cloneOrder(r.byID[id].order)
			o.IdempotencyKey = key
			r.mu.Unlock()
			return ErrDuplicate
		}
	}

	if o.Status == "" {
		o.Status = model.StatusPending
	}
	o.ID = uuid.NewString()
	o.CreatedAt = r.now()
	r.byID[o.ID] = &memOrder{order: cloneOrder(*o)}
	if o.IdempotencyKey != nil {
		r.byKey[*o.IdempotencyKey] = o.ID
	}
	ev := model.OrderEvent{Kind: model.EventInsert, OrderID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice, At: o.CreatedAt}
	r.unlockAndPublish(ev)
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o := cloneOrder(m.order)
	return &o, nil
}

func (r *memOrders) UpdateStatus(_ context.Context, id string, status model.OrderStatus) error {
	r.mu.Lock()
	m, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	m.order.Status = status
	ev := model.OrderEvent{Kind: model.EventUpdate, OrderID: id, Status: status, TotalPrice: m.order.TotalPrice, At: r.now()}
	r.unlockAndPublish(ev)
	return nil
}

func (r *memOrders) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	m, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.byID, id)
	for k, v := range r.byKey {
		if v == id {
			delete(r.byKey, k)
		}
	}
	ev := model.OrderEvent{Kind: model.EventDelete, OrderID: id, Status: m.order.Status, TotalPrice: m.order.TotalPrice, At: r.now()}
	r.unlockAndPublish(ev)
	return nil
}

func (r *memOrders) List(_ context.Context, f OrderListFilter) ([]model.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	all := r.sorted(func(a, b model.Order) bool { return a.CreatedAt.After(b.CreatedAt) })

	var out []model.Order
	for _, o := range all {
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		out = append(out, o)
	}
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memOrders) Totals(_ context.Context) (int64, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var revenue int64
	for _, m := range r.byID {
		revenue += m.order.TotalPrice
	}
	return int64(len(r.byID)), revenue, nil
}

func (r *memOrders) Unalerted(_ context.Context, limit int) ([]model.Order, error) {
	r.mu.Lock()
	var pending []model.Order
	for _, m := range r.byID {
		if m.alertedAt == nil {
			pending = append(pending, cloneOrder(m.order))
		}
	}
	r.mu.Unlock()

	sort.SliceStable(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *memOrders) MarkAlerted(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.alertedAt = &at
	return nil
}

func (r *memOrders) sorted(less func(a, b model.Order) bool) []model.Order {
	r.mu.Lock()
	all := make([]model.Order, 0, len(r.byID))
	for _, m := range r.byID {
		all = append(all, cloneOrder(m.order))
	}
	r.mu.Unlock()

	sort.SliceStable(all, func(i, j int) bool { return less(all[i], all[j]) })
	return all
}

// unlockAndPublish releases r.mu and publishes ev. pubMu is taken before the
// data lock is dropped so events leave in the same order the writes happened.
func (r *memOrders) unlockAndPublish(ev model.OrderEvent) {
	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()

	if r.pub != nil {
		r.pub.Publish(ev)
	}
}

type memCoupons struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.Coupon
}

func (r *memCoupons) Create(_ context.Context, c *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Code == c.Code {
			return ErrDuplicate
		}
	}
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.byID[c.ID] = *c
	return nil
}

func (r *memCoupons) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.byID {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memCoupons) List(_ context.Context) ([]model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]model.Coupon, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memCoupons) SetActive(_ context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.Active = active
	r.byID[id] = c
	return nil
}

func (r *memCoupons) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type memMenu struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]model.MenuItem
}

func (r *memMenu) Create(_ context.Context, m *model.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.byID[m.ID] = *m
	return nil
}

func (r *memMenu) GetByID(_ context.Context, id int64) (*model.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *memMenu) List(_ context.Context, category string) ([]model.MenuItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.MenuItem
	for _, m := range r.byID {
		if category == "" || m.Category == category {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memMenu) Update(_ context.Context, m *model.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[m.ID]
	if !ok {
		return ErrNotFound
	}
	m.CreatedAt = old.CreatedAt
	r.byID[m.ID] = *m
	return nil
}

func (r *memMenu) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *memMenu) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}
