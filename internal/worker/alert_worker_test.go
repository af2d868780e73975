package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
)

type fakeAlerter struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeAlerter) Name() string { return "fake" }

func (f *fakeAlerter) SendOrderAlert(_ context.Context, o model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("unreachable")
	}
	f.sent = append(f.sent, o.ID)
	return nil
}

func createOrder(t *testing.T, repo repository.OrderRepo) string {
	t.Helper()
	o := &model.Order{
		Items:      []model.CartItem{{MenuItemID: 1, Name: "Pizza", UnitPrice: 2000, Quantity: 1}},
		TotalPrice: 2000,
	}
	require.NoError(t, repo.Create(context.Background(), o))
	return o.ID
}

func TestAlertWorker_SendsEachOrderOnce(t *testing.T) {
	repo := repository.NewMemory(nil)
	alerter := &fakeAlerter{}
	w := NewAlertWorker(repo.Orders, 0, alerter)
	ctx := context.Background()

	first := createOrder(t, repo.Orders)
	second := createOrder(t, repo.Orders)

	require.NoError(t, w.processBatch(ctx))
	require.NoError(t, w.processBatch(ctx))

	assert.ElementsMatch(t, []string{first, second}, alerter.sent)
	left, err := repo.Orders.Unalerted(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestAlertWorker_RetriesFailedAlerts(t *testing.T) {
	repo := repository.NewMemory(nil)
	ok := &fakeAlerter{}
	flaky := &fakeAlerter{fail: true}
	w := NewAlertWorker(repo.Orders, 0, ok, flaky)
	ctx := context.Background()

	id := createOrder(t, repo.Orders)

	require.NoError(t, w.processBatch(ctx))
	left, err := repo.Orders.Unalerted(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)

	flaky.fail = false
	require.NoError(t, w.processBatch(ctx))
	left, err = repo.Orders.Unalerted(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, []string{id}, flaky.sent)
}

func TestAlertWorker_StopsOnCancel(t *testing.T) {
	repo := repository.NewMemory(nil)
	w := NewAlertWorker(repo.Orders, time.Hour, &fakeAlerter{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()
	cancel()
	<-done
}
