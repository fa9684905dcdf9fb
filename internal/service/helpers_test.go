package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type testEnv struct {
	store   *memStore
	slots   SlotService
	credit  CreditService
	orders  OrderService
	auth    AuthService
	catalog CatalogService
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()

	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	store := newMemStore()
	d := &memDB{store: store}
	slotRepo := memSlotRepo{store: store}
	buyerRepo := memBuyerRepo{store: store}
	userRepo := memUserRepo{store: store}
	outboxRepo := memOutboxRepo{store: store}

	auth := NewAuthService(d, userRepo, buyerRepo, v)
	// Keep password hashing fast in tests.
	auth.(*authService).bcryptCost = 4

	return testEnv{
		store:   store,
		slots:   NewSlotService(slotRepo, v),
		credit:  NewCreditService(d, buyerRepo, outboxRepo),
		orders:  NewOrderService(d, buyerRepo, slotRepo, outboxRepo, v),
		auth:    auth,
		catalog: NewCatalogService(memProductRepo{store: store}, slotRepo, v),
	}
}

// newInterleavedTestEnv is newTestEnv with transactions running concurrently
// and reading uncommitted writes.
func newInterleavedTestEnv(t *testing.T) testEnv {
	t.Helper()

	env := newTestEnv(t)
	env.store.serializeTx = false
	return env
}
