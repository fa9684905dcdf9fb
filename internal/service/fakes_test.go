package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/internal/storage/db"
	"github.com/tuanvumaihuynh/vending-machine/pkg/outbox"
)

// memStore is an in-memory stand-in for the database. Each repository call
// is atomic on its own; a failed transaction replays its undo log. With
// serializeTx unset transactions interleave freely and see each other's
// uncommitted writes, so only the guarded updates keep the data consistent.
type memStore struct {
	serializeTx bool
	txMu        sync.Mutex
	mu          sync.Mutex

	users    map[uuid.UUID]model.User
	buyers   map[uuid.UUID]model.Buyer // by user id
	products map[uuid.UUID]model.Product
	slots    map[uuid.UUID]model.VendingMachineSlot
	outbox   []outbox.Message
}

func newMemStore() *memStore {
	return &memStore{
		serializeTx: true,
		users:       map[uuid.UUID]model.User{},
		buyers:      map[uuid.UUID]model.Buyer{},
		products:    map[uuid.UUID]model.Product{},
		slots:       map[uuid.UUID]model.VendingMachineSlot{},
	}
}

// locked runs fn with the store lock held.
func (s *memStore) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *memStore) addUser(username string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.New(), Username: username, FirstName: "Jorge", LastName: "Perez", CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addBuyer(userID uuid.UUID, credit string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buyers[userID] = model.Buyer{ID: uuid.New(), UserID: userID, Credit: decimal.RequireFromString(credit)}
}

func (s *memStore) credit(userID uuid.UUID) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buyers[userID].Credit
}

func (s *memStore) addSlot(name, price string, quantity, row, column int) model.VendingMachineSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := model.Product{ID: uuid.New(), Name: name, Price: decimal.RequireFromString(price), CreatedAt: time.Now()}
	s.products[p.ID] = p
	slot := model.VendingMachineSlot{
		ID:        uuid.New(),
		Product:   p,
		Quantity:  quantity,
		Row:       row,
		Column:    column,
		CreatedAt: time.Now().Add(time.Duration(len(s.slots)) * time.Millisecond),
	}
	s.slots[slot.ID] = slot
	return slot
}

func (s *memStore) slot(id uuid.UUID) (model.VendingMachineSlot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	return slot, ok
}

func (s *memStore) outboxTopics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.outbox))
	for _, msg := range s.outbox {
		topics = append(topics, msg.Topic)
	}
	return topics
}

// memDB implements db.DB for service tests. SQL entry points are unused.
type memDB struct {
	store *memStore
	// undo is set inside a transaction and collects compensating writes.
	undo *[]func()
}

var _ db.DB = (*memDB)(nil)

func (d *memDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("memDB: Exec not supported")
}

func (d *memDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("memDB: Query not supported")
}

func (d *memDB) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("memDB: QueryRow not supported")
}

func (d *memDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	if d.undo != nil {
		return txFunc(d)
	}

	if d.store.serializeTx {
		d.store.txMu.Lock()
		defer d.store.txMu.Unlock()
	}

	tx := &memDB{store: d.store, undo: &[]func(){}}
	if err := txFunc(tx); err != nil {
		for i := len(*tx.undo) - 1; i >= 0; i-- {
			d.store.locked((*tx.undo)[i])
		}
		return err
	}
	return nil
}

// onRollback records fn to run if the transaction fails. It is a no-op
// outside a transaction.
func (d *memDB) onRollback(fn func()) {
	if d != nil && d.undo != nil {
		*d.undo = append(*d.undo, fn)
	}
}

func txOf(d db.DB) *memDB {
	tx, _ := d.(*memDB)
	return tx
}

type memSlotRepo struct {
	store *memStore
	tx    *memDB
}

func (r memSlotRepo) WithDB(d db.DB) repository.SlotRepository {
	return memSlotRepo{store: r.store, tx: txOf(d)}
}

func (r memSlotRepo) CreateSlot(_ context.Context, slot model.VendingMachineSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	slot.Product = r.store.products[slot.Product.ID]
	r.store.slots[slot.ID] = slot
	r.tx.onRollback(func() { delete(r.store.slots, slot.ID) })
	return nil
}

func (r memSlotRepo) ListSlots(_ context.Context, params repository.ListSlotsParams) ([]model.VendingMachineSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var slots []model.VendingMachineSlot
	for _, s := range r.store.slots {
		if params.MaxQuantity != nil && s.Quantity > *params.MaxQuantity {
			continue
		}
		if params.Below != nil && (s.Row >= *params.Below || s.Column >= *params.Below) {
			continue
		}
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].CreatedAt.Before(slots[j].CreatedAt) })
	return slots, nil
}

func (r memSlotRepo) GetSlot(_ context.Context, params repository.GetSlotParams) (model.VendingMachineSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.slots[params.ID]
	if !ok {
		return model.VendingMachineSlot{}, repository.ErrNotFound
	}
	return s, nil
}

func (r memSlotRepo) DecrementSlotQuantity(_ context.Context, id uuid.UUID, by int) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.slots[id]
	if !ok || s.Quantity < by {
		return 0, repository.ErrConditionNotMet
	}
	before := s
	s.Quantity -= by
	r.store.slots[id] = s
	r.tx.onRollback(func() {
		cur, ok := r.store.slots[id]
		if !ok {
			cur = before
			cur.Quantity = 0
		}
		cur.Quantity += by
		r.store.slots[id] = cur
	})
	return s.Quantity, nil
}

func (r memSlotRepo) DeleteSlot(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	deleted, ok := r.store.slots[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.store.slots, id)
	r.tx.onRollback(func() {
		if _, ok := r.store.slots[id]; !ok {
			r.store.slots[id] = deleted
		}
	})
	return nil
}

type memBuyerRepo struct {
	store *memStore
	tx    *memDB
}

func (r memBuyerRepo) WithDB(d db.DB) repository.BuyerRepository {
	return memBuyerRepo{store: r.store, tx: txOf(d)}
}

func (r memBuyerRepo) GetOrCreateBuyer(_ context.Context, buyer model.Buyer) (model.Buyer, bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.buyers[buyer.UserID]; ok {
		return existing, false, nil
	}
	r.store.buyers[buyer.UserID] = buyer
	r.tx.onRollback(func() { delete(r.store.buyers, buyer.UserID) })
	return buyer, true, nil
}

func (r memBuyerRepo) GetBuyer(_ context.Context, params repository.GetBuyerParams) (model.Buyer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.buyers[params.UserID]
	if !ok {
		return model.Buyer{}, repository.ErrNotFound
	}
	return b, nil
}

func (r memBuyerRepo) AddCredit(_ context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.buyers[userID]
	if !ok {
		return decimal.Decimal{}, repository.ErrConditionNotMet
	}
	next := b.Credit.Add(delta)
	if next.IsNegative() {
		return decimal.Decimal{}, repository.ErrConditionNotMet
	}
	if next.GreaterThan(model.MaxCredit) {
		return decimal.Decimal{}, repository.ErrOutOfRange
	}
	b.Credit = next
	r.store.buyers[userID] = b
	r.tx.onRollback(func() {
		b := r.store.buyers[userID]
		b.Credit = b.Credit.Sub(delta)
		r.store.buyers[userID] = b
	})
	return next, nil
}

func (r memBuyerRepo) SetCredit(_ context.Context, userID uuid.UUID, credit decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.buyers[userID]
	if !ok {
		return repository.ErrNotFound
	}
	prev := b.Credit
	b.Credit = credit
	r.store.buyers[userID] = b
	r.tx.onRollback(func() {
		b := r.store.buyers[userID]
		b.Credit = b.Credit.Sub(credit).Add(prev)
		r.store.buyers[userID] = b
	})
	return nil
}

type memUserRepo struct {
	store *memStore
	tx    *memDB
}

func (r memUserRepo) WithDB(d db.DB) repository.UserRepository {
	return memUserRepo{store: r.store, tx: txOf(d)}
}

func (r memUserRepo) CreateUser(_ context.Context, user model.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == user.Username {
			return repository.ErrAlreadyExists
		}
	}
	r.store.users[user.ID] = user
	r.tx.onRollback(func() { delete(r.store.users, user.ID) })
	return nil
}

func (r memUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r memUserRepo) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

type memOutboxRepo struct {
	store *memStore
	tx    *memDB
}

func (r memOutboxRepo) WithDB(d db.DB) repository.OutboxMsgRepository {
	return memOutboxRepo{store: r.store, tx: txOf(d)}
}

func (r memOutboxRepo) CreateOutboxMsg(_ context.Context, msg outbox.Message) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.outbox = append(r.store.outbox, msg)
	r.tx.onRollback(func() {
		for i := len(r.store.outbox) - 1; i >= 0; i-- {
			if r.store.outbox[i].Topic == msg.Topic && bytes.Equal(r.store.outbox[i].Payload, msg.Payload) {
				r.store.outbox = append(r.store.outbox[:i], r.store.outbox[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (r memOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.UnprocessedOutboxMsg, error) {
	return nil, nil
}

func (r memOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}

func (r memOutboxRepo) PurgeProcessedOutboxMsgs(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memProductRepo struct {
	store *memStore
	tx    *memDB
}

func (r memProductRepo) WithDB(d db.DB) repository.ProductRepository {
	return memProductRepo{store: r.store, tx: txOf(d)}
}

func (r memProductRepo) CreateProduct(_ context.Context, product model.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.products[product.ID] = product
	r.tx.onRollback(func() { delete(r.store.products, product.ID) })
	return nil
}

func (r memProductRepo) ListAllProducts(context.Context) ([]model.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	products := make([]model.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}
