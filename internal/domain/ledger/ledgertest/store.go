// Package ledgertest provides an in-memory store and transaction manager
// for exercising ledger services without a database.
//
// The transaction manager snapshots the whole store on begin and restores
// it when the function fails, giving tests real rollback semantics. A
// configurable failure injector aborts after a chosen number of mutations
// to verify that multi-line operations never commit partially.
package ledgertest

import (
	"context"
	"errors"
	"sync"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/domain/ledger/sale"
)

// InventoryKey addresses one (dealer, product) row.
type InventoryKey struct {
	DealerID  id.ID
	ProductID id.ID
}

// Store holds all ledger state in memory.
type Store struct {
	mu sync.Mutex

	Products        map[id.ID]*catalog.Product
	Dealers         map[id.ID]*catalog.Dealer
	DealerCustomers map[id.ID]*catalog.DealerCustomer
	Customers       map[id.ID]*catalog.Customer

	Inventories   map[InventoryKey]*consignment.DealerInventory
	Transactions  []*consignment.DealerTransaction
	Payments      []*debt.Payment
	Sales         map[id.ID]*sale.Sale
	SaleItems     map[id.ID][]sale.SaleItem
	Deliveries    map[id.ID]*sale.Delivery // keyed by sale id
	Purchases     map[id.ID]*purchase.Purchase
	PurchaseItems map[id.ID][]purchase.PurchaseItem

	// FailAfterMutations injects a store failure once more than this many
	// mutations have run inside the current transaction. Negative
	// disables injection.
	FailAfterMutations int
	mutations          int
}

// NewStore creates an empty store with failure injection disabled.
func NewStore() *Store {
	return &Store{
		Products:           make(map[id.ID]*catalog.Product),
		Dealers:            make(map[id.ID]*catalog.Dealer),
		DealerCustomers:    make(map[id.ID]*catalog.DealerCustomer),
		Customers:          make(map[id.ID]*catalog.Customer),
		Inventories:        make(map[InventoryKey]*consignment.DealerInventory),
		Sales:              make(map[id.ID]*sale.Sale),
		SaleItems:          make(map[id.ID][]sale.SaleItem),
		Deliveries:         make(map[id.ID]*sale.Delivery),
		Purchases:          make(map[id.ID]*purchase.Purchase),
		PurchaseItems:      make(map[id.ID][]purchase.PurchaseItem),
		FailAfterMutations: -1,
	}
}

// countMutation applies the failure injector. Called by every mutating
// repository method.
func (s *Store) countMutation() error {
	s.mutations++
	if s.FailAfterMutations >= 0 && s.mutations > s.FailAfterMutations {
		return apperror.NewDatabase(errors.New("injected store failure"))
	}
	return nil
}

// snapshot deep-copies all state.
func (s *Store) snapshot() *Store {
	cp := NewStore()
	cp.FailAfterMutations = s.FailAfterMutations
	cp.mutations = s.mutations

	for k, v := range s.Products {
		c := *v
		cp.Products[k] = &c
	}
	for k, v := range s.Dealers {
		c := *v
		cp.Dealers[k] = &c
	}
	for k, v := range s.DealerCustomers {
		c := *v
		cp.DealerCustomers[k] = &c
	}
	for k, v := range s.Customers {
		c := *v
		cp.Customers[k] = &c
	}
	for k, v := range s.Inventories {
		c := *v
		cp.Inventories[k] = &c
	}
	cp.Transactions = append([]*consignment.DealerTransaction(nil), s.Transactions...)
	cp.Payments = append([]*debt.Payment(nil), s.Payments...)
	for k, v := range s.Sales {
		c := *v
		cp.Sales[k] = &c
	}
	for k, v := range s.SaleItems {
		cp.SaleItems[k] = append([]sale.SaleItem(nil), v...)
	}
	for k, v := range s.Deliveries {
		c := *v
		cp.Deliveries[k] = &c
	}
	for k, v := range s.Purchases {
		c := *v
		cp.Purchases[k] = &c
	}
	for k, v := range s.PurchaseItems {
		cp.PurchaseItems[k] = append([]purchase.PurchaseItem(nil), v...)
	}
	return cp
}

// restore replaces all state with the snapshot.
func (s *Store) restore(snap *Store) {
	s.Products = snap.Products
	s.Dealers = snap.Dealers
	s.DealerCustomers = snap.DealerCustomers
	s.Customers = snap.Customers
	s.Inventories = snap.Inventories
	s.Transactions = snap.Transactions
	s.Payments = snap.Payments
	s.Sales = snap.Sales
	s.SaleItems = snap.SaleItems
	s.Deliveries = snap.Deliveries
	s.Purchases = snap.Purchases
	s.PurchaseItems = snap.PurchaseItems
}

// TxManager implements tx.Manager over the in-memory store: the whole
// store is rolled back when the transaction function fails.
type TxManager struct {
	store *Store
}

// NewTxManager creates a snapshotting transaction manager for the store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

type txKey struct{}

// RunInTransaction snapshots the store, runs fn, and restores the
// snapshot if fn fails. Nested calls reuse the outer transaction.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snap := m.store.snapshot()
	m.store.mutations = 0

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

// ReadOnly runs fn without snapshotting.
func (m *TxManager) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
