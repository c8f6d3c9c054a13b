package ledgertest

import (
	"context"
	"sort"
	"time"

	"savdo/internal/core/apperror"
	"savdo/internal/core/id"
	"savdo/internal/core/types"
	"savdo/internal/domain/catalog"
	"savdo/internal/domain/ledger/consignment"
	"savdo/internal/domain/ledger/debt"
	"savdo/internal/domain/ledger/purchase"
	"savdo/internal/domain/ledger/sale"
)

// Repository accessors. Each adapter implements the corresponding domain
// interface against the shared store. Row locking is a no-op here: tests
// drive operations sequentially and the TxManager serializes transactions.

func (s *Store) ProductRepo() catalog.ProductRepository        { return &productRepo{s} }
func (s *Store) DealerRepo() catalog.DealerRepository          { return &dealerRepo{s} }
func (s *Store) DealerCustomerRepo() catalog.DealerCustomerRepository {
	return &dealerCustomerRepo{s}
}
func (s *Store) CustomerRepo() catalog.CustomerRepository          { return &customerRepo{s} }
func (s *Store) InventoryRepo() consignment.InventoryRepository    { return &inventoryRepo{s} }
func (s *Store) TransactionRepo() consignment.TransactionRepository {
	return &transactionRepo{s}
}
func (s *Store) PaymentRepo() debt.PaymentRepository { return &paymentRepo{s} }
func (s *Store) SaleRepo() sale.Repository           { return &saleRepo{s} }
func (s *Store) DeliveryRepo() sale.DeliveryRepository {
	return &deliveryRepo{s}
}
func (s *Store) PurchaseRepo() purchase.Repository { return &purchaseRepo{s} }

// --- products ---

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(_ context.Context, tenantID, productID id.ID) (*catalog.Product, error) {
	p, ok := r.s.Products[productID]
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("product", productID)
	}
	c := *p
	return &c, nil
}

func (r *productRepo) GetManyForUpdate(ctx context.Context, tenantID id.ID, productIDs []id.ID) ([]*catalog.Product, error) {
	out := make([]*catalog.Product, 0, len(productIDs))
	for _, pid := range productIDs {
		p, ok := r.s.Products[pid]
		if !ok || p.TenantID != tenantID {
			continue // missing rows surface as NotFound in the service check
		}
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

func (r *productRepo) AdjustStock(_ context.Context, tenantID, productID id.ID, delta int64) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	p, ok := r.s.Products[productID]
	if !ok || p.TenantID != tenantID {
		return apperror.NewNotFound("product", productID)
	}
	if p.Stock+delta < 0 {
		return apperror.NewInsufficientStock(productID.String(), -delta, p.Stock)
	}
	p.Stock += delta
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *productRepo) SetCostPrice(_ context.Context, tenantID, productID id.ID, costPrice types.Money) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	p, ok := r.s.Products[productID]
	if !ok || p.TenantID != tenantID {
		return apperror.NewNotFound("product", productID)
	}
	p.CostPrice = costPrice
	return nil
}

func (r *productRepo) ListBelowMinStock(_ context.Context, tenantID id.ID) ([]*catalog.Product, error) {
	var out []*catalog.Product
	for _, p := range r.s.Products {
		if p.TenantID == tenantID && p.IsBelowMinStock() {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// --- dealers ---

type dealerRepo struct{ s *Store }

func (r *dealerRepo) GetByID(_ context.Context, tenantID, dealerID id.ID) (*catalog.Dealer, error) {
	d, ok := r.s.Dealers[dealerID]
	if !ok || d.TenantID != tenantID {
		return nil, apperror.NewNotFound("dealer", dealerID)
	}
	c := *d
	return &c, nil
}

func (r *dealerRepo) GetForUpdate(ctx context.Context, tenantID, dealerID id.ID) (*catalog.Dealer, error) {
	return r.GetByID(ctx, tenantID, dealerID)
}

func (r *dealerRepo) SetDebt(_ context.Context, tenantID, dealerID id.ID, newDebt types.Money) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	d, ok := r.s.Dealers[dealerID]
	if !ok || d.TenantID != tenantID {
		return apperror.NewNotFound("dealer", dealerID)
	}
	d.Debt = newDebt
	d.UpdatedAt = time.Now().UTC()
	return nil
}

// --- dealer customers ---

type dealerCustomerRepo struct{ s *Store }

func (r *dealerCustomerRepo) GetByID(_ context.Context, tenantID, dcID id.ID) (*catalog.DealerCustomer, error) {
	dc, ok := r.s.DealerCustomers[dcID]
	if !ok || dc.TenantID != tenantID {
		return nil, apperror.NewNotFound("dealer customer", dcID)
	}
	c := *dc
	return &c, nil
}

func (r *dealerCustomerRepo) GetForUpdate(ctx context.Context, tenantID, dcID id.ID) (*catalog.DealerCustomer, error) {
	return r.GetByID(ctx, tenantID, dcID)
}

func (r *dealerCustomerRepo) SetDebt(_ context.Context, tenantID, dcID id.ID, newDebt types.Money) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	dc, ok := r.s.DealerCustomers[dcID]
	if !ok || dc.TenantID != tenantID {
		return apperror.NewNotFound("dealer customer", dcID)
	}
	dc.Debt = newDebt
	dc.UpdatedAt = time.Now().UTC()
	return nil
}

// --- customers ---

type customerRepo struct{ s *Store }

func (r *customerRepo) GetByID(_ context.Context, tenantID, customerID id.ID) (*catalog.Customer, error) {
	c, ok := r.s.Customers[customerID]
	if !ok || c.TenantID != tenantID {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	cp := *c
	return &cp, nil
}

func (r *customerRepo) GetForUpdate(ctx context.Context, tenantID, customerID id.ID) (*catalog.Customer, error) {
	return r.GetByID(ctx, tenantID, customerID)
}

func (r *customerRepo) SetDebt(_ context.Context, tenantID, customerID id.ID, newDebt types.Money) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	c, ok := r.s.Customers[customerID]
	if !ok || c.TenantID != tenantID {
		return apperror.NewNotFound("customer", customerID)
	}
	c.Debt = newDebt
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// --- dealer inventories ---

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) GetForUpdate(_ context.Context, tenantID, dealerID, productID id.ID) (*consignment.DealerInventory, error) {
	key := InventoryKey{DealerID: dealerID, ProductID: productID}
	if inv, ok := r.s.Inventories[key]; ok && inv.TenantID == tenantID {
		c := *inv
		return &c, nil
	}
	return &consignment.DealerInventory{
		TenantID:  tenantID,
		DealerID:  dealerID,
		ProductID: productID,
		Quantity:  0,
	}, nil
}

func (r *inventoryRepo) AdjustQuantity(_ context.Context, tenantID, dealerID, productID id.ID, delta int64) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	key := InventoryKey{DealerID: dealerID, ProductID: productID}
	inv, ok := r.s.Inventories[key]
	if !ok {
		inv = &consignment.DealerInventory{
			TenantID:  tenantID,
			DealerID:  dealerID,
			ProductID: productID,
		}
		r.s.Inventories[key] = inv
	}
	if inv.Quantity+delta < 0 {
		return apperror.NewInsufficientDealerStock(dealerID.String(), productID.String(), -delta, inv.Quantity)
	}
	inv.Quantity += delta
	inv.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inventoryRepo) ListByDealer(_ context.Context, tenantID, dealerID id.ID) ([]*consignment.DealerInventory, error) {
	var out []*consignment.DealerInventory
	for _, inv := range r.s.Inventories {
		if inv.TenantID == tenantID && inv.DealerID == dealerID && inv.Quantity != 0 {
			c := *inv
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID.String() < out[j].ProductID.String() })
	return out, nil
}

func (r *inventoryRepo) TotalsByProduct(_ context.Context, tenantID id.ID) (map[id.ID]int64, error) {
	totals := make(map[id.ID]int64)
	for _, inv := range r.s.Inventories {
		if inv.TenantID == tenantID {
			totals[inv.ProductID] += inv.Quantity
		}
	}
	return totals, nil
}

// --- dealer transactions ---

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Append(_ context.Context, txns []*consignment.DealerTransaction) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	r.s.Transactions = append(r.s.Transactions, txns...)
	return nil
}

func (r *transactionRepo) List(_ context.Context, tenantID id.ID, filter consignment.TransactionFilter) ([]*consignment.DealerTransaction, error) {
	var out []*consignment.DealerTransaction
	for _, t := range r.s.Transactions {
		if t.TenantID != tenantID {
			continue
		}
		if filter.DealerID != nil && t.DealerID != *filter.DealerID {
			continue
		}
		if filter.ProductID != nil && t.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != nil && t.Type != *filter.Type {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// --- payments ---

type paymentRepo struct{ s *Store }

func (r *paymentRepo) Append(_ context.Context, payment *debt.Payment) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	r.s.Payments = append(r.s.Payments, payment)
	return nil
}

func (r *paymentRepo) List(_ context.Context, tenantID id.ID, filter debt.PaymentFilter) ([]*debt.Payment, error) {
	var out []*debt.Payment
	for _, p := range r.s.Payments {
		if p.TenantID != tenantID {
			continue
		}
		if filter.DebtorType != nil && p.DebtorType != *filter.DebtorType {
			continue
		}
		if filter.DebtorID != nil && p.DebtorID != *filter.DebtorID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// --- sales ---

type saleRepo struct{ s *Store }

func (r *saleRepo) Create(_ context.Context, newSale *sale.Sale) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	c := *newSale
	c.Items = nil
	r.s.Sales[newSale.ID] = &c
	return nil
}

func (r *saleRepo) SaveItems(_ context.Context, saleID id.ID, items []sale.SaleItem) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	r.s.SaleItems[saleID] = append([]sale.SaleItem(nil), items...)
	return nil
}

func (r *saleRepo) GetByID(_ context.Context, tenantID, saleID id.ID) (*sale.Sale, error) {
	found, ok := r.s.Sales[saleID]
	if !ok || found.TenantID != tenantID {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	c := *found
	return &c, nil
}

func (r *saleRepo) GetForUpdate(ctx context.Context, tenantID, saleID id.ID) (*sale.Sale, error) {
	return r.GetByID(ctx, tenantID, saleID)
}

func (r *saleRepo) GetItems(_ context.Context, saleID id.ID) ([]sale.SaleItem, error) {
	return append([]sale.SaleItem(nil), r.s.SaleItems[saleID]...), nil
}

func (r *saleRepo) UpdateStatus(_ context.Context, tenantID, saleID id.ID, status sale.Status, version int) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	found, ok := r.s.Sales[saleID]
	if !ok || found.TenantID != tenantID {
		return apperror.NewNotFound("sale", saleID)
	}
	if found.Version != version {
		return apperror.NewConcurrentModification("sale", saleID)
	}
	found.Status = status
	found.Version++
	found.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *saleRepo) List(_ context.Context, tenantID id.ID, filter sale.SaleFilter) ([]*sale.Sale, error) {
	var out []*sale.Sale
	for _, found := range r.s.Sales {
		if found.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && found.Status != *filter.Status {
			continue
		}
		if filter.Source != nil && found.Source != *filter.Source {
			continue
		}
		c := *found
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// --- deliveries ---

type deliveryRepo struct{ s *Store }

func (r *deliveryRepo) GetBySale(_ context.Context, tenantID, saleID id.ID) (*sale.Delivery, error) {
	d, ok := r.s.Deliveries[saleID]
	if !ok || d.TenantID != tenantID {
		return nil, apperror.NewNotFound("delivery", saleID)
	}
	c := *d
	return &c, nil
}

func (r *deliveryRepo) Create(_ context.Context, delivery *sale.Delivery) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	if _, exists := r.s.Deliveries[delivery.SaleID]; exists {
		return apperror.NewConflict("delivery already exists for sale")
	}
	c := *delivery
	r.s.Deliveries[delivery.SaleID] = &c
	return nil
}

// --- purchases ---

type purchaseRepo struct{ s *Store }

func (r *purchaseRepo) Create(_ context.Context, p *purchase.Purchase) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	c := *p
	c.Items = nil
	r.s.Purchases[p.ID] = &c
	return nil
}

func (r *purchaseRepo) SaveItems(_ context.Context, purchaseID id.ID, items []purchase.PurchaseItem) error {
	if err := r.s.countMutation(); err != nil {
		return err
	}
	r.s.PurchaseItems[purchaseID] = append([]purchase.PurchaseItem(nil), items...)
	return nil
}

func (r *purchaseRepo) GetByID(_ context.Context, tenantID, purchaseID id.ID) (*purchase.Purchase, error) {
	p, ok := r.s.Purchases[purchaseID]
	if !ok || p.TenantID != tenantID {
		return nil, apperror.NewNotFound("purchase", purchaseID)
	}
	c := *p
	return &c, nil
}

func (r *purchaseRepo) GetItems(_ context.Context, purchaseID id.ID) ([]purchase.PurchaseItem, error) {
	return append([]purchase.PurchaseItem(nil), r.s.PurchaseItems[purchaseID]...), nil
}

func (r *purchaseRepo) List(_ context.Context, tenantID id.ID, filter purchase.PurchaseFilter) ([]*purchase.Purchase, error) {
	var out []*purchase.Purchase
	for _, p := range r.s.Purchases {
		if p.TenantID != tenantID {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
