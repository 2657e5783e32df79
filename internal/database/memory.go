package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-pos-ledger/internal/models"
)

// MemoryStore keeps tenants, products and transactions in maps. It backs the
// tests and STORE_DRIVER=memory.
type MemoryStore struct {
	mu           sync.RWMutex
	seq          int64
	order        map[string]int64
	tenants      map[string]models.Tenant
	products     map[string]models.Product
	transactions map[string]models.Transaction
	txIDs        map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		order:        make(map[string]int64),
		tenants:      make(map[string]models.Tenant),
		products:     make(map[string]models.Product),
		transactions: make(map[string]models.Transaction),
		txIDs:        make(map[string]string),
	}
}

func (s *MemoryStore) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

// newestFirst orders by creation time, then by insertion order.
func (s *MemoryStore) newestFirst(ids []string, created func(string) time.Time) {
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := created(ids[i]), created(ids[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return s.order[ids[i]] > s.order[ids[j]]
	})
}

// --- Tenants ---

func (s *MemoryStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tenants[t.ID]; ok {
		return models.ErrConflict
	}
	for _, existing := range s.tenants {
		if existing.Email == t.Email {
			return models.ErrConflict
		}
	}
	s.tenants[t.ID] = *t
	s.next(t.ID)
	return nil
}

func (s *MemoryStore) GetTenant(_ context.Context, id string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &t, nil
}

func (s *MemoryStore) GetTenantByEmail(_ context.Context, email string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tenants {
		if t.Email == email {
			found := t
			return &found, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *MemoryStore) UpdateTenant(_ context.Context, id string, u models.TenantUpdate) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tenants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Phone != nil {
		t.Phone = *u.Phone
	}
	if u.City != nil {
		t.City = *u.City
	}
	if u.Branch != nil {
		t.Branch = *u.Branch
	}
	if u.GSTIN != nil {
		t.GSTIN = *u.GSTIN
	}
	t.UpdatedAt = time.Now().UTC()
	s.tenants[id] = t
	return &t, nil
}

// --- Products ---

func (s *MemoryStore) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; ok {
		return models.ErrConflict
	}
	s.products[p.ID] = *p
	s.next(p.ID)
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListProductsByTenant(_ context.Context, tenantID string) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for id, p := range s.products {
		if p.ShopID == tenantID {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.products[id].CreatedAt })
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, u models.ProductUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Quantity != nil {
		p.Quantity = *u.Quantity
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return &p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.products, id)
	delete(s.order, id)
	return nil
}

func (s *MemoryStore) AdjustQuantity(_ context.Context, id string, delta int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.Quantity += delta
	p.UpdatedAt = time.Now().UTC()
	s.products[id] = p
	return &p, nil
}

// --- Transactions ---

func (s *MemoryStore) CreateTransaction(_ context.Context, t *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; ok {
		return models.ErrConflict
	}
	if _, ok := s.txIDs[t.TransactionID]; ok {
		return models.ErrConflict
	}
	s.transactions[t.ID] = cloneTransaction(*t)
	s.txIDs[t.TransactionID] = t.ID
	s.next(t.ID)
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	clone := cloneTransaction(t)
	return &clone, nil
}

func (s *MemoryStore) ListTransactionsByTenant(ctx context.Context, tenantID string) ([]models.Transaction, error) {
	return s.listTransactions(tenantID, func(models.Transaction) bool { return true }), nil
}

func (s *MemoryStore) ListTransactionsByTenantAndDateRange(_ context.Context, tenantID string, start, end time.Time) ([]models.Transaction, error) {
	return s.listTransactions(tenantID, func(t models.Transaction) bool {
		return !t.CreatedAt.Before(start) && !t.CreatedAt.After(end)
	}), nil
}

func (s *MemoryStore) listTransactions(tenantID string, keep func(models.Transaction) bool) []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0)
	for id, t := range s.transactions {
		if t.TenantID == tenantID && keep(t) {
			ids = append(ids, id)
		}
	}
	s.newestFirst(ids, func(id string) time.Time { return s.transactions[id].CreatedAt })
	out := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneTransaction(s.transactions[id]))
	}
	return out
}

func (s *MemoryStore) UpdateTransaction(_ context.Context, id string, u models.TransactionUpdate) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	t = cloneTransaction(t)
	u.Apply(&t)
	t.UpdatedAt = time.Now().UTC()
	s.transactions[id] = t
	clone := cloneTransaction(t)
	return &clone, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return models.ErrNotFound
	}
	delete(s.txIDs, t.TransactionID)
	delete(s.transactions, id)
	delete(s.order, id)
	return nil
}

func cloneTransaction(t models.Transaction) models.Transaction {
	t.CartItems = append([]models.LineItem(nil), t.CartItems...)
	t.ExtraCharges = append([]models.ExtraCharge(nil), t.ExtraCharges...)
	return t
}
