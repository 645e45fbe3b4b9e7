package store

import (
	"context"
	"strconv"
	"sync"

	"insight-engine/internal/core"
)

// Memory is an in-memory store used by tests and the demo CLI. It keeps the
// same latest-wins discipline as the Postgres store: an incremental per-key
// index maps (merchant, product) to the winning inventory entry, updated on
// every append, so current stock reads never rescan the log.
type Memory struct {
	mu        sync.Mutex
	merchants map[string]core.Merchant
	products  map[string][]core.Product
	orders    map[string][]core.OrderLine
	inventory map[string][]core.InventoryLogEntry
	latest    map[string]map[string]int // merchant → product → index into inventory
	rules     map[string][]core.NotificationRule
	nextRule  int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		merchants: make(map[string]core.Merchant),
		products:  make(map[string][]core.Product),
		orders:    make(map[string][]core.OrderLine),
		inventory: make(map[string][]core.InventoryLogEntry),
		latest:    make(map[string]map[string]int),
		rules:     make(map[string][]core.NotificationRule),
	}
}

// ── Seeding ───────────────────────────────────────────────────────────────────

func (s *Memory) AddMerchant(m core.Merchant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merchants[m.MerchantID] = m
}

func (s *Memory) AddProducts(merchantID string, products ...core.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[merchantID] = append(s.products[merchantID], products...)
}

func (s *Memory) AddOrderLines(merchantID string, lines ...core.OrderLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[merchantID] = append(s.orders[merchantID], lines...)
}

func (s *Memory) AddInventory(entries ...core.InventoryLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.appendLocked(e)
	}
}

// AddRule seeds a rule, assigning the next ID when the given one is zero,
// and returns the stored ID.
func (s *Memory) AddRule(r core.NotificationRule) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		s.nextRule++
		r.ID = s.nextRule
	} else if r.ID > s.nextRule {
		s.nextRule = r.ID
	}
	s.rules[r.MerchantID] = append(s.rules[r.MerchantID], r)
	return r.ID
}

// ── Read facade ───────────────────────────────────────────────────────────────

func (s *Memory) GetMerchant(_ context.Context, merchantID string) (*core.Merchant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.merchants[merchantID]
	if !ok {
		return nil, &core.NotFoundError{Resource: "merchant", Key: merchantID}
	}
	return &m, nil
}

func (s *Memory) GetProducts(_ context.Context, merchantID string) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Product(nil), s.products[merchantID]...), nil
}

func (s *Memory) GetOrderLines(_ context.Context, merchantID string, r core.DateRange) ([]core.OrderLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []core.OrderLine
	for _, l := range s.orders[merchantID] {
		if r.Contains(l.Timestamp) {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

func (s *Memory) GetInventoryLog(_ context.Context, merchantID string) ([]core.InventoryLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.InventoryLogEntry(nil), s.inventory[merchantID]...), nil
}

func (s *Memory) GetNotificationRules(_ context.Context, merchantID string) ([]core.NotificationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.NotificationRule(nil), s.rules[merchantID]...), nil
}

// ── Rule writes ───────────────────────────────────────────────────────────────

func (s *Memory) InsertRule(_ context.Context, r core.NotificationRule) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRule++
	r.ID = s.nextRule
	s.rules[r.MerchantID] = append(s.rules[r.MerchantID], r)
	return r.ID, nil
}

func (s *Memory) GetRule(_ context.Context, id int64) (*core.NotificationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rules := range s.rules {
		for _, r := range rules {
			if r.ID == id {
				return &r, nil
			}
		}
	}
	return nil, &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
}

func (s *Memory) UpdateRule(_ context.Context, id int64, threshold *int, enabled *bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for merchantID, rules := range s.rules {
		for i, r := range rules {
			if r.ID != id {
				continue
			}
			if threshold != nil {
				r.Threshold = *threshold
			}
			if enabled != nil {
				r.Enabled = *enabled
			}
			s.rules[merchantID][i] = r
			return nil
		}
	}
	return &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
}

func (s *Memory) DeleteRule(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for merchantID, rules := range s.rules {
		for i, r := range rules {
			if r.ID == id {
				s.rules[merchantID] = append(rules[:i:i], rules[i+1:]...)
				return nil
			}
		}
	}
	return &core.NotFoundError{Resource: "notification rule", Key: strconv.FormatInt(id, 10)}
}

// ── Inventory writes ──────────────────────────────────────────────────────────

func (s *Memory) AppendInventory(_ context.Context, e core.InventoryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(e)
	return nil
}

func (s *Memory) CurrentStock(_ context.Context, merchantID, productName string) (*core.InventoryLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.latest[merchantID]
	if !ok {
		return nil, nil
	}
	i, ok := idx[productName]
	if !ok {
		return nil, nil
	}
	e := s.inventory[merchantID][i]
	return &e, nil
}

// appendLocked records the entry and advances the latest-wins index. On equal
// timestamps the later append wins, matching the log's replay order.
func (s *Memory) appendLocked(e core.InventoryLogEntry) {
	log := s.inventory[e.MerchantID]
	idx := s.latest[e.MerchantID]
	if idx == nil {
		idx = make(map[string]int)
		s.latest[e.MerchantID] = idx
	}

	s.inventory[e.MerchantID] = append(log, e)
	if prev, ok := idx[e.StockName]; !ok || !e.DateUpdated.Before(log[prev].DateUpdated) {
		idx[e.StockName] = len(log)
	}
}
