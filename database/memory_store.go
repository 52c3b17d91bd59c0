package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/yeremiapane/camarero-fulfillment/models"
)

type memoryState struct {
	businesses map[string]models.Business
	tables     map[string]models.Table
	menuItems  map[string]models.MenuItem
	orders     map[string]models.Order
	items      map[string]models.OrderItem
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		businesses: make(map[string]models.Business, len(s.businesses)),
		tables:     make(map[string]models.Table, len(s.tables)),
		menuItems:  make(map[string]models.MenuItem, len(s.menuItems)),
		orders:     make(map[string]models.Order, len(s.orders)),
		items:      make(map[string]models.OrderItem, len(s.items)),
	}
	for k, v := range s.businesses {
		c.businesses[k] = v
	}
	for k, v := range s.tables {
		c.tables[k] = v
	}
	for k, v := range s.menuItems {
		c.menuItems[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

// MemoryStore keeps everything in maps. Transactions run one at a time against a
// copy of the state that replaces the live state only when fn succeeds.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{}.clone()}
}

func (s *MemoryStore) AddBusiness(b models.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.businesses[b.ID] = b
}

func (s *MemoryStore) AddTable(t models.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.tables[t.ID] = t
}

func (s *MemoryStore) AddMenuItem(m models.MenuItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.menuItems[m.ID] = m
}

// OrderItemCount reports how many order items exist across all orders.
func (s *MemoryStore) OrderItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.items)
}

func (s *MemoryStore) OrderCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.orders)
}

func (s *MemoryStore) Table(id string) (models.Table, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.state.tables[id]
	return t, ok
}

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{state: s.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

func (s *MemoryStore) FindOrder(ctx context.Context, businessID, orderID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.state.orders[orderID]
	if !ok || order.BusinessID != businessID {
		return nil, ErrNotFound
	}
	if order.TableID != nil {
		if t, ok := s.state.tables[*order.TableID]; ok {
			order.Table = &t
		}
	}
	order.Items = s.state.itemsOf(orderID)
	return &order, nil
}

func (s *MemoryStore) FindStationQueue(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[models.OrderItemStatus]bool, len(filter.Statuses))
	for _, st := range filter.Statuses {
		wanted[st] = true
	}

	type row struct {
		order models.Order
		item  models.StationQueueItem
	}
	var rows []row
	for _, item := range s.state.items {
		order := s.state.orders[item.OrderID]
		if order.BusinessID != filter.BusinessID || !wanted[item.Status] {
			continue
		}
		if filter.Destination != "" && (item.KdsDestination == nil || *item.KdsDestination != filter.Destination) {
			continue
		}
		q := models.StationQueueItem{
			ID:                item.ID,
			OrderID:           order.ID,
			OrderNumber:       order.OrderNumber,
			OrderCreatedAt:    order.CreatedAt,
			LineNumber:        item.LineNumber,
			Quantity:          item.Quantity,
			Status:            item.Status,
			Notes:             item.Notes,
			KdsDestination:    item.KdsDestination,
			ItemNameSnapshot:  item.ItemNameSnapshot,
			PreparedAt:        item.PreparedAt,
			ServedAt:          item.ServedAt,
			SelectedModifiers: []string{},
		}
		if order.TableID != nil {
			if t, ok := s.state.tables[*order.TableID]; ok {
				ident := t.Identifier
				q.TableIdentifier = &ident
			}
		}
		mods := append([]models.OrderItemModifierOption(nil), item.SelectedModifiers...)
		sort.SliceStable(mods, func(i, j int) bool { return mods[i].Position < mods[j].Position })
		for _, m := range mods {
			q.SelectedModifiers = append(q.SelectedModifiers, m.OptionNameSnapshot)
		}
		rows = append(rows, row{order: order, item: q})
	}

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.Before(b.order.CreatedAt)
		}
		if a.order.ID != b.order.ID {
			return a.order.ID < b.order.ID
		}
		return a.item.LineNumber < b.item.LineNumber
	})

	out := make([]models.StationQueueItem, len(rows))
	for i, r := range rows {
		out[i] = r.item
	}
	return out, nil
}

func (s memoryState) itemsOf(orderID string) []models.OrderItem {
	items := []models.OrderItem{}
	for _, item := range s.items {
		if item.OrderID == orderID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].LineNumber < items[j].LineNumber })
	return items
}

type memoryTx struct {
	state memoryState
}

func (t *memoryTx) FindBusiness(id string) (*models.Business, error) {
	b, ok := t.state.businesses[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (t *memoryTx) FindTable(businessID, identifier string) (*models.Table, error) {
	for _, table := range t.state.tables {
		if table.BusinessID == businessID && table.Identifier == identifier {
			found := table
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (t *memoryTx) UpdateTableStatus(tableID, status string) error {
	table, ok := t.state.tables[tableID]
	if !ok {
		return ErrNotFound
	}
	table.Status = status
	table.UpdatedAt = time.Now()
	t.state.tables[tableID] = table
	return nil
}

func (t *memoryTx) CountOrders(businessID string) (int64, error) {
	var n int64
	for _, o := range t.state.orders {
		if o.BusinessID == businessID {
			n++
		}
	}
	return n, nil
}

func (t *memoryTx) CreateOrder(order *models.Order) error {
	for _, o := range t.state.orders {
		if o.BusinessID == order.BusinessID && o.OrderNumber == order.OrderNumber {
			return fmt.Errorf("duplicate order number %s", order.OrderNumber)
		}
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	stored := *order
	stored.Items = nil
	stored.Table = nil
	t.state.orders[order.ID] = stored
	return nil
}

func (t *memoryTx) LockOrder(businessID, orderID string) (*models.Order, error) {
	o, ok := t.state.orders[orderID]
	if !ok || o.BusinessID != businessID {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (t *memoryTx) UpdateOrder(order *models.Order) error {
	stored, ok := t.state.orders[order.ID]
	if !ok {
		return ErrNotFound
	}
	order.UpdatedAt = time.Now()
	stored.Status = order.Status
	stored.TotalAmount = order.TotalAmount
	stored.UpdatedAt = order.UpdatedAt
	t.state.orders[order.ID] = stored
	return nil
}

func (t *memoryTx) FetchMenuItemWithModifiers(menuItemID string) (*models.MenuItem, error) {
	m, ok := t.state.menuItems[menuItemID]
	if !ok {
		return nil, ErrNotFound
	}
	groups := make([]models.ModifierGroup, 0, len(m.ModifierGroups))
	for _, g := range m.ModifierGroups {
		options := make([]models.ModifierOption, 0, len(g.Options))
		for _, o := range g.Options {
			if o.IsAvailable {
				options = append(options, o)
			}
		}
		sort.SliceStable(options, func(i, j int) bool { return options[i].Position < options[j].Position })
		g.Options = options
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Position < groups[j].Position })
	m.ModifierGroups = groups
	return &m, nil
}

func (t *memoryTx) CreateOrderItems(items []models.OrderItem) error {
	now := time.Now()
	for _, item := range items {
		if _, ok := t.state.orders[item.OrderID]; !ok {
			return fmt.Errorf("order %s does not exist", item.OrderID)
		}
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		item.UpdatedAt = now
		item.SelectedModifiers = append([]models.OrderItemModifierOption(nil), item.SelectedModifiers...)
		t.state.items[item.ID] = item
	}
	return nil
}

func (t *memoryTx) FindOrderItem(itemID, businessID string) (*models.OrderItem, error) {
	item, ok := t.state.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	if t.state.orders[item.OrderID].BusinessID != businessID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (t *memoryTx) LockOrderItem(orderID, itemID string) (*models.OrderItem, error) {
	item, ok := t.state.items[itemID]
	if !ok || item.OrderID != orderID {
		return nil, ErrNotFound
	}
	return &item, nil
}

func (t *memoryTx) UpdateOrderItemStatus(item *models.OrderItem) error {
	stored, ok := t.state.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	item.UpdatedAt = time.Now()
	stored.Status = item.Status
	stored.PreparedAt = item.PreparedAt
	stored.ServedAt = item.ServedAt
	stored.UpdatedAt = item.UpdatedAt
	t.state.items[item.ID] = stored
	return nil
}

func (t *memoryTx) ListItemStatuses(orderID string) ([]models.OrderItemStatus, error) {
	items := t.state.itemsOf(orderID)
	statuses := make([]models.OrderItemStatus, len(items))
	for i, item := range items {
		statuses[i] = item.Status
	}
	return statuses, nil
}
