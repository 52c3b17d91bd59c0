package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/yeremiapane/camarero-fulfillment/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists through gorm. The station queue read model goes through
// sqlx on the same connection pool.
type GormStore struct {
	DB *gorm.DB
	db *sqlx.DB
}

func NewGormStore(db *gorm.DB) (*GormStore, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "unwrap sql.DB from gorm")
	}
	return &GormStore{
		DB: db,
		db: sqlx.NewDb(sqlDB, sqlxDriverName(db.Dialector.Name())),
	}, nil
}

// sqlxDriverName maps gorm dialector names onto the names sqlx uses to pick a bindvar style.
func sqlxDriverName(dialect string) string {
	if dialect == "sqlite" {
		return "sqlite3"
	}
	return dialect
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	tx := s.DB.WithContext(ctx).Begin()
	if tx.Error != nil {
		return errors.Wrap(tx.Error, "begin transaction")
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&gormTx{db: tx}); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "commit transaction")
	}
	return nil
}

func (s *GormStore) FindOrder(ctx context.Context, businessID, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.DB.WithContext(ctx).
		Preload("Table").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Preload("Items.SelectedModifiers", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND business_id = ?", orderID, businessID).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, "find order")
	}
	return &order, nil
}

const stationQueueQuery = `
SELECT oi.id, oi.order_id, o.order_number, o.created_at AS order_created_at,
       t.identifier AS table_identifier, oi.line_number, oi.quantity, oi.status,
       oi.notes, oi.kds_destination, oi.item_name_snapshot, oi.prepared_at, oi.served_at
FROM order_items oi
JOIN orders o ON o.id = oi.order_id
LEFT JOIN tables t ON t.id = o.table_id
WHERE o.business_id = ? AND oi.status IN (?)`

const stationQueueOrder = ` ORDER BY o.created_at ASC, o.id ASC, oi.line_number ASC`

const queueModifiersQuery = `
SELECT order_item_id, option_name_snapshot
FROM order_item_modifier_options
WHERE order_item_id IN (?)
ORDER BY order_item_id, position ASC`

func (s *GormStore) FindStationQueue(ctx context.Context, filter models.StationQueueFilter) ([]models.StationQueueItem, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	if len(statuses) == 0 {
		return []models.StationQueueItem{}, nil
	}

	query := stationQueueQuery
	args := []interface{}{filter.BusinessID, statuses}
	if filter.Destination != "" {
		query += ` AND oi.kds_destination = ?`
		args = append(args, filter.Destination)
	}
	query += stationQueueOrder

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "expand station queue query")
	}

	items := []models.StationQueueItem{}
	if err := s.db.SelectContext(ctx, &items, s.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "select station queue")
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	modQuery, modArgs, err := sqlx.In(queueModifiersQuery, ids)
	if err != nil {
		return nil, errors.Wrap(err, "expand queue modifiers query")
	}
	var rows []struct {
		OrderItemID string `db:"order_item_id"`
		Name        string `db:"option_name_snapshot"`
	}
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(modQuery), modArgs...); err != nil {
		return nil, errors.Wrap(err, "select queue modifiers")
	}

	names := make(map[string][]string, len(items))
	for _, row := range rows {
		names[row.OrderItemID] = append(names[row.OrderItemID], row.Name)
	}
	for i := range items {
		items[i].SelectedModifiers = names[items[i].ID]
		if items[i].SelectedModifiers == nil {
			items[i].SelectedModifiers = []string{}
		}
	}
	return items, nil
}

func notFound(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return errors.Wrap(err, op)
}

type gormTx struct {
	db *gorm.DB
}

// forUpdate adds FOR UPDATE on MySQL. SQLite locks the whole database per write transaction.
func (t *gormTx) forUpdate() *gorm.DB {
	if t.db.Dialector.Name() == "mysql" {
		return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.db
}

func (t *gormTx) FindBusiness(id string) (*models.Business, error) {
	var business models.Business
	if err := t.db.Where("id = ?", id).First(&business).Error; err != nil {
		return nil, notFound(err, "find business")
	}
	return &business, nil
}

func (t *gormTx) FindTable(businessID, identifier string) (*models.Table, error) {
	var table models.Table
	if err := t.db.Where("business_id = ? AND identifier = ?", businessID, identifier).First(&table).Error; err != nil {
		return nil, notFound(err, "find table")
	}
	return &table, nil
}

func (t *gormTx) UpdateTableStatus(tableID, status string) error {
	err := t.db.Model(&models.Table{}).
		Where("id = ?", tableID).
		Updates(map[string]interface{}{"status": status, "updated_at": time.Now()}).Error
	return errors.Wrap(err, "update table status")
}

func (t *gormTx) CountOrders(businessID string) (int64, error) {
	var count int64
	if err := t.db.Model(&models.Order{}).Where("business_id = ?", businessID).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "count orders")
	}
	return count, nil
}

func (t *gormTx) CreateOrder(order *models.Order) error {
	return errors.Wrap(t.db.Omit(clause.Associations).Create(order).Error, "create order")
}

func (t *gormTx) LockOrder(businessID, orderID string) (*models.Order, error) {
	var order models.Order
	if err := t.forUpdate().Where("id = ? AND business_id = ?", orderID, businessID).First(&order).Error; err != nil {
		return nil, notFound(err, "lock order")
	}
	return &order, nil
}

func (t *gormTx) UpdateOrder(order *models.Order) error {
	order.UpdatedAt = time.Now()
	err := t.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":       order.Status,
			"total_amount": order.TotalAmount,
			"updated_at":   order.UpdatedAt,
		}).Error
	return errors.Wrap(err, "update order")
}

func (t *gormTx) FetchMenuItemWithModifiers(menuItemID string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := t.db.
		Preload("ModifierGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ModifierGroups.Options", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = ?", true).Order("position ASC")
		}).
		Where("id = ?", menuItemID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "fetch menu item")
	}
	return &item, nil
}

func (t *gormTx) CreateOrderItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return errors.Wrap(t.db.Create(&items).Error, "create order items")
}

func (t *gormTx) FindOrderItem(itemID, businessID string) (*models.OrderItem, error) {
	orders := t.db.Session(&gorm.Session{NewDB: true}).
		Model(&models.Order{}).
		Select("id").
		Where("business_id = ?", businessID)

	var item models.OrderItem
	err := t.db.
		Where("id = ? AND order_id IN (?)", itemID, orders).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "find order item")
	}
	return &item, nil
}

// LockOrderItem rereads the item with FOR UPDATE so the status is the latest
// committed one even after waiting on the order lock.
func (t *gormTx) LockOrderItem(orderID, itemID string) (*models.OrderItem, error) {
	var item models.OrderItem
	err := t.forUpdate().
		Where("id = ? AND order_id = ?", itemID, orderID).
		First(&item).Error
	if err != nil {
		return nil, notFound(err, "lock order item")
	}
	return &item, nil
}

func (t *gormTx) UpdateOrderItemStatus(item *models.OrderItem) error {
	item.UpdatedAt = time.Now()
	err := t.db.Model(&models.OrderItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"status":      item.Status,
			"prepared_at": item.PreparedAt,
			"served_at":   item.ServedAt,
			"updated_at":  item.UpdatedAt,
		}).Error
	return errors.Wrap(err, "update order item status")
}

func (t *gormTx) ListItemStatuses(orderID string) ([]models.OrderItemStatus, error) {
	var statuses []models.OrderItemStatus
	err := t.forUpdate().
		Model(&models.OrderItem{}).
		Where("order_id = ?", orderID).
		Order("line_number ASC").
		Pluck("status", &statuses).Error
	if err != nil {
		return nil, errors.Wrap(err, "list item statuses")
	}
	return statuses, nil
}
