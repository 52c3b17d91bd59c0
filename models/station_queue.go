package models

import "time"

// StationQueueItem is the read model a KDS terminal renders.
type StationQueueItem struct {
	ID                string          `db:"id" json:"id"`
	OrderID           string          `db:"order_id" json:"order_id"`
	OrderNumber       string          `db:"order_number" json:"order_number"`
	OrderCreatedAt    time.Time       `db:"order_created_at" json:"order_created_at"`
	TableIdentifier   *string         `db:"table_identifier" json:"table_identifier,omitempty"`
	LineNumber        int             `db:"line_number" json:"line_number"`
	Quantity          int             `db:"quantity" json:"quantity"`
	Status            OrderItemStatus `db:"status" json:"status"`
	Notes             *string         `db:"notes" json:"notes,omitempty"`
	KdsDestination    *string         `db:"kds_destination" json:"kds_destination,omitempty"`
	ItemNameSnapshot  string          `db:"item_name_snapshot" json:"item_name_snapshot"`
	PreparedAt        *time.Time      `db:"prepared_at" json:"prepared_at,omitempty"`
	ServedAt          *time.Time      `db:"served_at" json:"served_at,omitempty"`
	SelectedModifiers []string        `db:"-" json:"selected_modifiers"`
}

// StationQueueFilter selects queue items. An empty Destination matches every station.
type StationQueueFilter struct {
	BusinessID  string
	Destination string
	Statuses    []OrderItemStatus
}
