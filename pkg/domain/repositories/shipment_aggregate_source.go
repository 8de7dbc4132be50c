package repositories

import "github.com/kaizen-line/inspector-dispatch/pkg/domain/entities"

// ShipmentAggregateRow is one row of the shipment-aggregate frame
// (spec.md §6). Shortage is authoritative and is never recomputed by
// this module.
type ShipmentAggregateRow struct {
	ProductNumber          string
	ProductName            string
	Customer               string
	ShippingDate           entities.ShippingDate
	ShippingQuantity       int64
	StockQuantity          int64
	ShortageQuantity       int64 // negative => unmet demand
	PackagedCompletedTotal int64
}

// ShipmentAggregateSource is the read-only boundary onto the relational
// store's shortage result set. Reading from the store itself is an
// explicit non-goal (spec.md §1); the engine only ever consumes this
// interface.
type ShipmentAggregateSource interface {
	ShipmentAggregates(startDate, endDate string) ([]ShipmentAggregateRow, error)
}
