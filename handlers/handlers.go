package handlers

import (
	"ecopoints-server/services"
)

// Shared service instances used by all handlers, set once at startup.
var (
	Store       services.Store
	Catalog     *services.Catalog
	Ledger      *services.PointsLedger
	Deliveries  *services.Deliveries
	Redemptions *services.Redemptions
)

// InitializeHandlers wires the handler package to a store.
func InitializeHandlers(store services.Store) {
	Store = store
	Catalog = services.NewCatalog(store)
	Ledger = services.NewPointsLedger(store)
	Deliveries = services.NewDeliveries(store, Catalog)
	Redemptions = services.NewRedemptions(store, Catalog)
}
