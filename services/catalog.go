package services

import (
	"context"

	"ecopoints-server/models"

	"github.com/google/uuid"
)

// Catalog is the read-only gateway to waste types and rewards. Catalog
// content is managed outside this server (seeded at migration time).
type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) GetWasteType(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	return c.store.GetWasteType(ctx, id)
}

func (c *Catalog) ListWasteTypes(ctx context.Context) ([]models.WasteType, error) {
	return c.store.ListWasteTypes(ctx)
}

func (c *Catalog) GetReward(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	return c.store.GetReward(ctx, id)
}

func (c *Catalog) ListRewards(ctx context.Context) ([]models.Reward, error) {
	return c.store.ListRewards(ctx)
}
