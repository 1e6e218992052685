package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"ecopoints-server/models"
	"ecopoints-server/services"

	"github.com/google/uuid"
)

type refKey struct {
	reason string
	refID  uuid.UUID
}

// MemoryStore implements services.Store entirely in memory. It backs the
// test suite and STORE_DRIVER=memory local runs; Postgres is the
// production store. One mutex serializes all mutations, which trivially
// satisfies the per-user atomicity rules the interface demands.
type MemoryStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]*models.User
	wasteTypes  map[uuid.UUID]*models.WasteType
	rewards     map[uuid.UUID]*models.Reward
	deliveries  map[uuid.UUID]*models.Delivery
	ledger      []models.LedgerEntry
	ledgerByRef map[refKey]int
	redemptions []models.Redemption
	seq         int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[uuid.UUID]*models.User),
		wasteTypes:  make(map[uuid.UUID]*models.WasteType),
		rewards:     make(map[uuid.UUID]*models.Reward),
		deliveries:  make(map[uuid.UUID]*models.Delivery),
		ledgerByRef: make(map[refKey]int),
	}
}

// SeedDefaults populates the catalog with the same content the Postgres
// migrations seed.
func (s *MemoryStore) SeedDefaults() {
	for name, points := range map[string]float64{
		"paper": 10, "plastic": 15, "glass": 8, "metal": 20, "electronics": 50, "organic": 5,
	} {
		s.AddWasteType(name, points)
	}
	for _, r := range []struct {
		name string
		cost int64
	}{
		{"Eco Tote Bag", 300},
		{"Campus Mug", 500},
		{"Water Bottle", 800},
		{"Canteen Voucher", 1200},
	} {
		s.AddReward(r.name, r.cost)
	}
}

// AddWasteType inserts a catalog waste type and returns it.
func (s *MemoryStore) AddWasteType(name string, pointsPerKg float64) *models.WasteType {
	s.mu.Lock()
	defer s.mu.Unlock()
	wt := &models.WasteType{
		ID:          uuid.New(),
		Name:        name,
		PointsPerKg: pointsPerKg,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	s.wasteTypes[wt.ID] = wt
	return wt
}

// AddReward inserts a catalog reward and returns it.
func (s *MemoryStore) AddReward(name string, pointsRequired int64) *models.Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	reward := &models.Reward{
		ID:             uuid.New(),
		Name:           name,
		PointsRequired: pointsRequired,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	s.rewards[reward.ID] = reward
	return reward
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, services.ErrUserNotFound
}

func (s *MemoryStore) GetWasteType(ctx context.Context, id uuid.UUID) (*models.WasteType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wt, ok := s.wasteTypes[id]
	if !ok || !wt.IsActive {
		return nil, services.ErrUnknownWasteType
	}
	copied := *wt
	return &copied, nil
}

func (s *MemoryStore) ListWasteTypes(ctx context.Context) ([]models.WasteType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var types []models.WasteType
	for _, wt := range s.wasteTypes {
		if wt.IsActive {
			types = append(types, *wt)
		}
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func (s *MemoryStore) GetReward(ctx context.Context, id uuid.UUID) (*models.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reward, ok := s.rewards[id]
	if !ok || !reward.IsActive {
		return nil, services.ErrUnknownReward
	}
	copied := *reward
	return &copied, nil
}

func (s *MemoryStore) ListRewards(ctx context.Context) ([]models.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rewards []models.Reward
	for _, reward := range s.rewards {
		if reward.IsActive {
			rewards = append(rewards, *reward)
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].PointsRequired < rewards[j].PointsRequired })
	return rewards, nil
}

// appendEntry writes a ledger entry and applies its delta to the user's
// cached balance. Callers hold the mutex.
func (s *MemoryStore) appendEntry(userID uuid.UUID, delta int64, reason string, refID uuid.UUID) *models.LedgerEntry {
	s.seq++
	entry := models.LedgerEntry{
		Seq:       s.seq,
		ID:        uuid.New(),
		UserID:    userID,
		Delta:     delta,
		Reason:    reason,
		RefID:     refID,
		CreatedAt: time.Now().UTC(),
	}
	s.ledger = append(s.ledger, entry)
	s.ledgerByRef[refKey{reason, refID}] = len(s.ledger) - 1
	s.users[userID].Points += delta
	return &entry
}

func (s *MemoryStore) Credit(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.ledgerByRef[refKey{reason, refID}]; ok {
		existing := s.ledger[idx]
		return &existing, nil
	}
	if _, ok := s.users[userID]; !ok {
		return nil, services.ErrUserNotFound
	}
	entry := *s.appendEntry(userID, amount, reason, refID)
	return &entry, nil
}

func (s *MemoryStore) DebitIfSufficient(ctx context.Context, userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debitLocked(userID, amount, reason, refID)
}

func (s *MemoryStore) debitLocked(userID uuid.UUID, amount int64, reason string, refID uuid.UUID) (*models.LedgerEntry, error) {
	if idx, ok := s.ledgerByRef[refKey{reason, refID}]; ok {
		existing := s.ledger[idx]
		return &existing, nil
	}
	user, ok := s.users[userID]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	if user.Points < amount {
		return nil, services.ErrInsufficientBalance
	}
	entry := *s.appendEntry(userID, -amount, reason, refID)
	return &entry, nil
}

func (s *MemoryStore) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return 0, services.ErrUserNotFound
	}
	return user.Points, nil
}

func (s *MemoryStore) LedgerHistory(ctx context.Context, userID uuid.UUID) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.LedgerEntry
	for _, entry := range s.ledger {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func copyDelivery(d *models.Delivery) *models.Delivery {
	copied := *d
	copied.EstimatedItems = append([]models.DeliveryItem(nil), d.EstimatedItems...)
	copied.ActualItems = append([]models.DeliveryItem(nil), d.ActualItems...)
	return &copied
}

func (s *MemoryStore) InsertDelivery(ctx context.Context, delivery *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[delivery.ID] = copyDelivery(delivery)
	return nil
}

func (s *MemoryStore) GetDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delivery, ok := s.deliveries[id]
	if !ok {
		return nil, services.ErrDeliveryNotFound
	}
	return copyDelivery(delivery), nil
}

func (s *MemoryStore) ListDeliveriesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deliveries []models.Delivery
	for _, d := range s.deliveries {
		if d.OwnerID == ownerID {
			deliveries = append(deliveries, *copyDelivery(d))
		}
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].CreatedAt.After(deliveries[j].CreatedAt) })
	return deliveries, nil
}

func (s *MemoryStore) ListPendingDeliveries(ctx context.Context) ([]models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deliveries []models.Delivery
	for _, d := range s.deliveries {
		if d.Status == models.DeliveryStatusPending {
			deliveries = append(deliveries, *copyDelivery(d))
		}
	}
	sort.Slice(deliveries, func(i, j int) bool { return deliveries[i].CreatedAt.Before(deliveries[j].CreatedAt) })
	return deliveries, nil
}

func (s *MemoryStore) ValidateDelivery(ctx context.Context, params services.ValidateDeliveryParams) (*models.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delivery, ok := s.deliveries[params.DeliveryID]
	if !ok {
		return nil, services.ErrDeliveryNotFound
	}
	if delivery.Status != models.DeliveryStatusPending {
		return nil, services.ErrAlreadyValidated
	}
	owner, ok := s.users[delivery.OwnerID]
	if !ok {
		return nil, services.ErrUserNotFound
	}

	delivery.Status = models.DeliveryStatusValidated
	actualPoints := params.ActualPoints
	delivery.ActualPoints = &actualPoints
	delivery.ActualItems = append([]models.DeliveryItem(nil), params.ActualItems...)
	staffID := params.StaffID
	delivery.ValidatedBy = &staffID
	validatedAt := params.ValidatedAt
	delivery.ValidatedAt = &validatedAt
	delivery.ValidationNotes = params.ValidationNotes

	s.appendEntry(delivery.OwnerID, params.ActualPoints, models.ReasonDeliveryCredit, delivery.ID)
	owner.TotalDeliveries++
	owner.TotalWeight += params.ActualWeight

	return copyDelivery(delivery), nil
}

func (s *MemoryStore) RedeemReward(ctx context.Context, redemption *models.Redemption) (*models.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.debitLocked(redemption.UserID, redemption.PointsSpent, models.ReasonRedemptionDebit, redemption.ID); err != nil {
		return nil, err
	}
	copied := *redemption
	s.redemptions = append(s.redemptions, copied)
	result := copied
	return &result, nil
}

func (s *MemoryStore) ListRedemptionsByUser(ctx context.Context, userID uuid.UUID) ([]models.Redemption, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var redemptions []models.Redemption
	for _, r := range s.redemptions {
		if r.UserID == userID {
			redemptions = append(redemptions, r)
		}
	}
	return redemptions, nil
}
