// internal/passport/implementation.go
package passport

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// Identity used for entries the engine authors itself.
	systemActor = "System AI"
	// Identity used for auction outcomes.
	marketplaceActor = "Marketplace Engine"

	// Resource ids are short and human-legible, so collisions are unlikely
	// but possible; creation retries a bounded number of times.
	maxIDAttempts = 5
)

// service implements the Service interface.
type service struct {
	store   Store
	limiter *rate.Limiter
	now     func() time.Time
}

// NewService creates a new lifecycle service instance backed by the given
// store.
func NewService(store Store) Service {
	return &service{
		store:   store,
		limiter: rate.NewLimiter(rate.Every(time.Second), 25),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit registers a device, classifies it, prices it, books the next
// collection slot and opens its passport with two ledger entries.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (*Item, error) {
	if !s.limiter.Allow() {
		return nil, fmt.Errorf("rate limit exceeded")
	}
	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	classification := Classify(req.PowerStatus, req.Condition, req.AgeYears)
	value := EstimateValue(req.DeviceType, classification)
	submittedAt := s.now()
	collectionDate := NextCollectionSlot(submittedAt)

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := generateResourceID()
		if err != nil {
			return nil, &PersistenceError{Op: "submit", Err: err}
		}

		item := &Item{
			ID:             id,
			OwnerID:        req.OwnerID,
			DeviceType:     req.DeviceType,
			Model:          req.Model,
			AgeYears:       req.AgeYears,
			Condition:      req.Condition,
			PowerStatus:    req.PowerStatus,
			BatteryStatus:  req.BatteryStatus,
			ImageRef:       req.ImageRef,
			Status:         StatusScheduled,
			Classification: classification,
			EstimatedValue: value,
			CollectionDate: collectionDate,
		}
		events := []HistoryEvent{
			{
				ID:        uuid.New(),
				ItemID:    id,
				Timestamp: submittedAt,
				Status:    StatusSubmitted,
				Actor:     req.ActorName,
				Note:      "Digital Product Passport created",
			},
			{
				ID:        uuid.New(),
				ItemID:    id,
				Timestamp: s.now(),
				Status:    StatusScheduled,
				Actor:     systemActor,
				Note:      fmt.Sprintf("Auto-scheduled. Classification: %s", classification),
			},
		}

		err = s.store.InsertItem(ctx, item, events)
		if errors.Is(err, ErrDuplicateID) {
			log.Printf("resource id %s already taken, retrying (%d/%d)", id, attempt+1, maxIDAttempts)
			continue
		}
		if err != nil {
			return nil, &PersistenceError{Op: "submit", Err: err}
		}
		return s.store.GetItem(ctx, id)
	}

	return nil, &PersistenceError{Op: "submit", Err: fmt.Errorf("%w after %d attempts", ErrDuplicateID, maxIDAttempts)}
}

// MarkGivenByCitizen records that the owning citizen handed the device to
// the collection run.
func (s *service) MarkGivenByCitizen(ctx context.Context, itemID, actorName string) (*Item, error) {
	if actorName == "" {
		return nil, &ValidationError{Field: "actor_name", Reason: "must not be empty"}
	}
	return s.transition(ctx, itemID, StatusCollectedByCitizen, ItemPatch{}, actorName, "Citizen confirmed handover")
}

// ExpediteCollection moves a scheduled item onto the priority run.
func (s *service) ExpediteCollection(ctx context.Context, itemID, actorName string) (*Item, error) {
	if actorName == "" {
		return nil, &ValidationError{Field: "actor_name", Reason: "must not be empty"}
	}
	return s.transition(ctx, itemID, StatusPriorityCollection, ItemPatch{}, actorName, "Collection expedited")
}

// VerifyCollection confirms physical receipt at the municipal facility. An
// override replaces the submission-time classification and reprices the item.
func (s *service) VerifyCollection(ctx context.Context, itemID, actorName string, override *Classification) (*Item, error) {
	if actorName == "" {
		return nil, &ValidationError{Field: "actor_name", Reason: "must not be empty"}
	}
	if override != nil && !override.Valid() {
		return nil, &ValidationError{Field: "classification", Reason: fmt.Sprintf("unknown value %q", *override)}
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, s.wrapStoreErr("verify", err)
	}

	patch := ItemPatch{}
	note := "Physically verified"
	if override != nil && *override != item.Classification {
		finalClass := *override
		value := EstimateValue(item.DeviceType, finalClass)
		patch.Classification = &finalClass
		patch.EstimatedValue = &value
		note = fmt.Sprintf("Verified with override: %s", finalClass)
	}
	return s.apply(ctx, item, StatusVerified, patch, actorName, note)
}

// PlaceBindingBid runs the direct auction: the first bid above the current
// estimate wins the item outright. Concurrent bids race; the version check
// in the store lets only one land.
func (s *service) PlaceBindingBid(ctx context.Context, itemID, bidderName string, bidAmount float64) (*Item, error) {
	if bidderName == "" {
		return nil, &ValidationError{Field: "bidder_name", Reason: "must not be empty"}
	}

	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, s.wrapStoreErr("bid", err)
	}
	if err := ValidateTransition(item.Status, StatusAssignedToRecycler); err != nil {
		return nil, err
	}
	if bidAmount <= item.EstimatedValue {
		return nil, &ValidationError{
			Field:  "bid_amount",
			Reason: fmt.Sprintf("must exceed the current estimate of %.2f", item.EstimatedValue),
		}
	}

	patch := ItemPatch{
		WinningBidder:  &bidderName,
		FinalBidAmount: &bidAmount,
	}
	note := fmt.Sprintf("Winning bid: %.2f by %s", bidAmount, bidderName)
	return s.apply(ctx, item, StatusAssignedToRecycler, patch, marketplaceActor, note)
}

// ConfirmPickup closes the custody chain; the item is terminal afterwards.
func (s *service) ConfirmPickup(ctx context.Context, itemID, actorName string) (*Item, error) {
	if actorName == "" {
		return nil, &ValidationError{Field: "actor_name", Reason: "must not be empty"}
	}
	return s.transition(ctx, itemID, StatusHandedOver, ItemPatch{}, actorName, "Physical pickup confirmed")
}

func (s *service) Item(ctx context.Context, itemID string) (*Item, error) {
	return s.store.GetItem(ctx, itemID)
}

func (s *service) ItemsByOwner(ctx context.Context, ownerID string) ([]*Item, error) {
	return s.store.ListItemsByOwner(ctx, ownerID)
}

func (s *service) AllItems(ctx context.Context) ([]*Item, error) {
	return s.store.ListAllItems(ctx)
}

// transition reads the current state, validates reachability and applies
// the status change plus one ledger entry atomically.
func (s *service) transition(ctx context.Context, itemID string, to Status, patch ItemPatch, actor, note string) (*Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, s.wrapStoreErr("transition", err)
	}
	return s.apply(ctx, item, to, patch, actor, note)
}

func (s *service) apply(ctx context.Context, item *Item, to Status, patch ItemPatch, actor, note string) (*Item, error) {
	if err := ValidateTransition(item.Status, to); err != nil {
		return nil, err
	}

	patch.Status = &to
	event := HistoryEvent{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Timestamp: s.now(),
		Status:    to,
		Actor:     actor,
		Note:      note,
	}
	if err := s.store.UpdateItem(ctx, item.ID, item.Version, patch, event); err != nil {
		return nil, s.wrapStoreErr("transition", err)
	}
	return s.store.GetItem(ctx, item.ID)
}

// wrapStoreErr keeps NotFound intact and folds everything else, including
// version conflicts, into a PersistenceError the caller can retry on.
func (s *service) wrapStoreErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func validateSubmit(req SubmitRequest) error {
	if req.OwnerID == "" {
		return &ValidationError{Field: "owner_id", Reason: "must not be empty"}
	}
	if req.ActorName == "" {
		return &ValidationError{Field: "actor_name", Reason: "must not be empty"}
	}
	if req.Model == "" {
		return &ValidationError{Field: "model", Reason: "must not be empty"}
	}
	if !req.DeviceType.Valid() {
		return &ValidationError{Field: "device_type", Reason: fmt.Sprintf("unknown value %q", req.DeviceType)}
	}
	if !req.Condition.Valid() {
		return &ValidationError{Field: "condition", Reason: fmt.Sprintf("unknown value %q", req.Condition)}
	}
	if !req.BatteryStatus.Valid() {
		return &ValidationError{Field: "battery_status", Reason: fmt.Sprintf("unknown value %q", req.BatteryStatus)}
	}
	if req.AgeYears < 0 {
		return &ValidationError{Field: "age_years", Reason: "must not be negative"}
	}
	return nil
}

// generateResourceID produces a fresh RES-NNNN-XX identifier from a
// cryptographic random source.
func generateResourceID() (string, error) {
	digits, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return "", fmt.Errorf("generate resource id: %w", err)
	}
	letters := make([]byte, 2)
	for i := range letters {
		n, err := rand.Int(rand.Reader, big.NewInt(26))
		if err != nil {
			return "", fmt.Errorf("generate resource id: %w", err)
		}
		letters[i] = byte('A' + n.Int64())
	}
	return fmt.Sprintf("RES-%d-%c%c", 1000+digits.Int64(), letters[0], letters[1]), nil
}
