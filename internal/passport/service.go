// internal/passport/service.go
package passport

import "context"

// SubmitRequest carries the citizen-supplied device attributes. Everything
// here is immutable once the item exists; there is no edit operation.
type SubmitRequest struct {
	OwnerID       string        `json:"owner_id"`
	DeviceType    DeviceType    `json:"device_type"`
	Model         string        `json:"model"`
	AgeYears      int           `json:"age_years"`
	Condition     Condition     `json:"condition"`
	PowerStatus   bool          `json:"power_status"`
	BatteryStatus BatteryStatus `json:"battery_status"`
	ImageRef      string        `json:"image_ref"`
	ActorName     string        `json:"actor_name"`
}

// Service defines the interface for the item lifecycle engine. Role checks
// are the caller's concern; every operation here trusts the supplied actor.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*Item, error)
	MarkGivenByCitizen(ctx context.Context, itemID, actorName string) (*Item, error)
	ExpediteCollection(ctx context.Context, itemID, actorName string) (*Item, error)
	VerifyCollection(ctx context.Context, itemID, actorName string, override *Classification) (*Item, error)
	PlaceBindingBid(ctx context.Context, itemID, bidderName string, bidAmount float64) (*Item, error)
	ConfirmPickup(ctx context.Context, itemID, actorName string) (*Item, error)
	Item(ctx context.Context, itemID string) (*Item, error)
	ItemsByOwner(ctx context.Context, ownerID string) ([]*Item, error)
	AllItems(ctx context.Context) ([]*Item, error)
}
