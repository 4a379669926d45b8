// internal/passport/domain.go
package passport

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an e-waste item. Transitions only ever
// move forward along the custody chain; HANDED_OVER is terminal.
type Status string

const (
	StatusSubmitted          Status = "SUBMITTED"
	StatusScheduled          Status = "SCHEDULED"
	StatusPriorityCollection Status = "PRIORITY_COLLECTION"
	StatusCollectedByCitizen Status = "COLLECTED_BY_CITIZEN"
	StatusCollectedPending   Status = "COLLECTED_PENDING"
	StatusVerified           Status = "VERIFIED"
	StatusBiddingOpen        Status = "BIDDING_OPEN"
	StatusAssignedToRecycler Status = "ASSIGNED_TO_RECYCLER"
	StatusHandedOver         Status = "HANDED_OVER"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusHandedOver
}

// Classification is the recycle-vs-refurbish determination driving valuation.
type Classification string

const (
	ClassificationRecycle   Classification = "RECYCLE"
	ClassificationRefurbish Classification = "REFURBISH"
	ClassificationPending   Classification = "PENDING"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationRecycle, ClassificationRefurbish, ClassificationPending:
		return true
	}
	return false
}

// DeviceType is the closed set of device categories accepted at submission.
type DeviceType string

const (
	DeviceSmartphone DeviceType = "Smartphone"
	DeviceLaptop     DeviceType = "Laptop"
	DeviceTablet     DeviceType = "Tablet"
	DeviceAppliance  DeviceType = "Appliance"
	DeviceAccessory  DeviceType = "Accessory"
)

func (d DeviceType) Valid() bool {
	switch d {
	case DeviceSmartphone, DeviceLaptop, DeviceTablet, DeviceAppliance, DeviceAccessory:
		return true
	}
	return false
}

// Condition is the citizen-reported physical condition.
type Condition string

const (
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
	ConditionPoor    Condition = "Poor"
	ConditionBroken  Condition = "Broken"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionLikeNew, ConditionGood, ConditionFair, ConditionPoor, ConditionBroken:
		return true
	}
	return false
}

// BatteryStatus is the citizen-reported battery state.
type BatteryStatus string

const (
	BatteryNormal  BatteryStatus = "Normal"
	BatterySwollen BatteryStatus = "Swollen"
	BatteryMissing BatteryStatus = "Missing"
	BatteryUnknown BatteryStatus = "Unknown"
)

func (b BatteryStatus) Valid() bool {
	switch b {
	case BatteryNormal, BatterySwollen, BatteryMissing, BatteryUnknown:
		return true
	}
	return false
}

// Item is one physical device in the custody chain. The item together with
// its ordered History forms the Digital Product Passport.
type Item struct {
	ID             string         `json:"id"`
	OwnerID        string         `json:"owner_id"`
	DeviceType     DeviceType     `json:"device_type"`
	Model          string         `json:"model"`
	AgeYears       int            `json:"age_years"`
	Condition      Condition      `json:"condition"`
	PowerStatus    bool           `json:"power_status"`
	BatteryStatus  BatteryStatus  `json:"battery_status"`
	ImageRef       string         `json:"image_ref,omitempty"`
	Status         Status         `json:"status"`
	Classification Classification `json:"classification"`
	EstimatedValue float64        `json:"estimated_value"`
	CollectionDate time.Time      `json:"collection_date"`
	WinningBidder  string         `json:"winning_bidder,omitempty"`
	FinalBidAmount float64        `json:"final_bid_amount,omitempty"`
	Version        int            `json:"version"`
	History        []HistoryEvent `json:"history"`
}

// HistoryEvent is one append-only ledger entry. Seq is assigned by the store
// and breaks ties between entries recorded in the same instant.
type HistoryEvent struct {
	ID        uuid.UUID `json:"id"`
	ItemID    string    `json:"item_id"`
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Status    Status    `json:"status"`
	Actor     string    `json:"actor"`
	Note      string    `json:"note,omitempty"`
}
