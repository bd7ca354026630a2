package models

import "time"

// ShopItem is bought with spendable XP. Purchases never touch the XP log.
type ShopItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	Emoji       string    `json:"emoji,omitempty"`
	Cost        int       `json:"cost"`
	IsOwned     bool      `json:"is_owned"`
	Refundable  bool      `json:"refundable"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type RedemptionKind string

const (
	RedemptionPurchase RedemptionKind = "PURCHASE"
	RedemptionRefund   RedemptionKind = "REFUND"
)

// RedemptionLog records a balance-only adjustment. Delta is -cost for a purchase, +cost for a refund.
type RedemptionLog struct {
	ID        string         `json:"id"`
	ItemID    string         `json:"item_id"`
	ItemName  string         `json:"item_name"`
	Kind      RedemptionKind `json:"kind"`
	Delta     int            `json:"delta"`
	CreatedAt time.Time      `json:"created_at"`
}
