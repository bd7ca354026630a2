package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"xp-ledger/models"
)

type ShopItemInput struct {
	Name        string
	Description string
	Emoji       string
	Cost        int
	Refundable  bool
}

// Redemption is the result of a purchase or refund.
type Redemption struct {
	Item    models.ShopItem      `json:"item"`
	Log     models.RedemptionLog `json:"log"`
	TotalXP int                  `json:"total_xp"`
}

func (s *ProgressionService) CreateShopItem(ctx context.Context, userID string, in ShopItemInput) (*models.ShopItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidInput.withf("item name is required")
	}
	if err := checkReward("cost", in.Cost); err != nil {
		return nil, err
	}
	var out models.ShopItem
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		sl := slug.Make(name)
		for _, it := range snap.ShopItems {
			if it.Slug == sl {
				return ErrDuplicateName.withf("shop item %q already exists", name)
			}
		}
		now := s.now().UTC()
		out = models.ShopItem{
			ID:          uuid.NewString(),
			Name:        name,
			Slug:        sl,
			Description: strings.TrimSpace(in.Description),
			Emoji:       strings.TrimSpace(in.Emoji),
			Cost:        in.Cost,
			Refundable:  in.Refundable,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		snap.ShopItems = append(snap.ShopItems, out)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ProgressionService) ListShopItems(ctx context.Context, userID string) ([]models.ShopItem, error) {
	out := []models.ShopItem{}
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		out = append(out, snap.ShopItems...)
		return nil
	})
	return out, err
}

// DeleteShopItem removes an item. Its redemption history stays.
func (s *ProgressionService) DeleteShopItem(ctx context.Context, userID, itemID string) error {
	return s.update(ctx, userID, func(snap *models.Snapshot) error {
		for i, it := range snap.ShopItems {
			if it.ID == itemID {
				snap.ShopItems = append(snap.ShopItems[:i], snap.ShopItems[i+1:]...)
				return nil
			}
		}
		return ErrItemNotFound
	})
}

func (s *ProgressionService) redeem(snap *models.Snapshot, item *models.ShopItem, kind models.RedemptionKind, delta int) (Redemption, error) {
	if err := s.adjustBalance(snap, delta); err != nil {
		return Redemption{}, err
	}
	now := s.now().UTC()
	item.IsOwned = kind == models.RedemptionPurchase
	item.UpdatedAt = now

	entry := models.RedemptionLog{
		ID:        uuid.NewString(),
		ItemID:    item.ID,
		ItemName:  item.Name,
		Kind:      kind,
		Delta:     delta,
		CreatedAt: now,
	}
	snap.Redemptions = append(snap.Redemptions, entry)
	return Redemption{Item: *item, Log: entry, TotalXP: snap.Profile.TotalXP}, nil
}

// PurchaseItem debits the item's cost from the balance. No XP log is written.
func (s *ProgressionService) PurchaseItem(ctx context.Context, userID, itemID string) (*Redemption, error) {
	var out Redemption
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		item := snap.FindShopItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}
		if item.IsOwned {
			return ErrAlreadyOwned
		}
		if snap.Profile.TotalXP < item.Cost {
			return ErrInsufficientXP.withf("item costs %d XP, balance is %d", item.Cost, snap.Profile.TotalXP)
		}
		var err error
		out, err = s.redeem(snap, item, models.RedemptionPurchase, -item.Cost)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item purchased", "user_id", userID, "item_id", itemID, "cost", out.Item.Cost, "total_xp", out.TotalXP)
	return &out, nil
}

// RefundItem credits the cost back for an owned, refundable item.
func (s *ProgressionService) RefundItem(ctx context.Context, userID, itemID string) (*Redemption, error) {
	var out Redemption
	err := s.update(ctx, userID, func(snap *models.Snapshot) error {
		item := snap.FindShopItem(itemID)
		if item == nil {
			return ErrItemNotFound
		}
		if !item.IsOwned {
			return ErrNotOwned
		}
		if !item.Refundable {
			return ErrNotRefundable
		}
		var err error
		out, err = s.redeem(snap, item, models.RedemptionRefund, item.Cost)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("item refunded", "user_id", userID, "item_id", itemID, "cost", out.Item.Cost, "total_xp", out.TotalXP)
	return &out, nil
}

// ListRedemptions returns purchase and refund history, newest first.
func (s *ProgressionService) ListRedemptions(ctx context.Context, userID string, limit, offset int) (*Page[models.RedemptionLog], error) {
	var page Page[models.RedemptionLog]
	err := s.view(ctx, userID, func(snap *models.Snapshot) error {
		logs := make([]models.RedemptionLog, 0, len(snap.Redemptions))
		for i := len(snap.Redemptions) - 1; i >= 0; i-- {
			logs = append(logs, snap.Redemptions[i])
		}
		page = paginate(logs, limit, offset)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
