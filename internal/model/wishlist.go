package model

import "time"

// WishlistItem is something a user wants to buy. Zero prices mean "no limit";
// a zero TargetPrice disables price alerts.
type WishlistItem struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	UserEmail        string    `json:"user_email"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	MinPrice         float64   `json:"min_price"`
	MaxPrice         float64   `json:"max_price"`
	TargetPrice      float64   `json:"target_price"`
	ItemID           string    `json:"item_id"`
	EnablePriceAlert bool      `json:"enable_price_alert"`
	Description      string    `json:"description"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type WishlistPatch struct {
	Title            *string  `json:"title,omitempty"`
	Category         *string  `json:"category,omitempty"`
	MinPrice         *float64 `json:"min_price,omitempty"`
	MaxPrice         *float64 `json:"max_price,omitempty"`
	TargetPrice      *float64 `json:"target_price,omitempty"`
	ItemID           *string  `json:"item_id,omitempty"`
	EnablePriceAlert *bool    `json:"enable_price_alert,omitempty"`
	Description      *string  `json:"description,omitempty"`
}

func (p WishlistPatch) Apply(w *WishlistItem) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Category != nil {
		w.Category = *p.Category
	}
	if p.MinPrice != nil {
		w.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		w.MaxPrice = *p.MaxPrice
	}
	if p.TargetPrice != nil {
		w.TargetPrice = *p.TargetPrice
	}
	if p.ItemID != nil {
		w.ItemID = *p.ItemID
	}
	if p.EnablePriceAlert != nil {
		w.EnablePriceAlert = *p.EnablePriceAlert
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
}

// PriceAlert is raised when an item satisfies a wishlist entry's target price.
type PriceAlert struct {
	Wish WishlistItem `json:"wish"`
	Item Item         `json:"item"`
}
