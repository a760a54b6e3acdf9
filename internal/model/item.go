package model

import "time"

// Categories is the fixed category list offered to sellers.
var Categories = []string{
	"电子产品",
	"服装配饰",
	"图书文具",
	"家具家电",
	"运动健身",
	"美妆护肤",
	"食品饮料",
	"玩具模型",
	"汽车用品",
	"其他",
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Story       string    `json:"story"`
	ImageURL    string    `json:"image_url"`
	PhoneNumber string    `json:"phone_number"`
	OwnerUID    string    `json:"owner_uid"`
	OwnerEmail  string    `json:"owner_email"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ItemPatch carries the mutable item fields; nil means unchanged.
type ItemPatch struct {
	Title       *string  `json:"title,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Story       *string  `json:"story,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	PhoneNumber *string  `json:"phone_number,omitempty"`
}

// Apply copies the set fields of p onto item.
func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Story != nil {
		item.Story = *p.Story
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.PhoneNumber != nil {
		item.PhoneNumber = *p.PhoneNumber
	}
}
