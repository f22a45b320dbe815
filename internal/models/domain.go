package models

import (
	"fmt"
	"strings"
)

// Collection names one document collection in the key-value store.
type Collection string

const (
	CollectionImages  Collection = "images"
	CollectionItems   Collection = "items"
	CollectionBrands  Collection = "brands"
	CollectionArtists Collection = "artists"
)

// ItemCategory classifies a purchasable item.
type ItemCategory string

const (
	CategoryClothing  ItemCategory = "clothing"
	CategoryPaint     ItemCategory = "paint"
	CategoryFurniture ItemCategory = "furniture"
	CategoryAccessory ItemCategory = "accessory"
	CategoryShoes     ItemCategory = "shoes"
	CategoryBag       ItemCategory = "bag"
)

// Currency is an ISO 4217 code accepted for item prices.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyKRW Currency = "KRW"
	CurrencyEUR Currency = "EUR"
	CurrencyJPY Currency = "JPY"
	CurrencyGBP Currency = "GBP"
)

const (
	PositionMin = 0
	PositionMax = 100

	DefaultDescriptionMaxBytes = 500
)

var validCollections = map[Collection]struct{}{
	CollectionImages:  {},
	CollectionItems:   {},
	CollectionBrands:  {},
	CollectionArtists: {},
}

var validItemCategories = map[ItemCategory]struct{}{
	CategoryClothing:  {},
	CategoryPaint:     {},
	CategoryFurniture: {},
	CategoryAccessory: {},
	CategoryShoes:     {},
	CategoryBag:       {},
}

var validCurrencies = map[Currency]struct{}{
	CurrencyUSD: {},
	CurrencyKRW: {},
	CurrencyEUR: {},
	CurrencyJPY: {},
	CurrencyGBP: {},
}

func IsValidCollection(c Collection) bool {
	_, ok := validCollections[c]
	return ok
}

func ParseItemCategory(raw string) (ItemCategory, error) {
	value := ItemCategory(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("category is required")
	}
	if _, ok := validItemCategories[value]; !ok {
		return "", fmt.Errorf("invalid category: %s", value)
	}
	return value, nil
}

func ParseCurrency(raw string) (Currency, error) {
	value := Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("currency is required")
	}
	if _, ok := validCurrencies[value]; !ok {
		return "", fmt.Errorf("invalid currency: %s", value)
	}
	return value, nil
}

// ValidPosition reports whether p lies inside the image.
func ValidPosition(p Position) bool {
	return p.Top >= PositionMin && p.Top <= PositionMax &&
		p.Left >= PositionMin && p.Left <= PositionMax
}
