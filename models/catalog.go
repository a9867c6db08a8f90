package models

import (
	"sort"
	"strings"
	"time"
)

// Variant is a single purchasable variation of a product (color, size).
// Variant IDs are unique within their parent product.
type Variant struct {
	ID        string `json:"id" bson:"id"`
	Title     string `json:"title" bson:"title"`
	Color     string `json:"color" bson:"color"`
	Size      string `json:"size,omitempty" bson:"size,omitempty"`
	Price     int    `json:"price,omitempty" bson:"price,omitempty"`
	Available bool   `json:"available" bson:"available"`
}

// Product is a normalized catalog entry. Instances are immutable once
// fetched; a cache refresh replaces the whole snapshot instead of mutating
// products in place.
type Product struct {
	ID          string           `json:"id" bson:"id"`
	Title       string           `json:"title" bson:"title"`
	Description string           `json:"description" bson:"description"`
	Category    string           `json:"category" bson:"category"`
	Tags        []string         `json:"tags" bson:"tags"`
	Variants    []Variant        `json:"variants" bson:"variants"`
	Providers   []map[string]any `json:"providers,omitempty" bson:"providers,omitempty"`
	Available   bool             `json:"available" bson:"available"`
	Embedding   []float64        `json:"embedding,omitempty" bson:"-"`
}

// Colors returns the distinct, cleaned variant color names in sorted order.
func (p Product) Colors() []string {
	seen := make(map[string]struct{}, len(p.Variants))
	var colors []string
	for _, v := range p.Variants {
		if v.Color == "" {
			continue
		}
		if _, ok := seen[v.Color]; ok {
			continue
		}
		seen[v.Color] = struct{}{}
		colors = append(colors, v.Color)
	}
	sort.Strings(colors)
	return colors
}

// VariantsByColor returns the variants whose color matches target,
// exact matches first.
func (p Product) VariantsByColor(target string) []Variant {
	var exact, partial []Variant
	lower := strings.ToLower(target)
	for _, v := range p.Variants {
		switch {
		case strings.ToLower(v.Color) == lower:
			exact = append(exact, v)
		case strings.Contains(strings.ToLower(v.Color), lower):
			partial = append(partial, v)
		}
	}
	return append(exact, partial...)
}

// Snapshot is an internally consistent, point-in-time copy of the catalog.
// It is built whole and swapped atomically; readers never observe a
// half-refreshed catalog.
type Snapshot struct {
	Products  map[string]Product `json:"products"`
	FetchedAt time.Time          `json:"fetched_at"`
	Signature int                `json:"signature"`
}

// Categories groups the snapshot's products by category.
func (s *Snapshot) Categories() map[string][]Product {
	out := make(map[string][]Product)
	for _, p := range s.Products {
		out[p.Category] = append(out[p.Category], p)
	}
	return out
}
