package catalog

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Canonical category labels.
const (
	CategoryQuesos      = "quesos"
	CategoryFrutosSecos = "frutos_secos"
	CategoryHuevosCampo = "huevos_campo"
	CategoryOtros       = "otros"
)

// Categories lists the canonical labels in display order.
var Categories = []string{CategoryQuesos, CategoryFrutosSecos, CategoryHuevosCampo, CategoryOtros}

var categorySynonyms = map[string]string{
	"quesos":          CategoryQuesos,
	"queso":           CategoryQuesos,
	"frutos_secos":    CategoryFrutosSecos,
	"fruto_seco":      CategoryFrutosSecos,
	"huevos_campo":    CategoryHuevosCampo,
	"huevos_de_campo": CategoryHuevosCampo,
	"huevos":          CategoryHuevosCampo,
	"huevo":           CategoryHuevosCampo,
	"otros":           CategoryOtros,
	"otro":            CategoryOtros,
}

// Product is a catalog entry as served to clients and persisted by every
// storage backend.
type Product struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Unit        string    `json:"unit"`
	ImageURL    string    `json:"imageUrl"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NormalizeCategory folds free-text and legacy spellings onto a canonical
// label. Case, surrounding space and space/dash/underscore separators are
// ignored; unknown labels fold to "otros". It is idempotent.
func NormalizeCategory(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(s)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	})
	if c, ok := categorySynonyms[strings.Join(fields, "_")]; ok {
		return c
	}
	return CategoryOtros
}

// Normalize turns a decoded record of any historical shape into a Product.
// Missing or mistyped fields take their defaults and "name" stands in for
// a missing "title".
func Normalize(raw map[string]any) Product {
	title, ok := raw["title"].(string)
	if !ok {
		title, _ = raw["name"].(string)
	}
	return Product{
		ID:          idString(raw["id"]),
		Category:    NormalizeCategory(asString(raw["category"])),
		Title:       title,
		Description: asString(raw["description"]),
		Price:       storedPrice(raw["price"]),
		Unit:        asString(raw["unit"]),
		ImageURL:    asString(raw["imageUrl"]),
		IsFeatured:  raw["isFeatured"] == true,
		CreatedAt:   asTime(raw["createdAt"]),
	}
}

// DecodeProducts parses a stored JSON array and normalizes every record.
// A JSON null decodes to an empty catalog.
func DecodeProducts(data []byte) ([]Product, error) {
	var raws []map[string]any
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(raws))
	for _, raw := range raws {
		products = append(products, Normalize(raw))
	}
	return products, nil
}

// Featured returns the products flagged for the "novedades" section, in
// catalog order. The result is never nil.
func Featured(products []Product) []Product {
	featured := make([]Product, 0)
	for _, p := range products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
	}
	return featured
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

func storedPrice(v any) float64 {
	var price float64
	switch p := v.(type) {
	case float64:
		price = p
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0
		}
		price = f
	default:
		return 0
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0
	}
	return price
}

func asTime(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
