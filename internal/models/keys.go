package models

import (
	"strings"

	"gorm.io/gorm"
)

// FoldKey lowercases and joins text for the *_key lookup columns. SQL LOWER()
// only folds ASCII on SQLite, so Cyrillic names are folded here instead.
func FoldKey(parts ...string) string {
	folded := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			folded = append(folded, strings.ToLower(p))
		}
	}
	return strings.Join(folded, "\n")
}

// ClientKeys returns the name_key and search_key values for a client.
func ClientKeys(name, phone, email string) map[string]any {
	return map[string]any{"name_key": FoldKey(name), "search_key": FoldKey(name, phone, email)}
}

func OrderSearchKey(number, name, phone string) string { return FoldKey(number, name, phone) }

func ProductSearchKey(name, brand, model, sku string) string {
	return FoldKey(name, brand, model, sku)
}

func CostSearchKey(name, description, supplier string) string {
	return FoldKey(name, description, supplier)
}

// The hooks cover struct creates and saves. Map updates set the key columns themselves.

func (o *Order) BeforeSave(tx *gorm.DB) error {
	o.SearchKey = OrderSearchKey(o.OrderNumber, o.CustomerName, o.CustomerPhone)
	return nil
}

func (c *Client) BeforeSave(tx *gorm.DB) error {
	c.NameKey = FoldKey(c.Name)
	c.SearchKey = FoldKey(c.Name, c.Phone, c.Email)
	return nil
}

func (p *Product) BeforeSave(tx *gorm.DB) error {
	p.SearchKey = ProductSearchKey(p.Name, p.Brand, p.Model, p.SKU)
	return nil
}

func (c *CostItem) BeforeSave(tx *gorm.DB) error {
	c.SearchKey = CostSearchKey(c.Name, c.Description, c.Supplier)
	return nil
}

func (e *ExpenseItem) BeforeSave(tx *gorm.DB) error {
	e.NameKey = FoldKey(e.Name)
	return nil
}
