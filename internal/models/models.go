package models

import (
	"strings"
	"time"

	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DateLayout is the calendar date format used by every date column.
const DateLayout = "2006-01-02"

type OrderStatus string

const (
	OrderActive    OrderStatus = "active"
	OrderPending   OrderStatus = "pending"
	OrderCompleted OrderStatus = "completed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderActive, OrderPending, OrderCompleted:
		return true
	}
	return false
}

// Prescription - right (OD) and left (OS) eye values as typed by the optician.
type Prescription struct {
	ODSph string `json:"od_sph"`
	ODCyl string `json:"od_cyl"`
	ODAx  string `json:"od_ax"`
	OSSph string `json:"os_sph"`
	OSCyl string `json:"os_cyl"`
	OSAx  string `json:"os_ax"`
	PD    string `json:"pd"`
	Add   string `json:"add"`
}

// Order - one customer order with its prescription and purchased items
type Order struct {
	ID            string                           `gorm:"primaryKey;size:32" json:"id"`
	OrderNumber   string                           `gorm:"size:32;index" json:"order_number"`
	CustomerName  string                           `gorm:"size:200" json:"customer_name"`
	CustomerPhone string                           `gorm:"size:50;index" json:"customer_phone"`
	OrderDate     string                           `gorm:"size:10;index" json:"order_date"`
	ReadyDate     string                           `gorm:"size:10" json:"ready_date"`
	Prescription  datatypes.JSONType[Prescription] `json:"prescription"`
	Items         []OrderItem                      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total         decimal.Decimal                  `gorm:"type:decimal(14,2)" json:"total"`
	Paid          decimal.Decimal                  `gorm:"type:decimal(14,2)" json:"paid"`
	Debt          decimal.Decimal                  `gorm:"type:decimal(14,2)" json:"debt"`
	Status        OrderStatus                      `gorm:"size:20;index" json:"status"`
	SearchKey     string                           `gorm:"size:300" json:"-"`
	Version       int                              `gorm:"not null;default:1" json:"version"`
	CreatedAt     time.Time                        `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                        `json:"updated_at"`
}

// OrderItem - a purchased line. Quantity and price keep the operator's raw input.
type OrderItem struct {
	ID        string  `gorm:"primaryKey;size:32" json:"id"`
	OrderID   string  `gorm:"size:32;index" json:"-"`
	Position  int     `json:"-"`
	ProductID *string `gorm:"size:32" json:"product_id,omitempty"` // optional catalog reference
	Name      string  `gorm:"size:200" json:"name"`
	Quantity  string  `gorm:"size:32" json:"quantity"`
	Price     string  `gorm:"size:32" json:"price"`
}

func (i OrderItem) Qty() decimal.Decimal       { return utils.ParseAmount(i.Quantity) }
func (i OrderItem) UnitPrice() decimal.Decimal { return utils.ParseAmount(i.Price) }

// Amount is quantity * unit price; unparsable input counts as zero.
func (i OrderItem) Amount() decimal.Decimal { return i.Qty().Mul(i.UnitPrice()) }

// ComputeTotals returns the order total and the outstanding debt for a set of lines.
// Debt goes negative when the customer overpaid.
func ComputeTotals(items []OrderItem, paid decimal.Decimal) (total, debt decimal.Decimal) {
	total = decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount())
	}
	return total, total.Sub(paid)
}

// Recalculate re-derives Total and Debt from the items and Paid.
func (o *Order) Recalculate() {
	o.Total, o.Debt = ComputeTotals(o.Items, o.Paid)
}

// Client - the customer registry. TotalOrders/TotalSpent are maintained by order saves.
type Client struct {
	ID               string          `gorm:"primaryKey;size:32" json:"id"`
	Name             string          `gorm:"size:200;index" json:"name"`
	Phone            string          `gorm:"size:50;index" json:"phone"`
	Email            string          `gorm:"size:200" json:"email"`
	Address          string          `gorm:"size:300" json:"address"`
	BirthDate        string          `gorm:"size:10" json:"birth_date"`
	RegistrationDate string          `gorm:"size:10" json:"registration_date"`
	TotalOrders      int             `json:"total_orders"`
	TotalSpent       decimal.Decimal `gorm:"type:decimal(14,2)" json:"total_spent"`
	LastVisit        string          `gorm:"size:10" json:"last_visit"`
	Notes            string          `gorm:"type:text" json:"notes"`
	NameKey          string          `gorm:"size:200;index" json:"-"`
	SearchKey        string          `gorm:"size:500" json:"-"`
	Version          int             `gorm:"not null;default:1" json:"version"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SameIdentity reports whether the client already carries exactly this name/phone pair.
func (c Client) SameIdentity(name, phone string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) &&
		strings.TrimSpace(c.Phone) == strings.TrimSpace(phone)
}
