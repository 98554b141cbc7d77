package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-optics-pos/internal/events"
	"go-optics-pos/internal/models"
	"go-optics-pos/internal/utils"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ItemInput is one line of the order form. ID is only meaningful on edit.
type ItemInput struct {
	ID        string  `json:"id"`
	ProductID *string `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  string  `json:"quantity"`
	Price     string  `json:"price"`
}

// OrderInput is what the order form submits.
type OrderInput struct {
	OrderNumber   string              `json:"order_number" binding:"max=32"`
	CustomerName  string              `json:"customer_name" binding:"max=200"`
	CustomerPhone string              `json:"customer_phone" binding:"max=50"`
	OrderDate     string              `json:"order_date" binding:"omitempty,datetime=2006-01-02"`
	ReadyDate     string              `json:"ready_date" binding:"omitempty,datetime=2006-01-02"`
	Prescription  models.Prescription `json:"prescription"`
	Items         []ItemInput         `json:"items" binding:"dive"`
	Paid          decimal.Decimal     `json:"paid"`
	Status        models.OrderStatus  `json:"status"`
}

// OrderUpdate is an order history save. Reconcile answers the client dialog:
// "" (not asked yet), "yes" or "no".
type OrderUpdate struct {
	OrderInput
	Version   int    `json:"version" binding:"required,min=1"`
	Reconcile string `json:"reconcile" binding:"omitempty,oneof=yes no"`
}

// OrderResult is a saved order plus the client record the save touched, if any.
type OrderResult struct {
	Order         models.Order   `json:"order"`
	Client        *models.Client `json:"client,omitempty"`
	ClientCreated bool           `json:"client_created"`
}

// Preview is the live total/debt shown while an order is being edited.
type Preview struct {
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
	Debt  decimal.Decimal `json:"debt"`
}

type OrderService struct {
	db  *gorm.DB
	bus *events.Bus
	now func() time.Time
}

func NewOrderService(db *gorm.DB, bus *events.Bus) *OrderService {
	return &OrderService{db: db, bus: bus, now: time.Now}
}

func (s *OrderService) today() string { return s.now().Format(models.DateLayout) }

// Create is the order entry save: the order is stored and the matching client is
// created or has its counters bumped, in one transaction.
func (s *OrderService) Create(ctx context.Context, in OrderInput) (*OrderResult, error) {
	if err := checkIdentity(in.CustomerName, in.CustomerPhone); err != nil {
		return nil, err
	}
	if err := checkAmount("paid", in.Paid); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	if in.Status == "" {
		in.Status = models.OrderActive
	}
	if !in.Status.Valid() {
		return nil, validationf("unknown status %q", in.Status)
	}

	db := s.db.WithContext(ctx)
	items, err := buildItems(db, in.Items, nil)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		ID:            utils.NewID(),
		OrderNumber:   strings.TrimSpace(in.OrderNumber),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		OrderDate:     in.OrderDate,
		ReadyDate:     in.ReadyDate,
		Prescription:  datatypes.NewJSONType(in.Prescription),
		Items:         items,
		Paid:          in.Paid,
		Status:        in.Status,
		Version:       1,
	}
	if order.OrderDate == "" {
		order.OrderDate = s.today()
	}
	order.Recalculate()

	result := &OrderResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		if order.OrderNumber == "" {
			num, err := nextOrderNumber(tx, s.now())
			if err != nil {
				return err
			}
			order.OrderNumber = num
		}
		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		client, err := matchClient(tx, order.CustomerName, order.CustomerPhone)
		if err != nil {
			return err
		}
		if client == nil {
			client = &models.Client{
				ID:               utils.NewID(),
				Name:             order.CustomerName,
				Phone:            order.CustomerPhone,
				RegistrationDate: s.today(),
				TotalOrders:      1,
				TotalSpent:       order.Total,
				LastVisit:        order.OrderDate,
				Version:          1,
			}
			if err := tx.Create(client).Error; err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			result.ClientCreated = true
		} else {
			// Counters are added up in Go so money stays exact on SQLite's REAL columns.
			err := casUpdate(tx, &models.Client{}, client.ID, client.Version, map[string]any{
				"total_orders": client.TotalOrders + 1,
				"total_spent":  client.TotalSpent.Add(order.Total),
				"last_visit":   order.OrderDate,
			})
			if err != nil {
				return fmt.Errorf("update client counters: %w", err)
			}
			if err := tx.First(client, "id = ?", client.ID).Error; err != nil {
				return err
			}
		}
		result.Client = client
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Order = order
	s.publish(order.ID)
	return result, nil
}

// Preview recomputes total and debt for an unsaved form.
func (s *OrderService) Preview(ctx context.Context, in OrderInput) (*Preview, error) {
	if err := checkAmount("paid", in.Paid); err != nil {
		return nil, err
	}
	items, err := buildItems(s.db.WithContext(ctx), in.Items, nil)
	if err != nil {
		return nil, err
	}
	total, debt := models.ComputeTotals(items, in.Paid)
	return &Preview{Total: total, Paid: in.Paid, Debt: debt}, nil
}

// List returns orders newest first. q matches order number, customer name or phone.
func (s *OrderService) List(ctx context.Context, q string) ([]models.Order, error) {
	query := s.db.WithContext(ctx).Preload("Items", orderedItems)
	if q = models.FoldKey(q); q != "" {
		query = query.Where("search_key LIKE ?", "%"+q+"%")
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	return loadOrder(s.db.WithContext(ctx), id)
}

// NextOrderNumber is the default order number for a new form, e.g. "2025-007".
func (s *OrderService) NextOrderNumber(ctx context.Context) (string, error) {
	return nextOrderNumber(s.db.WithContext(ctx), s.now())
}

// Update is the order history save. When the edited customer is unknown to the
// registry, or a client matches with different name/phone, the save stops with
// *ReconciliationRequired until the caller answers yes or no.
func (s *OrderService) Update(ctx context.Context, id string, in OrderUpdate) (*OrderResult, error) {
	if err := checkIdentity(in.CustomerName, in.CustomerPhone); err != nil {
		return nil, err
	}
	if err := checkAmount("paid", in.Paid); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, validationf("at least one item is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return nil, validationf("unknown status %q", in.Status)
	}

	db := s.db.WithContext(ctx)
	current, err := loadOrder(db, id)
	if err != nil {
		return nil, err
	}
	if current.Version != in.Version {
		return nil, ErrStaleVersion
	}

	items, err := buildItems(db, in.Items, current.Items)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.CustomerName = strings.TrimSpace(in.CustomerName)
	updated.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	if n := strings.TrimSpace(in.OrderNumber); n != "" {
		updated.OrderNumber = n
	}
	if in.OrderDate != "" {
		updated.OrderDate = in.OrderDate
	}
	updated.ReadyDate = in.ReadyDate
	updated.Prescription = datatypes.NewJSONType(in.Prescription)
	if in.Status != "" {
		updated.Status = in.Status
	}
	updated.Items = items
	updated.Paid = in.Paid
	updated.Recalculate()

	client, err := matchClient(db, updated.CustomerName, updated.CustomerPhone)
	if err != nil {
		return nil, err
	}
	var flagged ReconcileCase
	switch {
	case client == nil:
		flagged = CaseNewClient
	case !client.SameIdentity(updated.CustomerName, updated.CustomerPhone):
		flagged = CaseMismatch
	}
	if flagged != "" && in.Reconcile == "" {
		return nil, &ReconciliationRequired{Case: flagged, Order: updated, ExistingClient: client}
	}

	result := &OrderResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", id, in.Version).
			Updates(map[string]any{
				"order_number":   updated.OrderNumber,
				"customer_name":  updated.CustomerName,
				"customer_phone": updated.CustomerPhone,
				"order_date":     updated.OrderDate,
				"ready_date":     updated.ReadyDate,
				"prescription":   updated.Prescription,
				"total":          updated.Total,
				"paid":           updated.Paid,
				"debt":           updated.Debt,
				"status":         updated.Status,
				"search_key":     models.OrderSearchKey(updated.OrderNumber, updated.CustomerName, updated.CustomerPhone),
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("replace items: %w", err)
		}
		for i := range items {
			items[i].OrderID = id
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("replace items: %w", err)
		}

		if flagged == "" || in.Reconcile != "yes" {
			return nil
		}
		if client == nil {
			client = &models.Client{
				ID:               utils.NewID(),
				Name:             updated.CustomerName,
				Phone:            updated.CustomerPhone,
				RegistrationDate: s.today(),
				TotalOrders:      1,
				TotalSpent:       updated.Total,
				LastVisit:        updated.OrderDate,
				Version:          1,
			}
			if err := tx.Create(client).Error; err != nil {
				return fmt.Errorf("create client: %w", err)
			}
			result.ClientCreated = true
		} else {
			fields := models.ClientKeys(updated.CustomerName, updated.CustomerPhone, client.Email)
			fields["name"] = updated.CustomerName
			fields["phone"] = updated.CustomerPhone
			fields["last_visit"] = updated.OrderDate
			fields["version"] = gorm.Expr("version + 1")
			err := tx.Model(&models.Client{}).Where("id = ?", client.ID).Updates(fields).Error
			if err != nil {
				return fmt.Errorf("update client: %w", err)
			}
			if err := tx.First(client, "id = ?", client.ID).Error; err != nil {
				return err
			}
		}
		result.Client = client
		return nil
	})
	if err != nil {
		return nil, err
	}

	saved, err := loadOrder(db, id)
	if err != nil {
		return nil, err
	}
	result.Order = *saved
	s.publish(id)
	return result, nil
}

func (s *OrderService) publish(ids ...string) {
	if s.bus != nil {
		s.bus.OrdersUpdated(ids...)
	}
}

func checkIdentity(name, phone string) error {
	if strings.TrimSpace(name) == "" {
		return validationf("customer name is required")
	}
	if strings.TrimSpace(phone) == "" {
		return validationf("customer phone is required")
	}
	return nil
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position") }

func loadOrder(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items", orderedItems).First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &order, nil
}

// buildItems turns form lines into order items. Ids of lines that already belong
// to the order are kept so their ledger rows keep the operator's cost; anything
// else gets a fresh id. Linked products fill in a blank name or price.
func buildItems(db *gorm.DB, lines []ItemInput, existing []models.OrderItem) ([]models.OrderItem, error) {
	known := make(map[string]bool, len(existing))
	for _, it := range existing {
		known[it.ID] = true
	}

	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		item := models.OrderItem{
			ID:       line.ID,
			Position: i,
			Name:     strings.TrimSpace(line.Name),
			Quantity: strings.TrimSpace(line.Quantity),
			Price:    strings.TrimSpace(line.Price),
		}
		if item.ID == "" || !known[item.ID] {
			item.ID = utils.NewID()
		}
		known[item.ID] = false

		if line.ProductID != nil && *line.ProductID != "" {
			var product models.Product
			err := db.First(&product, "id = ?", *line.ProductID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, validationf("item %d: unknown product %s", i+1, *line.ProductID)
			}
			if err != nil {
				return nil, err
			}
			pid := product.ID
			item.ProductID = &pid
			if item.Name == "" {
				item.Name = product.Name
			}
			if item.Price == "" {
				item.Price = product.Price.String()
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func nextOrderNumber(db *gorm.DB, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%d-", now.Year())
	var count int64
	if err := db.Model(&models.Order{}).Where("order_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", fmt.Errorf("count orders: %w", err)
	}
	return fmt.Sprintf("%s%03d", prefix, count+1), nil
}

// matchClient finds the registry entry for a customer: exact phone first, then a
// case-insensitive name. When the two point at different clients the phone wins
// and the conflict is logged.
func matchClient(db *gorm.DB, name, phone string) (*models.Client, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)

	var byPhone, byName []models.Client
	if phone != "" {
		if err := db.Where("phone = ?", phone).Order("created_at").Limit(1).Find(&byPhone).Error; err != nil {
			return nil, fmt.Errorf("match client: %w", err)
		}
	}
	if name != "" {
		if err := db.Where("name_key = ?", models.FoldKey(name)).Order("created_at").Limit(1).Find(&byName).Error; err != nil {
			return nil, fmt.Errorf("match client: %w", err)
		}
	}

	switch {
	case len(byPhone) > 0:
		if len(byName) > 0 && byName[0].ID != byPhone[0].ID {
			log.Printf("client match ambiguous: phone %q -> %s, name %q -> %s; using phone match",
				phone, byPhone[0].ID, name, byName[0].ID)
		}
		return &byPhone[0], nil
	case len(byName) > 0:
		return &byName[0], nil
	}
	return nil, nil
}
