package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go-optics-pos/internal/models"
)

func frameOrder(name, phone string) OrderInput {
	return OrderInput{
		CustomerName:  name,
		CustomerPhone: phone,
		OrderDate:     "2025-03-10",
		Prescription:  models.Prescription{ODSph: "-1.25", OSSph: "-1.00", PD: "62"},
		Items:         []ItemInput{{Name: "Frame X", Quantity: "1", Price: "25000"}},
		Paid:          dec("20000"),
	}
}

func TestCreateOrderScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.orders.Create(ctx, frameOrder("J. Doe", "+7 700 111 2233"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertDec(t, "total", res.Order.Total, "25000")
	assertDec(t, "debt", res.Order.Debt, "5000")
	if res.Order.Status != models.OrderActive {
		t.Fatalf("status = %s, want active", res.Order.Status)
	}
	if res.Order.OrderNumber != "2025-001" {
		t.Fatalf("order number = %s, want 2025-001", res.Order.OrderNumber)
	}

	if !res.ClientCreated || res.Client == nil {
		t.Fatal("expected a new client")
	}
	if res.Client.Name != "J. Doe" || res.Client.TotalOrders != 1 {
		t.Fatalf("client = %+v", res.Client)
	}
	assertDec(t, "client total spent", res.Client.TotalSpent, "25000")

	// the ledger follows the order through the change notification
	view, err := env.ledger.List(ctx, DateRange{})
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("ledger rows = %d, want 1", len(view.Items))
	}
	row := view.Items[0]
	if row.ID != models.DerivedSalesID(res.Order.ID, res.Order.Items[0].ID) {
		t.Fatalf("row id = %s", row.ID)
	}
	assertDec(t, "sales amount", row.SalesAmount, "25000")
	assertDec(t, "cost per unit", row.CostPerUnit, "0")
	assertDec(t, "profit", row.Profit, "25000")

	updated, err := env.ledger.UpdateCost(ctx, row.ID, dec("15000"))
	if err != nil {
		t.Fatalf("update cost: %v", err)
	}
	assertDec(t, "total cost", updated.TotalCost, "15000")
	assertDec(t, "profit", updated.Profit, "10000")
}

func TestCreateOrderRejectsBlankIdentity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name, customer, phone string
	}{
		{"blank name", "  ", "+7 700 111 2233"},
		{"blank phone", "J. Doe", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.orders.Create(ctx, frameOrder(tt.customer, tt.phone))
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}

	var orders, clients int64
	env.db.Model(&models.Order{}).Count(&orders)
	env.db.Model(&models.Client{}).Count(&clients)
	if orders != 0 || clients != 0 {
		t.Fatalf("rejected saves wrote %d orders, %d clients", orders, clients)
	}
}

func TestCreateOrderBumpsExistingClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	existing, err := env.clients.Create(ctx, ClientInput{Name: "Anna Lee", Phone: "555-01"})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	// name match, case-insensitive
	first, err := env.orders.Create(ctx, frameOrder("anna lee", "555-99"))
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	// phone match
	in := frameOrder("Someone Else", "555-01")
	in.Items[0].Price = "1000"
	if _, err := env.orders.Create(ctx, in); err != nil {
		t.Fatalf("create order: %v", err)
	}

	if first.ClientCreated || first.Client.ID != existing.ID {
		t.Fatalf("order matched %+v, want existing client", first.Client)
	}
	var clients []models.Client
	env.db.Find(&clients)
	if len(clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(clients))
	}
	if clients[0].TotalOrders != 2 {
		t.Fatalf("total orders = %d, want 2", clients[0].TotalOrders)
	}
	assertDec(t, "total spent", clients[0].TotalSpent, "26000")
	if clients[0].LastVisit != "2025-03-10" {
		t.Fatalf("last visit = %s", clients[0].LastVisit)
	}
}

func TestCreateOrderCoercesUnparsableNumbers(t *testing.T) {
	env := newTestEnv(t)
	in := frameOrder("J. Doe", "1")
	in.Items = []ItemInput{
		{Name: "Lens", Quantity: "two", Price: "9000"},
		{Name: "Case", Quantity: "2", Price: "1 500,50"},
	}
	in.Paid = dec("0")

	res, err := env.orders.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertDec(t, "total", res.Order.Total, "3001")
	assertDec(t, "debt", res.Order.Debt, "3001")
}

func TestCreateOrderUsesProductSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.products.Create(ctx, ProductInput{
		Name: "Ray-Ban RB5154", Category: "Frames", Brand: "Ray-Ban",
		Price: dec("45000"), Cost: dec("30000"), Stock: 3,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	in := frameOrder("J. Doe", "1")
	in.Items = []ItemInput{{ProductID: &p.ID, Quantity: "1"}}
	res, err := env.orders.Create(ctx, in)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if res.Order.Items[0].Name != "Ray-Ban RB5154" {
		t.Fatalf("item name = %q", res.Order.Items[0].Name)
	}
	assertDec(t, "total", res.Order.Total, "45000")

	view, _ := env.ledger.List(ctx, DateRange{})
	if len(view.Items) != 1 {
		t.Fatalf("ledger rows = %d", len(view.Items))
	}
	assertDec(t, "seeded cost", view.Items[0].CostPerUnit, "30000")
	assertDec(t, "profit", view.Items[0].Profit, "15000")

	missing := "nope"
	in.Items = []ItemInput{{ProductID: &missing, Quantity: "1"}}
	if _, err := env.orders.Create(ctx, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown product: err = %v", err)
	}
}

func TestNextOrderNumber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	custom := frameOrder("J. Doe", "1")
	custom.OrderNumber = "SPECIAL-1"
	if _, err := env.orders.Create(ctx, custom); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.orders.Create(ctx, frameOrder("J. Doe", "1")); err != nil {
			t.Fatal(err)
		}
	}

	next, err := env.orders.NextOrderNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if next != "2025-003" {
		t.Fatalf("next = %s, want 2025-003", next)
	}
}

func TestListOrdersSearch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, c := range []struct{ name, phone string }{
		{"Maria Petrova", "700-100"},
		{"Ivan Smirnov", "700-200"},
		{"Maria Ivanova", "800-300"},
	} {
		if _, err := env.orders.Create(ctx, frameOrder(c.name, c.phone)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		q    string
		want int
	}{
		{"", 3},
		{"maria", 2},
		{"700-", 2},
		{"2025-002", 1},
		{"nobody", 0},
	}
	for _, tt := range tests {
		orders, err := env.orders.List(ctx, tt.q)
		if err != nil {
			t.Fatalf("list %q: %v", tt.q, err)
		}
		if len(orders) != tt.want {
			t.Errorf("list %q = %d orders, want %d", tt.q, len(orders), tt.want)
		}
	}

	all, _ := env.orders.List(ctx, "")
	if all[0].CustomerName != "Maria Ivanova" {
		t.Fatalf("newest first: got %s", all[0].CustomerName)
	}
	if len(all[0].Items) != 1 {
		t.Fatalf("items not loaded")
	}
}

func updateFrom(o models.Order) OrderUpdate {
	items := make([]ItemInput, len(o.Items))
	for i, it := range o.Items {
		items[i] = ItemInput{ID: it.ID, ProductID: it.ProductID, Name: it.Name, Quantity: it.Quantity, Price: it.Price}
	}
	return OrderUpdate{
		OrderInput: OrderInput{
			OrderNumber:   o.OrderNumber,
			CustomerName:  o.CustomerName,
			CustomerPhone: o.CustomerPhone,
			OrderDate:     o.OrderDate,
			ReadyDate:     o.ReadyDate,
			Prescription:  o.Prescription.Data(),
			Items:         items,
			Paid:          o.Paid,
			Status:        o.Status,
		},
		Version: o.Version,
	}
}

func TestUpdateOrderMismatchPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("J. Doe", "111"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := env.clients.Create(ctx, ClientInput{Name: "A. Smith", Phone: "222"})
	if err != nil {
		t.Fatal(err)
	}

	upd := updateFrom(created.Order)
	upd.CustomerPhone = "222"
	_, err = env.orders.Update(ctx, created.Order.ID, upd)

	var rr *ReconciliationRequired
	if !errors.As(err, &rr) {
		t.Fatalf("err = %v, want reconciliation", err)
	}
	if rr.Case != CaseMismatch {
		t.Fatalf("case = %s, want mismatch", rr.Case)
	}
	if rr.ExistingClient == nil || rr.ExistingClient.ID != other.ID {
		t.Fatalf("existing client = %+v, want %s", rr.ExistingClient, other.ID)
	}
	stored, _ := env.orders.Get(ctx, created.Order.ID)
	if stored.CustomerPhone != "111" || stored.Version != 1 {
		t.Fatalf("order written before the operator answered: %+v", stored)
	}

	upd.Reconcile = "no"
	res, err := env.orders.Update(ctx, created.Order.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Order.CustomerPhone != "222" || res.Order.Version != 2 || res.Client != nil {
		t.Fatalf("result = %+v", res)
	}
	smith, _ := env.clients.Get(ctx, other.ID)
	if smith.Name != "A. Smith" {
		t.Fatalf("answering no touched the client: %+v", smith)
	}
}

func TestUpdateOrderMismatchYesUpdatesClient(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("J. Doe", "111"))
	if err != nil {
		t.Fatal(err)
	}
	upd := updateFrom(created.Order)
	upd.CustomerName = "John Doe"
	upd.OrderDate = "2025-03-12"
	upd.Reconcile = "yes"

	res, err := env.orders.Update(ctx, created.Order.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.ClientCreated || res.Client == nil || res.Client.ID != created.Client.ID {
		t.Fatalf("client = %+v", res.Client)
	}
	if res.Client.Name != "John Doe" || res.Client.LastVisit != "2025-03-12" {
		t.Fatalf("client not reconciled: %+v", res.Client)
	}
	if res.Client.TotalOrders != 1 {
		t.Fatalf("total orders = %d, reconciliation must not count the order again", res.Client.TotalOrders)
	}
}

func TestUpdateOrderNewClientPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("J. Doe", "111"))
	if err != nil {
		t.Fatal(err)
	}
	upd := updateFrom(created.Order)
	upd.CustomerName, upd.CustomerPhone = "New Person", "999"

	_, err = env.orders.Update(ctx, created.Order.ID, upd)
	var rr *ReconciliationRequired
	if !errors.As(err, &rr) || rr.Case != CaseNewClient {
		t.Fatalf("err = %v, want new_client reconciliation", err)
	}

	upd.Reconcile = "yes"
	res, err := env.orders.Update(ctx, created.Order.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !res.ClientCreated || res.Client.TotalOrders != 1 {
		t.Fatalf("client = %+v", res.Client)
	}
	assertDec(t, "total spent", res.Client.TotalSpent, "25000")
}

func TestUpdateOrderRecomputesAndKeepsLedgerCost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("J. Doe", "111"))
	if err != nil {
		t.Fatal(err)
	}
	rowID := models.DerivedSalesID(created.Order.ID, created.Order.Items[0].ID)
	if _, err := env.ledger.UpdateCost(ctx, rowID, dec("15000")); err != nil {
		t.Fatal(err)
	}

	upd := updateFrom(created.Order)
	upd.Items[0].Price = "30000"
	upd.Items = append(upd.Items, ItemInput{Name: "Lens", Quantity: "2", Price: "5000"})
	res, err := env.orders.Update(ctx, created.Order.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	assertDec(t, "total", res.Order.Total, "40000")
	assertDec(t, "debt", res.Order.Debt, "20000")
	if res.Order.Items[0].ID != created.Order.Items[0].ID {
		t.Fatal("existing item lost its id")
	}

	view, _ := env.ledger.List(ctx, DateRange{})
	if len(view.Items) != 2 {
		t.Fatalf("ledger rows = %d, want 2", len(view.Items))
	}
	var kept models.SalesItem
	env.db.First(&kept, "id = ?", rowID)
	assertDec(t, "kept cost", kept.CostPerUnit, "15000")
	assertDec(t, "refreshed profit", kept.Profit, "15000")

	// dropping the line drops its ledger row
	upd = updateFrom(res.Order)
	upd.Items = upd.Items[1:]
	if _, err := env.orders.Update(ctx, created.Order.ID, upd); err != nil {
		t.Fatal(err)
	}
	var count int64
	env.db.Model(&models.SalesItem{}).Where("id = ?", rowID).Count(&count)
	if count != 0 {
		t.Fatal("orphaned ledger row kept")
	}
}

func TestUpdateOrderStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("J. Doe", "111"))
	if err != nil {
		t.Fatal(err)
	}
	upd := updateFrom(created.Order)
	if _, err := env.orders.Update(ctx, created.Order.ID, upd); err != nil {
		t.Fatal(err)
	}
	upd.Paid = dec("25000")
	if _, err := env.orders.Update(ctx, created.Order.ID, upd); !errors.Is(err, ErrStaleVersion) {
		t.Fatalf("err = %v, want ErrStaleVersion", err)
	}

	if _, err := env.orders.Update(ctx, "missing", upd); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPreview(t *testing.T) {
	env := newTestEnv(t)
	p, err := env.orders.Preview(context.Background(), OrderInput{
		Items: []ItemInput{{Quantity: "2", Price: "1500"}, {Quantity: "", Price: "100"}},
		Paid:  dec("4000"),
	})
	if err != nil {
		t.Fatal(err)
	}
	assertDec(t, "total", p.Total, "3000")
	assertDec(t, "debt", p.Debt, "-1000")
}

func TestCreateOrderMatchesCyrillicNameIgnoringCase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.orders.Create(ctx, frameOrder("Иван Петров", "700-001"))
	if err != nil {
		t.Fatal(err)
	}
	if !first.ClientCreated {
		t.Fatal("first order should register the client")
	}

	for i, name := range []string{"иван петров", "ИВАН ПЕТРОВ", "  Иван петров "} {
		res, err := env.orders.Create(ctx, frameOrder(name, fmt.Sprintf("700-1%02d", i)))
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if res.ClientCreated || res.Client.ID != first.Client.ID {
			t.Fatalf("%q: client_created=%v client=%s, want existing %s", name, res.ClientCreated, res.Client.ID, first.Client.ID)
		}
	}

	var clients []models.Client
	env.db.Find(&clients)
	if len(clients) != 1 {
		t.Fatalf("clients = %d, want 1", len(clients))
	}
	if clients[0].TotalOrders != 4 {
		t.Fatalf("total orders = %d, want 4", clients[0].TotalOrders)
	}
	assertDec(t, "total spent", clients[0].TotalSpent, "100000")
}

func TestCreateOrderClientTotalIsExact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, price := range []string{"0.1", "0.2"} {
		in := frameOrder("J. Doe", "555")
		in.Items[0].Price = price
		in.Paid = dec("0")
		if _, err := env.orders.Create(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	var c models.Client
	if err := env.db.First(&c, "phone = ?", "555").Error; err != nil {
		t.Fatal(err)
	}
	assertDec(t, "total spent", c.TotalSpent, "0.3")
	if c.Version != 2 {
		t.Fatalf("client version = %d, want 2", c.Version)
	}
}

func TestListOrdersSearchCyrillic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, c := range []struct{ name, phone string }{
		{"Мария Петрова", "700-100"},
		{"Иван Смирнов", "700-200"},
		{"Мария Иванова", "800-300"},
	} {
		if _, err := env.orders.Create(ctx, frameOrder(c.name, c.phone)); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		q    string
		want int
	}{
		{"мария", 2},
		{"МАРИЯ", 2},
		{"иван", 2},
		{"Смирнов", 1},
		{"петрова 700", 0},
	}
	for _, tt := range tests {
		orders, err := env.orders.List(ctx, tt.q)
		if err != nil {
			t.Fatalf("list %q: %v", tt.q, err)
		}
		if len(orders) != tt.want {
			t.Errorf("list %q = %d orders, want %d", tt.q, len(orders), tt.want)
		}
	}
}

func TestUpdateOrderKeepsSearchCurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.orders.Create(ctx, frameOrder("Ольга Сидорова", "900"))
	if err != nil {
		t.Fatal(err)
	}
	upd := updateFrom(created.Order)
	upd.CustomerName = "ОЛЬГА Сидорова-Белова"
	upd.Reconcile = "yes"
	res, err := env.orders.Update(ctx, created.Order.ID, upd)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Client == nil || res.Client.Name != "ОЛЬГА Сидорова-Белова" {
		t.Fatalf("client = %+v", res.Client)
	}

	orders, _ := env.orders.List(ctx, "белова")
	if len(orders) != 1 {
		t.Fatalf("search after rename = %d orders, want 1", len(orders))
	}
	clients, _ := env.clients.List(ctx, "белова")
	if len(clients) != 1 {
		t.Fatalf("client search after rename = %d, want 1", len(clients))
	}
	again, err := env.orders.Create(ctx, frameOrder("ольга сидорова-белова", "901"))
	if err != nil {
		t.Fatal(err)
	}
	if again.ClientCreated {
		t.Fatal("renamed client should match by name")
	}
}

func TestOrderRejectsOutOfRangeAmounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// item fields are free text and coerce to zero
	p, err := env.orders.Preview(ctx, OrderInput{
		Items: []ItemInput{{Quantity: "1e2000000000", Price: "1e2000000000"}, {Quantity: "1", Price: "100"}},
		Paid:  dec("0"),
	})
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	assertDec(t, "total", p.Total, "100")

	in := frameOrder("J. Doe", "1")
	in.Items[0].Price = "1e2000000000"
	res, err := env.orders.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	assertDec(t, "total", res.Order.Total, "0")

	// paid is a JSON number and is rejected instead
	if _, err := env.orders.Preview(ctx, OrderInput{Paid: hugeExponent}); !errors.Is(err, ErrValidation) {
		t.Fatalf("preview paid: err = %v, want ErrValidation", err)
	}
	in = frameOrder("J. Doe", "1")
	in.Paid = hugeExponent
	if _, err := env.orders.Create(ctx, in); !errors.Is(err, ErrValidation) {
		t.Fatalf("create paid: err = %v, want ErrValidation", err)
	}
	upd := updateFrom(res.Order)
	upd.Paid = hugeExponent.Neg()
	if _, err := env.orders.Update(ctx, res.Order.ID, upd); !errors.Is(err, ErrValidation) {
		t.Fatalf("update paid: err = %v, want ErrValidation", err)
	}
}
