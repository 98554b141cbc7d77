package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-optics-pos/internal/models"
	"go-optics-pos/internal/services"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxToolRounds = 4

// Shop is what the assistant's tools read from.
type Shop struct {
	Products *services.ProductService
	Clients  *services.ClientService
	Ledger   *services.LedgerService
	Finance  *services.FinanceService
}

type Agent struct {
	apiKey string
	model  string
	shop   Shop
	now    func() time.Time
}

func NewAgent(apiKey string, shop Shop) *Agent {
	return &Agent{apiKey: apiKey, model: "gemini-2.0-flash-001", shop: shop, now: time.Now}
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_inventory",
				Description: "Get the catalog with stock levels. Use this for ANY product question: price, cost, stock, brand, low stock.",
			},
			{
				Name:        "get_sales_report",
				Description: "Get sales revenue, cost of goods and profit from the sales ledger for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
			{
				Name:        "get_payout",
				Description: "Get the payout calculation: revenue, cost of goods, monthly expenses, net profit and the 50% payout share.",
			},
			{
				Name:        "find_client",
				Description: "Search the client registry by name or phone.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"query": {Type: genai.TypeString, Description: "Part of a name or phone number"},
					},
					Required: []string{"query"},
				},
			},
		},
	},
}

// Run answers one operator question, letting the model call tools until it replies with text.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = tools

	today := a.now().Format(models.DateLayout)
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the back-office assistant of an eyewear shop.

	RULES:
	1. PRODUCTS: For price, cost or stock questions call 'check_inventory' and read the result. Never say you cannot see prices.
	2. SALES: For revenue or profit in a period call 'get_sales_report' with YYYY-MM-DD dates.
	3. PAYOUT: For net profit or the owner's share call 'get_payout'.
	4. CLIENTS: For a customer's phone, visits or spend call 'find_client'.
	Answer briefly. Amounts are in the shop currency.

	USER: %s`, today, userMessage)

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return printResponse(resp), nil
		}

		var replies []genai.Part
		for _, call := range calls {
			result, err := a.ExecuteTool(ctx, call.Name, call.Args)
			if err != nil {
				result = map[string]any{"error": err.Error()}
			}
			replies = append(replies, genai.FunctionResponse{Name: call.Name, Response: result})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return printResponse(resp), nil
}

var ErrUnknownTool = errors.New("unknown tool")

// ExecuteTool runs one tool call against the shop data and returns the payload
// handed back to the model. Lists travel as JSON text since the response must
// convert to a protobuf Struct.
func (a *Agent) ExecuteTool(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case "check_inventory":
		rows, err := a.shop.Products.List(ctx, "", "")
		if err != nil {
			return nil, err
		}
		type simpleProduct struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Brand string `json:"brand"`
			Stock int    `json:"stock"`
			Price string `json:"price"`
			Cost  string `json:"cost"`
			State string `json:"stock_status"`
		}
		list := make([]simpleProduct, 0, len(rows))
		for _, p := range rows {
			list = append(list, simpleProduct{
				ID: p.ID, Name: p.Name, Brand: p.Brand, Stock: p.Stock,
				Price: p.Price.String(), Cost: p.Cost.String(), State: string(p.StockStatus),
			})
		}
		jsonBytes, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return map[string]any{"inventory": string(jsonBytes)}, nil

	case "get_sales_report":
		start, _ := args["start_date"].(string)
		end, _ := args["end_date"].(string)
		r, err := services.LedgerRange("", start, end, a.now())
		if err != nil || start == "" || end == "" {
			return nil, errors.New("dates must be in YYYY-MM-DD format")
		}
		view, err := a.shop.Ledger.List(ctx, r)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"revenue":     view.Totals.TotalRevenue.String(),
			"cost":        view.Totals.TotalCost.String(),
			"profit":      view.Totals.TotalProfit.String(),
			"sales_count": view.Totals.LineCount,
		}, nil

	case "get_payout":
		res, err := a.shop.Finance.Rollup(ctx, services.DateRange{})
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"total_revenue":              res.TotalRevenue.String(),
			"cost_of_goods_sold":         res.CostOfGoodsSold.String(),
			"total_costs_excluding_cogs": res.TotalCostsExcludingCOGS.String(),
			"net_profit":                 res.NetProfit.String(),
			"payout_share":               res.PayoutShare.String(),
		}, nil

	case "find_client":
		q, _ := args["query"].(string)
		clients, err := a.shop.Clients.List(ctx, q)
		if err != nil {
			return nil, err
		}
		if len(clients) > 5 {
			clients = clients[:5]
		}
		jsonBytes, err := json.Marshal(clients)
		if err != nil {
			return nil, err
		}
		return map[string]any{"clients": string(jsonBytes), "count": len(clients)}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func printResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I could not produce an answer."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
