package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/ledger"
	"go-pos-ledger/internal/logging"
	"go-pos-ledger/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const (
	DefaultModel  = "gemini-2.0-flash-001"
	maxToolRounds = 5
)

// Ledger is the slice of *ledger.Ledger the assistant may touch. Every call
// is made with the asking tenant's id.
type Ledger interface {
	ListProducts(ctx context.Context, tenantID string) ([]models.Product, error)
	CreateProduct(ctx context.Context, tenantID string, in ledger.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, tenantID, id string, patch ledger.ProductPatch) (*models.Product, error)
	SalesSummary(ctx context.Context, tenantID string, r *ledger.DateRange) (*ledger.SalesReport, error)
}

type Agent struct {
	apiKey string
	model  string
	ledger Ledger
	now    func() time.Time
}

func NewAgent(apiKey, model string, l Ledger) *Agent {
	if model == "" {
		model = DefaultModel
	}
	return &Agent{apiKey: apiKey, model: model, ledger: l, now: time.Now}
}

var tools = []*genai.Tool{
	{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        "check_inventory",
				Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Price or Stock.",
			},
			{
				Name:        "update_product_price",
				Description: "Update the price of a specific product using its ID",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"product_id": {Type: genai.TypeString, Description: "ID of the product"},
						"new_price":  {Type: genai.TypeNumber, Description: "New price"},
					},
					Required: []string{"product_id", "new_price"},
				},
			},
			{
				Name:        "create_product",
				Description: "Add a new product to the inventory",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":     {Type: genai.TypeString, Description: "Name of the product"},
						"price":    {Type: genai.TypeNumber, Description: "Price of the product"},
						"quantity": {Type: genai.TypeInteger, Description: "Initial stock count"},
					},
					Required: []string{"name", "price", "quantity"},
				},
			},
			{
				Name:        "get_sales_report",
				Description: "Get total sales revenue, order count and best sellers for a date range.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
						"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
					},
					Required: []string{"start_date", "end_date"},
				},
			},
		},
	},
}

func (a *Agent) systemPrompt(message string) string {
	return fmt.Sprintf(`SYSTEM: Today is %s. You are a POS Assistant for a single shop.

	RULES:
	1. UPDATE: If a user asks to update a product by NAME, do NOT ask them for the ID. Instead:
	   - Call 'check_inventory' to find the ID.
	   - Call 'update_product_price' using that ID.

	2. READ: If a user asks for PRICE, STOCK, or DETAILS of a product, call 'check_inventory'
	   and answer from the returned list.

	3. SALES: If the user asks for sales/revenue, use 'get_sales_report'.

	USER: %s`, a.now().Format("2006-01-02"), message)
}

// Ask runs one conversation turn for tenantID, executing tool calls until the
// model answers in text.
func (a *Agent) Ask(ctx context.Context, tenantID, message string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", errors.Wrap(err, "create genai client")
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.Tools = tools
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.systemPrompt(message)))
	if err != nil {
		return "", errors.Wrap(err, "send prompt")
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			return replyText(resp), nil
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			parts = append(parts, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.runTool(ctx, tenantID, call),
			})
		}
		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", errors.Wrap(err, "send tool results")
		}
	}
	return replyText(resp), nil
}

// runTool executes one function call. Failures go back to the model as an
// "error" field. Values stay flat since responses are sent as protobuf structs.
func (a *Agent) runTool(ctx context.Context, tenantID string, call genai.FunctionCall) map[string]any {
	log := logging.FromContext(ctx).With(zap.String("tool", call.Name))
	log.Info("assistant_tool_call")

	result, err := a.dispatch(ctx, tenantID, call)
	if err != nil {
		log.Warn("assistant_tool_failed", zap.Error(err))
		return map[string]any{"error": apperr.Message(err)}
	}
	return result
}

func (a *Agent) dispatch(ctx context.Context, tenantID string, call genai.FunctionCall) (map[string]any, error) {
	args := call.Args
	switch call.Name {
	case "check_inventory":
		products, err := a.ledger.ListProducts(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		type simpleProduct struct {
			ID    string  `json:"id"`
			Name  string  `json:"name"`
			Stock int     `json:"stock"`
			Price float64 `json:"price"`
		}
		list := make([]simpleProduct, 0, len(products))
		for _, p := range products {
			price, _ := p.Price.Float64()
			list = append(list, simpleProduct{ID: p.ID, Name: p.Name, Stock: p.Quantity, Price: price})
		}
		data, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return map[string]any{"inventory": string(data)}, nil

	case "update_product_price":
		id, err := stringArg(args, "product_id")
		if err != nil {
			return nil, err
		}
		price, err := numberArg(args, "new_price")
		if err != nil {
			return nil, err
		}
		d := decimal.NewFromFloat(price)
		p, err := a.ledger.UpdateProduct(ctx, tenantID, id, ledger.ProductPatch{Price: &d})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "Success", "product_id": p.ID, "new_price": price}, nil

	case "create_product":
		name, err := stringArg(args, "name")
		if err != nil {
			return nil, err
		}
		price, err := numberArg(args, "price")
		if err != nil {
			return nil, err
		}
		qty, err := numberArg(args, "quantity")
		if err != nil {
			return nil, err
		}
		d, q := decimal.NewFromFloat(price), int(qty)
		p, err := a.ledger.CreateProduct(ctx, tenantID, ledger.ProductInput{Name: name, Price: &d, Quantity: &q})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "created", "id": p.ID}, nil

	case "get_sales_report":
		start, err := stringArg(args, "start_date")
		if err != nil {
			return nil, err
		}
		end, err := stringArg(args, "end_date")
		if err != nil {
			return nil, err
		}
		r, err := ledger.ParseDateRange(start, end)
		if err != nil {
			return nil, err
		}
		report, err := a.ledger.SalesSummary(ctx, tenantID, &r)
		if err != nil {
			return nil, err
		}
		top, err := json.Marshal(report.TopSelling)
		if err != nil {
			return nil, err
		}
		revenue, _ := report.TotalRevenue.Float64()
		return map[string]any{
			"revenue":     revenue,
			"sales_count": report.TotalOrders,
			"top_selling": string(top),
		}, nil
	}
	return nil, apperr.Validationf("unknown tool %q", call.Name)
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", apperr.Validationf("%s must be a non-empty string", key)
	}
	return v, nil
}

func numberArg(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return 0, apperr.Validationf("%s must be a number", key)
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

func replyText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "I completed the action."
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
