// Package ai answers natural-language questions about the shop's inventory
// and sales through Gemini function calling. Read-only: the agent can look
// things up but never mutates the ledger.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"attar-pos/internal/repository"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

func RunAgent(ctx context.Context, repo *repository.Repository, userMessage, apiKey string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")
	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant for a small attar shop's billing system.

RULES:
1. READ: If a user asks for PRICE, STOCK, or DETAILS of a product:
   - You MUST call 'check_inventory' to get the full list.
   - Then read the JSON to find the specific item and answer the user.
2. SALES: If the user asks about sales, revenue, or invoices for a day or
   a range, use 'get_sales_report' with YYYY-MM-DD dates.
3. You cannot change prices, stock, or sales. Say so if asked.

USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_inventory",
					Description: "Get the full inventory list. Use this to find ANY product details like ID, Name, Type, Price, or Stock.",
				},
				{
					Name:        "get_sales_report",
					Description: "Get sales totals (revenue, invoice count, items sold) for a date range.",
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

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			switch funcCall.Name {
			case "check_inventory":
				return executeCheckInventory(ctx, repo, session)
			case "get_sales_report":
				return executeSalesReport(ctx, repo, session, funcCall)
			}
		}
	}

	return printResponse(resp), nil
}

func executeCheckInventory(ctx context.Context, repo *repository.Repository, session *genai.ChatSession) (string, error) {
	type simpleItem struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Type  string `json:"type"`
		Price string `json:"price"`
		Stock int    `json:"stock"`
	}
	var list []simpleItem
	for _, item := range repo.Inventory() {
		list = append(list, simpleItem{
			ID:    item.ID,
			Name:  item.Name,
			Type:  item.Type,
			Price: item.Price.StringFixed(2),
			Stock: item.Stock,
		})
	}
	jsonBytes, _ := json.Marshal(list)

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "check_inventory",
		Response: map[string]interface{}{"inventory": string(jsonBytes)},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func executeSalesReport(ctx context.Context, repo *repository.Repository, session *genai.ChatSession, funcCall genai.FunctionCall) (string, error) {
	args := funcCall.Args
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)

	sales, err := repo.SalesByDateRange(startStr, endStr)
	if err != nil {
		return "Error: Dates must be in YYYY-MM-DD format.", nil
	}

	revenue := "0.00"
	items := 0
	if len(sales) > 0 {
		total := sales[0].Totals.GrandTotal
		items = sales[0].Totals.TotalQty
		for _, s := range sales[1:] {
			total = total.Add(s.Totals.GrandTotal)
			items += s.Totals.TotalQty
		}
		revenue = total.StringFixed(2)
	}

	finalResp, err := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_sales_report",
		Response: map[string]interface{}{
			"revenue":     revenue,
			"sales_count": len(sales),
			"items_sold":  items,
		},
	})
	if err != nil {
		return "", err
	}
	return printResponse(finalResp), nil
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
