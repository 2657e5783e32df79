package ledger

import (
	"context"
	"sort"

	"go-pos-ledger/internal/models"

	"github.com/shopspring/decimal"
)

const topSellingLimit = 5

// SalesReport summarises one tenant's transactions.
type SalesReport struct {
	TotalRevenue  decimal.Decimal                        `json:"total_revenue"`
	TotalOrders   int                                    `json:"total_orders"`
	ByBillingMode map[models.BillingMode]decimal.Decimal `json:"by_billing_mode"`
	TopSelling    []TopSeller                            `json:"top_selling"`
}

// TopSeller revenue uses current catalog prices, not the price at sale.
type TopSeller struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Sold        int             `json:"sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// SalesSummary reports revenue and best sellers over the tenant's
// transactions, restricted to r when it is not nil.
func (l *Ledger) SalesSummary(ctx context.Context, tenantID string, r *DateRange) (*SalesReport, error) {
	var (
		views []TransactionView
		err   error
	)
	if r != nil {
		views, err = l.ListTransactionsInRange(ctx, tenantID, *r)
	} else {
		views, err = l.ListTransactions(ctx, tenantID)
	}
	if err != nil {
		return nil, err
	}

	report := &SalesReport{
		TotalRevenue:  decimal.Zero,
		TotalOrders:   len(views),
		ByBillingMode: make(map[models.BillingMode]decimal.Decimal),
		TopSelling:    []TopSeller{},
	}

	sellers := make(map[string]*TopSeller)
	for _, v := range views {
		report.TotalRevenue = report.TotalRevenue.Add(v.TotalAmount)
		report.ByBillingMode[v.BillingMode] = report.ByBillingMode[v.BillingMode].Add(v.TotalAmount)

		for _, line := range v.CartItems {
			s, ok := sellers[line.ProductID]
			if !ok {
				s = &TopSeller{ProductID: line.ProductID, Revenue: decimal.Zero}
				sellers[line.ProductID] = s
			}
			s.Sold += line.Quantity
			if line.Product != nil {
				s.ProductName = line.Product.Name
				s.Revenue = s.Revenue.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
		}
	}

	for _, s := range sellers {
		report.TopSelling = append(report.TopSelling, *s)
	}
	sort.Slice(report.TopSelling, func(i, j int) bool {
		a, b := report.TopSelling[i], report.TopSelling[j]
		if a.Sold != b.Sold {
			return a.Sold > b.Sold
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopSelling) > topSellingLimit {
		report.TopSelling = report.TopSelling[:topSellingLimit]
	}
	return report, nil
}
