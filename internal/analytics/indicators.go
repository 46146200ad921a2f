package analytics

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	ten     = decimal.NewFromInt(10)
)

// SellThroughRates derives the sell-through rate from the product ranking.
// A product that never had stock gets a rate of 0.
func SellThroughRates(rows []ProductRevenue) []SellThrough {
	out := make([]SellThrough, 0, len(rows))
	for _, r := range rows {
		initial := int64(r.Stock) + r.TotalQuantity
		rate := decimal.Zero
		if initial > 0 {
			rate = decimal.NewFromInt(r.TotalQuantity).
				Div(decimal.NewFromInt(initial)).
				Mul(hundred).
				Round(2)
		}
		out = append(out, SellThrough{
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			Stock:        r.Stock,
			Sold:         r.TotalQuantity,
			InitialStock: initial,
			Rate:         rate,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rate.GreaterThan(out[j].Rate) })
	return out
}

// LoyaltyIndexes 计算忠诚度指数；没有购买记录的客户平均客单价记为 0。
func LoyaltyIndexes(rows []CustomerSpend) []Loyalty {
	out := make([]Loyalty, 0, len(rows))
	for _, r := range rows {
		avg := decimal.Zero
		if r.PurchaseCount > 0 {
			avg = r.TotalSpend.Div(decimal.NewFromInt(r.PurchaseCount))
		}
		index := decimal.NewFromInt(r.PurchaseCount).Mul(ten).Add(avg.Div(ten))
		out = append(out, Loyalty{
			CustomerID:    r.CustomerID,
			CustomerName:  r.CustomerName,
			PurchaseCount: r.PurchaseCount,
			TotalSpend:    r.TotalSpend,
			AverageBasket: avg.Round(2),
			Index:         index.Round(2),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index.GreaterThan(out[j].Index) })
	return out
}
