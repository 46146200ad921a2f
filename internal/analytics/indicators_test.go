package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSellThroughRates(t *testing.T) {
	rows := []ProductRevenue{
		{ProductID: 1, ProductName: "Jamais stocké", Stock: 0, TotalQuantity: 0},
		{ProductID: 2, ProductName: "Moitié", Stock: 5, TotalQuantity: 5},
		{ProductID: 3, ProductName: "Un tiers", Stock: 2, TotalQuantity: 1},
		{ProductID: 4, ProductName: "Épuisé", Stock: 0, TotalQuantity: 4},
	}
	got := SellThroughRates(rows)
	require.Len(t, got, 4)

	assert.Equal(t, uint(4), got[0].ProductID)
	assert.True(t, got[0].Rate.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, uint(2), got[1].ProductID)
	assert.True(t, got[1].Rate.Equal(decimal.NewFromInt(50)))
	assert.EqualValues(t, 10, got[1].InitialStock)
	assert.Equal(t, uint(3), got[2].ProductID)
	assert.Equal(t, "33.33", got[2].Rate.StringFixed(2))

	assert.Equal(t, uint(1), got[3].ProductID)
	assert.True(t, got[3].Rate.IsZero())
	assert.Zero(t, got[3].InitialStock)
}

func TestLoyaltyIndexes(t *testing.T) {
	rows := []CustomerSpend{
		{CustomerID: 1, CustomerName: "Sans Achat", PurchaseCount: 0, TotalSpend: decimal.Zero},
		{CustomerID: 2, CustomerName: "Fidèle", PurchaseCount: 3, TotalSpend: decimal.RequireFromString("300")},
		{CustomerID: 3, CustomerName: "Gros Panier", PurchaseCount: 1, TotalSpend: decimal.RequireFromString("250.50")},
	}
	got := LoyaltyIndexes(rows)
	require.Len(t, got, 3)

	// 3*10 + 100/10 = 40
	assert.Equal(t, uint(2), got[0].CustomerID)
	assert.Equal(t, "40.00", got[0].Index.StringFixed(2))
	// 1*10 + 250.50/10 = 35.05
	assert.Equal(t, uint(3), got[1].CustomerID)
	assert.Equal(t, "35.05", got[1].Index.StringFixed(2))

	assert.Equal(t, uint(1), got[2].CustomerID)
	assert.True(t, got[2].Index.IsZero())
	assert.True(t, got[2].AverageBasket.IsZero())
}
