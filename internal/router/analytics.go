package router

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sales_tracker/internal/analytics"
)

func registerAnalytics(g *gin.RouterGroup, reports *analytics.Reports) {
	g.GET("/summary", report(reports.Summary))
	g.GET("/products/ranking", func(c *gin.Context) {
		soldOnly, _ := strconv.ParseBool(c.Query("sold_only"))
		report(func(ctx context.Context) ([]analytics.ProductRevenue, error) {
			return reports.ProductRanking(ctx, soldOnly)
		})(c)
	})
	g.GET("/products/top", limited(reports.TopSellingProducts))
	g.GET("/categories", report(reports.RevenueByCategory))
	g.GET("/cities", report(reports.RevenueByCity))
	g.GET("/customers/top", limited(reports.TopCustomers))
	g.GET("/months", report(reports.RevenueByMonth))
	g.GET("/sell-through", report(reports.SellThrough))
	g.GET("/loyalty", report(reports.Loyalty))
}

func report[T any](run func(context.Context) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, err := run(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, v)
	}
}

func limited[T any](run func(context.Context, int) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryLimit(c, 10)
		if err != nil {
			fail(c, err)
			return
		}
		v, err := run(c.Request.Context(), limit)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, v)
	}
}
