package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sales_tracker/internal/model"
	"sales_tracker/internal/service"
)

// recordSale 下单入口：校验、扣库存、写销售在同一事务内完成。
func recordSale(svc *service.SaleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			CustomerID uint `json:"customer_id" binding:"required"`
			ProductID  uint `json:"product_id" binding:"required"`
			Quantity   int  `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		sale, err := svc.RecordSale(c.Request.Context(), req.CustomerID, req.ProductID, req.Quantity)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, sale)
	}
}

func listSales(svc *service.SaleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var f model.SaleFilter
		var err error
		if f.CustomerID, err = queryUint(c, "customer_id"); err != nil {
			fail(c, err)
			return
		}
		if f.ProductID, err = queryUint(c, "product_id"); err != nil {
			fail(c, err)
			return
		}
		if f.From, err = queryTime(c, "from"); err != nil {
			fail(c, err)
			return
		}
		if f.To, err = queryTime(c, "to"); err != nil {
			fail(c, err)
			return
		}
		if c.Query("limit") != "" {
			if f.Limit, err = queryLimit(c, 0); err != nil {
				fail(c, err)
				return
			}
		}
		list, err := svc.List(c.Request.Context(), f)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func recentSales(svc *service.SaleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := queryLimit(c, 10)
		if err != nil {
			fail(c, err)
			return
		}
		list, err := svc.Recent(c.Request.Context(), limit)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func getSale(svc *service.SaleService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		sale, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, sale)
	}
}
