package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"sales_tracker/internal/model"
	"sales_tracker/internal/service"
)

func createProduct(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string          `json:"name" binding:"required"`
			Description *string         `json:"description"`
			UnitPrice   decimal.Decimal `json:"unit_price"`
			Category    *string         `json:"category"`
			Stock       int             `json:"stock"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svc.Create(c.Request.Context(), service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			UnitPrice:   req.UnitPrice,
			Category:    req.Category,
			Stock:       req.Stock,
		})
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, p)
	}
}

// listProducts 支持 category、q（名称/描述模糊匹配）与 in_stock=true|false。
func listProducts(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := model.ProductFilter{
			Category: c.Query("category"),
			Search:   c.Query("q"),
		}
		if v := c.Query("in_stock"); v != "" {
			inStock, err := strconv.ParseBool(v)
			if err != nil {
				badRequest(c, "in_stock must be true or false")
				return
			}
			f.InStock, f.OutOfStock = inStock, !inStock
		}
		list, err := svc.List(c.Request.Context(), f)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, list)
	}
}

func listCategories(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.Categories(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, cats)
	}
}

func averagePrice(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		avg, err := svc.AveragePrice(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, gin.H{"average_price": avg})
	}
}

func getProduct(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, p)
	}
}

func updateProduct(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		var req model.ProductUpdate
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.Update(c.Request.Context(), id, req); err != nil {
			fail(c, err)
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, p)
	}
}

func restockProduct(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		var req struct {
			Quantity int `json:"quantity"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		p, err := svc.Restock(c.Request.Context(), id, req.Quantity)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, p)
	}
}

func setStock(svc *service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, valid := pathID(c)
		if !valid {
			return
		}
		var req struct {
			Stock *int `json:"stock" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
		if err := svc.SetStock(c.Request.Context(), id, *req.Stock); err != nil {
			fail(c, err)
			return
		}
		p, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, p)
	}
}
