package router

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"sales_tracker/internal/analytics"
	"sales_tracker/internal/config"
	"sales_tracker/internal/middleware"
	"sales_tracker/internal/model"
	"sales_tracker/internal/service"
)

// Deps 路由依赖；Redis 为 nil 时写接口不限流。
type Deps struct {
	Services *service.Services
	Reports  *analytics.Reports
	Redis    *rd.Client
	Config   config.AppConfig
	Log      logrus.FieldLogger
}

// New 创建 gin 引擎并注册全部路由。
func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestIDMiddleware(), middleware.AccessLog(d.Log))
	Setup(r, d)
	return r
}

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	limit := func(c *gin.Context) { c.Next() }
	if d.Redis != nil {
		limit = middleware.RedisRateLimit(d.Redis, d.Config.WriteRateLimit, d.Config.WriteRateWindow, d.Log)
	}

	api := r.Group("/api")

	customers := api.Group("/customers")
	customers.POST("", createCustomer(d.Services.Customers))
	customers.GET("", listCustomers(d.Services.Customers))
	customers.GET("/cities", listCities(d.Services.Customers))
	customers.GET("/:id", getCustomer(d.Services.Customers))
	customers.PATCH("/:id", updateCustomer(d.Services.Customers))

	products := api.Group("/products")
	products.POST("", createProduct(d.Services.Products))
	products.GET("", listProducts(d.Services.Products))
	products.GET("/categories", listCategories(d.Services.Products))
	products.GET("/average-price", averagePrice(d.Services.Products))
	products.GET("/:id", getProduct(d.Services.Products))
	products.PATCH("/:id", updateProduct(d.Services.Products))
	products.POST("/:id/restock", restockProduct(d.Services.Products))
	products.PUT("/:id/stock", setStock(d.Services.Products))

	sales := api.Group("/sales")
	sales.POST("", limit, recordSale(d.Services.Sales))
	sales.GET("", listSales(d.Services.Sales))
	sales.GET("/recent", recentSales(d.Services.Sales))
	sales.GET("/:id", getSale(d.Services.Sales))

	registerAnalytics(api.Group("/analytics"), d.Reports)
}

// fail 把业务错误映射为 HTTP 状态码；未分类的错误只返回 "internal error"，原文进访问日志。
func fail(c *gin.Context, err error) {
	status := statusOf(err)
	msg, ok := model.UserMessage(err)
	if !ok || status == http.StatusInternalServerError {
		msg = "internal error"
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"code": status, "msg": msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrConstraintViolation):
		return http.StatusConflict
	case errors.Is(err, model.ErrInsufficientStock):
		return http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"code": 0, "data": data})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "msg": msg})
}

// pathID 解析 :id；非法时已写回 400。
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, key string) (uint, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, model.Validation("invalid %s", key)
	}
	return uint(n), nil
}

// queryLimit 读取 limit，缺省为 def，上限 100。
func queryLimit(c *gin.Context, def int) (int, error) {
	v := c.Query("limit")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, model.Validation("limit must be a positive integer")
	}
	if n > 100 {
		n = 100
	}
	return n, nil
}

// queryTime 接受 RFC3339 或 YYYY-MM-DD（按 UTC 零点）。
func queryTime(c *gin.Context, key string) (*time.Time, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, model.Validation("%s must be RFC3339 or YYYY-MM-DD", key)
}
