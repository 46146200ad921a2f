// Package service holds the business operations called by the presentation
// layer: input validation and normalization, the sale transaction, and the
// post-commit side effects (cache invalidation, event publishing).
package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"sales_tracker/internal/model"
	"sales_tracker/internal/store"
)

// CacheInvalidator drops cached analytics after a committed write.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SalePublisher announces committed sales to other systems.
type SalePublisher interface {
	PublishSale(ctx context.Context, sale model.Sale) error
}

type Option func(*hooks)

func WithInvalidator(c CacheInvalidator) Option { return func(h *hooks) { h.cache = c } }

func WithPublisher(p SalePublisher) Option { return func(h *hooks) { h.publisher = p } }

// Services 聚合全部业务服务，共享同一个连接与日志。
type Services struct {
	Customers *CustomerService
	Products  *ProductService
	Sales     *SaleService
}

func New(db *gorm.DB, log logrus.FieldLogger, opts ...Option) *Services {
	h := &hooks{log: log}
	for _, opt := range opts {
		opt(h)
	}
	customers := store.NewCustomers(db)
	products := store.NewProducts(db)
	sales := store.NewSales(db)
	return &Services{
		Customers: &CustomerService{customers: customers, hooks: h},
		Products:  &ProductService{products: products, hooks: h},
		Sales: &SaleService{
			db:        db,
			customers: customers,
			products:  products,
			sales:     sales,
			hooks:     h,
		},
	}
}

type hooks struct {
	log       logrus.FieldLogger
	cache     CacheInvalidator
	publisher SalePublisher
}

// afterWrite 写成功后失效分析缓存；失败只记日志，不影响已提交的数据。
func (h *hooks) afterWrite(ctx context.Context) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx); err != nil {
		h.log.WithError(err).Warn("invalidate analytics cache")
	}
}

func (h *hooks) publishSale(ctx context.Context, sale model.Sale) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.PublishSale(ctx, sale); err != nil {
		h.log.WithError(err).WithField("sale_id", sale.ID).Warn("publish sale event")
	}
}

func titleCase(s string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(s))
}

// optional trims the value and maps blank input to nil.
func optional(s *string, norm func(string) string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	if norm != nil {
		v = norm(v)
	}
	return &v
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return model.Validation("%s is required", field)
	}
	return nil
}
