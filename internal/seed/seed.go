// Package seed loads YAML fixtures and applies them through the services,
// so every row goes through the same validation as live traffic.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"sales_tracker/internal/service"
)

//go:embed sample.yaml
var sample []byte

type Fixture struct {
	Customers []Customer `yaml:"customers"`
	Products  []Product  `yaml:"products"`
	Sales     []Sale     `yaml:"sales"`
}

type Customer struct {
	LastName  string  `yaml:"last_name"`
	FirstName string  `yaml:"first_name"`
	Email     string  `yaml:"email"`
	Phone     *string `yaml:"phone"`
	City      *string `yaml:"city"`
}

// Product 的单价写成字符串，避免 YAML 浮点解析带来的精度问题。
type Product struct {
	Name        string  `yaml:"name"`
	Description *string `yaml:"description"`
	UnitPrice   string  `yaml:"unit_price"`
	Category    *string `yaml:"category"`
	Stock       int     `yaml:"stock"`
}

// Sale references its customer by email and its product by name.
type Sale struct {
	CustomerEmail string `yaml:"customer_email"`
	ProductName   string `yaml:"product_name"`
	Quantity      int    `yaml:"quantity"`
}

// Result counts the rows created by Apply.
type Result struct {
	Customers int
	Products  int
	Sales     int
}

func Sample() (Fixture, error) {
	return Parse(strings.NewReader(string(sample)))
}

func Parse(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	return f, nil
}

func LoadFile(path string) (Fixture, error) {
	file, err := os.Open(path)
	if err != nil {
		return Fixture{}, err
	}
	defer file.Close()
	return Parse(file)
}

// Apply 依次创建客户、商品，再通过 RecordSale 记录销售（会扣减库存）。
// 任一步失败立即返回，已创建的行保留。
func Apply(ctx context.Context, svc *service.Services, f Fixture, log logrus.FieldLogger) (Result, error) {
	var res Result
	customers := make(map[string]uint, len(f.Customers))
	for _, c := range f.Customers {
		created, err := svc.Customers.Create(ctx, service.CustomerInput{
			LastName:  c.LastName,
			FirstName: c.FirstName,
			Email:     c.Email,
			Phone:     c.Phone,
			City:      c.City,
		})
		if err != nil {
			return res, fmt.Errorf("customer %s: %w", c.Email, err)
		}
		customers[created.Email] = created.ID
		res.Customers++
	}

	products := make(map[string]uint, len(f.Products))
	for _, p := range f.Products {
		price, err := decimal.NewFromString(p.UnitPrice)
		if err != nil {
			return res, fmt.Errorf("product %s: invalid unit price %q", p.Name, p.UnitPrice)
		}
		created, err := svc.Products.Create(ctx, service.ProductInput{
			Name:        p.Name,
			Description: p.Description,
			UnitPrice:   price,
			Category:    p.Category,
			Stock:       p.Stock,
		})
		if err != nil {
			return res, fmt.Errorf("product %s: %w", p.Name, err)
		}
		products[created.Name] = created.ID
		res.Products++
	}

	for i, s := range f.Sales {
		customerID, ok := customers[strings.ToLower(strings.TrimSpace(s.CustomerEmail))]
		if !ok {
			return res, fmt.Errorf("sale #%d: unknown customer %q", i+1, s.CustomerEmail)
		}
		productID, ok := products[strings.TrimSpace(s.ProductName)]
		if !ok {
			return res, fmt.Errorf("sale #%d: unknown product %q", i+1, s.ProductName)
		}
		if _, err := svc.Sales.RecordSale(ctx, customerID, productID, s.Quantity); err != nil {
			return res, fmt.Errorf("sale #%d: %w", i+1, err)
		}
		res.Sales++
	}

	log.WithFields(logrus.Fields{
		"customers": res.Customers,
		"products":  res.Products,
		"sales":     res.Sales,
	}).Info("fixture applied")
	return res, nil
}
