package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// Result 记录单次请求的 HTTP 结果，便于聚合统计。
type Result struct {
	Status int
	Err    error
}

type saleReq struct {
	CustomerID uint `json:"customer_id"`
	ProductID  uint `json:"product_id"`
	Quantity   int  `json:"quantity"`
}

// 超卖测试：多个客户并发购买同一商品，结束后核对 售出数量 == 初始库存 - 剩余库存。
func main() {
	app := &cli.App{
		Name:  "loadtest",
		Usage: "concurrent sales against one product, then verify no oversell",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base", Value: "http://localhost:8080", Usage: "server base url"},
			&cli.UintFlag{Name: "product", Value: 1, Usage: "product id"},
			&cli.UintFlag{Name: "customers", Value: 5, Usage: "customer ids 1..n are used round-robin"},
			&cli.IntFlag{Name: "requests", Value: 200, Usage: "total sale requests"},
			&cli.IntFlag{Name: "c", Value: 50, Usage: "max concurrency"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("loadtest")
	}
}

func run(c *cli.Context) error {
	client := &http.Client{Timeout: 5 * time.Second}
	base := c.String("base")
	productID := c.Uint("product")

	before, err := getStock(client, base, productID)
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}
	logrus.WithFields(logrus.Fields{"product": productID, "stock": before}).Info("start oversell test")

	results := runSales(client, base, productID, c.Uint("customers"), c.Int("requests"), c.Int("c"))
	counts := summarize(results)

	after, err := getStock(client, base, productID)
	if err != nil {
		return fmt.Errorf("read stock: %w", err)
	}
	sold := counts[http.StatusCreated]
	logrus.WithFields(logrus.Fields{"before": before, "after": after, "sold": sold}).Info("stock check")
	if after < 0 || before-after != sold {
		return fmt.Errorf("stock mismatch: before=%d after=%d sold=%d", before, after, sold)
	}
	return nil
}

func runSales(client *http.Client, base string, productID uint, customers uint, total, concurrency int) []Result {
	if customers == 0 {
		customers = 1
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	results := make([]Result, total)

	for i := 0; i < total; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req := saleReq{CustomerID: uint(idx)%customers + 1, ProductID: productID, Quantity: 1}
			results[idx] = postSale(client, base, req)
		}(i)
	}

	wg.Wait()
	return results
}

func postSale(client *http.Client, base string, req saleReq) Result {
	b, _ := json.Marshal(req)
	resp, err := client.Post(base+"/api/sales", "application/json", bytes.NewReader(b))
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return Result{Status: resp.StatusCode}
}

// summarize 聚合输出不同状态码分布。
func summarize(results []Result) map[int]int {
	count := map[int]int{}
	errCount := 0
	for _, r := range results {
		if r.Err != nil {
			errCount++
			continue
		}
		count[r.Status]++
	}
	codes := make([]int, 0, len(count))
	for code := range count {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		logrus.WithFields(logrus.Fields{"status": code, "count": count[code]}).Info("http status")
	}
	if errCount > 0 {
		logrus.WithField("count", errCount).Warn("transport errors")
	}
	return count
}

// getStock 查询商品当前库存。
func getStock(client *http.Client, base string, productID uint) (int, error) {
	resp, err := client.Get(fmt.Sprintf("%s/api/products/%d", base, productID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		Code int `json:"code"`
		Data struct {
			Stock int `json:"stock"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return 0, err
	}
	return out.Data.Stock, nil
}
