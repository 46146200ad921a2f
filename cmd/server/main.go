package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gorm.io/gorm"

	"sales_tracker/internal/analytics"
	"sales_tracker/internal/config"
	"sales_tracker/internal/queue"
	"sales_tracker/internal/router"
	"sales_tracker/internal/seed"
	"sales_tracker/internal/service"
	"sales_tracker/internal/storage"
	redisx "sales_tracker/pkg/redis"
)

func main() {
	app := &cli.App{
		Name:  "sales_tracker",
		Usage: "customers, products and sales on an embedded SQLite store",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "dotenv file loaded before the environment"},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "init-db",
				Usage: "create tables and views",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reset", Usage: "drop existing tables first (deletes all data)"},
				},
				Action: initDB,
			},
			{
				Name:  "seed",
				Usage: "load a YAML fixture (the built-in sample when --file is empty)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "fixture path"},
				},
				Action: seedDB,
			},
			{
				Name:   "report",
				Usage:  "print the analytics summary and rankings",
				Action: report,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("sales_tracker")
	}
}

// env 进程级资源：唯一的数据库连接与日志，按需附带 Redis / Kafka。
type env struct {
	cfg      config.AppConfig
	log      *logrus.Logger
	db       *gorm.DB
	rdb      *rd.Client
	producer *queue.Producer
}

func open(c *cli.Context) (*env, error) {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return nil, err
	}
	log, err := config.NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	db, err := storage.Open(cfg.DBPath, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db}, nil
}

// connect 连接可选的 Redis 与 Kafka；Redis 不可达时降级为无缓存、无限流。
func (rt *env) connect(ctx context.Context) {
	if rt.cfg.RedisEnabled() {
		rdb := rd.NewClient(&rd.Options{Addr: rt.cfg.RedisAddr, DB: rt.cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rt.log.WithError(err).Warn("redis unavailable, running without report cache and rate limit")
			_ = rdb.Close()
		} else {
			rt.rdb = rdb
		}
	}
	if rt.cfg.KafkaEnabled() {
		rt.producer = queue.NewProducer(rt.cfg.KafkaBrokers, rt.cfg.KafkaTopic)
	}
}

func (rt *env) services() (*service.Services, *analytics.Reports) {
	var opts []service.Option
	var cache analytics.Cache
	if rt.rdb != nil {
		rc := redisx.NewReportCache(rt.rdb, rt.cfg.ReportCacheTTL)
		opts = append(opts, service.WithInvalidator(rc))
		cache = rc
	}
	if rt.producer != nil {
		opts = append(opts, service.WithPublisher(rt.producer))
	}
	return service.New(rt.db, rt.log, opts...), analytics.New(rt.db, cache, rt.log)
}

func (rt *env) close() {
	if rt.producer != nil {
		if err := rt.producer.Close(); err != nil {
			rt.log.WithError(err).Warn("close kafka producer")
		}
	}
	if rt.rdb != nil {
		_ = rt.rdb.Close()
	}
	if err := storage.Close(rt.db); err != nil {
		rt.log.WithError(err).Warn("close sqlite")
	}
}

func serve(c *cli.Context) error {
	rt, err := open(c)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := storage.InitSchema(ctx, rt.db, false); err != nil {
		return err
	}
	rt.connect(ctx)
	svc, reports := rt.services()

	srv := &http.Server{
		Addr: rt.cfg.HTTPAddr,
		Handler: router.New(router.Deps{
			Services: svc,
			Reports:  reports,
			Redis:    rt.rdb,
			Config:   rt.cfg,
			Log:      rt.log,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.WithField("addr", rt.cfg.HTTPAddr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func initDB(c *cli.Context) error {
	rt, err := open(c)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := storage.InitSchema(c.Context, rt.db, c.Bool("reset")); err != nil {
		return err
	}
	rt.log.WithFields(logrus.Fields{"path": rt.cfg.DBPath, "reset": c.Bool("reset")}).Info("schema ready")
	return nil
}

func seedDB(c *cli.Context) error {
	rt, err := open(c)
	if err != nil {
		return err
	}
	defer rt.close()

	fixture, err := seed.Sample()
	if path := c.String("file"); path != "" {
		fixture, err = seed.LoadFile(path)
	}
	if err != nil {
		return err
	}
	if err := storage.InitSchema(c.Context, rt.db, false); err != nil {
		return err
	}
	rt.connect(c.Context)
	svc, _ := rt.services()
	_, err = seed.Apply(c.Context, svc, fixture, rt.log)
	return err
}

func report(c *cli.Context) error {
	rt, err := open(c)
	if err != nil {
		return err
	}
	defer rt.close()

	reports := analytics.New(rt.db, nil, rt.log)
	ctx := c.Context
	out := c.App.Writer

	s, err := reports.Summary(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "sales: %d  quantity: %d  revenue: %s  average: %s\n",
		s.SaleCount, s.TotalQuantity, s.TotalRevenue.StringFixed(2), s.AverageSale.StringFixed(2))
	avg, err := service.New(rt.db, rt.log).Products.AveragePrice(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "customers: %d  products: %d  average price: %s\n",
		s.CustomerCount, s.ProductCount, avg.StringFixed(2))

	ranking, err := reports.ProductRanking(ctx, false)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nproduct ranking")
	for i, p := range ranking {
		fmt.Fprintf(out, "%3d. %-30s %4d sold  %10s\n", i+1, p.ProductName, p.TotalQuantity, p.TotalRevenue.StringFixed(2))
	}

	cats, err := reports.RevenueByCategory(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nrevenue by category")
	for _, g := range cats {
		fmt.Fprintf(out, "  %-20s %10s\n", g.Key, g.TotalRevenue.StringFixed(2))
	}

	cities, err := reports.RevenueByCity(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nrevenue by city")
	for _, g := range cities {
		fmt.Fprintf(out, "  %-20s %10s\n", g.Key, g.TotalRevenue.StringFixed(2))
	}

	top, err := reports.TopCustomers(ctx, 5)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\ntop customers")
	for _, cs := range top {
		fmt.Fprintf(out, "  %-30s %3d purchases  %10s\n", cs.CustomerName, cs.PurchaseCount, cs.TotalSpend.StringFixed(2))
	}

	rates, err := reports.SellThrough(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nsell-through")
	for _, r := range rates {
		fmt.Fprintf(out, "  %-30s %6s%%\n", r.ProductName, r.Rate.StringFixed(2))
	}

	loyalty, err := reports.Loyalty(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nloyalty index")
	for _, l := range loyalty {
		fmt.Fprintf(out, "  %-30s %8s\n", l.CustomerName, l.Index.StringFixed(2))
	}
	return nil
}
