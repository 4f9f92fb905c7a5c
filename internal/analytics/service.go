package analytics

import (
	"context"
	"io"
	"time"

	"rawmart-be/internal/logger"
	"rawmart-be/internal/metrics"
	"rawmart-be/internal/order"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MaterialIndex interface {
	IDsBySupplier(ctx context.Context, supplierID uint) ([]uint, error)
}

type SalesSource interface {
	GetSupplierAnalytics(ctx context.Context, materialIDs []uint, from, to *time.Time) (*order.Analytics, error)
	ListSupplierSales(ctx context.Context, materialIDs []uint, from, to *time.Time) ([]order.Sale, error)
}

type Service interface {
	Dashboard(ctx context.Context, supplierID uint, tr TimeRange) (*Dashboard, error)
	Export(ctx context.Context, supplierID uint, tr TimeRange, w io.Writer) error
}

type service struct {
	materials MaterialIndex
	sales     SalesSource
	now       func() time.Time
}

func NewService(materials MaterialIndex, sales SalesSource) Service {
	return &service{materials: materials, sales: sales, now: time.Now}
}

func (s *service) Dashboard(ctx context.Context, supplierID uint, tr TimeRange) (*Dashboard, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "analytics.Service.Dashboard"),
		zap.String("time_range", string(tr)),
	)
	timer := metrics.StartTimer()

	from, to := tr.Bounds(s.now())

	ids, err := s.materials.IDsBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}

	var (
		summary *order.Analytics
		sales   []order.Sale
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.sales.GetSupplierAnalytics(gctx, ids, from, &to)
		return err
	})
	g.Go(func() error {
		var err error
		sales, err = s.sales.ListSupplierSales(gctx, ids, from, &to)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load supplier sales", zap.Error(err))
		return nil, err
	}

	// Views are built from the line items; keep the summary consistent with
	// them if an order was paid between the two queries.
	derived := order.Summarize(sales)
	if !derived.TotalRevenue.Equal(summary.TotalRevenue) || derived.TotalOrders != summary.TotalOrders {
		log.Warn("summary drifted from line items",
			zap.String("summary_revenue", summary.TotalRevenue.String()),
			zap.String("items_revenue", derived.TotalRevenue.String()),
		)
		summary = &derived
	}

	d := Build(tr, from, to, *summary, sales)
	log.Info("dashboard built",
		zap.Int("materials", len(ids)),
		zap.Int("sales", len(sales)),
		zap.Duration("duration", timer.Duration()),
	)
	return d, nil
}

func (s *service) Export(ctx context.Context, supplierID uint, tr TimeRange, w io.Writer) error {
	d, err := s.Dashboard(ctx, supplierID, tr)
	if err != nil {
		return err
	}
	return WriteWorkbook(d, w)
}
