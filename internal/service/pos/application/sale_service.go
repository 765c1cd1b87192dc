package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"till/internal/pkg/clock"
	"till/internal/pkg/logger"
	"till/internal/service/pos/domain"
	"till/internal/service/pos/domain/port"
	"till/internal/service/pos/infrastructure/memory"
)

// SaleService drives open sale sessions: the cart operations that
// reserve and release stock as items come and go.
type SaleService struct {
	sales   *memory.SaleStore
	catalog *memory.Catalog
	mirror  port.StockMirror
	clock   clock.Clock
	newID   func() string
	tracer  trace.Tracer
}

func NewSaleService(sales *memory.SaleStore, catalog *memory.Catalog, mirror port.StockMirror, clk clock.Clock, tracer trace.Tracer) *SaleService {
	return &SaleService{
		sales:   sales,
		catalog: catalog,
		mirror:  mirror,
		clock:   clk,
		newID:   uuid.NewString,
		tracer:  tracer,
	}
}

// Open creates a new sale session and returns its id.
func (s *SaleService) Open(ctx context.Context) (*domain.Sale, error) {
	ctx, span := s.tracer.Start(ctx, "app.OpenSale")
	defer span.End()

	sale := domain.NewSale(s.newID(), s.clock.Now())
	s.sales.Put(sale)
	span.SetAttributes(attribute.String("sale.id", sale.ID))
	logger.Ctx(ctx).Info().Str("sale_id", sale.ID).Msg("sale opened")
	return sale, nil
}

// AddItem reserves stock for the sale and appends a line item with the
// unit price frozen at this moment.
func (s *SaleService) AddItem(ctx context.Context, saleID, productID string, qty int64) error {
	ctx, span := s.tracer.Start(ctx, "app.AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.String("sale.id", saleID),
		attribute.String("product.id", productID),
		attribute.Int64("quantity", qty),
	)

	if qty <= 0 {
		return errors.Wrap(domain.ErrInvalidInput, "item quantity must be positive")
	}
	err := s.sales.Mutate(saleID, func(sale *domain.Sale) error {
		if sale.State != domain.SaleStateOpen {
			return errors.Wrapf(domain.ErrInvalidState, "cannot add items to a %s sale", sale.State)
		}
		product, err := s.catalog.Get(productID)
		if err != nil {
			return err
		}
		if err := s.catalog.Reserve(ctx, saleID, productID, qty); err != nil {
			return err
		}
		// AddLine merges re-adds into the existing line, keeping the
		// price frozen at the first add.
		return sale.AddLine(productID, qty, product.UnitPrice, s.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "add item rejected")
		return err
	}
	publishAvailability(ctx, s.mirror, s.catalog, productID)
	return nil
}

// RemoveItem releases part of the sale's hold and shrinks the line item.
func (s *SaleService) RemoveItem(ctx context.Context, saleID, productID string, qty int64) error {
	ctx, span := s.tracer.Start(ctx, "app.RemoveItem")
	defer span.End()
	span.SetAttributes(
		attribute.String("sale.id", saleID),
		attribute.String("product.id", productID),
		attribute.Int64("quantity", qty),
	)

	if qty <= 0 {
		return errors.Wrap(domain.ErrInvalidInput, "item quantity must be positive")
	}
	err := s.sales.Mutate(saleID, func(sale *domain.Sale) error {
		if sale.State != domain.SaleStateOpen {
			return errors.Wrapf(domain.ErrInvalidState, "cannot remove items from a %s sale", sale.State)
		}
		if sale.LineQuantity(productID) < qty {
			return errors.Wrapf(domain.ErrNotFound, "sale %s does not hold %d of product %s", saleID, qty, productID)
		}
		if err := s.catalog.Release(saleID, productID, qty); err != nil {
			return err
		}
		return sale.RemoveLine(productID, qty, s.clock.Now())
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	publishAvailability(ctx, s.mirror, s.catalog, productID)
	return nil
}

// Total returns the sale's current total at frozen line prices. Valid in
// any state.
func (s *SaleService) Total(ctx context.Context, saleID string) (decimal.Decimal, error) {
	_, span := s.tracer.Start(ctx, "app.SaleTotal")
	defer span.End()

	var total decimal.Decimal
	err := s.sales.View(saleID, func(sale *domain.Sale) error {
		total = sale.Total()
		return nil
	})
	return total, err
}

// Abort cancels the sale and releases every reservation it held.
func (s *SaleService) Abort(ctx context.Context, saleID string) error {
	ctx, span := s.tracer.Start(ctx, "app.AbortSale")
	defer span.End()
	span.SetAttributes(attribute.String("sale.id", saleID))

	var released map[string]int64
	err := s.sales.Mutate(saleID, func(sale *domain.Sale) error {
		if err := sale.Abort(s.clock.Now()); err != nil {
			return err
		}
		released = s.catalog.ReleaseAll(saleID)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("sale_id", saleID).Int("products_released", len(released)).Msg("sale aborted")
	for productID := range released {
		publishAvailability(ctx, s.mirror, s.catalog, productID)
	}
	return nil
}
