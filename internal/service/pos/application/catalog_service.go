package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"till/internal/pkg/logger"
	"till/internal/service/pos/domain"
	"till/internal/service/pos/domain/port"
	"till/internal/service/pos/infrastructure/memory"
)

// CatalogService fronts the product catalog. It validates inputs, applies
// mutations through the owned catalog store, and keeps the optional
// read-side stock mirror current.
type CatalogService struct {
	catalog *memory.Catalog
	mirror  port.StockMirror
	tracer  trace.Tracer
}

func NewCatalogService(catalog *memory.Catalog, mirror port.StockMirror, tracer trace.Tracer) *CatalogService {
	return &CatalogService{catalog: catalog, mirror: mirror, tracer: tracer}
}

func (s *CatalogService) AddProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.AddProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", in.ID))

	product, err := domain.NewProduct(in.ID, in.Name, in.UnitPrice, in.InitialQty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid product")
		return domain.Product{}, err
	}
	if err := s.catalog.AddProduct(product); err != nil {
		span.RecordError(err)
		return domain.Product{}, err
	}

	logger.Ctx(ctx).Info().
		Str("product_id", product.ID).
		Int64("on_hand", product.OnHand).
		Msg("product added to catalog")
	publishAvailability(ctx, s.mirror, s.catalog, product.ID)
	return product, nil
}

func (s *CatalogService) Restock(ctx context.Context, id string, delta int64) (domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "app.Restock")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id), attribute.Int64("restock.delta", delta))

	product, err := s.catalog.Restock(ctx, id, delta)
	if err != nil {
		span.RecordError(err)
		return domain.Product{}, err
	}

	logger.Ctx(ctx).Info().
		Str("product_id", id).
		Int64("delta", delta).
		Int64("on_hand", product.OnHand).
		Msg("product restocked")
	publishAvailability(ctx, s.mirror, s.catalog, id)
	return product, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	_, span := s.tracer.Start(ctx, "app.GetProduct")
	defer span.End()
	return s.catalog.Get(id)
}

func (s *CatalogService) ListProducts(ctx context.Context) []domain.Product {
	_, span := s.tracer.Start(ctx, "app.ListProducts")
	defer span.End()
	return s.catalog.List()
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "app.DeleteProduct")
	defer span.End()
	span.SetAttributes(attribute.String("product.id", id))

	if err := s.catalog.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Ctx(ctx).Info().Str("product_id", id).Msg("product deleted")
	if s.mirror != nil {
		if err := s.mirror.Forget(ctx, id); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("product_id", id).Msg("stock mirror forget failed")
		}
	}
	return nil
}

func (s *CatalogService) AvailableQuantity(ctx context.Context, id string) (int64, error) {
	_, span := s.tracer.Start(ctx, "app.AvailableQuantity")
	defer span.End()
	return s.catalog.Available(id)
}

// publishAvailability refreshes the mirror for the given products.
// Mirror failures are logged, never surfaced: the mirror is a cache.
func publishAvailability(ctx context.Context, mirror port.StockMirror, catalog *memory.Catalog, productIDs ...string) {
	if mirror == nil {
		return
	}
	for _, id := range productIDs {
		available, err := catalog.Available(id)
		if err != nil {
			continue
		}
		if err := mirror.PublishAvailable(ctx, id, available); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("product_id", id).Msg("stock mirror publish failed")
		}
	}
}
