package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type CreateProductParams struct {
	Name  string          `json:"name" validate:"required,max=200"`
	Price decimal.Decimal `json:"price"`
}

type CreateSlotParams struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity" validate:"gte=0,lte=100"`
	Row       int       `json:"row" validate:"gte=1,lte=10"`
	Column    int       `json:"column" validate:"gte=1,lte=10"`
}

// CatalogService stocks the machine. It backs the admin command line.
type CatalogService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	CreateSlot(ctx context.Context, params CreateSlotParams) (model.VendingMachineSlot, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	slotRepo    repository.SlotRepository
	validator   validator.Validator
}

func NewCatalogService(
	productRepo repository.ProductRepository,
	slotRepo repository.SlotRepository,
	validator validator.Validator,
) CatalogService {
	return &catalogService{
		productRepo: productRepo,
		slotRepo:    slotRepo,
		validator:   validator,
	}
}

func (s *catalogService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	if err := validate(s.validator, params); err != nil {
		return model.Product{}, err
	}
	if params.Price.IsNegative() {
		return model.Product{}, apperr.ValidationErr.WithMsg("price must not be negative")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	product := model.Product{
		ID:        id,
		Name:      params.Name,
		Price:     params.Price.Round(model.CurrencyPlaces),
		CreatedAt: time.Now(),
	}

	if err := s.productRepo.CreateProduct(ctx, product); err != nil {
		return model.Product{}, fmt.Errorf("product repository create product: %w", err)
	}

	return product, nil
}

func (s *catalogService) ListProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *catalogService) CreateSlot(ctx context.Context, params CreateSlotParams) (model.VendingMachineSlot, error) {
	if err := validate(s.validator, params); err != nil {
		return model.VendingMachineSlot{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.VendingMachineSlot{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	slot := model.VendingMachineSlot{
		ID:        id,
		Product:   model.Product{ID: params.ProductID},
		Quantity:  params.Quantity,
		Row:       params.Row,
		Column:    params.Column,
		CreatedAt: time.Now(),
	}

	if err := s.slotRepo.CreateSlot(ctx, slot); err != nil {
		return model.VendingMachineSlot{}, fmt.Errorf("slot repository create slot: %w", err)
	}

	return slot, nil
}
