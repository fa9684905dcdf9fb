package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/internal/model"
	"github.com/tuanvumaihuynh/vending-machine/internal/repository"
	"github.com/tuanvumaihuynh/vending-machine/pkg/ptr"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type ListSlotsParams struct {
	Quantity *int `json:"quantity" validate:"omitempty,gte=0"`
}

type SlotService interface {
	ListSlots(ctx context.Context, params ListSlotsParams) ([]model.VendingMachineSlot, error)
	GetSlotMatrix(ctx context.Context) (model.SlotMatrix, error)
	GetSlot(ctx context.Context, id uuid.UUID) (model.VendingMachineSlot, error)
}

type slotService struct {
	slotRepo  repository.SlotRepository
	validator validator.Validator
}

func NewSlotService(slotRepo repository.SlotRepository, validator validator.Validator) SlotService {
	return &slotService{
		slotRepo:  slotRepo,
		validator: validator,
	}
}

func (s *slotService) ListSlots(ctx context.Context, params ListSlotsParams) ([]model.VendingMachineSlot, error) {
	if err := validate(s.validator, params); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.ListSlots(ctx, repository.ListSlotsParams{
		MaxQuantity: params.Quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("slot repository list slots: %w", err)
	}

	return slots, nil
}

// GetSlotMatrix fills the grid using the stored row and column values as
// zero-based indexes. Slots are 1-based, so row 0 and column 0 stay empty.
func (s *slotService) GetSlotMatrix(ctx context.Context) (model.SlotMatrix, error) {
	var matrix model.SlotMatrix

	slots, err := s.slotRepo.ListSlots(ctx, repository.ListSlotsParams{
		Below: ptr.New(model.SlotMatrixSize),
	})
	if err != nil {
		return matrix, fmt.Errorf("slot repository list slots: %w", err)
	}

	for i := range slots {
		slot := slots[i]
		if slot.Row < 0 || slot.Row >= model.SlotMatrixSize || slot.Column < 0 || slot.Column >= model.SlotMatrixSize {
			continue
		}
		if matrix[slot.Row][slot.Column] == nil {
			matrix[slot.Row][slot.Column] = &slot
		}
	}

	return matrix, nil
}

func (s *slotService) GetSlot(ctx context.Context, id uuid.UUID) (model.VendingMachineSlot, error) {
	slot, err := s.slotRepo.GetSlot(ctx, repository.GetSlotParams{ID: id})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.VendingMachineSlot{}, apperr.SlotNotFoundErr
		}
		return model.VendingMachineSlot{}, fmt.Errorf("slot repository get slot: %w", err)
	}

	return slot, nil
}
