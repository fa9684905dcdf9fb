package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/vending-machine/internal/service"
)

type slotHandler struct {
	slotSvc service.SlotService
}

func newSlotHandler(slotSvc service.SlotService) *slotHandler {
	return &slotHandler{
		slotSvc: slotSvc,
	}
}

func (h *slotHandler) ListSlots(w http.ResponseWriter, r *http.Request) error {
	var params service.ListSlotsParams
	if err := runtime.BindQueryParameter("form", true, false, "quantity", r.URL.Query(), &params.Quantity); err != nil {
		return paramErr("quantity", err)
	}

	slots, err := h.slotSvc.ListSlots(r.Context(), params)
	if err != nil {
		return fmt.Errorf("slot service list slots: %w", err)
	}

	items := make([]SlotResponse, 0, len(slots))
	for _, slot := range slots {
		items = append(items, newSlotResponse(slot))
	}

	return writeJSON(w, http.StatusOK, items)
}

func (h *slotHandler) GetSlotMatrix(w http.ResponseWriter, r *http.Request) error {
	matrix, err := h.slotSvc.GetSlotMatrix(r.Context())
	if err != nil {
		return fmt.Errorf("slot service get slot matrix: %w", err)
	}

	res := make([][]*SlotResponse, len(matrix))
	for i, row := range matrix {
		res[i] = make([]*SlotResponse, len(row))
		for j, slot := range row {
			if slot != nil {
				item := newSlotResponse(*slot)
				res[i][j] = &item
			}
		}
	}

	return writeJSON(w, http.StatusOK, res)
}

func (h *slotHandler) GetSlot(w http.ResponseWriter, r *http.Request) error {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id); err != nil {
		return paramErr("id", err)
	}

	slot, err := h.slotSvc.GetSlot(r.Context(), id)
	if err != nil {
		return fmt.Errorf("slot service get slot: %w", err)
	}

	return writeJSON(w, http.StatusOK, newSlotResponse(slot))
}
