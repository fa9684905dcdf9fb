package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotMinQuantity = 0
	SlotMaxQuantity = 100

	SlotMinCoordinate = 1
	SlotMaxCoordinate = 10

	// SlotMatrixSize is the side of the grid rendered by the matrix view.
	SlotMatrixSize = 3
)

// VendingMachineSlot is a coordinate addressed container holding one product type.
type VendingMachineSlot struct {
	ID        uuid.UUID
	Product   Product
	Quantity  int
	Row       int
	Column    int
	CreatedAt time.Time
}

// SlotMatrix is a SlotMatrixSize x SlotMatrixSize grid indexed [row][column].
// Empty cells are nil.
type SlotMatrix [SlotMatrixSize][SlotMatrixSize]*VendingMachineSlot
