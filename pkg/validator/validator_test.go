package validator_test

import (
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

type listSlotsQuery struct {
	Quantity *int `json:"quantity" validate:"omitempty,gte=0"`
}

type orderBody struct {
	SlotID   string `form:"slot_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

type newUser struct {
	Username string `json:"username" validate:"required,username"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	t.Run("Should report json field names", func(t *testing.T) {
		q := -1
		err := v.Validate(listSlotsQuery{Quantity: &q})
		require.Error(t, err)
		require.True(t, validator.IsValidationError(err))

		fes := err.(govalidator.ValidationErrors)
		require.Len(t, fes, 1)
		assert.Equal(t, "quantity", fes[0].Field())
		assert.Equal(t, "must be greater than or equal to 0", validator.ValidationErrorMessage(fes[0]))
	})

	t.Run("Should accept missing optional filter", func(t *testing.T) {
		assert.NoError(t, v.Validate(listSlotsQuery{}))
	})

	t.Run("Should fall back to form tag", func(t *testing.T) {
		err := v.Validate(orderBody{SlotID: "nope", Quantity: 0})
		require.Error(t, err)

		fields := map[string]string{}
		for _, fe := range err.(govalidator.ValidationErrors) {
			fields[fe.Field()] = validator.ValidationErrorMessage(fe)
		}
		assert.Equal(t, map[string]string{
			"slot_id":  "must be a valid UUID",
			"quantity": "must be greater than or equal to 1",
		}, fields)
	})

	t.Run("Should validate usernames", func(t *testing.T) {
		assert.NoError(t, v.Validate(newUser{Username: "jorge@abacum.io"}))
		assert.Error(t, v.Validate(newUser{Username: "jorge smith"}))
	})
}
