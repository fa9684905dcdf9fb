package service

import (
	"errors"
	"fmt"

	govalidator "github.com/go-playground/validator/v10"

	"github.com/tuanvumaihuynh/vending-machine/internal/apperr"
	"github.com/tuanvumaihuynh/vending-machine/pkg/validator"
)

// validate runs v on params and turns field errors into apperr.ValidationErr.
func validate(v validator.Validator, params any) error {
	err := v.Validate(params)
	if err == nil {
		return nil
	}

	var fieldErrs govalidator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperr.ValidationErr.WrapParent(fieldErrs)
	}

	return fmt.Errorf("validate %T: %w", params, err)
}
