package serverutils

import (
	"github.com/go-playground/validator/v10"

	"ragbot-be/internal/apperrors"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			first := errs[0]
			return apperrors.Wrapf(apperrors.ErrInvalidRequest, "field %s failed on %s", first.Field(), first.Tag())
		}
		return apperrors.Wrap(apperrors.ErrInvalidRequest, err)
	}
	return nil
}
