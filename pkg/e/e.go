package e

import (
	"errors"
	"fmt"
)

var (
	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")

	// 400 Bad Request
	ErrValidation          = fmt.Errorf("validation error")
	ErrCategoryRequired    = fmt.Errorf("%w: product category is required", ErrValidation)
	ErrNameRequired        = fmt.Errorf("%w: product name is required", ErrValidation)
	ErrCategoryMalformed   = fmt.Errorf("%w: product category must be valid UTF-8 without NUL characters", ErrValidation)
	ErrNameMalformed       = fmt.Errorf("%w: product name must be valid UTF-8 without NUL characters", ErrValidation)
	ErrInvalidPage         = fmt.Errorf("%w: page must be greater than or equal to 0", ErrValidation)
	ErrInvalidPageSize     = fmt.Errorf("%w: size must be between 1 and 100", ErrValidation)
	ErrInvalidProductID    = fmt.Errorf("%w: invalid product id", ErrValidation)
	ErrInvalidRequestBody  = fmt.Errorf("%w: invalid request body", ErrValidation)
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Ошибки хранилища
	ErrStoreFailure     = fmt.Errorf("store failure")
	ErrTransientProduct = fmt.Errorf("product has no identifier")
	ErrUnsupportedSort  = fmt.Errorf("unsupported sort order")

	// Ошибки конфигурации
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// StoreFailure помечает ошибку хранилища, сохраняя исходную причину в цепочке.
// Ошибки, уже классифицированные как NotFound или StoreFailure, не переоборачиваются.
func StoreFailure(msg string, err error) error {
	if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrStoreFailure) {
		return Wrap(msg, err)
	}

	return fmt.Errorf("%s: %w: %w", msg, ErrStoreFailure, err)
}

// IsValidation сообщает, относится ли ошибка к ошибкам валидации входных данных.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
