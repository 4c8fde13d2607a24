package grpc

import (
	"errors"

	"github.com/DRSN-tech/product-catalog/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func GRPCErrorResponse(err error) error {
	switch {
	case errors.Is(err, e.ErrProductNotFound):
		return status.Error(codes.NotFound, e.ErrProductNotFound.Error())
	case e.IsValidation(err):
		return status.Error(codes.InvalidArgument, validationMessage(err))
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, e.ErrProductNotFound)
}

var validationErrors = []error{
	e.ErrCategoryRequired,
	e.ErrNameRequired,
	e.ErrCategoryMalformed,
	e.ErrNameMalformed,
	e.ErrInvalidPage,
	e.ErrInvalidPageSize,
	e.ErrInvalidProductID,
}

func validationMessage(err error) string {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return e.ErrValidation.Error()
}
