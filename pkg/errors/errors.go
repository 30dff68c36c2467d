package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound                 = "NOT_FOUND"
	CodeBadRequest               = "BAD_REQUEST"
	CodeUnauthorized             = "UNAUTHORIZED"
	CodeForbidden                = "FORBIDDEN"
	CodeInternal                 = "INTERNAL_ERROR"
	CodeTooManyRequests          = "TOO_MANY_REQUESTS"
	CodeInvalidCoordinate        = "INVALID_COORDINATE"
	CodeLocationPermissionDenied = "LOCATION_PERMISSION_DENIED"
	CodeLocationUnavailable      = "LOCATION_UNAVAILABLE"
	CodeLocationTimeout          = "LOCATION_TIMEOUT"
	CodeLocationUnsupported      = "LOCATION_UNSUPPORTED"
	CodeLocationRequired         = "LOCATION_REQUIRED"
	CodeFetchFailed              = "FETCH_FAILED"
	CodeListingNotFound          = "LISTING_NOT_FOUND"
	CodeCommunityNotFound        = "COMMUNITY_NOT_FOUND"
	CodeAddressRequired          = "ADDRESS_REQUIRED"
	CodeSelfPurchaseNotAllowed   = "SELF_PURCHASE_NOT_ALLOWED"
	CodePaymentMethodNotAccepted = "PAYMENT_METHOD_NOT_ACCEPTED"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Forbidden(message string, err error) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    CodeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
	}
}

// Marketplace and location errors.

func InvalidCoordinate(message string) *AppError {
	return New(CodeInvalidCoordinate, message, http.StatusBadRequest, nil)
}

func LocationRequired() *AppError {
	return New(CodeLocationRequired, "Location is required. Make sure location services are enabled", http.StatusBadRequest, nil)
}

func FetchFailed(message string, err error) *AppError {
	return New(CodeFetchFailed, message, http.StatusBadGateway, err)
}

func ListingNotFound(id string) *AppError {
	return New(CodeListingNotFound, fmt.Sprintf("Plant %s not found", id), http.StatusNotFound, nil)
}

func CommunityNotFound(id string) *AppError {
	return New(CodeCommunityNotFound, fmt.Sprintf("Community %s not found", id), http.StatusNotFound, nil)
}

func AddressRequired() *AppError {
	return New(CodeAddressRequired, "Delivery address is required for cash on delivery", http.StatusBadRequest, nil)
}

func SelfPurchaseNotAllowed() *AppError {
	return New(CodeSelfPurchaseNotAllowed, "You cannot order your own plant", http.StatusForbidden, nil)
}

func PaymentMethodNotAccepted(method string) *AppError {
	return New(CodePaymentMethodNotAccepted, fmt.Sprintf("Payment method %s is not accepted for this plant", method), http.StatusBadRequest, nil)
}

// Is reports whether any AppError in err's chain carries code.
func Is(err error, code string) bool {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}
