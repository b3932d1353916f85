package utils

import (
	"errors"
	"net/http"

	apperrors "invoice-system/pkg/errors"
)

// ErrorList maps sentinel errors to HTTP status codes. Matching uses errors.Is.
var ErrorList = map[error]int{
	apperrors.ErrNotFound:                404,
	apperrors.ErrBadRequest:              400,
	apperrors.ErrConflict:                409,
	apperrors.ErrInvalidCredentials:      401,
	apperrors.ErrUnauthorized:            401,
	apperrors.ErrUnresolvedIdentity:      401,
	apperrors.ErrUserIDNotFoundInContext: 401,
	apperrors.ErrEmptyAuthHeader:         401,
	apperrors.ErrInvalidAuthHeader:       401,
	apperrors.ErrInvalidToken:            401,
	apperrors.ErrInvalidSigningMethod:    401,
	apperrors.ErrTokenExpired:            401,
	apperrors.ErrTokenNotYetValid:        401,
	apperrors.ErrTokenIsNotAccess:        401,
}

const storageFailureMessage = "Database Error: the request could not be completed. Please try again."

func statusFor(err error) (int, bool) {
	for target, code := range ErrorList {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return http.StatusInternalServerError, false
}
