package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/tradestreak/wall-street-service/pkg/common"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const maxBodyBytes = 64 * 1024

var validate = validator.New()

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, v any) error {
	if err := common.ParseJSONBody(r, v, maxBodyBytes); err != nil {
		return apperrors.NewValidationError("invalid request body: " + err.Error())
	}
	if err := validate.Struct(v); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperrors.NewValidationError(
				fmt.Sprintf("field %s failed validation on %s", fe.Field(), fe.Tag()))
		}
		return apperrors.NewValidationError(err.Error())
	}
	return nil
}

// intQuery reads an integer query parameter with a default. Malformed or
// non-positive values are a validation error.
func intQuery(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, apperrors.NewValidationError(name + " must be a positive integer")
	}
	return v, nil
}

// requireUser extracts the authenticated user id, guarding against routes
// mounted without the auth middleware.
func requireUser(r *http.Request) (string, error) {
	userID, ok := common.GetUserID(r.Context())
	if !ok || userID == "" {
		return "", apperrors.NewUnauthorizedError("authentication required")
	}
	return userID, nil
}
