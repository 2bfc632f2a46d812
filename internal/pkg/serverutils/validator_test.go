package serverutils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradie-recovery-be/internal/pkg/authz"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	State    string `json:"state" validate:"required,oneof=NSW VIC"`
}

func TestValidateRequest(t *testing.T) {
	err := ValidateRequest(&sampleRequest{FullName: "Jo", Email: "jo@x.au", State: "NSW"})
	assert.NoError(t, err)

	err = ValidateRequest(&sampleRequest{Email: "nope", State: "WA"})
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Contains(t, appErr.Fields, "fullName")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "state")
	assert.Contains(t, appErr.Message, "fullName")
}

func TestValidateRequestRejectsBlankStrings(t *testing.T) {
	type intake struct {
		Trade string `json:"trade" validate:"required,notblank"`
	}
	err := ValidateRequest(&intake{Trade: "   "})
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "is required", appErr.Fields["trade"])

	assert.NoError(t, ValidateRequest(&intake{Trade: "plumber"}))
}

func TestErrorHandlerStatusMapping(t *testing.T) {
	cases := map[string]struct {
		err  error
		code int
	}{
		"app error":   {NewPaymentRequired("no credit"), http.StatusPaymentRequired},
		"fiber error": {fiber.ErrMethodNotAllowed, http.StatusMethodNotAllowed},
		"forbidden":   {authz.ErrForbidden, http.StatusForbidden},
		"wrapped":     {errors.Join(errors.New("ctx"), NewConflict("dup")), http.StatusConflict},
		"unknown":     {errors.New("boom"), http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
			app.Get("/", func(*fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}
}
