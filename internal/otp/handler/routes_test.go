package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tahachak1/e-biblio/config"
	"github.com/tahachak1/e-biblio/internal/mocks"
	"github.com/tahachak1/e-biblio/internal/otp/handler"
	"github.com/tahachak1/e-biblio/internal/otp/service"
)

// TestRegisterRoutes verifies that every public route is mounted.
func TestRegisterRoutes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)
	accounts := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, &config.Config{})

	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewOTPHandler(accounts))

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodPost, "/otp/register"},
		{http.MethodPost, "/otp/verify"},
		{http.MethodPost, "/otp/login"},
		{http.MethodPost, "/otp/resend"},
		{http.MethodPost, "/otp/password-reset/request"},
		{http.MethodPost, "/otp/password-reset/verify"},
		{http.MethodPost, "/otp/password-reset/complete"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s_exists", tc.method, tc.path), func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			// A 404 means the route is not mounted; the handlers themselves
			// may answer with other codes for the empty body.
			assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestHealthRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accounts := service.NewAccountService(
		mocks.NewMockUserRepository(ctrl),
		mocks.NewMockOTPRepository(ctrl),
		mocks.NewMockTokenGenerator(ctrl),
		mocks.NewMockNotifier(ctrl),
		&config.Config{},
	)

	app := fiber.New()
	handler.RegisterRoutes(app, handler.NewOTPHandler(accounts))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
