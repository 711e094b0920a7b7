package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/tahachak1/e-biblio/config"
	autherror "github.com/tahachak1/e-biblio/internal/errors"
	"github.com/tahachak1/e-biblio/internal/mocks"
	"github.com/tahachak1/e-biblio/internal/otp/domain"
	"github.com/tahachak1/e-biblio/internal/otp/dto"
	"github.com/tahachak1/e-biblio/internal/otp/service"
	"github.com/tahachak1/e-biblio/pkg/constant"
)

func testConfig() *config.Config {
	return &config.Config{
		OTPExpiryMin:   10,
		OTPMaxAttempts: 5,
	}
}

func liveCode(userID, code string, purpose domain.Purpose) *domain.OneTimeCode {
	return &domain.OneTimeCode{
		UserID:      userID,
		Email:       "test@example.com",
		Code:        code,
		Purpose:     purpose,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Attempts:    0,
		MaxAttempts: 5,
	}
}

func TestAccountService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	input := dto.RegisterInput{
		Email:     "Test@Example.com",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
	}

	var created *domain.User

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(nil, nil)
	mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			created = u
			return nil
		})
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	mockNotifier.EXPECT().Configured().Return(false)

	userID, err := s.Register(context.Background(), input)

	assert.NoError(t, err)
	assert.NotEmpty(t, userID)
	assert.NotNil(t, created)
	assert.Equal(t, "test@example.com", created.Email)
	assert.Equal(t, constant.DefaultUserRole, created.Role)
	assert.Equal(t, constant.StatusPending, created.Status)
	assert.False(t, created.IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(input.Password)))
}

func TestAccountService_Register_AccountAlreadyActive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	active := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: true}

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(active, nil)

	userID, err := s.Register(context.Background(), dto.RegisterInput{
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.Equal(t, autherror.ErrAccountAlreadyActive, err)
	assert.Empty(t, userID)
}

func TestAccountService_Register_RecyclesPendingAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	pending := &domain.User{
		ID:           "user-1",
		Email:        "test@example.com",
		PasswordHash: "old-hash",
		Status:       constant.StatusPending,
	}

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(pending, nil)
	mockUsers.EXPECT().ResetPending(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "user-1", u.ID)
			assert.Equal(t, "New", u.FirstName)
			assert.NotEqual(t, "old-hash", u.PasswordHash)
			assert.False(t, u.IsActive)
			return nil
		})
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	mockNotifier.EXPECT().Configured().Return(false)

	userID, err := s.Register(context.Background(), dto.RegisterInput{
		Email:     "test@example.com",
		Password:  "newpassword1",
		FirstName: "New",
	})

	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAccountService_Register_NotificationFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations: the record is stored before the send fails, so a
	// later resend can recover.
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(nil, nil)
	mockUsers.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	mockNotifier.EXPECT().Configured().Return(true)
	mockNotifier.EXPECT().SendCode(gomock.Any(), "test@example.com", gomock.Any(), domain.PurposeRegister).
		Return(errors.New("smtp: connection refused"))

	userID, err := s.Register(context.Background(), dto.RegisterInput{
		Email:    "test@example.com",
		Password: "password123",
	})

	assert.Equal(t, autherror.ErrNotificationFailed, err)
	assert.Empty(t, userID)
}

func TestAccountService_IssueCode_ExplicitCodeAndSend(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.OneTimeCode) error {
			assert.Equal(t, "654321", rec.Code)
			assert.Equal(t, 0, rec.Attempts)
			assert.Equal(t, 5, rec.MaxAttempts)
			assert.WithinDuration(t, time.Now().Add(10*time.Minute), rec.ExpiresAt, time.Minute)
			return nil
		})
	mockNotifier.EXPECT().Configured().Return(true)
	mockNotifier.EXPECT().SendCode(gomock.Any(), "test@example.com", "654321", domain.PurposeLogin).Return(nil)

	code, err := s.IssueCode(context.Background(), "user-1", "test@example.com", domain.PurposeLogin, "654321")

	assert.NoError(t, err)
	assert.Equal(t, "654321", code)
}

func TestAccountService_IssueCode_GeneratesSixDigits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil)
	mockNotifier.EXPECT().Configured().Return(false)

	code, err := s.IssueCode(context.Background(), "user-1", "test@example.com", domain.PurposeRegister, "")

	assert.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}

func TestAccountService_Verify_Success_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	user := &domain.User{
		ID:    "user-1",
		Email: "test@example.com",
		Role:  constant.DefaultUserRole,
	}

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeRegister).
		Return(liveCode("user-1", "123456", domain.PurposeRegister), nil)
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockUsers.EXPECT().Activate(gomock.Any(), "user-1").Return(nil)
	mockOTPs.EXPECT().Delete(gomock.Any(), "user-1", domain.PurposeRegister).Return(nil)
	mockTokens.EXPECT().Generate("user-1", "test@example.com", constant.DefaultUserRole).
		Return("signed-token", nil)

	token, out, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "123456",
		Purpose: "register",
	})

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", token)
	assert.NotNil(t, out)
	assert.True(t, out.IsActive)
	assert.True(t, out.FirstLoginCompleted)
	assert.Equal(t, constant.StatusActive, out.Status)
}

func TestAccountService_Verify_NoPurpose_UsesLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	user := &domain.User{ID: "user-1", Email: "test@example.com", Role: constant.DefaultUserRole}

	// Mock expectations
	mockOTPs.EXPECT().GetLatest(gomock.Any(), "user-1").
		Return(liveCode("user-1", "123456", domain.PurposeLogin), nil)
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockUsers.EXPECT().Activate(gomock.Any(), "user-1").Return(nil)
	mockOTPs.EXPECT().Delete(gomock.Any(), "user-1", domain.PurposeLogin).Return(nil)
	mockTokens.EXPECT().Generate("user-1", "test@example.com", constant.DefaultUserRole).
		Return("signed-token", nil)

	token, _, err := s.Verify(context.Background(), dto.VerifyInput{UserID: "user-1", OTP: "123456"})

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", token)
}

func TestAccountService_Verify_OTPNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeRegister).Return(nil, nil)

	_, _, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "123456",
		Purpose: "register",
	})

	assert.Equal(t, autherror.ErrOTPNotFound, err)
}

func TestAccountService_Verify_TooManyAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	record := liveCode("user-1", "123456", domain.PurposeLogin)
	record.Attempts = 5

	// Mock expectations: the ceiling is checked before the comparison, so
	// even the correct code is rejected and nothing else is touched.
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeLogin).Return(record, nil)

	_, _, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "123456",
		Purpose: "login",
	})

	assert.Equal(t, autherror.ErrTooManyAttempts, err)
}

func TestAccountService_Verify_Expired(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	record := liveCode("user-1", "123456", domain.PurposeLogin)
	record.ExpiresAt = time.Now().Add(-time.Minute)

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeLogin).Return(record, nil)

	_, _, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "123456",
		Purpose: "login",
	})

	assert.Equal(t, autherror.ErrOTPExpired, err)
}

func TestAccountService_Verify_WrongCode_IncrementsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeLogin).
		Return(liveCode("user-1", "123456", domain.PurposeLogin), nil)
	mockOTPs.EXPECT().IncrementAttempts(gomock.Any(), "user-1", domain.PurposeLogin).Return(nil)

	_, _, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "000000",
		Purpose: "login",
	})

	assert.Equal(t, autherror.ErrInvalidCode, err)
}

func TestAccountService_Verify_UserMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposeRegister).
		Return(liveCode("user-1", "123456", domain.PurposeRegister), nil)
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(nil, nil)

	_, _, err := s.Verify(context.Background(), dto.VerifyInput{
		UserID:  "user-1",
		OTP:     "123456",
		Purpose: "register",
	})

	assert.Equal(t, autherror.ErrUserNotFound, err)
}

func TestAccountService_RequestLoginCode_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "nobody@example.com").Return(nil, nil)

	_, err := s.RequestLoginCode(context.Background(), "nobody@example.com")

	assert.Equal(t, autherror.ErrUserNotFound, err)
}

func TestAccountService_RequestLoginCode_InactiveAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	pending := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: false}

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(pending, nil)

	_, err := s.RequestLoginCode(context.Background(), "test@example.com")

	assert.Equal(t, autherror.ErrAccountInactive, err)
}

func TestAccountService_RequestLoginCode_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	active := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: true}

	// Mock expectations
	mockUsers.EXPECT().GetByEmail(gomock.Any(), "test@example.com").Return(active, nil)
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.OneTimeCode) error {
			assert.Equal(t, domain.PurposeLogin, rec.Purpose)
			return nil
		})
	mockNotifier.EXPECT().Configured().Return(false)

	userID, err := s.RequestLoginCode(context.Background(), " Test@Example.com ")

	assert.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestAccountService_Resend_DerivesPurposeFromLatest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	user := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: true}

	// Mock expectations
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockOTPs.EXPECT().GetLatest(gomock.Any(), "user-1").
		Return(liveCode("user-1", "123456", domain.PurposePasswordReset), nil)
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.OneTimeCode) error {
			assert.Equal(t, domain.PurposePasswordReset, rec.Purpose)
			return nil
		})
	mockNotifier.EXPECT().Configured().Return(false)

	_, err := s.Resend(context.Background(), dto.ResendInput{UserID: "user-1"})

	assert.NoError(t, err)
}

func TestAccountService_Resend_FallsBackToLoginForActiveUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	user := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: true}

	// Mock expectations
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockOTPs.EXPECT().GetLatest(gomock.Any(), "user-1").Return(nil, nil)
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.OneTimeCode) error {
			assert.Equal(t, domain.PurposeLogin, rec.Purpose)
			return nil
		})
	mockNotifier.EXPECT().Configured().Return(false)

	_, err := s.Resend(context.Background(), dto.ResendInput{UserID: "user-1"})

	assert.NoError(t, err)
}

func TestAccountService_Resend_FallsBackToRegisterForPendingUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	user := &domain.User{ID: "user-1", Email: "test@example.com", IsActive: false}

	// Mock expectations
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockOTPs.EXPECT().GetLatest(gomock.Any(), "user-1").Return(nil, nil)
	mockOTPs.EXPECT().Upsert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, rec *domain.OneTimeCode) error {
			assert.Equal(t, domain.PurposeRegister, rec.Purpose)
			return nil
		})
	mockNotifier.EXPECT().Configured().Return(false)

	_, err := s.Resend(context.Background(), dto.ResendInput{UserID: "user-1"})

	assert.NoError(t, err)
}

func TestAccountService_Resend_UnknownUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(nil, nil)

	_, err := s.Resend(context.Background(), dto.ResendInput{UserID: "user-1"})

	assert.Equal(t, autherror.ErrUserNotFound, err)
}

func TestAccountService_VerifyPasswordResetCode_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	var stored string

	// Mock expectations: the record is kept alive and tagged with the token,
	// not deleted.
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposePasswordReset).
		Return(liveCode("user-1", "123456", domain.PurposePasswordReset), nil)
	mockOTPs.EXPECT().SetResetToken(gomock.Any(), "user-1", domain.PurposePasswordReset, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ domain.Purpose, token string) error {
			stored = token
			return nil
		})

	token, err := s.VerifyPasswordResetCode(context.Background(), dto.PasswordResetVerifyInput{
		UserID: "user-1",
		OTP:    "123456",
	})

	assert.NoError(t, err)
	assert.Len(t, token, 32) // 16 random bytes, hex encoded
	assert.Equal(t, stored, token)
}

func TestAccountService_VerifyPasswordResetCode_WrongCode(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposePasswordReset).
		Return(liveCode("user-1", "123456", domain.PurposePasswordReset), nil)
	mockOTPs.EXPECT().IncrementAttempts(gomock.Any(), "user-1", domain.PurposePasswordReset).Return(nil)

	_, err := s.VerifyPasswordResetCode(context.Background(), dto.PasswordResetVerifyInput{
		UserID: "user-1",
		OTP:    "000000",
	})

	assert.Equal(t, autherror.ErrInvalidCode, err)
}

func TestAccountService_VerifyPasswordResetCode_TooManyAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	record := liveCode("user-1", "123456", domain.PurposePasswordReset)
	record.Attempts = 5

	// Mock expectations
	mockOTPs.EXPECT().GetLatestByPurpose(gomock.Any(), "user-1", domain.PurposePasswordReset).
		Return(record, nil)

	_, err := s.VerifyPasswordResetCode(context.Background(), dto.PasswordResetVerifyInput{
		UserID: "user-1",
		OTP:    "123456",
	})

	assert.Equal(t, autherror.ErrTooManyAttempts, err)
}

func TestAccountService_CompletePasswordReset_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	record := liveCode("user-1", "123456", domain.PurposePasswordReset)
	record.ResetToken = "aabbccddeeff00112233445566778899"
	user := &domain.User{ID: "user-1", Email: "test@example.com"}

	// Mock expectations
	mockOTPs.EXPECT().GetByResetToken(gomock.Any(), record.ResetToken).Return(record, nil)
	mockUsers.EXPECT().GetByID(gomock.Any(), "user-1").Return(user, nil)
	mockUsers.EXPECT().UpdatePassword(gomock.Any(), "user-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, hash string) error {
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")))
			return nil
		})
	mockUsers.EXPECT().Activate(gomock.Any(), "user-1").Return(nil)
	mockOTPs.EXPECT().Delete(gomock.Any(), "user-1", domain.PurposePasswordReset).Return(nil)

	err := s.CompletePasswordReset(context.Background(), dto.PasswordResetCompleteInput{
		ResetToken:  record.ResetToken,
		NewPassword: "newpassword1",
	})

	assert.NoError(t, err)
}

func TestAccountService_CompletePasswordReset_InvalidToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	// Mock expectations
	mockOTPs.EXPECT().GetByResetToken(gomock.Any(), "bogus").Return(nil, nil)

	err := s.CompletePasswordReset(context.Background(), dto.PasswordResetCompleteInput{
		ResetToken:  "bogus",
		NewPassword: "newpassword1",
	})

	assert.Equal(t, autherror.ErrInvalidResetToken, err)
}

func TestAccountService_CompletePasswordReset_ExpiredToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUsers := mocks.NewMockUserRepository(ctrl)
	mockOTPs := mocks.NewMockOTPRepository(ctrl)
	mockTokens := mocks.NewMockTokenGenerator(ctrl)
	mockNotifier := mocks.NewMockNotifier(ctrl)

	s := service.NewAccountService(mockUsers, mockOTPs, mockTokens, mockNotifier, testConfig())

	record := liveCode("user-1", "123456", domain.PurposePasswordReset)
	record.ResetToken = "aabbccddeeff00112233445566778899"
	record.ExpiresAt = time.Now().Add(-time.Minute)

	// Mock expectations
	mockOTPs.EXPECT().GetByResetToken(gomock.Any(), record.ResetToken).Return(record, nil)

	err := s.CompletePasswordReset(context.Background(), dto.PasswordResetCompleteInput{
		ResetToken:  record.ResetToken,
		NewPassword: "newpassword1",
	})

	assert.Equal(t, autherror.ErrOTPExpired, err)
}
