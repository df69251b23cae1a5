package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"gorm.io/gorm"

	"spendtrack/internal/models"
	"spendtrack/internal/testutil"
)

// captureDispatcher records every send and optionally fails each one.
type captureDispatcher struct {
	sent    []capturedMail
	sendErr error
}

type capturedMail struct {
	to      string
	subject string
}

func (d *captureDispatcher) Send(_ context.Context, to, subject, _, _ string) error {
	d.sent = append(d.sent, capturedMail{to: to, subject: subject})
	return d.sendErr
}

var otpPattern = regexp.MustCompile(`^\d{6}$`)

func reloadUser(t *testing.T, db *gorm.DB, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		t.Fatalf("failed to reload user %d: %v", id, err)
	}
	return &user
}

func TestRequestReset(t *testing.T) {
	t.Run("issues_code_and_mails_it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{}
		svc := NewPasswordResetService(db, dispatcher)

		user := testutil.CreateTestUserWithEmail(t, db, "reset@example.com")

		code, err := svc.RequestReset("reset@example.com")
		testutil.AssertNoError(t, err)

		if !otpPattern.MatchString(code) {
			t.Fatalf("expected 6-digit code, got %q", code)
		}

		stored := reloadUser(t, db, user.ID)
		if stored.ResetOTP != code {
			t.Errorf("expected stored code %s, got %s", code, stored.ResetOTP)
		}
		if stored.ResetOTPExpiresAt == nil || !stored.ResetOTPExpiresAt.After(time.Now()) {
			t.Error("expected code expiry in the future")
		}

		if len(dispatcher.sent) != 1 {
			t.Fatalf("expected 1 mail, got %d", len(dispatcher.sent))
		}
		if dispatcher.sent[0].to != "reset@example.com" {
			t.Errorf("expected mail to reset@example.com, got %s", dispatcher.sent[0].to)
		}
	})

	t.Run("unknown_email_succeeds_without_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{}
		svc := NewPasswordResetService(db, dispatcher)

		code, err := svc.RequestReset("nobody@example.com")
		testutil.AssertNoError(t, err)

		if code != "" {
			t.Errorf("expected no code for unknown email, got %q", code)
		}
		if len(dispatcher.sent) != 0 {
			t.Errorf("expected no mail, got %d", len(dispatcher.sent))
		}
	})

	t.Run("google_account_succeeds_without_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{}
		svc := NewPasswordResetService(db, dispatcher)

		user := testutil.CreateTestGoogleUser(t, db)

		code, err := svc.RequestReset(user.Email)
		testutil.AssertNoError(t, err)

		if code != "" {
			t.Errorf("expected no code for google account, got %q", code)
		}
		if len(dispatcher.sent) != 0 {
			t.Errorf("expected no mail, got %d", len(dispatcher.sent))
		}
	})

	t.Run("mail_failure_is_not_fatal", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{sendErr: errors.New("smtp down")}
		svc := NewPasswordResetService(db, dispatcher)

		user := testutil.CreateTestUserWithEmail(t, db, "flaky@example.com")

		code, err := svc.RequestReset("flaky@example.com")
		testutil.AssertNoError(t, err)

		if code == "" {
			t.Fatal("expected a code despite mail failure")
		}
		stored := reloadUser(t, db, user.ID)
		if stored.ResetOTP != code {
			t.Error("expected code to be persisted despite mail failure")
		}
	})

	t.Run("new_request_replaces_previous_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{}
		svc := NewPasswordResetService(db, dispatcher)

		testutil.CreateTestUserWithEmail(t, db, "again@example.com")

		first, err := svc.RequestReset("again@example.com")
		testutil.AssertNoError(t, err)
		second, err := svc.RequestReset("again@example.com")
		testutil.AssertNoError(t, err)

		if first != second {
			_, err = svc.VerifyCode("again@example.com", first)
			testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_CODE")
		}
		_, err = svc.VerifyCode("again@example.com", second)
		testutil.AssertNoError(t, err)
	})
}

func TestVerifyCode(t *testing.T) {
	t.Run("valid_code_yields_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		user := testutil.CreateTestUserWithEmail(t, db, "verify@example.com")

		code, err := svc.RequestReset("verify@example.com")
		testutil.AssertNoError(t, err)

		token, err := svc.VerifyCode("verify@example.com", code)
		testutil.AssertNoError(t, err)

		if len(token) != 40 {
			t.Errorf("expected 40-char hex token, got %d chars", len(token))
		}

		stored := reloadUser(t, db, user.ID)
		if stored.ResetOTP != "" {
			t.Error("expected code to be cleared after verification")
		}
		if stored.ResetTokenHash == "" || stored.ResetTokenHash == token {
			t.Error("expected token to be stored hashed")
		}
		if stored.ResetTokenExpiresAt == nil || !stored.ResetTokenExpiresAt.After(time.Now()) {
			t.Error("expected token expiry in the future")
		}
	})

	t.Run("wrong_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		testutil.CreateTestUserWithEmail(t, db, "wrong@example.com")
		_, err := svc.RequestReset("wrong@example.com")
		testutil.AssertNoError(t, err)

		_, err = svc.VerifyCode("wrong@example.com", "000000-nope")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_CODE")
	})

	t.Run("expired_code", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		user := testutil.CreateTestUserWithEmail(t, db, "expired@example.com")
		code, err := svc.RequestReset("expired@example.com")
		testutil.AssertNoError(t, err)

		past := time.Now().Add(-time.Minute)
		err = db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("reset_otp_expires_at", past).Error
		testutil.AssertNoError(t, err)

		_, err = svc.VerifyCode("expired@example.com", code)
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_CODE")
	})

	t.Run("code_is_single_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		testutil.CreateTestUserWithEmail(t, db, "once@example.com")
		code, err := svc.RequestReset("once@example.com")
		testutil.AssertNoError(t, err)

		_, err = svc.VerifyCode("once@example.com", code)
		testutil.AssertNoError(t, err)

		_, err = svc.VerifyCode("once@example.com", code)
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_CODE")
	})

	t.Run("email_case_insensitive", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		testutil.CreateTestUserWithEmail(t, db, "caseotp@example.com")
		code, err := svc.RequestReset("caseotp@example.com")
		testutil.AssertNoError(t, err)

		_, err = svc.VerifyCode("CASEOTP@EXAMPLE.COM", code)
		testutil.AssertNoError(t, err)
	})
}

func TestCompleteReset(t *testing.T) {
	t.Run("full_round_trip", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		dispatcher := &captureDispatcher{}
		svc := NewPasswordResetService(db, dispatcher)
		users := NewUserService(db)

		user := testutil.CreateTestUserWithEmail(t, db, "roundtrip@example.com")

		code, err := svc.RequestReset("roundtrip@example.com")
		testutil.AssertNoError(t, err)
		token, err := svc.VerifyCode("roundtrip@example.com", code)
		testutil.AssertNoError(t, err)

		err = svc.CompleteReset(token, "new-password-99")
		testutil.AssertNoError(t, err)

		stored := reloadUser(t, db, user.ID)
		if !users.VerifyPassword(stored, "new-password-99") {
			t.Error("expected new password to verify")
		}
		if users.VerifyPassword(stored, "password123") {
			t.Error("expected old password to stop verifying")
		}
		if stored.ResetTokenHash != "" || stored.ResetTokenExpiresAt != nil {
			t.Error("expected token fields to be cleared")
		}

		// One mail for the code, one confirmation.
		if len(dispatcher.sent) != 2 {
			t.Errorf("expected 2 mails, got %d", len(dispatcher.sent))
		}
	})

	t.Run("token_is_single_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		testutil.CreateTestUserWithEmail(t, db, "onetoken@example.com")
		code, err := svc.RequestReset("onetoken@example.com")
		testutil.AssertNoError(t, err)
		token, err := svc.VerifyCode("onetoken@example.com", code)
		testutil.AssertNoError(t, err)

		err = svc.CompleteReset(token, "first-new-pass")
		testutil.AssertNoError(t, err)

		err = svc.CompleteReset(token, "second-new-pass")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")
	})

	t.Run("expired_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		user := testutil.CreateTestUserWithEmail(t, db, "staletoken@example.com")
		code, err := svc.RequestReset("staletoken@example.com")
		testutil.AssertNoError(t, err)
		token, err := svc.VerifyCode("staletoken@example.com", code)
		testutil.AssertNoError(t, err)

		past := time.Now().Add(-time.Minute)
		err = db.Model(&models.User{}).Where("id = ?", user.ID).
			Update("reset_token_expires_at", past).Error
		testutil.AssertNoError(t, err)

		err = svc.CompleteReset(token, "too-late-pass")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")
	})

	t.Run("unknown_token", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		err := svc.CompleteReset("deadbeefdeadbeefdeadbeefdeadbeefdeadbeef", "whatever-pass")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")
	})

	t.Run("empty_arguments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewPasswordResetService(db, &captureDispatcher{})

		err := svc.CompleteReset("", "some-pass")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")

		err = svc.CompleteReset("sometoken", "")
		testutil.AssertAppError(t, err, "INVALID_OR_EXPIRED_TOKEN")
	})
}
