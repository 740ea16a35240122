package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/hridaya/internal/db"
	"github.com/terraincognita07/hridaya/internal/services"
)

// RunResetPasswordCommand gives the account a temporary password that must be
// replaced on the next login.
func RunResetPasswordCommand(ctx context.Context, dbPath string, email string, out io.Writer) error {
	if services.NormalizeAuthEmail(email) == "" {
		return errors.New("a valid email is required")
	}

	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	if sqlDB, err := database.DB(); err == nil {
		defer sqlDB.Close()
	}

	authService := services.NewAuthService(db.NewUserRepository(database))
	temporaryPassword, err := authService.ResetToTemporaryPassword(ctx, email)
	if err != nil {
		if errors.Is(err, services.ErrAuthUserNotFound) {
			return fmt.Errorf("user %s not found", services.NormalizeAuthEmail(email))
		}
		return fmt.Errorf("reset password: %w", err)
	}

	fmt.Fprintln(out, "Password reset successful")
	fmt.Fprintf(out, "Temporary password: %s\n", temporaryPassword)
	fmt.Fprintln(out, "User must change password on next login.")
	return nil
}
