package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/staff-attendance/internal/pkg/jwt"
)

// PruneRevokedTokens drops logged-out tokens whose expiry has passed.
func PruneRevokedTokens(jwtService jwt.Service) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if n := jwtService.PruneRevoked(time.Now()); n > 0 {
			slog.Info("Pruned revoked tokens", "count", n)
		}
		return nil
	}
}
