package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartShareLinkCleaner periodically clears expired share tokens so
// stale links stop resolving and the tokens can be reissued.
func StartShareLinkCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    UPDATE files
                       SET share_token = NULL, share_expiry = NULL
                     WHERE share_expiry < now()
                `)
				if err != nil {
					log.Error("failed to clean expired share links", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired share links", zap.Int64("cleared", rows))
				}
			}
		}
	}()
}
