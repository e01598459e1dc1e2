// Package jobs hosts periodic maintenance work.
package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/securevault/securevault-backend/repository"
)

// StartShareLinkCleanup deletes share links past their expiry once per
// interval. Expiry checks on the request path stay lazy; this sweep is
// hygiene so dead links do not accumulate.
func StartShareLinkCleanup(shares repository.ShareLinkRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			removed, err := shares.DeleteExpired(context.Background(), time.Now())
			if err != nil {
				log.Error().Err(err).Msg("share link cleanup failed")
				continue
			}
			if removed > 0 {
				log.Info().Int64("removed", removed).Msg("expired share links removed")
			}
		}
	}()
}
