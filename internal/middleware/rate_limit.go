// internal/middleware/rate_limit.go
package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/akunbay/akunbay-backend/internal/apperror"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

// RateLimit limits requests per client IP using an in-memory sliding window.
// A store failure fails open: dropping traffic over a limiter bug is worse
// than letting a burst through.
func RateLimit(limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 30
	}
	if period <= 0 {
		period = time.Minute
	}

	instance := limiter.New(memory.NewStore(), limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		lctx, err := instance.Get(c, c.ClientIP())
		if err != nil {
			logrus.WithError(err).Warn("Rate limiter store error")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", lctx.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", lctx.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", lctx.Reset))

		if lctx.Reached {
			utils.AppErrorResponse(c, apperror.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
