// internal/middleware/idempotency.go
package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/akunbay/akunbay-backend/internal/models"
	"github.com/akunbay/akunbay-backend/internal/utils"
)

const idempotencyHeader = "Idempotency-Key"

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the recorded response for a repeated Idempotency-Key
// instead of re-executing the handler. The scope keys records per user and
// route, so the same key on different endpoints cannot collide. Mounted on
// whole route groups: safe methods and requests without the header pass
// through untouched.
func Idempotency(db *gorm.DB, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 128 {
			utils.BadRequestResponse(c, "idempotency key too long", nil)
			c.Abort()
			return
		}

		userID, _ := utils.GetUserIDFromContext(c)
		scope := c.Request.Method + " " + c.FullPath() + " " + userID

		var record models.IdempotencyRecord
		err := db.Where("scope = ? AND idempotency_key = ? AND expires_at > ?",
			scope, key, time.Now()).First(&record).Error
		if err == nil {
			contentType := record.ContentType
			if contentType == "" {
				contentType = "application/json"
			}
			c.Header("Idempotent-Replay", "true")
			c.Data(record.ResponseStatus, contentType, record.ResponseBody)
			c.Abort()
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("Idempotency lookup failed")
			utils.InternalErrorResponse(c, "")
			c.Abort()
			return
		}

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer
		c.Next()

		status := writer.Status()
		// Server errors stay retryable; everything else is recorded so the
		// client sees the same outcome on every retry.
		if status >= 500 {
			return
		}

		saveErr := db.Create(&models.IdempotencyRecord{
			Scope:          scope,
			IdempotencyKey: key,
			ResponseStatus: status,
			ResponseBody:   writer.body.Bytes(),
			ContentType:    writer.Header().Get("Content-Type"),
			ExpiresAt:      time.Now().Add(ttl),
		}).Error
		if saveErr != nil {
			// A concurrent request with the same key got there first. The
			// unique index makes this harmless.
			logrus.WithError(saveErr).WithField("scope", scope).Debug("Idempotency record not saved")
		}
	}
}
