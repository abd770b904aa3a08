// internal/services/credential_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMinutesRemaining(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{"full window", now.Add(10 * time.Minute), 10},
		{"partial minute rounds up", now.Add(9*time.Minute + 30*time.Second), 10},
		{"one second left", now.Add(time.Second), 1},
		{"exactly at expiry", now, 0},
		{"already expired", now.Add(-5 * time.Minute), 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MinutesRemaining(tc.expiresAt, now))
		})
	}
}
