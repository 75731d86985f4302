// File: utils/lock.go
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const BookingLockPrefix = "bookingLock:"

// BookingLockTTL bounds how long a booking mutation may hold its lock.
const BookingLockTTL = 10 * time.Second

// ErrBookingLocked is returned when another mutation holds the booking lock.
var ErrBookingLocked = fmt.Errorf("booking is locked by another operation")

// AcquireBookingLock takes the per-booking mutation lock and returns an owner
// token required to release it. Replacement and reassignment flows serialize
// on this lock so concurrent requests for the same booking cannot interleave.
func AcquireBookingLock(client *redis.Client, bookingID string) (string, error) {
	token := uuid.New().String()
	ctx := context.Background()
	ok, err := client.SetNX(ctx, BookingLockPrefix+bookingID, token, BookingLockTTL).Result()
	if err != nil {
		return "", fmt.Errorf("failed to acquire booking lock: %w", err)
	}
	if !ok {
		return "", ErrBookingLocked
	}
	return token, nil
}

// ReleaseBookingLock releases the lock if the caller still owns it. A lock
// that expired and was re-acquired by another owner is left untouched.
func ReleaseBookingLock(client *redis.Client, bookingID, token string) error {
	ctx := context.Background()
	current, err := client.Get(ctx, BookingLockPrefix+bookingID).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check booking lock owner: %w", err)
	}
	if current != token {
		return nil
	}
	return client.Del(ctx, BookingLockPrefix+bookingID).Err()
}
