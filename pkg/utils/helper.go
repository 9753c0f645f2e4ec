package utils

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
)

func GenerateUUIDString() string {
	return uuid.New().String()
}

// GenerateOrderID creates a booking code with timestamp.
// Format: BK-YYYYMMDD-HHMMSS-RANDOM
func GenerateOrderID(now time.Time) string {
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.IntN(10000))

	return fmt.Sprintf("BK-%s-%s-%s", datePart, timePart, randomPart)
}
