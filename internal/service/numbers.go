package service

import (
	"math/rand/v2"
	"strconv"
	"time"

	"hotelbook/internal/models"
)

// RandomNumberGenerator builds "BK" + unix millis + a random suffix in [0, 999].
// Numbers are not checked for uniqueness.
type RandomNumberGenerator struct{}

func (RandomNumberGenerator) Next(now time.Time) string {
	return models.BookingNumberPrefix + strconv.FormatInt(now.UnixMilli(), 10) + strconv.Itoa(rand.IntN(1000))
}
