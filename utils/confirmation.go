package utils

import (
	"fmt"
	"math/rand"
	"time"
)

const confirmationCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateConfirmationCode builds a human-shareable booking reference of the
// form BK-<6 digits>-<3 alnum>. The digits come from the timestamp and the
// suffix is random, which makes codes practically unique but not guaranteed;
// callers re-check against stored bookings and regenerate on collision.
func GenerateConfirmationCode(now time.Time) string {
	digits := now.UnixMilli() % 1000000
	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = confirmationCharset[rand.Intn(len(confirmationCharset))]
	}
	return fmt.Sprintf("BK-%06d-%s", digits, suffix)
}
