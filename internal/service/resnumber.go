package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"slotbook/internal/domain"
)

// MakeReservationNumber builds the human-facing booking identifier:
// slot date in basic ISO form, theme id, branch id, the last two
// digits of the booker's phone number, and a random 0-998 suffix.
// The 3-digit suffix does not guarantee global uniqueness; the store's
// unique index on reservation_number is the actual guard, and creation
// retries once on a collision.
func MakeReservationNumber(date time.Time, themeID, branchID int64, phoneNumber string, r domain.Rand) string {
	digits := strings.Map(func(c rune) rune {
		if c < '0' || c > '9' {
			return -1
		}
		return c
	}, phoneNumber)
	if len(digits) > 2 {
		digits = digits[len(digits)-2:]
	}

	return fmt.Sprintf("%s%d%d%s%d", date.Format("20060102"), themeID, branchID, digits, r.Intn(999))
}

// SystemRand draws from the shared math/rand source.
type SystemRand struct{}

func (SystemRand) Intn(n int) int { return rand.Intn(n) }
