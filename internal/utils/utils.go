package utils

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaskEmail hides the local part of an email address for logs
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "******"
	}
	local := email[:at]
	if len(local) > 2 {
		return local[:2] + "******" + email[at:]
	}
	return "******" + email[at:]
}

// hexFromUUID returns n hex characters taken from a fresh UUIDv4
func hexFromUUID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// RedemptionCode builds a redemption code of the form <PREFIX>-<12 hex>, where
// PREFIX is the first three letters of the category upper-cased, or RWD.
func RedemptionCode(category string) string {
	var prefix strings.Builder
	for _, r := range category {
		if prefix.Len() == 3 {
			break
		}
		if unicode.IsLetter(r) && r < unicode.MaxASCII {
			prefix.WriteRune(unicode.ToUpper(r))
		}
	}
	p := prefix.String()
	if len(p) < 3 {
		p = "RWD"
	}
	return p + "-" + strings.ToUpper(hexFromUUID(12))
}

// ParticipationID builds a raffle participation id of the form <raffleHex>-<8 hex>
func ParticipationID(raffleID primitive.ObjectID) string {
	return raffleID.Hex() + "-" + hexFromUUID(8)
}

// PaymentReference builds a unique reference for a payment request
func PaymentReference(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ParsePage normalises page and limit query values, capping limit at max
func ParsePage(pageStr, limitStr string, defaultLimit, max int) (int, int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > max {
		limit = max
	}
	return page, limit
}
