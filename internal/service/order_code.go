package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	orderCodePrefix  = "PED-"
	orderCodeMaxLen  = 20
	orderCodeRandLen = 4
	base36Alphabet   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// generateOrderCode builds PED-<base36 millis>-<4 random base36 chars>.
func generateOrderCode(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	random := uuid.New()
	suffix := make([]byte, orderCodeRandLen)
	for i := range suffix {
		suffix[i] = base36Alphabet[int(random[i])%len(base36Alphabet)]
	}
	code := orderCodePrefix + stamp + "-" + string(suffix)
	if len(code) > orderCodeMaxLen {
		code = code[:orderCodeMaxLen]
	}
	return code
}
