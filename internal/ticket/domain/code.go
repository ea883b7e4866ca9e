package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CodeGenerator produces a candidate ticket code. Uniqueness is enforced by the
// store; a collision is retried with a fresh code.
type CodeGenerator func(now time.Time) (string, error)

// GenerateCode returns TKT-<base36 unix millis>-<8 hex chars>.
func GenerateCode(now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("ticket code entropy: %w", err)
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return "TKT-" + stamp + "-" + strings.ToUpper(hex.EncodeToString(suffix)), nil
}
