package facade

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Fingerprint hashes the identifying fields of an element. Two schedule rows
// describing the same physical element hash identically, which is what makes
// repeated imports idempotent.
func Fingerprint(e RawElement) string {
	canonical := strings.Join([]string{
		strings.TrimSpace(e.Key),
		strings.ToLower(strings.TrimSpace(e.Level)),
		fmt.Sprintf("%.1f", normalizeAzimuth(e.AzimuthDeg)),
		fmt.Sprintf("%.1f", e.TiltDeg),
		fmt.Sprintf("%.3f", e.WidthM),
		fmt.Sprintf("%.3f", e.HeightM),
		fmt.Sprintf("%.3f", e.AreaM2),
		fmt.Sprintf("%.3f", e.GlassRatio),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
