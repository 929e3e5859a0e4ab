package fingerprint

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/conorfennell/flashdeck/internal/domain"
)

// Normalize concatenates the card's front, back and category after cleaning
// each part. Difficulty is not part of a card's content.
func Normalize(d domain.Draft) string {
	normalizePart := func(part string) string {
		p := strings.ToLower(part)
		p = strings.ReplaceAll(p, "\r\n", "\n")
		return strings.TrimSpace(p)
	}

	// Newline separators keep "ab"+"c" distinct from "a"+"bc".
	return strings.Join([]string{
		normalizePart(d.Front),
		normalizePart(d.Back),
		normalizePart(d.Category),
	}, "\n")
}

// Of returns the SHA-256 hex digest of the normalized draft.
func Of(d domain.Draft) string {
	sum := sha256.Sum256([]byte(Normalize(d)))
	return fmt.Sprintf("%x", sum)
}
