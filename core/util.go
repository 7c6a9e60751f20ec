package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify turns "IELTS Prep: 6 weeks" into "ielts-prep-6-weeks".
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// NowFunc is mockable in tests. Timestamps are stored in UTC with microsecond precision (postgres).
var NowFunc = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Getwd finds the project root, the first parent directory holding a go.mod.
// go-test changes the working directory to the package being tested, so relative
// config paths would break otherwise. Falls back to the working directory (deployed binaries).
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// CleanCurrency normalizes an ISO 4217 code: "usd " -> "USD".
func CleanCurrency(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// FormatMoney renders minor units: FormatMoney(125050, "USD") = "USD 1250.50".
func FormatMoney(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign, cents = "-", -cents
	}
	return fmt.Sprintf("%s %s%d.%02d", currency, sign, cents/100, cents%100)
}

// NewReference returns a short human-friendly reference, e.g. "RSV-9F86D081".
func NewReference(prefix string) string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + strings.ToUpper(id[:8])
}
