package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Claim dates arrive as MM/DD/YY strings. Two-digit years below 50 map to
// 20xx, the rest to 19xx.

func ParseClaimDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return nil
	}
	month, errM := strconv.Atoi(parts[0])
	day, errD := strconv.Atoi(parts[1])
	year, errY := strconv.Atoi(parts[2])
	if errM != nil || errD != nil || errY != nil {
		return nil
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return nil
	}
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func FormatClaimDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%02d", int(t.Month()), t.Day(), t.Year()%100)
}
