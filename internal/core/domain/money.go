package domain

import "math"

// Monetary amounts live as float64 dollars in the domain and as integer
// cents at the persistence boundary.

func DollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}

func CentsToDollars(cents int64) float64 {
	return float64(cents) / 100
}
