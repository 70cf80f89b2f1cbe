package constants

const (
	// AmountScale is the number of fractional digits carried by every amount.
	AmountScale = 4
	// UnitsPerWhole is the scaled-integer value of 1.0000.
	UnitsPerWhole = 10000
)
