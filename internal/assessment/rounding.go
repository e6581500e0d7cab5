package assessment

import "math"

// roundHalfUp rounds to the nearest integer with halves going toward +Inf.
func roundHalfUp(x float64) float64 {
	r := math.Floor(x)
	if x-r >= 0.5 {
		return r + 1
	}
	return r
}

// Round2 rounds to two decimals, halves up.
func Round2(x float64) float64 {
	return roundHalfUp(x*100) / 100
}

// Round1 rounds to one decimal, halves up.
func Round1(x float64) float64 {
	return roundHalfUp(x*10) / 10
}

// ToPercent maps a 1..5 raw score to 0..100, one decimal.
func ToPercent(raw float64) float64 {
	return roundHalfUp(((raw-1)/4)*100*10) / 10
}
