package sanitizer

// ClampWeight bounds a weight in kilograms to [min, max].
func ClampWeight(weight, min, max float64) float64 {
	if weight < min {
		return min
	}
	if weight > max {
		return max
	}
	return weight
}
