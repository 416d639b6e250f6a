package arm

// InRange reports whether proposed lies within [low, high].
func InRange(proposed, low, high int) bool {
	return proposed >= low && proposed <= high
}
