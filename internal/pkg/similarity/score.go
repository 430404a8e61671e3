package similarity

// Score maps a similarity ratio to a decile score.
// Values over 0.9 and everything at or below zero map to 100 -
// the lower bound follows the legacy banding exactly
func Score(similarity float64) int {
	switch {
	case similarity > 0 && similarity < 0.1:
		return 10
	case similarity >= 0.1 && similarity < 0.2:
		return 20
	case similarity >= 0.2 && similarity < 0.3:
		return 30
	case similarity >= 0.3 && similarity < 0.4:
		return 40
	case similarity >= 0.4 && similarity < 0.5:
		return 50
	case similarity >= 0.5 && similarity < 0.6:
		return 60
	case similarity >= 0.6 && similarity < 0.7:
		return 70
	case similarity >= 0.7 && similarity < 0.8:
		return 80
	case similarity >= 0.8 && similarity < 0.9:
		return 90
	}
	return 100
}
