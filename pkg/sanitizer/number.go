package sanitizer

const (
	MinRating = 0
	MaxRating = 5
)

func NormalizeRating(rating float64) float64 {
	if rating < MinRating {
		return MinRating
	}
	if rating > MaxRating {
		return MaxRating
	}
	return rating
}
