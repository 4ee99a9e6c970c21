// Package sentiment maps star ratings to sentiment buckets.
package sentiment

import "review-dashboard/internal/models"

const (
	positiveAbove = 4.0
	negativeBelow = 2.0
)

// Label returns positive above 4, negative below 2 and neutral for the
// closed range [2, 4].
func Label(rating float64) models.Sentiment {
	switch {
	case rating > positiveAbove:
		return models.Positive
	case rating < negativeBelow:
		return models.Negative
	default:
		return models.Neutral
	}
}

func Of(r models.Review) models.Sentiment {
	return Label(r.Rating)
}
