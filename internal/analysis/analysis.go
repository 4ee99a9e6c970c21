// Package analysis computes grouped sentiment counts and summary statistics
// over cleaned reviews. Group order is always the order in which a key is
// first seen; nothing here sorts.
package analysis

import (
	"errors"
	"math"

	"review-dashboard/internal/models"
	"review-dashboard/internal/sentiment"
)

// ErrNoReviews is returned by Summarize for an empty dataset.
var ErrNoReviews = errors.New("no reviews to summarize")

// KeyFunc extracts the grouping key of a review.
type KeyFunc func(models.Review) string

func AppName(r models.Review) string        { return r.AppName }
func ReviewLanguage(r models.Review) string { return r.ReviewLanguage }

// AggregateSentiment counts sentiments per key in first-seen key order.
func AggregateSentiment(reviews []models.Review, key KeyFunc) []models.SentimentReport {
	reports := make([]models.SentimentReport, 0)
	index := make(map[string]int)

	for _, r := range reviews {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(reports)
			index[k] = i
			reports = append(reports, models.SentimentReport{GroupKey: k})
		}

		switch sentiment.Of(r) {
		case models.Positive:
			reports[i].Positive++
		case models.Negative:
			reports[i].Negative++
		default:
			reports[i].Neutral++
		}
	}
	return reports
}

func ByApp(reviews []models.Review) []models.SentimentReport {
	return AggregateSentiment(reviews, AppName)
}

func ByLanguage(reviews []models.Review) []models.SentimentReport {
	return AggregateSentiment(reviews, ReviewLanguage)
}

// Summarize reports the most reviewed app, its most used device and its
// mean rating rounded to three decimals. Ties go to the key seen first.
func Summarize(reviews []models.Review) (models.SummaryStatistics, error) {
	if len(reviews) == 0 {
		return models.SummaryStatistics{}, ErrNoReviews
	}

	app, appCount := mostFrequent(reviews, AppName)

	appReviews := make([]models.Review, 0, appCount)
	for _, r := range reviews {
		if r.AppName == app {
			appReviews = append(appReviews, r)
		}
	}

	device, deviceCount := mostFrequent(appReviews, func(r models.Review) string { return r.DeviceType })

	var total float64
	for _, r := range appReviews {
		total += r.Rating
	}

	return models.SummaryStatistics{
		MostReviewedApp: app,
		MostReviews:     appCount,
		MostUsedDevice:  device,
		MostDevices:     deviceCount,
		AvgRating:       round3(total / float64(len(appReviews))),
	}, nil
}

type keyCount struct {
	key   string
	count int
}

// mostFrequent counts keys in first-seen order, then scans that order with
// a strict greater-than so the earliest key wins a tie.
func mostFrequent(reviews []models.Review, key KeyFunc) (string, int) {
	counts := make([]keyCount, 0)
	index := make(map[string]int)
	for _, r := range reviews {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, keyCount{key: k})
		}
		counts[i].count++
	}

	var best keyCount
	for _, kc := range counts {
		if kc.count > best.count {
			best = kc
		}
	}
	return best.key, best.count
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
