package models

import "time"

// Column names of the review dataset header.
const (
	ColReviewID         = "review_id"
	ColAppName          = "app_name"
	ColRating           = "rating"
	ColReviewDate       = "review_date"
	ColReviewLanguage   = "review_language"
	ColDeviceType       = "device_type"
	ColVerifiedPurchase = "verified_purchase"
	ColNumHelpfulVotes  = "num_helpful_votes"
	ColUserID           = "user_id"
	ColUserAge          = "user_age"
	ColUserCountry      = "user_country"
	ColUserGender       = "user_gender"
)

// Columns is the fixed field set a review row is cleaned from.
var Columns = []string{
	ColReviewID,
	ColAppName,
	ColRating,
	ColReviewDate,
	ColReviewLanguage,
	ColDeviceType,
	ColVerifiedPurchase,
	ColNumHelpfulVotes,
	ColUserID,
	ColUserAge,
	ColUserCountry,
	ColUserGender,
}

// RawRecord is one parsed row keyed by header name. A column missing from
// the map is null; a present empty string is empty.
type RawRecord map[string]string

// Value returns the cell for column and whether it holds a non-empty value.
func (r RawRecord) Value(column string) (string, bool) {
	v, ok := r[column]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type Review struct {
	ReviewID         int64     `json:"review_id"`
	AppName          string    `json:"app_name"`
	Rating           float64   `json:"rating"`
	ReviewDate       time.Time `json:"review_date"`
	ReviewLanguage   string    `json:"review_language"`
	DeviceType       string    `json:"device_type"`
	VerifiedPurchase bool      `json:"verified_purchase"`
	NumHelpfulVotes  int64     `json:"num_helpful_votes"`
	User             User      `json:"user"`
}

type User struct {
	UserID      int64   `json:"user_id"`
	UserAge     int64   `json:"user_age"`
	UserCountry string  `json:"user_country"`
	UserGender  *string `json:"user_gender"`
}

type Sentiment string

const (
	Positive Sentiment = "positive"
	Neutral  Sentiment = "neutral"
	Negative Sentiment = "negative"
)

// SentimentReport counts reviews per sentiment for one group key
// (an app name or a review language).
type SentimentReport struct {
	GroupKey string `json:"group_key"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

// Total is the number of reviews counted in the report.
func (r SentimentReport) Total() int {
	return r.Positive + r.Neutral + r.Negative
}

// AppSentiment is the published form of a per-app report.
type AppSentiment struct {
	AppName  string `json:"app_name"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

// LanguageSentiment is the published form of a per-language report.
type LanguageSentiment struct {
	LangName string `json:"lang_name"`
	Positive int    `json:"positive"`
	Neutral  int    `json:"neutral"`
	Negative int    `json:"negative"`
}

func (r SentimentReport) AsApp() AppSentiment {
	return AppSentiment{AppName: r.GroupKey, Positive: r.Positive, Neutral: r.Neutral, Negative: r.Negative}
}

func (r SentimentReport) AsLanguage() LanguageSentiment {
	return LanguageSentiment{LangName: r.GroupKey, Positive: r.Positive, Neutral: r.Neutral, Negative: r.Negative}
}

// AppReports converts reports keyed by app name, keeping order.
func AppReports(reports []SentimentReport) []AppSentiment {
	out := make([]AppSentiment, len(reports))
	for i, r := range reports {
		out[i] = r.AsApp()
	}
	return out
}

// LanguageReports converts reports keyed by review language, keeping order.
func LanguageReports(reports []SentimentReport) []LanguageSentiment {
	out := make([]LanguageSentiment, len(reports))
	for i, r := range reports {
		out[i] = r.AsLanguage()
	}
	return out
}

// SummaryStatistics describes the app with the most reviews.
type SummaryStatistics struct {
	MostReviewedApp string  `json:"mostReviewedApp"`
	MostReviews     int     `json:"mostReviews"`
	MostUsedDevice  string  `json:"mostUsedDevice"`
	MostDevices     int     `json:"mostDevices"`
	AvgRating       float64 `json:"avgRating"`
}
