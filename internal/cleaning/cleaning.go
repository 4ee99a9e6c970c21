// Package cleaning turns raw review rows into typed reviews.
//
// A row survives only when every column except user_gender holds a value.
// Surviving rows are restructured (the user_* columns move into a nested
// User) and coerced field by field. Coercion failures are reported as
// *CoercionError; the Policy decides whether they abort the run or drop
// the row.
package cleaning

import (
	"fmt"

	"review-dashboard/internal/models"
)

type Policy string

const (
	// PolicyFail aborts on the first coercion failure in input order.
	PolicyFail Policy = "fail"
	// PolicySkip drops rows that fail coercion and counts them as invalid.
	PolicySkip Policy = "skip"
)

// ParsePolicy maps a config string onto a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFail, PolicySkip:
		return Policy(s), nil
	case "":
		return PolicyFail, nil
	default:
		return "", fmt.Errorf("unknown coercion policy %q", s)
	}
}

type Options struct {
	Policy  Policy
	Workers int // used by CleanParallel only
}

type Result struct {
	Reviews  []models.Review
	Excluded int // rows dropped by the null filter
	Invalid  int // rows dropped by PolicySkip
}

// Clean applies the null filter and coercion with PolicyFail.
func Clean(raw []models.RawRecord) ([]models.Review, error) {
	res, err := CleanWithOptions(raw, Options{Policy: PolicyFail})
	if err != nil {
		return nil, err
	}
	return res.Reviews, nil
}

func CleanWithOptions(raw []models.RawRecord, opts Options) (Result, error) {
	outcomes := make([]outcome, len(raw))
	for i, rec := range raw {
		outcomes[i] = cleanRecord(i+1, rec)
	}
	return collect(outcomes, opts.Policy)
}

type status uint8

const (
	kept status = iota
	excluded
	invalid
)

type outcome struct {
	review models.Review
	status status
	err    error
}

// collect folds per-row outcomes in input order.
func collect(outcomes []outcome, policy Policy) (Result, error) {
	res := Result{Reviews: make([]models.Review, 0, len(outcomes))}
	for _, o := range outcomes {
		switch o.status {
		case kept:
			res.Reviews = append(res.Reviews, o.review)
		case excluded:
			res.Excluded++
		case invalid:
			if policy != PolicySkip {
				return Result{}, o.err
			}
			res.Invalid++
		}
	}
	return res, nil
}

// complete reports whether every column but user_gender is present and
// non-empty. Extra header columns take part in the check.
func complete(rec models.RawRecord) bool {
	for _, col := range models.Columns {
		if col == models.ColUserGender {
			continue
		}
		if _, ok := rec.Value(col); !ok {
			return false
		}
	}
	for col, v := range rec {
		if col != models.ColUserGender && v == "" {
			return false
		}
	}
	return true
}

func cleanRecord(row int, rec models.RawRecord) outcome {
	if !complete(rec) {
		return outcome{status: excluded}
	}

	fail := func(col string, err error) outcome {
		return outcome{
			status: invalid,
			err:    &CoercionError{Row: row, Column: col, Value: rec[col], Err: err},
		}
	}

	reviewID, err := parseInt(rec[models.ColReviewID])
	if err != nil {
		return fail(models.ColReviewID, err)
	}
	rating, err := parseFloat(rec[models.ColRating])
	if err != nil {
		return fail(models.ColRating, err)
	}
	date, err := parseDate(rec[models.ColReviewDate])
	if err != nil {
		return fail(models.ColReviewDate, err)
	}
	votes, err := parseInt(rec[models.ColNumHelpfulVotes])
	if err != nil {
		return fail(models.ColNumHelpfulVotes, err)
	}
	userID, err := parseInt(rec[models.ColUserID])
	if err != nil {
		return fail(models.ColUserID, err)
	}
	userAge, err := parseInt(rec[models.ColUserAge])
	if err != nil {
		return fail(models.ColUserAge, err)
	}

	var gender *string
	if g, ok := rec.Value(models.ColUserGender); ok {
		gender = &g
	}

	return outcome{
		status: kept,
		review: models.Review{
			ReviewID:         reviewID,
			AppName:          rec[models.ColAppName],
			Rating:           rating,
			ReviewDate:       date,
			ReviewLanguage:   rec[models.ColReviewLanguage],
			DeviceType:       rec[models.ColDeviceType],
			VerifiedPurchase: rec[models.ColVerifiedPurchase] == "True",
			NumHelpfulVotes:  votes,
			User: models.User{
				UserID:      userID,
				UserAge:     userAge,
				UserCountry: rec[models.ColUserCountry],
				UserGender:  gender,
			},
		},
	}
}
