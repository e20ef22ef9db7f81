package services

import (
	"math"
	"time"

	"rate-comparison/models"
)

// MonthsBack steps n calendar months back from now, clamping the day to the
// last day of the target month (Mar 31 minus one month is Feb 28/29).
func MonthsBack(now time.Time, n int) time.Time {
	y, m, d := now.Date()
	first := time.Date(y, m-time.Month(n), 1, now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// WindowStarts returns the start instant of every report window.
func WindowStarts(now time.Time) [models.WindowCount]time.Time {
	var starts [models.WindowCount]time.Time
	for i, w := range models.Windows {
		starts[i] = MonthsBack(now, w.Months)
	}
	return starts
}

// windowMeans averages the present asking and in-store prices of
// observations dated at or after start. No samples yields nil.
func windowMeans(obs []models.RateObservation, start time.Time) (asking, inStore *float64) {
	var askSum, inSum float64
	var askN, inN int
	for _, o := range obs {
		if o.Date.Before(start) {
			continue
		}
		if v, ok := present(o.Asking); ok {
			askSum += v
			askN++
		}
		if v, ok := present(o.InStore); ok {
			inSum += v
			inN++
		}
	}
	return mean(askSum, askN), mean(inSum, inN)
}

func present(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}

func mean(sum float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	m := sum / float64(n)
	return &m
}

// Adjusted scales a mean by (1 + adjustment). A nil mean stays nil.
func Adjusted(v *float64, adjustment float64) *float64 {
	if v == nil {
		return nil
	}
	a := *v * (1 + adjustment)
	return &a
}
