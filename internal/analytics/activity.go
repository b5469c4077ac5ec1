// Package analytics summarizes when a user is active.
package analytics

import (
	"sort"

	"twitscan/internal/model"
)

// HourlyActivity counts posts per UTC hour of day.
func HourlyActivity(posts []model.Post) [24]int {
	var buckets [24]int
	for _, p := range posts {
		buckets[p.CreatedAt.UTC().Hour()]++
	}
	return buckets
}

// PeakHours returns the n busiest hours, busiest first. Ties go to the
// earlier hour; empty hours are never returned.
func PeakHours(b [24]int, n int) []int {
	hours := make([]int, 0, 24)
	for h, c := range b {
		if c > 0 {
			hours = append(hours, h)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool { return b[hours[i]] > b[hours[j]] })
	if n > 0 && len(hours) > n {
		hours = hours[:n]
	}
	return hours
}

// Kinds splits a user's posts into originals, replies and reposts.
func Kinds(posts []model.Post) (originals, replies, reposts int) {
	for _, p := range posts {
		switch {
		case p.IsRetweet:
			reposts++
		case p.InReplyToStatusID != nil:
			replies++
		default:
			originals++
		}
	}
	return
}
