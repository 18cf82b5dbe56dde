package search

import (
	"math"

	"github.com/freedome/freedome"
)

// MaxStars is the number of positions in a star rendering.
const MaxStars = 5

// Summarize aggregates review ratings. Ratings outside 1..5 are ignored.
// With no valid ratings the average is nil and all stars are empty.
func Summarize(ratings []int) freedome.Rating {
	var sum, n int
	for _, r := range ratings {
		if r < 1 || r > MaxStars {
			continue
		}
		sum += r
		n++
	}
	if n == 0 {
		return freedome.Rating{Stars: freedome.Stars{Empty: MaxStars}}
	}

	avg := float64(sum) / float64(n)
	return freedome.Rating{
		Count:   n,
		Average: &avg,
		Stars:   StarsFor(avg),
	}
}

// StarsFor renders avg as floor(avg) full stars, a half star when the
// remainder is at least 0.5, and empty stars for the rest.
func StarsFor(avg float64) freedome.Stars {
	if avg < 0 || math.IsNaN(avg) {
		avg = 0
	}
	if avg > MaxStars {
		avg = MaxStars
	}

	full := int(math.Floor(avg))
	half := 0
	if full < MaxStars && avg-float64(full) >= 0.5 {
		half = 1
	}
	return freedome.Stars{Full: full, Half: half, Empty: MaxStars - full - half}
}

// ReviewRatings pulls the ratings out of reviews.
func ReviewRatings(reviews []freedome.Review) []int {
	out := make([]int, len(reviews))
	for i, r := range reviews {
		out[i] = r.Rating
	}
	return out
}
