package review

import (
	"math"
	"time"
)

type Review struct {
	ID         uint      `json:"id"`
	UserID     uint      `json:"userId"`
	UserName   string    `json:"userName,omitempty"`
	MaterialID uint      `json:"materialId"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	IsActive   bool      `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summary is the denormalised rating kept on the material row.
type Summary struct {
	Ratings    float64 `json:"ratings"`
	NumReviews int     `json:"numReviews"`
}

// Summarize averages ratings to one decimal place. No ratings yields 0.
func Summarize(ratings []int) Summary {
	if len(ratings) == 0 {
		return Summary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return Summary{
		Ratings:    math.Round(avg*10) / 10,
		NumReviews: len(ratings),
	}
}
