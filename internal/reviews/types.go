package reviews

import (
	"github.com/angelmondragon/ezshop-backend/pkg/dates"
	"github.com/angelmondragon/ezshop-backend/pkg/db/models"
)

// ReviewDTO is the review payload returned to clients.
type ReviewDTO struct {
	Model   string `json:"model"`
	User    string `json:"user"`
	Score   int    `json:"score"`
	Date    string `json:"date"`
	Comment string `json:"comment"`
}

func newReviewDTO(review models.Review) ReviewDTO {
	return ReviewDTO{
		Model:   review.ProductModel,
		User:    review.Username,
		Score:   review.Score,
		Date:    dates.Format(review.Date),
		Comment: review.Comment,
	}
}
