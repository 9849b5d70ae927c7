package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"campnest/internal/app/commands"
	"campnest/internal/app/dto"
	reviewsapp "campnest/internal/app/handlers/reviews"
	"campnest/internal/app/queries"
)

// ReviewHandler covers guest review submission and public listings per site.
type ReviewHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type submitReviewRequest struct {
	Location      int    `json:"location"`
	Communication int    `json:"communication"`
	Value         int    `json:"value"`
	Cleanliness   int    `json:"cleanliness"`
	Accuracy      int    `json:"accuracy"`
	Amenities     int    `json:"amenities"`
	Text          string `json:"text"`
}

func (h ReviewHandler) Submit(c *gin.Context) {
	user, ok := requireRole(c, "")
	if !ok {
		return
	}
	var req submitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, reviewsapp.SubmitReviewCommand{
		AuthorID:      user.ID,
		BookingID:     c.Param("id"),
		Location:      req.Location,
		Communication: req.Communication,
		Value:         req.Value,
		Cleanliness:   req.Cleanliness,
		Accuracy:      req.Accuracy,
		Amenities:     req.Amenities,
		Text:          req.Text,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReviewHandler) ListForSite(c *gin.Context) {
	result, err := queries.Ask[reviewsapp.SiteReviewsQuery, *dto.ReviewCollection](c.Request.Context(), h.Queries, reviewsapp.SiteReviewsQuery{
		SiteID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ReviewHTTP = ReviewHandler{}
