package main

import (
	"errors"
	"net/http"

	"rentora/internal/accesscontrol"
	"rentora/internal/store"
)

type CreateReviewPayload struct {
	RevieweeID int64   `json:"reviewee_id" validate:"required,gt=0"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment" validate:"omitempty,max=2000"`
}

// createReviewHandler godoc
//
//	@Summary		Leave a review
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateReviewPayload	true	"Review"
//	@Success		201		{object}	store.Review
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/reviews [post]
func (app *application) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceReviews, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreateReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	reviewerID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if reviewerID == payload.RevieweeID {
		app.badRequestResponse(w, r, errors.New("cannot review yourself"))
		return
	}

	review := &store.Review{
		ReviewerID: reviewerID,
		RevieweeID: payload.RevieweeID,
		Rating:     payload.Rating,
		Comment:    payload.Comment,
	}

	if err := app.store.Reviews.Create(r.Context(), review); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listUserReviewsHandler godoc
//
//	@Summary	List reviews about a user
//	@Tags		reviews
//	@Produce	json
//	@Param		userID	path	int	true	"Reviewee's user ID"
//	@Success	200		{array}	store.Review
//	@Failure	403		{object}	error
//	@Router		/reviews/user/{userID} [get]
func (app *application) listUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	revieweeID, err := idParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceReviews, accesscontrol.ActionRead, 0); !ok {
		return
	}

	reviews, err := app.store.Reviews.ListByReviewee(r.Context(), revieweeID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, reviews); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getReviewHandler godoc
//
//	@Summary	Fetch a review
//	@Tags		reviews
//	@Produce	json
//	@Param		reviewID	path		int	true	"Review ID"
//	@Success	200			{object}	store.Review
//	@Failure	404			{object}	error
//	@Router		/reviews/{reviewID} [get]
func (app *application) getReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := idParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceReviews, accesscontrol.ActionRead, 0); !ok {
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, review); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteReviewHandler godoc
//
//	@Summary	Delete a review
//	@Tags		reviews
//	@Param		reviewID	path		int	true	"Review ID"
//	@Success	204			{string}	string	"Review deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/reviews/{reviewID} [delete]
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := idParam(r, "reviewID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceReviews, accesscontrol.ActionDelete, reviewID); !ok {
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), reviewID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
