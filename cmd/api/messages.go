package main

import (
	"errors"
	"net/http"

	"rentora/internal/accesscontrol"
	"rentora/internal/store"
)

type CreateMessagePayload struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	Body       string `json:"body" validate:"required,max=5000"`
}

// createMessageHandler godoc
//
//	@Summary		Send a message
//	@Tags			messages
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateMessagePayload	true	"Message"
//	@Success		201		{object}	store.Message
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/messages [post]
func (app *application) createMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceMessages, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreateMessagePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	senderID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if senderID == payload.ReceiverID {
		app.badRequestResponse(w, r, errors.New("cannot message yourself"))
		return
	}

	message := &store.Message{
		SenderID:   senderID,
		ReceiverID: payload.ReceiverID,
		Body:       payload.Body,
	}

	if err := app.store.Messages.Create(r.Context(), message); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, message); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listConversationHandler godoc
//
//	@Summary		List a conversation
//	@Description	Returns the message thread between the caller and another user
//	@Tags			messages
//	@Produce		json
//	@Param			userID	path	int	true	"Other participant's user ID"
//	@Success		200		{array}	store.Message
//	@Failure		403		{object}	error
//	@Router			/messages/conversation/{userID} [get]
func (app *application) listConversationHandler(w http.ResponseWriter, r *http.Request) {
	otherID, err := idParam(r, "userID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, ok := app.authorize(w, r, accesscontrol.ResourceMessages, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	userID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	messages, err := app.store.Messages.ListConversation(r.Context(), userID, otherID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, messages); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getMessageHandler godoc
//
//	@Summary	Fetch a message
//	@Tags		messages
//	@Produce	json
//	@Param		messageID	path		int	true	"Message ID"
//	@Success	200			{object}	store.Message
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/messages/{messageID} [get]
func (app *application) getMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID, err := idParam(r, "messageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceMessages, accesscontrol.ActionRead, messageID); !ok {
		return
	}

	message, err := app.store.Messages.GetByID(r.Context(), messageID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, message); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteMessageHandler godoc
//
//	@Summary	Delete a message
//	@Tags		messages
//	@Param		messageID	path		int	true	"Message ID"
//	@Success	204			{string}	string	"Message deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/messages/{messageID} [delete]
func (app *application) deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID, err := idParam(r, "messageID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceMessages, accesscontrol.ActionDelete, messageID); !ok {
		return
	}

	if err := app.store.Messages.Delete(r.Context(), messageID); err != nil {
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
