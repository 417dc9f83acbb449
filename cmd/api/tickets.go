package main

import (
	"errors"
	"net/http"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/notifications"
	"rentora/internal/store"
)

type CreateTicketPayload struct {
	PropertyID *int64 `json:"property_id"`
	Subject    string `json:"subject" validate:"required,max=200"`
	Body       string `json:"body" validate:"required,max=5000"`
	Priority   string `json:"priority" validate:"required,oneof=low medium high urgent"`
}

// createTicketHandler godoc
//
//	@Summary		Open a support ticket
//	@Tags			tickets
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateTicketPayload	true	"Ticket details"
//	@Success		201		{object}	store.Ticket
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/tickets [post]
func (app *application) createTicketHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceTickets, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreateTicketPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	creatorID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	ticket := &store.Ticket{
		PropertyID: payload.PropertyID,
		CreatorID:  creatorID,
		Subject:    payload.Subject,
		Body:       payload.Body,
		Priority:   payload.Priority,
		Status:     "open",
	}

	if err := app.store.Tickets.Create(r.Context(), ticket); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, ticket); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listTicketsHandler godoc
//
//	@Summary		List tickets
//	@Description	Support and admins see every ticket, others only their own
//	@Tags			tickets
//	@Produce		json
//	@Success		200	{array}	store.Ticket
//	@Failure		403	{object}	error
//	@Router			/tickets [get]
func (app *application) listTicketsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceTickets, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	var (
		tickets []store.Ticket
		err     error
	)

	if claims.Role == auth.RoleAdmin || claims.Role == auth.RoleSupport {
		tickets, err = app.store.Tickets.ListAll(r.Context())
	} else {
		var userID int64
		userID, err = claims.UserID()
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		tickets, err = app.store.Tickets.ListByParticipant(r.Context(), userID)
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, tickets); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getTicketHandler godoc
//
//	@Summary	Fetch a ticket
//	@Tags		tickets
//	@Produce	json
//	@Param		ticketID	path		int	true	"Ticket ID"
//	@Success	200			{object}	store.Ticket
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/tickets/{ticketID} [get]
func (app *application) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := idParam(r, "ticketID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	claims, ok := app.authorize(w, r, accesscontrol.ResourceTickets, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	// support reads any ticket; everyone else must be on it
	if claims.Role != auth.RoleSupport {
		if !app.checkOwnership(w, r, claims, accesscontrol.ResourceTickets, ticketID) {
			return
		}
	}

	ticket, err := app.store.Tickets.GetByID(r.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, ticket); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateTicketPayload struct {
	AssignedTo *int64  `json:"assigned_to"`
	Priority   *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	Status     *string `json:"status" validate:"omitempty,oneof=open in_progress resolved closed"`
}

// updateTicketHandler reassigns or progresses a ticket. Assignment and
// resolution push a notification to the affected user's devices; a failed
// push never fails the update.
//
//	@Summary	Update a ticket
//	@Tags		tickets
//	@Accept		json
//	@Produce	json
//	@Param		ticketID	path		int					true	"Ticket ID"
//	@Param		payload		body		UpdateTicketPayload	true	"Fields to update"
//	@Success	200			{object}	store.Ticket
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/tickets/{ticketID} [patch]
func (app *application) updateTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := idParam(r, "ticketID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceTickets, accesscontrol.ActionUpdate, ticketID); !ok {
		return
	}

	var payload UpdateTicketPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.store.Tickets.GetByID(r.Context(), ticketID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	var (
		notifyUser  int64
		notifyEvent notifications.TicketEvent
	)

	if payload.AssignedTo != nil {
		ticket.AssignedTo = payload.AssignedTo
		if ticket.Status == "open" {
			ticket.Status = "in_progress"
		}
		notifyUser = *payload.AssignedTo
		notifyEvent = notifications.TicketAssigned
	}
	if payload.Priority != nil {
		ticket.Priority = *payload.Priority
	}
	if payload.Status != nil {
		ticket.Status = *payload.Status
		switch *payload.Status {
		case "resolved":
			notifyUser = ticket.CreatorID
			notifyEvent = notifications.TicketResolved
		case "closed":
			notifyUser = ticket.CreatorID
			notifyEvent = notifications.TicketClosed
		}
	}

	if err := app.store.Tickets.Update(r.Context(), ticket); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if notifyUser != 0 {
		if err := notifications.SendTicketNotification(r.Context(), app.push, app.store, notifyUser, notifyEvent, ticket.ID); err != nil {
			app.logger.Warnw("ticket push failed", "ticket_id", ticket.ID, "user_id", notifyUser, "error", err)
		}
	}

	if err := app.jsonResponse(w, http.StatusOK, ticket); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteTicketHandler godoc
//
//	@Summary	Delete a ticket
//	@Tags		tickets
//	@Param		ticketID	path		int	true	"Ticket ID"
//	@Success	204			{string}	string	"Ticket deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/tickets/{ticketID} [delete]
func (app *application) deleteTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID, err := idParam(r, "ticketID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceTickets, accesscontrol.ActionDelete, ticketID); !ok {
		return
	}

	if err := app.store.Tickets.Delete(r.Context(), ticketID); err != nil {
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
