package main

import (
	"errors"
	"net/http"
	"time"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/store"
)

type CreatePaymentPayload struct {
	ContractID int64   `json:"contract_id" validate:"required,gt=0"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Kind       string  `json:"kind" validate:"required,oneof=rent deposit fee"`
}

// createPaymentHandler godoc
//
//	@Summary		Record a payment
//	@Description	Creates a pending payment on a contract the caller is party to
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreatePaymentPayload	true	"Payment details"
//	@Success		201		{object}	store.Payment
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/payments [post]
func (app *application) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourcePayments, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreatePaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payerID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	if claims.Role != auth.RoleAdmin {
		party, err := app.store.Contracts.IsParticipant(r.Context(), payerID, payload.ContractID)
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if !party {
			app.forbiddenResponse(w, r, auth.ErrForbidden)
			return
		}
	}

	payment := &store.Payment{
		ContractID: payload.ContractID,
		PayerID:    payerID,
		Amount:     payload.Amount,
		Kind:       payload.Kind,
		Status:     "pending",
	}

	if err := app.store.Payments.Create(r.Context(), payment); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	// short opaque reference for receipts and bank statements
	reference, err := app.payRefs.EncodeInt64([]int64{payment.ID})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if err := app.store.Payments.SetReference(r.Context(), payment.ID, reference); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	payment.Reference = reference

	if err := app.jsonResponse(w, http.StatusCreated, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getPaymentHandler godoc
//
//	@Summary	Fetch a payment
//	@Tags		payments
//	@Produce	json
//	@Param		paymentID	path		int	true	"Payment ID"
//	@Success	200			{object}	store.Payment
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/payments/{paymentID} [get]
func (app *application) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, err := idParam(r, "paymentID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourcePayments, accesscontrol.ActionRead, paymentID); !ok {
		return
	}

	payment, err := app.store.Payments.GetByID(r.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdatePaymentPayload struct {
	Status *string `json:"status" validate:"omitempty,oneof=pending paid failed refunded"`
}

// updatePaymentHandler godoc
//
//	@Summary	Update a payment status
//	@Tags		payments
//	@Accept		json
//	@Produce	json
//	@Param		paymentID	path		int						true	"Payment ID"
//	@Param		payload		body		UpdatePaymentPayload	true	"New status"
//	@Success	200			{object}	store.Payment
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/payments/{paymentID} [patch]
func (app *application) updatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, err := idParam(r, "paymentID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourcePayments, accesscontrol.ActionUpdate, paymentID); !ok {
		return
	}

	var payload UpdatePaymentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	payment, err := app.store.Payments.GetByID(r.Context(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if payload.Status != nil {
		payment.Status = *payload.Status
		if payment.Status == "paid" && payment.PaidAt == nil {
			now := time.Now()
			payment.PaidAt = &now
		}
	}

	if err := app.store.Payments.Update(r.Context(), payment); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, payment); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deletePaymentHandler godoc
//
//	@Summary	Delete a payment
//	@Tags		payments
//	@Param		paymentID	path		int	true	"Payment ID"
//	@Success	204			{string}	string	"Payment deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/payments/{paymentID} [delete]
func (app *application) deletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID, err := idParam(r, "paymentID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourcePayments, accesscontrol.ActionDelete, paymentID); !ok {
		return
	}

	if err := app.store.Payments.Delete(r.Context(), paymentID); err != nil {
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
