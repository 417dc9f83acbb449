package main

import (
	"errors"
	"net/http"
	"time"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/store"
)

type CreateContractPayload struct {
	PropertyID  int64   `json:"property_id" validate:"required,gt=0"`
	TenantID    int64   `json:"tenant_id" validate:"required,gt=0"`
	BrokerID    *int64  `json:"broker_id"`
	MonthlyRent float64 `json:"monthly_rent" validate:"required,gt=0"`
	Deposit     float64 `json:"deposit" validate:"gte=0"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// createContractHandler godoc
//
//	@Summary		Create a rental contract
//	@Description	The property's owner, their broker or an admin draws up the contract
//	@Tags			contracts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateContractPayload	true	"Contract terms"
//	@Success		201		{object}	store.Contract
//	@Failure		400		{object}	error
//	@Failure		403		{object}	error
//	@Router			/contracts [post]
func (app *application) createContractHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionCreate, 0)
	if !ok {
		return
	}

	var payload CreateContractPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	startDate, _ := time.Parse("2006-01-02", payload.StartDate)
	endDate, _ := time.Parse("2006-01-02", payload.EndDate)
	if !endDate.After(startDate) {
		app.badRequestResponse(w, r, errors.New("end_date must be after start_date"))
		return
	}

	property, err := app.store.Properties.GetByID(r.Context(), payload.PropertyID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	callerID, err := claims.UserID()
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	// non-admins can only contract out properties they own or broker
	if claims.Role != auth.RoleAdmin {
		brokered := property.BrokerID != nil && *property.BrokerID == callerID
		if property.OwnerID != callerID && !brokered {
			app.forbiddenResponse(w, r, auth.ErrForbidden)
			return
		}
	}

	contract := &store.Contract{
		PropertyID:  payload.PropertyID,
		OwnerID:     property.OwnerID,
		TenantID:    payload.TenantID,
		BrokerID:    payload.BrokerID,
		MonthlyRent: payload.MonthlyRent,
		Deposit:     payload.Deposit,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      "draft",
	}

	if err := app.store.Contracts.Create(r.Context(), contract); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, contract); err != nil {
		app.internalServerError(w, r, err)
	}
}

// listContractsHandler godoc
//
//	@Summary		List contracts
//	@Description	Admins see all contracts, everyone else only those they are party to
//	@Tags			contracts
//	@Produce		json
//	@Success		200	{array}	store.Contract
//	@Failure		403	{object}	error
//	@Router			/contracts [get]
func (app *application) listContractsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionRead, 0)
	if !ok {
		return
	}

	var (
		contracts []store.Contract
		err       error
	)

	if claims.Role == auth.RoleAdmin {
		contracts, err = app.store.Contracts.ListAll(r.Context())
	} else {
		var userID int64
		userID, err = claims.UserID()
		if err != nil {
			app.unauthorizedErrorResponse(w, r, err)
			return
		}
		contracts, err = app.store.Contracts.ListByParticipant(r.Context(), userID)
	}
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, contracts); err != nil {
		app.internalServerError(w, r, err)
	}
}

// getContractHandler godoc
//
//	@Summary	Fetch a contract
//	@Tags		contracts
//	@Produce	json
//	@Param		contractID	path		int	true	"Contract ID"
//	@Success	200			{object}	store.Contract
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/contracts/{contractID} [get]
func (app *application) getContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := idParam(r, "contractID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionRead, contractID); !ok {
		return
	}

	contract, err := app.store.Contracts.GetByID(r.Context(), contractID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, contract); err != nil {
		app.internalServerError(w, r, err)
	}
}

type UpdateContractPayload struct {
	MonthlyRent *float64 `json:"monthly_rent" validate:"omitempty,gt=0"`
	Deposit     *float64 `json:"deposit" validate:"omitempty,gte=0"`
	EndDate     *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status      *string  `json:"status" validate:"omitempty,oneof=draft active terminated expired"`
}

// updateContractHandler godoc
//
//	@Summary	Update a contract
//	@Tags		contracts
//	@Accept		json
//	@Produce	json
//	@Param		contractID	path		int						true	"Contract ID"
//	@Param		payload		body		UpdateContractPayload	true	"Fields to update"
//	@Success	200			{object}	store.Contract
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/contracts/{contractID} [patch]
func (app *application) updateContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := idParam(r, "contractID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionUpdate, contractID); !ok {
		return
	}

	var payload UpdateContractPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	contract, err := app.store.Contracts.GetByID(r.Context(), contractID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if payload.MonthlyRent != nil {
		contract.MonthlyRent = *payload.MonthlyRent
	}
	if payload.Deposit != nil {
		contract.Deposit = *payload.Deposit
	}
	if payload.EndDate != nil {
		endDate, _ := time.Parse("2006-01-02", *payload.EndDate)
		if !endDate.After(contract.StartDate) {
			app.badRequestResponse(w, r, errors.New("end_date must be after start_date"))
			return
		}
		contract.EndDate = endDate
	}
	if payload.Status != nil {
		contract.Status = *payload.Status
	}

	if err := app.store.Contracts.Update(r.Context(), contract); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, contract); err != nil {
		app.internalServerError(w, r, err)
	}
}

// deleteContractHandler godoc
//
//	@Summary	Delete a contract
//	@Tags		contracts
//	@Param		contractID	path		int	true	"Contract ID"
//	@Success	204			{string}	string	"Contract deleted"
//	@Failure	403			{object}	error
//	@Failure	404			{object}	error
//	@Router		/contracts/{contractID} [delete]
func (app *application) deleteContractHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := idParam(r, "contractID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if _, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionDelete, contractID); !ok {
		return
	}

	if err := app.store.Contracts.Delete(r.Context(), contractID); err != nil {
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

// listContractPaymentsHandler godoc
//
//	@Summary	List a contract's payments
//	@Tags		contracts
//	@Produce	json
//	@Param		contractID	path	int	true	"Contract ID"
//	@Success	200			{array}	store.Payment
//	@Failure	403			{object}	error
//	@Router		/contracts/{contractID}/payments [get]
func (app *application) listContractPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	contractID, err := idParam(r, "contractID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	// gate on the contract itself: payment ownership is derived from it
	if _, ok := app.authorize(w, r, accesscontrol.ResourceContracts, accesscontrol.ActionRead, contractID); !ok {
		return
	}

	payments, err := app.store.Payments.ListByContract(r.Context(), contractID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, payments); err != nil {
		app.internalServerError(w, r, err)
	}
}
