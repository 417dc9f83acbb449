package main

import (
	"net/http"
	"strconv"

	"rentora/internal/accesscontrol"
)

// listAuditLogsHandler godoc
//
//	@Summary		List audit log entries
//	@Description	Most recent entries first; cap with the limit query param
//	@Tags			audit-logs
//	@Produce		json
//	@Param			limit	query	int	false	"Maximum entries to return"
//	@Success		200		{array}	store.AuditEntry
//	@Failure		403		{object}	error
//	@Router			/audit-logs [get]
func (app *application) listAuditLogsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := app.authorize(w, r, accesscontrol.ResourceAuditLogs, accesscontrol.ActionRead, 0); !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := app.store.AuditLogs.List(r.Context(), limit)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, entries); err != nil {
		app.internalServerError(w, r, err)
	}
}
