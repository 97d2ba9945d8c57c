// Package admin exposes operator endpoints: bearer token revocation and the
// audit trail of an account. Every route requires the X-Admin-Token header.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/audit"
	"verireg/pkg/platform/httputil"
	adminmw "verireg/pkg/platform/middleware/admin"
	"verireg/pkg/requestcontext"
)

type TokenRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

type AuditReader interface {
	ListByAccount(ctx context.Context, account id.AccountID) ([]audit.Event, error)
}

// Handler serves the /admin routes.
type Handler struct {
	revoker    TokenRevoker
	auditLog   AuditReader
	adminToken string
	logger     *slog.Logger
}

func New(revoker TokenRevoker, auditLog AuditReader, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		revoker:    revoker,
		auditLog:   auditLog,
		adminToken: adminToken,
		logger:     logger,
	}
}

// Register mounts the admin routes under /admin.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/revocations", h.HandleRevokeToken)
		r.Get("/audit/{account}", h.HandleListAudit)
	})
}

// HandleRevokeToken handles POST /admin/revocations.
func (h *Handler) HandleRevokeToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RevokeTokenRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if err := h.revoker.RevokeToken(ctx, req.JTI, req.TTL()); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke token",
			"request_id", requestID,
			"jti", req.JTI,
			"error", err,
		)
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token revoked",
		"request_id", requestID,
		"jti", req.JTI,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleListAudit handles GET /admin/audit/{account}.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := id.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.auditLog.ListByAccount(ctx, account)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"account", account,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEvents(events))
}
