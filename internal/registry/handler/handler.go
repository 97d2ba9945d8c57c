package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"verireg/internal/registry/models"
	id "verireg/pkg/domain"
	dErrors "verireg/pkg/domain-errors"
	"verireg/pkg/platform/httputil"
	"verireg/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	SubmitIdentity(ctx context.Context, caller id.AccountID, sub models.Submission) (*models.Identity, error)
	VerifyIdentity(ctx context.Context, caller, target id.AccountID, proof id.ProofHash) (*models.Identity, error)
	AddVerifier(ctx context.Context, caller, account id.AccountID) error
	RemoveVerifier(ctx context.Context, caller, account id.AccountID) error
	GetIdentity(ctx context.Context, account id.AccountID) (*models.Identity, error)
	IsVerified(ctx context.Context, account id.AccountID) (bool, error)
	IsVerifier(ctx context.Context, account id.AccountID) (bool, error)
	ListVerifiers(ctx context.Context) ([]id.AccountID, error)
	Owner() id.AccountID
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service     Service
	logger      *slog.Logger
	requireAuth func(http.Handler) http.Handler
}

// New constructs a registry handler. requireAuth guards the mutating
// routes and must place the caller in the request context.
func New(service Service, logger *slog.Logger, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		service:     service,
		logger:      logger,
		requireAuth: requireAuth,
	}
}

// Register mounts registry endpoints on the router. Queries are public.
func (h *Handler) Register(r chi.Router) {
	r.Get("/identities/{account}", h.HandleGetIdentity)
	r.Get("/identities/{account}/verified", h.HandleIsVerified)
	r.Get("/verifiers", h.HandleListVerifiers)
	r.Get("/verifiers/{account}", h.HandleIsVerifier)
	r.Get("/registry/owner", h.HandleGetOwner)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/identities", h.HandleSubmitIdentity)
		r.Post("/identities/{account}/verify", h.HandleVerifyIdentity)
		r.Put("/verifiers/{account}", h.HandleAddVerifier)
		r.Delete("/verifiers/{account}", h.HandleRemoveVerifier)
	})
}

// HandleSubmitIdentity handles POST /identities for the authenticated caller.
func (h *Handler) HandleSubmitIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[SubmitIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.SubmitIdentity(ctx, caller, req.ToSubmission())
	if err != nil {
		h.logFailure(ctx, "identity submission failed", err,
			"request_id", requestID,
			"account", caller,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity submitted",
		"request_id", requestID,
		"account", caller,
	)
	httputil.WriteJSON(w, http.StatusOK, FromIdentity(rec))
}

// HandleVerifyIdentity handles POST /identities/{account}/verify.
func (h *Handler) HandleVerifyIdentity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	target, ok := h.accountParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[VerifyIdentityRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.VerifyIdentity(ctx, caller, target, req.ParsedProof())
	if err != nil {
		h.logFailure(ctx, "identity verification failed", err,
			"request_id", requestID,
			"account", target,
			"verifier", caller,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "identity verified",
		"request_id", requestID,
		"account", target,
		"verifier", caller,
	)
	httputil.WriteJSON(w, http.StatusOK, FromIdentity(rec))
}

// HandleAddVerifier handles PUT /verifiers/{account}.
func (h *Handler) HandleAddVerifier(w http.ResponseWriter, r *http.Request) {
	h.manageVerifier(w, r, h.service.AddVerifier, "verifier added")
}

// HandleRemoveVerifier handles DELETE /verifiers/{account}.
func (h *Handler) HandleRemoveVerifier(w http.ResponseWriter, r *http.Request) {
	h.manageVerifier(w, r, h.service.RemoveVerifier, "verifier removed")
}

func (h *Handler) manageVerifier(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller, account id.AccountID) error, msg string) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}

	if err := op(ctx, caller, account); err != nil {
		h.logFailure(ctx, "verifier management failed", err,
			"request_id", requestID,
			"account", account,
			"caller", caller,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, msg,
		"request_id", requestID,
		"account", account,
	)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetIdentity handles GET /identities/{account}.
func (h *Handler) HandleGetIdentity(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	rec, err := h.service.GetIdentity(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromIdentity(rec))
}

// HandleIsVerified handles GET /identities/{account}/verified. It answers
// false for unknown accounts.
func (h *Handler) HandleIsVerified(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	verified, err := h.service.IsVerified(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &VerifiedResponse{Account: account.String(), Verified: verified})
}

// HandleIsVerifier handles GET /verifiers/{account}.
func (h *Handler) HandleIsVerifier(w http.ResponseWriter, r *http.Request) {
	account, ok := h.accountParam(w, r)
	if !ok {
		return
	}
	isVerifier, err := h.service.IsVerifier(r.Context(), account)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, &VerifierStatusResponse{Account: account.String(), Verifier: isVerifier})
}

// HandleListVerifiers handles GET /verifiers.
func (h *Handler) HandleListVerifiers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.service.ListVerifiers(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromVerifiers(accounts))
}

// HandleGetOwner handles GET /registry/owner.
func (h *Handler) HandleGetOwner(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, &OwnerResponse{Owner: h.service.Owner().String()})
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	ctx := r.Context()
	caller := requestcontext.Account(ctx)
	if caller.IsNil() {
		// This should never happen if RequireAuth middleware is configured correctly
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return "", false
	}
	return caller, true
}

func (h *Handler) accountParam(w http.ResponseWriter, r *http.Request) (id.AccountID, bool) {
	account, err := id.ParseAccountID(chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return account, true
}

// logFailure logs expected registry outcomes at warn and everything else
// at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, args ...any) {
	args = append(args, "error", err)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.WarnContext(ctx, msg, args...)
}
