package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/proconnect/verification-system/internal/api/metrics"
	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// RecomputeDispatcher is the interface the handler uses to enqueue bulk trust
// score recomputation.
type RecomputeDispatcher interface {
	EnqueueAll(ctx context.Context) (int, error)
}

// AdminHandler handles the adjudication and moderation endpoints.
type AdminHandler struct {
	service    ports.VerificationService
	dispatcher RecomputeDispatcher
}

func NewAdminHandler(service ports.VerificationService, dispatcher RecomputeDispatcher) *AdminHandler {
	return &AdminHandler{service: service, dispatcher: dispatcher}
}

// SetCredentialStatus handles PUT /v1/admin/credentials/:type/:id/status —
// applies an adjudication decision directly to a credential.
//
// @Summary      Set a credential's verification status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        type  path      string                      true  "Credential type"  Enums(certification, education, work_experience)
// @Param        id    path      string                      true  "Credential id"
// @Param        body  body      setCredentialStatusRequest  true  "Decision"
// @Success      200   {object}  credentialResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/credentials/{type}/{id}/status [put]
func (h *AdminHandler) SetCredentialStatus(c echo.Context) error {
	var req setCredentialStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	cred, err := h.service.SetCredentialStatus(c.Request().Context(), ports.SetCredentialStatusInput{
		Type:         domain.CredentialType(c.Param("type")),
		CredentialID: c.Param("id"),
		Status:       domain.CredentialStatus(req.Status),
		Note:         req.Note,
		Actor:        actor,
	})
	if err != nil {
		metrics.DecisionErrorsTotal.WithLabelValues(decisionErrorReason(err)).Inc()
		return err
	}

	metrics.DecisionsAppliedTotal.WithLabelValues(req.Status, c.Param("type")).Inc()
	return c.JSON(http.StatusOK, toCredentialResponse(cred))
}

// ResolveRequest handles POST /v1/admin/verification-requests/:id/resolve —
// resolves a queued verification request with an approve or reject decision.
//
// @Summary      Resolve a verification request
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Request id"
// @Param        body  body      resolveRequestRequest  true  "Decision"
// @Success      200   {object}  credentialResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/verification-requests/{id}/resolve [post]
func (h *AdminHandler) ResolveRequest(c echo.Context) error {
	var req resolveRequestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	cred, err := h.service.ResolveRequest(c.Request().Context(), ports.ResolveRequestInput{
		RequestID: c.Param("id"),
		Decision:  req.Decision,
		Note:      req.Note,
		Actor:     actor,
	})
	if err != nil {
		metrics.DecisionErrorsTotal.WithLabelValues(decisionErrorReason(err)).Inc()
		return err
	}

	metrics.DecisionsAppliedTotal.WithLabelValues(string(cred.Status), string(cred.Type)).Inc()
	return c.JSON(http.StatusOK, toCredentialResponse(cred))
}

// ListRequests handles GET /v1/admin/verification-requests — the paginated
// review queue, optionally filtered by status and credential type.
//
// @Summary      List verification requests
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Filter by request status"  Enums(queued, completed, rejected)
// @Param        type    query     string  false  "Filter by credential type"
// @Param        page    query     int     false  "Page number (1-based)"
// @Param        limit   query     int     false  "Page size (max 100)"
// @Success      200     {object}  listRequestsResponse
// @Failure      403     {object}  errorResponse
// @Router       /v1/admin/verification-requests [get]
func (h *AdminHandler) ListRequests(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.ListRequests(c.Request().Context(), ports.ListRequestsInput{
		Status:         c.QueryParam("status"),
		CredentialType: c.QueryParam("type"),
		Page:           page,
		Limit:          limit,
		Actor:          actor,
	})
	if err != nil {
		return err
	}

	data := make([]verificationRequestResponse, 0, len(result.Items))
	for _, r := range result.Items {
		data = append(data, toRequestResponse(r))
	}

	return c.JSON(http.StatusOK, listRequestsResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// ToggleBan handles PUT /v1/admin/users/:id/ban — suspends or reinstates a
// user account.
//
// @Summary      Suspend or reinstate a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "User id"
// @Param        body  body      toggleBanRequest  true  "Desired ban state"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/users/{id}/ban [put]
func (h *AdminHandler) ToggleBan(c echo.Context) error {
	var req toggleBanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.Banned == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "banned is required")
	}

	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	user, err := h.service.ToggleUserBan(c.Request().Context(), ports.ToggleBanInput{
		UserID: c.Param("id"),
		Banned: *req.Banned,
		Actor:  actor,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{
		ID:         user.ID,
		Username:   user.Username,
		Role:       user.Role,
		Status:     string(user.Status),
		TrustScore: user.TrustScore,
	})
}

// RecomputeAll handles POST /v1/admin/trust-scores/recompute — enqueues a
// trust score recompute job for every user and returns immediately.
//
// @Summary      Recompute all trust scores
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  acceptedResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/admin/trust-scores/recompute [post]
func (h *AdminHandler) RecomputeAll(c echo.Context) error {
	count, err := h.dispatcher.EnqueueAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "recompute enqueued",
		Count:   count,
	})
}

// decisionErrorReason buckets adjudication failures into low-cardinality
// metric labels.
func decisionErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound), errors.Is(err, domain.ErrRequestNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrNoteRequired),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidCredentialType),
		errors.Is(err, domain.ErrInvalidDecision):
		return "validation"
	case errors.Is(err, domain.ErrRequestNotQueued):
		return "already_resolved"
	default:
		return "internal"
	}
}
