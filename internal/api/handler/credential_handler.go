package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/proconnect/verification-system/internal/api/metrics"
	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// CredentialHandler handles member-facing credential operations.
type CredentialHandler struct {
	service ports.VerificationService
}

func NewCredentialHandler(service ports.VerificationService) *CredentialHandler {
	return &CredentialHandler{service: service}
}

// Submit handles POST /v1/credentials — creates a pending credential owned by
// the authenticated user.
//
// @Summary      Submit a new credential
// @Tags         credentials
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitCredentialRequest  true  "Credential details"
// @Success      201   {object}  credentialResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/credentials [post]
func (h *CredentialHandler) Submit(c echo.Context) error {
	var req submitCredentialRequest
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

	cred, err := h.service.SubmitCredential(c.Request().Context(), ports.SubmitCredentialInput{
		Type:         domain.CredentialType(req.Type),
		OwnerID:      actor.ID,
		Title:        req.Title,
		Organization: req.Organization,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		return err
	}

	metrics.CredentialsSubmittedTotal.WithLabelValues(req.Type).Inc()
	return c.JSON(http.StatusCreated, toCredentialResponse(cred))
}

// List handles GET /v1/credentials — returns the authenticated user's
// credentials grouped by variant.
//
// @Summary      List own credentials
// @Tags         credentials
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listCredentialsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/credentials [get]
func (h *CredentialHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	portfolio, err := h.service.ListCredentials(c.Request().Context(), actor.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listCredentialsResponse{
		Certifications:  toCredentialResponses(portfolio.Certifications),
		Educations:      toCredentialResponses(portfolio.Educations),
		WorkExperiences: toCredentialResponses(portfolio.WorkExperiences),
	})
}

// SubmitRequest handles POST /v1/verification-requests — queues one of the
// authenticated user's credentials for review. A credential can have at most
// one queued request at a time; a second submission is a 409.
//
// @Summary      Request verification of a credential
// @Tags         verification-requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      submitVerificationRequest  true  "Credential reference"
// @Success      201   {object}  verificationRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/verification-requests [post]
func (h *CredentialHandler) SubmitRequest(c echo.Context) error {
	var req submitVerificationRequest
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

	vr, err := h.service.SubmitRequest(c.Request().Context(), ports.SubmitRequestInput{
		Type:         domain.CredentialType(req.Type),
		CredentialID: req.CredentialID,
		Actor:        actor,
	})
	if err != nil {
		return err
	}

	metrics.RequestsQueuedTotal.Inc()
	return c.JSON(http.StatusCreated, toRequestResponse(vr))
}
