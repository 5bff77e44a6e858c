package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/proconnect/verification-system/internal/api/metrics"
	"github.com/proconnect/verification-system/internal/core/domain"
	"github.com/proconnect/verification-system/internal/core/ports"
)

// TrustScoreHandler serves the trust score read endpoints and the manual
// per-user recompute.
type TrustScoreHandler struct {
	scores ports.TrustScoreService
}

func NewTrustScoreHandler(scores ports.TrustScoreService) *TrustScoreHandler {
	return &TrustScoreHandler{scores: scores}
}

type trustScoreResponse struct {
	UserID string                      `json:"user_id"`
	Status string                      `json:"status"`
	Score  *domain.TrustScoreBreakdown `json:"score,omitempty"`
}

// Get handles GET /v1/users/:id/trust-score — the public score breakdown.
// Suspended accounts report their status with no score attached.
//
// @Summary      Get a user's trust score breakdown
// @Tags         trust-scores
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  trustScoreResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/trust-score [get]
func (h *TrustScoreHandler) Get(c echo.Context) error {
	userID := c.Param("id")

	profile, err := h.scores.GetTrustScoreProfile(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	resp := trustScoreResponse{UserID: userID, Status: string(domain.AccountActive)}
	if profile.Suspended {
		resp.Status = string(domain.AccountSuspended)
	} else {
		resp.Score = profile.Breakdown
	}
	return c.JSON(http.StatusOK, resp)
}

// Summary handles GET /v1/users/:id/verification-summary — per-category
// counts of verified, pending and rejected credentials.
//
// @Summary      Get a user's verification summary
// @Tags         trust-scores
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  ports.VerificationSummary
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/users/{id}/verification-summary [get]
func (h *TrustScoreHandler) Summary(c echo.Context) error {
	summary, err := h.scores.GetVerificationSummary(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// Recompute handles POST /v1/admin/users/:id/trust-score/recompute — forces a
// fresh computation and persists the result.
//
// @Summary      Recompute one user's trust score
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "User id"
// @Success      200  {object}  recomputeResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/users/{id}/trust-score/recompute [post]
func (h *TrustScoreHandler) Recompute(c echo.Context) error {
	userID := c.Param("id")

	timer := prometheus.NewTimer(metrics.ScoreRecomputeDuration.WithLabelValues("manual"))
	score, err := h.scores.UpdateUserTrustScore(c.Request().Context(), userID)
	timer.ObserveDuration()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, recomputeResponse{UserID: userID, Score: score})
}
