package handler

type setCredentialStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending verified rejected"`
	Note   string `json:"note"   validate:"max=1000"`
}

type resolveRequestRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject"`
	Note     string `json:"note"     validate:"max=1000"`
}

type toggleBanRequest struct {
	Banned *bool `json:"banned" validate:"required"`
}

type userResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	TrustScore int    `json:"trust_score"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listRequestsResponse struct {
	Data       []verificationRequestResponse `json:"data"`
	Pagination paginationResponse            `json:"pagination"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type recomputeResponse struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}
