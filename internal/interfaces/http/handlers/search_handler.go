package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/application/search"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molsearch/pkg/errors"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// SearchHandler serves molecule search and search-history endpoints.
type SearchHandler struct {
	svc    search.Service
	logger logging.Logger
}

// NewSearchHandler creates a SearchHandler.
func NewSearchHandler(svc search.Service, log logging.Logger) *SearchHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &SearchHandler{
		svc:    svc,
		logger: log.Named("search_handler"),
	}
}

// Search handles POST /api/v1/search. Unrecognized search types and
// out-of-range limits are rejected by request binding before the service is
// consulted.
func (h *SearchHandler) Search(c *gin.Context) {
	var req mtypes.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Search(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}

// History handles GET /api/v1/history?limit=N. An absent or zero limit uses
// the service default; defaults and caps are applied by the service.
func (h *SearchHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(c, errors.New(errors.ErrCodeValidation, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	resp, err := h.svc.History(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, resp)
}
