package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/molsearch/internal/application/convert"
	"github.com/turtacn/molsearch/internal/infrastructure/monitoring/logging"
	mtypes "github.com/turtacn/molsearch/pkg/types/molecule"
)

// approximatedFormatHeader names the substitute format actually produced when
// the requested export format is only approximated.
const approximatedFormatHeader = "X-Approximated-Format"

// ConvertHandler serves structure validation and export endpoints.
type ConvertHandler struct {
	svc    convert.Service
	logger logging.Logger
}

// NewConvertHandler creates a ConvertHandler.
func NewConvertHandler(svc convert.Service, log logging.Logger) *ConvertHandler {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ConvertHandler{
		svc:    svc,
		logger: log.Named("convert_handler"),
	}
}

// Validate handles POST /api/v1/validate. Once the request body binds,
// validation always answers 200: invalid structures come back with
// valid=false and a reason rather than an error status.
func (h *ConvertHandler) Validate(c *gin.Context) {
	var req mtypes.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	respondOK(c, h.svc.Validate(c.Request.Context(), &req))
}

// Export handles POST /api/v1/export. When the requested format is only
// approximated, the substitute format is surfaced both in the response body
// and in the X-Approximated-Format header.
func (h *ConvertHandler) Export(c *gin.Context) {
	var req mtypes.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.svc.Export(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if resp.ApproximatedAs != "" {
		c.Header(approximatedFormatHeader, resp.ApproximatedAs)
	}
	respondOK(c, resp)
}
