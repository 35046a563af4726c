package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfscout/shelfscout-backend/internal/services"
	"github.com/shelfscout/shelfscout-backend/internal/types"
)

type ResolveHandler struct {
	resolveService services.ResolveService
}

func NewResolveHandler(resolveService services.ResolveService) *ResolveHandler {
	return &ResolveHandler{resolveService: resolveService}
}

// Resolve handles GET /api/resolve?key=<identifier>. An unresolvable key
// returns 404 with the bare not_found result; a seed-stage store failure
// is the one error that surfaces as 5xx.
func (rh *ResolveHandler) Resolve(c *gin.Context) {
	rawKey := c.Query("key")
	if rawKey == "" {
		RespondError(c, http.StatusBadRequest, "missing_key", errors.New("query parameter 'key' is required"))
		return
	}

	result, err := rh.resolveService.Resolve(c.Request.Context(), rawKey)
	if err != nil {
		RespondError(c, http.StatusServiceUnavailable, "store_unavailable", err)
		return
	}
	if result.Status == types.ResolveStatusNotFound {
		c.JSON(http.StatusNotFound, result)
		return
	}
	RespondOK(c, result)
}
