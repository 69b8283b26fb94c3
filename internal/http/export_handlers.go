package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) createExport(c *gin.Context) {
	_, filter, ok := bindLedgerQuery(c)
	if !ok {
		return
	}

	export, err := h.Exports.Export(c.Request.Context(), mustIdentity(c), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, export)
}

func (h *Handler) listExports(c *gin.Context) {
	objects, err := h.Exports.List(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) purgeExports(c *gin.Context) {
	deleted, err := h.Exports.Purge(c.Request.Context(), mustIdentity(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
