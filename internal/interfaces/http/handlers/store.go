// internal/interfaces/http/handlers/store.go
package handlers

import (
	"context"
	"mime/multipart"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/store"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// StoreService reads and edits the store's contact details
type StoreService interface {
	GetStoreInfo(ctx context.Context) (*store.StoreInfo, error)
	UpdateStoreInfo(ctx context.Context, req *store.UpdateRequest, logo *multipart.FileHeader) (*store.StoreInfo, error)
}

// StoreHandler handles store-info endpoints
type StoreHandler struct {
	store StoreService
	log   logrus.FieldLogger
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(svc StoreService, log logrus.FieldLogger) *StoreHandler {
	return &StoreHandler{store: svc, log: log}
}

// GetStoreInfo handles GET /store-info
func (h *StoreHandler) GetStoreInfo(c *gin.Context) {
	info, err := h.store.GetStoreInfo(c.Request.Context())
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, info)
}

// AdminUpdateStoreInfo handles PUT /admin/store-info (multipart: entity, image)
func (h *StoreHandler) AdminUpdateStoreInfo(c *gin.Context) {
	var req store.UpdateRequest
	if !bindEntity(c, &req) {
		return
	}
	info, err := h.store.UpdateStoreInfo(c.Request.Context(), &req, formFile(c, "image"))
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.WithMessage(c, info, "Store information updated successfully")
}
