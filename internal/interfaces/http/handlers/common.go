// internal/interfaces/http/handlers/common.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/cart"
	"github.com/your-org/storefront-api/internal/domain/checkout"
	"github.com/your-org/storefront-api/internal/domain/content"
	"github.com/your-org/storefront-api/internal/domain/order"
	"github.com/your-org/storefront-api/internal/domain/payment"
	"github.com/your-org/storefront-api/internal/domain/product"
	"github.com/your-org/storefront-api/internal/domain/upload"
	"github.com/your-org/storefront-api/internal/domain/user"
	"github.com/your-org/storefront-api/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-api/internal/pkg/auth"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

// entityPart is the multipart field carrying the JSON body of a form upload
const entityPart = "entity"

type errorStatus struct {
	err    error
	status int
}

// order matters only where errors wrap each other
var errorStatuses = []errorStatus{
	{user.ErrUserNotFound, http.StatusNotFound},
	{product.ErrProductNotFound, http.StatusNotFound},
	{product.ErrCategoryNotFound, http.StatusNotFound},
	{product.ErrBrandNotFound, http.StatusNotFound},
	{product.ErrAttributeNotFound, http.StatusNotFound},
	{product.ErrReviewNotFound, http.StatusNotFound},
	{order.ErrOrderNotFound, http.StatusNotFound},
	{order.ErrInvoiceNotRequested, http.StatusNotFound},
	{payment.ErrAttemptNotFound, http.StatusNotFound},
	{content.ErrNewsNotFound, http.StatusNotFound},
	{content.ErrNewsCategoryNotFound, http.StatusNotFound},
	{content.ErrSlideNotFound, http.StatusNotFound},
	{cart.ErrItemNotFound, http.StatusNotFound},

	{user.ErrInvalidCredentials, http.StatusUnauthorized},
	{user.ErrSessionRevoked, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},

	{user.ErrAccountLocked, http.StatusForbidden},
	{product.ErrNotPurchased, http.StatusForbidden},

	{user.ErrUserExists, http.StatusConflict},
	{user.ErrSelfModification, http.StatusConflict},
	{product.ErrSlugTaken, http.StatusConflict},
	{content.ErrSlugTaken, http.StatusConflict},
	{product.ErrCategoryInUse, http.StatusConflict},
	{content.ErrNewsCategoryInUse, http.StatusConflict},
	{product.ErrReviewExists, http.StatusConflict},
	{product.ErrInvalidReviewAction, http.StatusConflict},
	{product.ErrInsufficientStock, http.StatusConflict},
	{order.ErrInvalidTransition, http.StatusConflict},
	{order.ErrOrderNotEditable, http.StatusConflict},
	{order.ErrOrderNotCancellable, http.StatusConflict},
	{order.ErrConcurrentUpdate, http.StatusConflict},
	{payment.ErrAlreadyPaid, http.StatusConflict},
	{payment.ErrOrderClosed, http.StatusConflict},
	{payment.ErrPaymentInProgress, http.StatusConflict},

	{checkout.ErrAmountBelowMinimum, http.StatusUnprocessableEntity},
	{cart.ErrCartEmpty, http.StatusUnprocessableEntity},
	{product.ErrProductInactive, http.StatusUnprocessableEntity},
	{payment.ErrNotVNPayOrder, http.StatusUnprocessableEntity},
	{payment.ErrNotCODOrder, http.StatusUnprocessableEntity},

	{payment.ErrInvalidSignature, http.StatusBadRequest},
	{payment.ErrAmountMismatch, http.StatusBadRequest},
	{user.ErrWrongPassword, http.StatusBadRequest},
	{user.ErrUnknownRole, http.StatusBadRequest},
	{product.ErrCircularCategory, http.StatusBadRequest},
	{content.ErrSlideImageRequired, http.StatusBadRequest},
	{upload.ErrNoFile, http.StatusBadRequest},
	{upload.ErrFileTypeRejected, http.StatusBadRequest},
	{upload.ErrNotAnImage, http.StatusBadRequest},
	{upload.ErrForeignURL, http.StatusBadRequest},
	{upload.ErrFileTooLarge, http.StatusRequestEntityTooLarge},

	{order.ErrInvoiceUnavailable, http.StatusServiceUnavailable},
	{payment.ErrGatewayDisabled, http.StatusServiceUnavailable},
}

// statusFor maps a domain error to its HTTP status; 0 means unexpected
func statusFor(err error) int {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status
		}
	}
	return 0
}

// renderError writes the response for a service error. Unexpected errors are
// logged and hidden behind a generic message.
func renderError(c *gin.Context, log logrus.FieldLogger, err error) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		response.ValidationError(c, verr.Fields)
		return
	}

	if status := statusFor(err); status != 0 {
		response.Error(c, status, http.StatusText(status), err.Error())
		return
	}

	log.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).WithError(err).Error("request failed")
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "Internal server error", "")
}

// currentUser returns the authenticated user, answering 401 when there is none
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Authentication required", "")
	}
	return id, ok
}

// paramID parses a numeric path parameter, answering 400 when it is not one
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid "+name, c.Param(name)+" is not a valid id")
		return 0, false
	}
	return uint(id), true
}

// queryID parses an optional numeric query parameter
func queryID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Query(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, "Invalid "+name, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// bindJSON binds and validates the request body
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

// bindEntity decodes and validates the JSON "entity" part of a multipart form.
// Browsers send it either as a plain field or as a Blob file part.
func bindEntity(c *gin.Context, dst any) bool {
	raw, err := entityBytes(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request data", err.Error())
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		response.BindError(c, err)
		return false
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		response.BindError(c, err)
		return false
	}
	return true
}

func entityBytes(c *gin.Context) ([]byte, error) {
	if v, ok := c.GetPostForm(entityPart); ok {
		return []byte(v), nil
	}
	fh, err := c.FormFile(entityPart)
	if err != nil {
		return nil, errors.New(`multipart part "entity" is required`)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, 1<<20))
}

// formFile returns an optional file part
func formFile(c *gin.Context, name string) *multipart.FileHeader {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return fh
}

// formFiles returns every file sent under name
func formFiles(c *gin.Context, name string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[name]
}

// boolQuery reads an optional boolean query parameter
func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}
