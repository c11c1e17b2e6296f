// Package response writes the JSON envelopes the storefront front end expects:
//
//	{"data": ...}
//	{"data": {"data": ..., "message": "..."}}
//	{"data": {"items": [...], "meta": {"totalElements": n, "totalPages": p}}}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-api/internal/pkg/validation"
)

// Meta describes a page of results
type Meta struct {
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// Page is a paginated list body
type Page[T any] struct {
	Items []T `json:"items"`
	Meta  Meta `json:"meta"`
}

// NewPage builds a page, computing the page count from the page size
func NewPage[T any](items []T, total int64, pageSize int) Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{Items: items, Meta: Meta{TotalElements: total, TotalPages: pages}}
}

// Message is the body used by mutating endpoints
type Message struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

// ErrorBody is the body of every non-2xx response
type ErrorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// OK writes {"data": data} with 200
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes {"data": {"data": data, "message": msg}} with 201
func Created(c *gin.Context, data any, msg string) {
	c.JSON(http.StatusCreated, gin.H{"data": Message{Data: data, Message: msg}})
}

// WithMessage writes {"data": {"data": data, "message": msg}} with 200
func WithMessage(c *gin.Context, data any, msg string) {
	c.JSON(http.StatusOK, gin.H{"data": Message{Data: data, Message: msg}})
}

// Paginated writes a page envelope with 200
func Paginated[T any](c *gin.Context, page Page[T]) {
	c.JSON(http.StatusOK, gin.H{"data": page})
}

// Error writes an error body and aborts the chain
func Error(c *gin.Context, status int, err string, msg string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: err, Message: msg})
}

// BindError renders a binding/validation failure with per-field details
func BindError(c *gin.Context, err error) {
	body := ErrorBody{Error: "Invalid request data", Message: err.Error()}
	if details := validation.Describe(err); details != nil {
		body.Message = "Validation failed"
		body.Details = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

// ValidationError renders field errors produced outside gin binding
func ValidationError(c *gin.Context, details map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		Error:   "Invalid request data",
		Message: "Validation failed",
		Details: details,
	})
}
