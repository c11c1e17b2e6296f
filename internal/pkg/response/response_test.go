package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func TestNewPage(t *testing.T) {
	p := NewPage([]int{1, 2, 3}, 21, 10)
	assert.Equal(t, int64(21), p.Meta.TotalElements)
	assert.Equal(t, 3, p.Meta.TotalPages)

	empty := NewPage[int](nil, 0, 10)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.Meta.TotalPages)
}

func TestEnvelopes(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Paginated(c, NewPage([]string{"a"}, 1, 10))

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body["data"], "items")
	meta := body["data"]["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["totalElements"])
	assert.Equal(t, float64(1), meta["totalPages"])

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Created(c, gin.H{"id": 1}, "Order created")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"data":{"id":1},"message":"Order created"}}`, w.Body.String())
}

func TestBindError_PlainError(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	BindError(c, errors.New("unexpected EOF"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unexpected EOF")
}
