package response

import (
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/iwac-chat/pkg/utils/errors"
	"github.com/kart-io/iwac-chat/pkg/utils/json"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h gin.HandlerFunc, lang string) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", h)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Error {
	t.Helper()
	var body Error
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestFail(t *testing.T) {
	w := serve(func(c *gin.Context) { Fail(c, errors.ErrDocumentNotFound) }, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, errors.ErrDocumentNotFound.Code, body.Code)
	assert.Equal(t, errors.ErrDocumentNotFound.MessageEN, body.Message)
}

func TestFailFrench(t *testing.T) {
	w := serve(func(c *gin.Context) { Fail(c, errors.ErrEmptyQuestion) }, "fr-FR,fr;q=0.9")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrEmptyQuestion.MessageFR, decode(t, w).Message)
}

func TestFailWithPlainError(t *testing.T) {
	w := serve(func(c *gin.Context) { FailWithError(c, stderrors.New("boom")) }, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.ErrInternal.Code, decode(t, w).Code)
}

func TestOK(t *testing.T) {
	w := serve(func(c *gin.Context) { OK(c, gin.H{"answer": "oui"}) }, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"answer":"oui"}`, w.Body.String())
}
