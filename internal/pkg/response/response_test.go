package response

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	apperrors "github.com/maggie-app/maggie-api/pkg/errors"
)

func TestSuccessAndErrorResponses(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	// Test Success
	Success(c, map[string]string{"foo": "bar"})
	require.Equal(t, 200, w.Code)
	var body map[string]any
	err := json.Unmarshal(w.Body.Bytes(), &body)
	require.NoError(t, err)
	require.Equal(t, "success", body["status"])
	require.Contains(t, body, "data")

	// Test Error
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Error(c, 400, "bad request", "BAD_REQ")
	require.Equal(t, 400, w.Code)
	var bodyErr map[string]any
	err = json.Unmarshal(w.Body.Bytes(), &bodyErr)
	require.NoError(t, err)
	require.Equal(t, "bad request", bodyErr["error"])
	require.Equal(t, "BAD_REQ", bodyErr["code"])
}

func TestFromErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: title", apperrors.ErrValidation), 422, "VALIDATION_FAILED"},
		{fmt.Errorf("%w: list x", apperrors.ErrNotFound), 404, "NOT_FOUND"},
		{apperrors.ErrForbidden, 403, "NOT_A_MEMBER"},
		{fmt.Errorf("%w after 10 attempts", apperrors.ErrCodeExhausted), 503, "CODE_EXHAUSTED"},
		{apperrors.ErrConflict, 503, "TRANSACTION_CONFLICT"},
		{fmt.Errorf("some backend failure"), 503, "STORE_ERROR"},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		FromError(c, tc.err)
		require.Equal(t, tc.status, w.Code, tc.err.Error())
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Equal(t, tc.code, body["code"], tc.err.Error())
	}
}
