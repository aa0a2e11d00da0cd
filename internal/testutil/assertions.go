package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/dom/superhero-teams/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode verifies the HTTP response status code
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	assert.Equal(t, expected, resp.StatusCode, "unexpected status code")
}

// AssertJSONResponse decodes JSON response into v
func AssertJSONResponse(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")

	err = json.Unmarshal(body, v)
	require.NoError(t, err, "failed to unmarshal response: %s", string(body))
}

// AssertErrorResponse verifies the status and the JSON error code
func AssertErrorResponse(t *testing.T, resp *http.Response, expectedStatus int, expectedCode string) {
	t.Helper()

	assert.Equal(t, expectedStatus, resp.StatusCode, "unexpected status code")

	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	AssertJSONResponse(t, resp, &body)
	assert.Equal(t, expectedCode, body.Code, "error code mismatch: %s", body.Message)
}

// AssertSortedByName verifies heroes are in name order
func AssertSortedByName(t *testing.T, heroes []domain.Hero) {
	t.Helper()
	for i := 1; i < len(heroes); i++ {
		assert.LessOrEqual(t, heroes[i-1].Name, heroes[i].Name, "heroes out of order at %d", i)
	}
}

// AssertHeroIDs verifies the exact ids, in order
func AssertHeroIDs(t *testing.T, heroes []domain.Hero, ids ...int) {
	t.Helper()

	got := make([]int, len(heroes))
	for i, h := range heroes {
		got[i] = h.ID
	}
	if ids == nil {
		ids = []int{}
	}
	assert.Equal(t, ids, got)
}
