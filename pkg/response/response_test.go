package response

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginated(t *testing.T) {
	res := Paginated(http.StatusOK, []int{1, 2}, 21, 2, 10)

	assert.Equal(t, "success", res.Status)
	page, ok := res.Data.(Page)
	if assert.True(t, ok) {
		assert.Equal(t, int64(21), page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, 3, page.Pages)
	}
}

func TestErrorWithCode(t *testing.T) {
	res := ErrorWithCode(http.StatusBadRequest, "VALIDATION", "invalid request", map[string]string{"email": "required"})

	assert.Equal(t, "error", res.Status)
	assert.Equal(t, "VALIDATION", res.Code)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "required", res.Fields["email"])
	assert.Nil(t, res.Data)
}
