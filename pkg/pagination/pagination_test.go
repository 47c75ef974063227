package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		query  string
		page   int
		limit  int
		offset int
	}{
		{name: "defaults", query: "", page: 1, limit: DefaultLimit, offset: 0},
		{name: "explicit", query: "?page=3&limit=10", page: 3, limit: 10, offset: 20},
		{name: "limit clamped", query: "?limit=1000", page: 1, limit: MaxLimit, offset: 0},
		{name: "garbage", query: "?page=abc&limit=-4", page: 1, limit: DefaultLimit, offset: 0},
		{name: "spanish aliases", query: "?pagina=2&limite=5", page: 2, limit: 5, offset: 5},
		{name: "english wins", query: "?page=4&pagina=2", page: 4, limit: DefaultLimit, offset: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			p := Parse(c)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestPages(t *testing.T) {
	p := New(1, 20)
	assert.Equal(t, 0, p.Pages(0))
	assert.Equal(t, 1, p.Pages(20))
	assert.Equal(t, 2, p.Pages(21))
}
