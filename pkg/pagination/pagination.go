// Package pagination reads page/limit query parameters of list endpoints.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds validated pagination parameters
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads ?page=&limit= (or the Spanish ?pagina=&limite= used by the
// frontend) and clamps them. Unparseable values fall back to the defaults.
func Parse(c *gin.Context) Params {
	return New(queryInt(c, DefaultPage, "page", "pagina"), queryInt(c, DefaultLimit, "limit", "limite"))
}

// New clamps page/limit into the accepted range
func New(page, limit int) Params {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Pages is the number of pages needed for total rows
func (p Params) Pages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

func queryInt(c *gin.Context, fallback int, names ...string) int {
	for _, name := range names {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fallback
		}
		return v
	}
	return fallback
}
