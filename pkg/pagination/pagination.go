package pagination

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params holds limit/offset paging state parsed from a request.
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// FromContext reads limit and offset query parameters, applying the
// default and clamping to MaxLimit.
func FromContext(c echo.Context) Params {
	p := Params{Limit: DefaultLimit, Offset: 0}

	if raw := c.QueryParam("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Limit = v
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Offset = v
		}
	}

	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// SQL renders the params as a LIMIT/OFFSET clause. Both values are ints,
// never raw request text.
func (p Params) SQL() string {
	return fmt.Sprintf(" LIMIT %d OFFSET %d", p.Limit, p.Offset)
}

func (p Params) NextOffset() int {
	return p.Offset + p.Limit
}

func (p Params) PreviousOffset() int {
	prev := p.Offset - p.Limit
	if prev < 0 {
		prev = 0
	}
	return prev
}

// Response wraps a page of results with its paging metadata. The
// next/previous offsets are present only when that page exists.
type Response struct {
	Data           interface{} `json:"data"`
	Total          int         `json:"total"`
	Limit          int         `json:"limit"`
	Offset         int         `json:"offset"`
	NextOffset     *int        `json:"next_offset,omitempty"`
	PreviousOffset *int        `json:"previous_offset,omitempty"`
}

func NewResponse(data interface{}, total int, p Params) Response {
	r := Response{Data: data, Total: total, Limit: p.Limit, Offset: p.Offset}
	if p.NextOffset() < total {
		next := p.NextOffset()
		r.NextOffset = &next
	}
	if p.Offset > 0 {
		prev := p.PreviousOffset()
		r.PreviousOffset = &prev
	}
	return r
}
