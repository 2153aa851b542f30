package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/almacen-api/internal/application/dto"
)

func TestNewPageRequest_Acota(t *testing.T) {
	assert.Equal(t, dto.PageRequest{Limit: 20, Offset: 0}, dto.NewPageRequest(0, -5))
	assert.Equal(t, dto.PageRequest{Limit: 100, Offset: 40}, dto.NewPageRequest(500, 40))
	assert.Equal(t, dto.PageRequest{Limit: 7, Offset: 3}, dto.NewPageRequest(7, 3))
	assert.Equal(t, 8, dto.NewPageRequest(7, 3).Fetch())
}

func TestPaginate(t *testing.T) {
	p := dto.NewPageRequest(2, 4)

	rows, meta := dto.Paginate(p, []string{"a", "b", "c"})
	assert.Equal(t, []string{"a", "b"}, rows)
	assert.Equal(t, dto.PageResponse{Limit: 2, Offset: 4, HasMore: true}, meta)

	rows, meta = dto.Paginate(p, []string{"a", "b"})
	assert.Len(t, rows, 2)
	assert.False(t, meta.HasMore)

	rows, meta = dto.Paginate(p, []string(nil))
	assert.Empty(t, rows)
	assert.False(t, meta.HasMore)
}
