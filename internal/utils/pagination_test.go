package utils

import (
	"math"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaginationParams(t *testing.T) {
	params, err := NewPaginationParams(3, 20)
	require.NoError(t, err)
	assert.Equal(t, 40, params.Offset)

	_, err = NewPaginationParams(0, 10)
	assert.ErrorIs(t, err, ErrInvalidPage)

	_, err = NewPaginationParams(1, 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = NewPaginationParams(1, 101)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = NewPaginationParams(1, 100)
	assert.NoError(t, err)
}

func TestNewPaginationParamsHugePage(t *testing.T) {
	params, err := NewPaginationParams(math.MaxInt, 10)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, params.Offset)

	params, err = NewPaginationParams(math.MaxInt/10+1, 10)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/10*10, params.Offset)

	meta := NewPaginationResponse(params, 2)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{101, 100, 2},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, TotalPages(tc.total, tc.limit), "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestNewPaginationResponse(t *testing.T) {
	params, err := NewPaginationParams(2, 5)
	require.NoError(t, err)

	meta := NewPaginationResponse(params, 12)
	assert.Equal(t, 3, meta.TotalPages)
	assert.True(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)

	params, err = NewPaginationParams(9, 5)
	require.NoError(t, err)
	meta = NewPaginationResponse(params, 12)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)

	params, err = NewPaginationParams(1, 5)
	require.NoError(t, err)
	meta = NewPaginationResponse(params, 0)
	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.False(t, meta.HasPrevious)
}

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/tasks", nil)
	params, err := GetPaginationParams(c)
	require.NoError(t, err)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/tasks?page=abc", nil)
	_, err = GetPaginationParams(c)
	assert.True(t, IsPaginationError(err))
}
