package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode_WalksChain(t *testing.T) {
	inner := New(CodeBudgetExceeded, "spend would breach limit")
	outer := Wrap(inner, CodeInternal, "record spend failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeBudgetExceeded))
	assert.False(t, HasCode(outer, CodeVaultLocked))
}

func TestHasCode_ForeignError(t *testing.T) {
	err := fmt.Errorf("plain: %w", errors.New("boom"))
	assert.False(t, HasCode(err, CodeInternal))
	assert.Equal(t, CodeInternal, CodeOf(err))
}

func TestWrap_NilPassthrough(t *testing.T) {
	require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized:        http.StatusUnauthorized,
		CodeBudgetExceeded:      http.StatusConflict,
		CodeVaultLocked:         http.StatusLocked,
		CodeVaultClosed:         http.StatusGone,
		CodeVaultNotFound:       http.StatusNotFound,
		CodeVaultCapExceeded:    http.StatusConflict,
		CodeInsufficientBalance: http.StatusUnprocessableEntity,
		CodeOverflow:            http.StatusUnprocessableEntity,
		CodeValidation:          http.StatusBadRequest,
		Code("unknown"):         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
