package html2json_test

import (
	"errors"
	"testing"

	"github.com/qretaio/html2json"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := html2json.Errorf(html2json.EINVALID, "unknown pipe %q", "zap")

	assert.Equal(t, html2json.EINVALID, html2json.ErrorCode(err))
	assert.Equal(t, "unknown pipe \"zap\"", html2json.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, html2json.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, html2json.EINTERNAL, html2json.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, html2json.ErrorMessage(nil))
}

func TestErrorMessage_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Internal error.", html2json.ErrorMessage(errors.New("boom")))
}
