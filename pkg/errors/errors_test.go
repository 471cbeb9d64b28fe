package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCodeAndMessage(t *testing.T) {
	err := New(CodeQuantityExceeded, "2 units requested, 1 remaining")

	assert.Equal(t, CodeQuantityExceeded, err.Code())
	assert.Equal(t, "2 units requested, 1 remaining", err.Message())
	assert.Equal(t, "QUANTITY_EXCEEDED: 2 units requested, 1 remaining", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("row not updated")
	err := Wrap(CodeStaleWrite, cause, "save line item")

	assert.Equal(t, CodeStaleWrite, err.Code())
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, stdErrors.Is(err, cause))
}

func TestWrapNilCauseBehavesLikeNew(t *testing.T) {
	err := Wrap(CodeUnderflow, nil, "verified already zero")
	assert.Equal(t, CodeUnderflow, err.Code())
	assert.Nil(t, err.Unwrap())
}

func TestAsFindsTypedErrorThroughChain(t *testing.T) {
	inner := New(CodeToteConflict, "tote bound elsewhere")
	wrapped := fmt.Errorf("assign tote: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeToteConflict, typed.Code())

	assert.Nil(t, As(stdErrors.New("plain")))
	assert.Nil(t, As(nil))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeAlreadyPicked, "resolved"))
	assert.True(t, HasCode(err, CodeAlreadyPicked))
	assert.False(t, HasCode(err, CodeUnderflow))
	assert.False(t, HasCode(nil, CodeUnderflow))
}

func TestMetadataForDomainCodes(t *testing.T) {
	cases := map[Code]int{
		CodeInvariantViolation: http.StatusUnprocessableEntity,
		CodeQuantityExceeded:   http.StatusUnprocessableEntity,
		CodeUnderflow:          http.StatusUnprocessableEntity,
		CodeAlreadyPicked:      http.StatusConflict,
		CodeToteConflict:       http.StatusConflict,
		CodeIncompleteApproval: http.StatusUnprocessableEntity,
		CodeStaleWrite:         http.StatusConflict,
	}
	for code, status := range cases {
		meta := MetadataFor(code)
		assert.Equal(t, status, meta.HTTPStatus, string(code))
		assert.True(t, meta.DetailsAllowed, string(code))
	}

	assert.True(t, MetadataFor(CodeStaleWrite).Retryable)
	assert.False(t, MetadataFor(CodeQuantityExceeded).Retryable)

	assert.Equal(t, http.StatusTooManyRequests, MetadataFor(CodeRateLimit).HTTPStatus)
	assert.True(t, MetadataFor(CodeRateLimit).Retryable)

	// Unknown codes fall back to internal.
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("NOPE")).HTTPStatus)
}

func TestWithDetails(t *testing.T) {
	err := New(CodeValidation, "bad payload").WithDetails(map[string]string{"count": "must be positive"})
	details, ok := err.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be positive", details["count"])
}

func TestDumpCollectsChain(t *testing.T) {
	cause := stdErrors.New("disk full")
	err := Wrap(CodeDependency, cause, "save order")

	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.Len(t, dump.Chain, 2)
	assert.Equal(t, "DEPENDENCY_ERROR: save order", dump.TopMessage)

	assert.Empty(t, Dump(nil).TopMessage)
}
