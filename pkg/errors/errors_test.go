package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelMatching(t *testing.T) {
	assert.True(t, errors.Is(&ValidationError{Message: "bad"}, ErrInvalidInput))
	assert.True(t, errors.Is(&MalformedIdentifierError{Kind: "issn", Value: "x"}, ErrMalformedIdentifier))
	assert.True(t, IsValidationError(&ValidationError{Message: "bad"}))
	assert.True(t, IsMalformedIdentifier(&MalformedIdentifierError{Kind: "issn"}))
	assert.False(t, IsNotFound(&ValidationError{Message: "bad"}))
}

func TestWrapIO(t *testing.T) {
	inner := errors.New("disk gone")
	err := WrapIO("read", "/tmp/data.yaml", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "/tmp/data.yaml")

	assert.Nil(t, WrapIO("read", "/tmp/data.yaml", nil))
}

func TestWrapParse(t *testing.T) {
	inner := errors.New("unexpected token")
	err := WrapParse("yaml", "records.yaml", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "records.yaml")

	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "yaml", parseErr.Format)
}

func TestParseErrorWithLine(t *testing.T) {
	err := &ParseError{Format: "tsv", File: "issn_l.tsv", Line: 42, Message: "bad pair"}
	assert.Contains(t, err.Error(), "line 42")
}

func TestMergeErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	err := &MergeError{Key: "0028-0836", Message: "field clash", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "0028-0836")
}
