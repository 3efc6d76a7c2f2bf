package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelTree(t *testing.T) {
	errRoot := New("storage error")
	assert.Equal(t, "storage error", errRoot.Error())
	assert.ErrorIs(t, errRoot, errRoot)

	errNotFound := errRoot.New("not found")
	assert.Equal(t, "not found", errNotFound.Error())
	assert.ErrorIs(t, errNotFound, errRoot)

	errOther := New("other error")
	assert.NotErrorIs(t, errNotFound, errOther)
}

func TestMsgWrapping(t *testing.T) {
	errRoot := New("storage error")
	errNotFound := errRoot.New("not found")

	wrapped := errNotFound.Msg("product 42")
	assert.Equal(t, "product 42: not found", wrapped.Error())
	assert.ErrorIs(t, wrapped, errNotFound)
	assert.ErrorIs(t, wrapped, errRoot)
}

func TestAttachedCauses(t *testing.T) {
	errRoot := New("storage error")
	cause := errors.New("driver: connection reset")

	attached := errRoot.Err(cause)
	assert.Equal(t, "storage error", attached.Error())
	assert.ErrorIs(t, attached, errRoot)
	assert.ErrorIs(t, attached, cause)

	first := fmt.Errorf("first cause")
	second := fmt.Errorf("second cause")
	withMsg := errRoot.MsgErr("query failed", first, second)
	assert.Equal(t, "query failed", withMsg.Error())
	assert.ErrorIs(t, withMsg, errRoot)
	assert.ErrorIs(t, withMsg, first)
	assert.ErrorIs(t, withMsg, second)
}

func TestDerivationDoesNotMutate(t *testing.T) {
	errRoot := New("storage error")
	errChild := errRoot.New("not found")
	_ = errChild.Msg("context")
	_ = errChild.Err(errors.New("cause"))

	assert.Equal(t, "not found", errChild.Error())
	assert.Len(t, errChild.Unwrap(), 1)
}
