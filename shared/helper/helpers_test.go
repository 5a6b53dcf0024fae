package helper_test

import (
	"errors"
	"testing"

	"github.com/on-the-ground/effect_ive_store/shared/helper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestGetTypedValueOf(t *testing.T) {
	v, err := helper.GetTypedValueOf[int](func() (any, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = helper.GetTypedValueOf[string](func() (any, error) { return 3, nil })
	assert.ErrorContains(t, err, "unexpected type: int")

	_, err = helper.GetTypedValueOf[int](func() (any, error) { return nil, errBoom })
	assert.ErrorIs(t, err, errBoom)
}

func TestGetTypedValueOf2(t *testing.T) {
	v, ok := helper.GetTypedValueOf2[string](func() (any, bool) { return "a", true })
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return 1, true })
	assert.False(t, ok)

	_, ok = helper.GetTypedValueOf2[string](func() (any, bool) { return nil, false })
	assert.False(t, ok)
}

func TestMustGetTypedValue_PanicsWithWrappedError(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, errBoom)
	}()
	helper.MustGetTypedValue[int](func() (any, error) { return nil, errBoom })
}
