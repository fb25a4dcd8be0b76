package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapFormat(t *testing.T) {
	base := New("connection refused")
	err := Wrap(base, "TCP", "Init", "connecting socket")

	require.Error(t, err)
	assert.Equal(t, "TCP.Init: connecting socket failed: connection refused", err.Error())
	assert.True(t, Is(err, base))
	assert.Nil(t, Wrap(nil, "TCP", "Init", "connecting socket"))
}

func TestClassifiedWrappers(t *testing.T) {
	cases := []struct {
		wrap func(error, string, string, string) error
		kind ErrorKind
	}{
		{WrapIO, ErrorIO},
		{WrapTimeout, ErrorTimeout},
		{WrapConfig, ErrorConfig},
		{WrapUsage, ErrorUsage},
	}
	for _, tc := range cases {
		err := tc.wrap(New("x"), "comp", "Op", "doing")
		var ce *ClassifiedError
		require.True(t, As(err, &ce))
		assert.Equal(t, tc.kind, ce.Kind)
		assert.Equal(t, "comp", ce.Component)
		assert.Equal(t, "Op", ce.Operation)
		assert.Nil(t, tc.wrap(nil, "comp", "Op", "doing"))
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	timeout := fmt.Errorf("outer: %w", WrapTimeout(ErrTimeout, "Serial", "Read", "waiting for data"))
	assert.True(t, IsTimeout(timeout))
	assert.False(t, IsConfig(timeout))

	cfg := fmt.Errorf("outer: %w", ErrMissingConfig)
	assert.True(t, IsConfig(cfg))
	assert.False(t, IsTimeout(cfg))

	usage := WrapUsage(ErrInvalidSize, "TCP", "Read", "size check")
	assert.True(t, IsUsage(usage))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorTimeout, Classify(WrapTimeout(New("t"), "c", "m", "a")))
	assert.Equal(t, ErrorConfig, Classify(ErrDuplicateName))
	assert.Equal(t, ErrorUsage, Classify(ErrUnsupported))
	assert.Equal(t, ErrorIO, Classify(New("something else")))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "io", ErrorIO.String())
	assert.Equal(t, "timeout", ErrorTimeout.String())
	assert.Equal(t, "config", ErrorConfig.String())
	assert.Equal(t, "usage", ErrorUsage.String())
	assert.Equal(t, "unknown", ErrorKind(99).String())
}
