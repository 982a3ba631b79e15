package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImpl string

func (f fakeImpl) ImplementationKey() string { return string(f) }

func TestRegisterAndCanonical(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(fakeImpl("b")))
	require.NoError(t, r.Register(fakeImpl("a")))

	impl, err := r.Canonical("a")
	require.NoError(t, err)
	assert.Equal(t, fakeImpl("a"), impl)

	assert.Equal(t, []string{"a", "b"}, r.Keys())
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(fakeImpl("a")))

	err := r.Register(fakeImpl("a"))
	assert.True(t, errors.Is(err, ErrDuplicateKey))
}

func TestCanonicalUnknown(t *testing.T) {
	_, err := New().Canonical("missing")
	assert.True(t, errors.Is(err, ErrUnknownKey))
}
