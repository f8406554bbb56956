package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderSetsAllFields(t *testing.T) {
	err := Newf("fetch failed for %s", "amerob").
		Category(CategoryNetwork).
		Component("taxonomy").
		Context("species_code", "amerob").
		Build()

	assert.Equal(t, "fetch failed for amerob", err.Error())
	assert.Equal(t, string(CategoryNetwork), err.GetCategory())
	assert.Equal(t, "taxonomy", err.GetComponent())
	assert.Equal(t, "amerob", err.GetContext()["species_code"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilderDefaults(t *testing.T) {
	err := New(stderrors.New("boom")).Build()

	assert.Equal(t, string(CategoryGeneric), err.GetCategory())
	assert.Equal(t, ComponentUnknown, err.GetComponent())
	assert.Nil(t, err.GetContext())
}

func TestNewfWrapsWithPercentW(t *testing.T) {
	base := stderrors.New("connection refused")
	err := Newf("request failed: %w", base).
		Category(CategoryNetwork).
		Build()

	assert.ErrorIs(t, err, base)
	assert.Equal(t, base, Unwrap(Unwrap(err)))
}

func TestEnhancedErrorsMatchOnCategory(t *testing.T) {
	a := Newf("one").Category(CategoryDatabase).Build()
	b := Newf("two").Category(CategoryDatabase).Build()
	c := Newf("three").Category(CategoryNetwork).Build()

	assert.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}

func TestGetContextReturnsCopy(t *testing.T) {
	err := Newf("boom").Context("key", "original").Build()

	copied := err.GetContext()
	require.NotNil(t, copied)
	copied["key"] = "mutated"

	assert.Equal(t, "original", err.GetContext()["key"])
}
