package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("unresolved"), "annotate the type")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "annotate the type", hints[0])
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.Nil(t, Append(nil, nil))
	assert.Nil(t, Combine(nil, nil))
	assert.Empty(t, Flatten(nil))
}

func TestAppendAndFlatten(t *testing.T) {
	var batch error
	batch = Append(batch, New("first"))
	batch = Append(batch, nil)
	batch = Append(batch, New("second"))

	errs := Flatten(batch)
	require.Len(t, errs, 2)
	assert.Equal(t, "first", errs[0].Error())
	assert.Equal(t, "second", errs[1].Error())
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Wrapf(ErrDependencyCycle, "module %s", "pkg/a")
	assert.True(t, Is(err, ErrDependencyCycle))
	assert.False(t, Is(err, ErrExtraction))
}

func TestIsUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"extraction", Wrap(ErrExtraction, "bad field"), true},
		{"batch of user errors", Combine(Wrap(ErrUnresolvedReference, "a"), Wrap(ErrDependencyCycle, "b")), true},
		{"io error", New("permission denied"), false},
		{"mixed batch", Combine(Wrap(ErrExtraction, "a"), New("disk full")), false},
		{"emission is a defect", Wrap(ErrEmission, "no rule"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUserError(tt.err))
		})
	}
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to load module")
	fmt.Println(err)
	// Output: failed to load module: connection failed
}
