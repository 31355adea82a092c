package outcome

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func describe(o Outcome[int]) string {
	return Match(o,
		func(v int) string { return "success:" + strconv.Itoa(v) },
		func(err *Error) string { return "error:" + err.Code },
		func(partial *int) string {
			if partial == nil {
				return "loading"
			}
			return "loading:" + strconv.Itoa(*partial)
		},
	)
}

func TestMatch_DispatchesEachVariant(t *testing.T) {
	prev := 3

	tests := []struct {
		name string
		in   Outcome[int]
		want string
	}{
		{name: "success", in: Ok(7), want: "success:7"},
		{name: "failure", in: Fail[int](&Error{Code: "408", Message: "timeout"}), want: "error:408"},
		{name: "loading without partial", in: Pending[int](nil), want: "loading"},
		{name: "loading with partial", in: Pending(&prev), want: "loading:3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.in))
		})
	}
}

func TestMap(t *testing.T) {
	double := func(v int) int { return v * 2 }

	v, ok := Value(Map(Ok(4), double))
	require.True(t, ok)
	assert.Equal(t, 8, v)

	failed := Map(Fail[int](&Error{Code: "1", Message: "response body is null"}), double)
	require.NotNil(t, ErrorOf(failed))
	assert.Equal(t, "1", ErrorOf(failed).Code)

	prev := 5
	loading, ok := Map(Pending(&prev), double).(Loading[int])
	require.True(t, ok)
	require.NotNil(t, loading.Partial)
	assert.Equal(t, 10, *loading.Partial)
}

func TestValue_NotSuccess(t *testing.T) {
	_, ok := Value(Pending[int](nil))
	assert.False(t, ok)
	assert.Nil(t, ErrorOf(Ok(1)))
}

func TestError_MessageAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &Error{Code: "2", Message: "connection error", Cause: cause}

	assert.Equal(t, "2: connection error: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, "no code", (&Error{Message: "no code"}).Error())
	assert.Equal(t, "5: no network connection", (&Error{Code: "5", Message: "no network connection"}).Error())
}
