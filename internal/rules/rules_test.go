package rules

import (
	"errors"
	"testing"

	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpecs() map[string]Spec {
	return map[string]Spec{
		"test-key": {Description: "Test API Key", Regex: `^API_KEY=([A-Za-z0-9]+)$`, Severity: types.SevHigh},
		"password": {Description: "Password in file", Regex: `^password=([^\s]+)$`, Severity: types.SevMedium},
		"aws":      {Regex: `AKIA[0-9A-Z]{16}`, Severity: types.SevCritical},
		"todo":     {Regex: `token`, Severity: types.SevLow},
	}
}

func TestCompile_FiltersBySeverityFloor(t *testing.T) {
	tests := []struct {
		floor types.Severity
		want  []string
	}{
		{types.SevLow, []string{"aws", "password", "test-key", "todo"}},
		{types.SevMedium, []string{"aws", "password", "test-key"}},
		{types.SevHigh, []string{"aws", "test-key"}},
		{types.SevCritical, []string{"aws"}},
	}
	for _, tt := range tests {
		t.Run(tt.floor.String(), func(t *testing.T) {
			set, err := Compile(testSpecs(), tt.floor)
			require.NoError(t, err)
			var got []string
			for _, r := range set.Rules() {
				got = append(got, r.Name)
				assert.True(t, r.Severity.AtLeast(tt.floor))
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.floor, set.Floor())
		})
	}
}

func TestCompile_InvalidRegexIsFatal(t *testing.T) {
	specs := testSpecs()
	specs["broken"] = Spec{Regex: `([a-z`, Severity: types.SevHigh}

	_, err := Compile(specs, types.SevLow)
	require.Error(t, err)
	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "broken", ce.Rule)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCompile_InvalidRegexBelowFloorIgnored(t *testing.T) {
	specs := testSpecs()
	specs["broken"] = Spec{Regex: `([a-z`, Severity: types.SevLow}

	set, err := Compile(specs, types.SevMedium)
	require.NoError(t, err)
	_, ok := set.Get("broken")
	assert.False(t, ok)
}

func TestRule_Match(t *testing.T) {
	set := MustCompile(testSpecs(), types.SevLow)
	r, ok := set.Get("test-key")
	require.True(t, ok)
	assert.True(t, r.Match([]byte("API_KEY=abc123")))
	assert.False(t, r.Match([]byte("TEST_API_KEY=abc123")))
	assert.Equal(t, `^API_KEY=([A-Za-z0-9]+)$`, r.Pattern())
}

func TestSet_NilIsEmpty(t *testing.T) {
	var s *Set
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Rules())
}
