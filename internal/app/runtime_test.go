package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveRunMode(t *testing.T) {
	cases := []struct {
		name     string
		mode     string
		testMode string
		want     RunMode
		wantErr  bool
	}{
		{name: "default", want: RunServe},
		{name: "check", mode: "check", want: RunCheck},
		{name: "test mode wins", mode: "check", testMode: "1", want: RunSkip},
		{name: "unknown", mode: "migrate", wantErr: true},
		{name: "bad bool", testMode: "maybe", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			setenv(t, "KPI_RUN_MODE", tc.mode)
			setenv(t, "KPI_TEST_MODE", tc.testMode)
			got, err := ResolveRunMode()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// setenv sets key for the test, or unsets it when value is empty.
func setenv(t *testing.T, key, value string) {
	t.Helper()
	t.Setenv(key, value)
	if value == "" {
		require.NoError(t, os.Unsetenv(key))
	}
}
