package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	testCases := []struct {
		name           string
		content        string
		expectError    bool
		expectedErrMsg string
	}{
		{
			name: "happy path",
			content: `owner: my-org
repositories:
  - repo-a
  - repo-b
output: reports/weekly.md
`,
		},
		{
			name: "missing owner",
			content: `repositories:
  - repo-a
`,
			expectError:    true,
			expectedErrMsg: "owner must be set",
		},
		{
			name:           "empty repositories",
			content:        `owner: my-org`,
			expectError:    true,
			expectedErrMsg: "repositories must not be empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, tc.content))

			if tc.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.expectedErrMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "my-org", cfg.Owner)
			assert.Equal(t, []string{"repo-a", "repo-b"}, cfg.Repositories)
			assert.Equal(t, "reports/weekly.md", cfg.Output)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
