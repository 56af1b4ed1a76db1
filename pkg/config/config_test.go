package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluidos-project/kubectl-fluidos/pkg/config"
	"github.com/fluidos-project/kubectl-fluidos/pkg/yaml"
)

func createTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()

	assert.Equal(t, "fluidos.eu/v1alpha1", cfg.APIVersion)
	assert.Equal(t, "Configuration", cfg.Kind)
	assert.Equal(t, "kubectl", cfg.Kubectl.Command)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.MSPL.URL)
	assert.Empty(t, cfg.ModelBased.Namespace)
	assert.Empty(t, cfg.Intent.Expression)
}

func TestSchema(t *testing.T) {
	t.Parallel()

	data, err := config.Schema()
	require.NoError(t, err)

	assert.Contains(t, string(data), `"apiVersion"`)
	assert.Contains(t, string(data), `"annotationPrefix"`)
	assert.Contains(t, string(data), `"fluidos.eu/v1alpha1"`)
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		content string
		wantErr bool
	}{
		"minimal": {
			content: "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\n",
		},
		"full": {
			content: `apiVersion: fluidos.eu/v1alpha1
kind: Configuration
mspl:
  hostname: orchestrator.fluidos.eu
  port: 8443
  schema: https
modelBased:
  namespace: fluidos
intent:
  annotationPrefix: fluidos-intent-
kubectl:
  command: kubectl --context=dev
log:
  level: debug
  format: json
`,
		},
		"empty": {
			content: "",
		},
		"wrong api version": {
			content: "apiVersion: v1\nkind: Configuration\n",
			wantErr: true,
		},
		"missing kind": {
			content: "apiVersion: fluidos.eu/v1alpha1\n",
			wantErr: true,
		},
		"unknown field": {
			content: "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nfoo: bar\n",
			wantErr: true,
		},
		"port out of range": {
			content: "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nmspl:\n  port: 70000\n",
			wantErr: true,
		},
		"bad schema": {
			content: "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nmspl:\n  schema: ftp\n",
			wantErr: true,
		},
		"bad log level": {
			content: "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nlog:\n  level: trace\n",
			wantErr: true,
		},
		"invalid yaml": {
			content: "apiVersion: [",
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := config.NewLoaderFromBytes([]byte(tc.content)).Validate()
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestLoader_ValidateErrorPath(t *testing.T) {
	t.Parallel()

	err := config.NewLoaderFromBytes([]byte("apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nmspl:\n  port: 0\n")).Validate()
	require.Error(t, err)

	var yamlErr *yaml.Error
	require.ErrorAs(t, err, &yamlErr)
	require.NotNil(t, yamlErr.Path)
	assert.Equal(t, "$.mspl.port", yamlErr.Path.String())
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	content := `apiVersion: fluidos.eu/v1alpha1
kind: Configuration
mspl:
  url: https://orchestrator.fluidos.eu/meservice
intent:
  expression: manifest.kind == "Deployment"
log:
  level: debug
`

	cfg, err := config.NewLoaderFromBytes([]byte(content)).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://orchestrator.fluidos.eu/meservice", cfg.MSPL.URL)
	assert.Equal(t, `manifest.kind == "Deployment"`, cfg.Intent.Expression)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Defaults are applied to the rest.
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "kubectl", cfg.Kubectl.Command)
	assert.NotNil(t, cfg.ModelBased)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("missing optional file", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), false)
		require.NoError(t, err)
		assert.Equal(t, config.NewConfig(), cfg)
	})

	t.Run("missing required file", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(filepath.Join(t.TempDir(), "config.yaml"), true)
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := config.Load(t.TempDir(), false)
		require.Error(t, err)
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nkubectl: kubectl\n")

		_, err := config.Load(path, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := createTempFile(t, "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\nmodelBased:\n  namespace: fluidos\n")

		cfg, err := config.Load(path, true)
		require.NoError(t, err)
		assert.Equal(t, "fluidos", cfg.ModelBased.Namespace)
	})
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "kubectl-fluidos", "config.yaml")

	require.NoError(t, config.WriteDefault(path, false))
	assert.FileExists(t, path)
	assert.FileExists(t, filepath.Join(filepath.Dir(path), config.SchemaFileName))

	// The written file is a valid configuration.
	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, config.NewConfig(), cfg)

	// Existing files are kept.
	require.NoError(t, os.WriteFile(path, []byte("apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\n"), 0o600))
	require.NoError(t, config.WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "apiVersion: fluidos.eu/v1alpha1\nkind: Configuration\n", string(data))

	// Unless forced.
	require.NoError(t, config.WriteDefault(path, true))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestGetPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	assert.Equal(t, "/tmp/xdg/kubectl-fluidos/config.yaml", config.GetPath())
}
