package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcsuka/xml-xsd-json/pkg/config"
)

func noPrompt(t *testing.T) servicePrompt {
	return func(context.Context) (int, config.Service, error) {
		t.Fatal("prompt must not run")
		return 0, config.Service{}, nil
	}
}

func TestRunInit_Defaults(t *testing.T) {
	for _, name := range []string{"rest2soap.yaml", "rest2soap.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			var out bytes.Buffer
			require.NoError(t, runInit(context.Background(), &initFlags{output: path, defaults: true}, &out, noPrompt(t)))

			assert.Contains(t, out.String(), "Created "+path)
			assert.Contains(t, out.String(), "rest2soap serve --config "+path)

			cfg, err := config.LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, config.Default().Server, cfg.Server)
			require.Len(t, cfg.Services, 1)
			assert.Equal(t, exampleService(), cfg.Services[0])
		})
	}
}

func TestRunInit_Prompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rest2soap.yaml")
	prompt := func(context.Context) (int, config.Service, error) {
		params, err := pathParameters("/orders/{orderId}")
		require.NoError(t, err)
		return 9090, config.Service{
			Name:       "getOrder",
			TargetURL:  "http://soap.internal/orders",
			RestPath:   "/orders/{orderId}",
			RestMethod: "GET",
			WSDL:       "http://soap.internal/orders?wsdl",
			Operation:  "GetOrder",
			Parameters: params,
		}, nil
	}
	require.NoError(t, runInit(context.Background(), &initFlags{output: path}, &bytes.Buffer{}, prompt))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	require.Len(t, cfg.Services, 1)
	assert.Equal(t, "getOrder", cfg.Services[0].Name)
	assert.Equal(t, []config.Parameter{{Name: "orderId", In: config.InPath, Required: true}}, cfg.Services[0].Parameters)
}

func TestRunInit_Errors(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "rest2soap.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("# mine\n"), 0644))

	t.Run("existing file", func(t *testing.T) {
		err := runInit(context.Background(), &initFlags{output: existing, defaults: true}, &bytes.Buffer{}, noPrompt(t))
		assert.ErrorIs(t, err, ErrFileExists)
		assert.Contains(t, err.Error(), "--force")

		data, err := os.ReadFile(existing)
		require.NoError(t, err)
		assert.Equal(t, "# mine\n", string(data))
	})

	t.Run("force", func(t *testing.T) {
		require.NoError(t, runInit(context.Background(), &initFlags{output: existing, defaults: true, force: true}, &bytes.Buffer{}, noPrompt(t)))
		_, err := config.LoadFile(existing)
		assert.NoError(t, err)
	})

	t.Run("prompt aborted", func(t *testing.T) {
		aborted := errors.New("user aborted")
		path := filepath.Join(dir, "aborted.yaml")
		err := runInit(context.Background(), &initFlags{output: path}, &bytes.Buffer{}, func(context.Context) (int, config.Service, error) {
			return 0, config.Service{}, aborted
		})
		assert.ErrorIs(t, err, aborted)
		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("invalid answers", func(t *testing.T) {
		path := filepath.Join(dir, "invalid.yaml")
		err := runInit(context.Background(), &initFlags{output: path}, &bytes.Buffer{}, func(context.Context) (int, config.Service, error) {
			svc := exampleService()
			svc.TargetURL = "ftp://soap"
			return 8080, svc, nil
		})
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestPathParameters(t *testing.T) {
	params, err := pathParameters("/customers/{customerId}/orders/{orderId}")
	require.NoError(t, err)
	assert.Equal(t, []config.Parameter{
		{Name: "customerId", In: config.InPath, Required: true},
		{Name: "orderId", In: config.InPath, Required: true},
	}, params)

	params, err = pathParameters("/orders")
	require.NoError(t, err)
	assert.Empty(t, params)

	_, err = pathParameters("orders")
	assert.Error(t, err)
}
