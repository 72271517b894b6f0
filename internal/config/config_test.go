package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/placement"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, domain.DefaultHistoryLimit, cfg.HistoryLimit)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "arbor.yaml", `
containerTypes: [Section, Tabs]
tabbedTypes: [Tabs]
childRules:
  Tabs: [Text]
historyLimit: 20
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 24h
    lock: true
server:
  port: 9000
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Section", "Tabs"}, cfg.ContainerTypes)
	assert.Equal(t, []string{"Text"}, cfg.ChildRules["Tabs"])
	assert.Equal(t, 20, cfg.HistoryLimit)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, "arbor:page:", cfg.Store.Redis.Prefix, "unset fields keep their defaults")
	assert.True(t, cfg.Store.Redis.Lock)
	assert.Equal(t, 9000, cfg.Server.Port)

	ttl, err := cfg.Store.Redis.Expiry()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "arbor.json", `{"store": {"backend": "file", "path": "/tmp/pages"}, "defaults": {"Text": {"name": "Paragraph"}}}`)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Store.Backend)
	assert.Equal(t, "Paragraph", cfg.Defaults["Text"]["name"])
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"backend": "store:\n  backend: etcd\n",
		"ttl":     "store:\n  redis:\n    ttl: forever\n",
		"history": "historyLimit: -1\n",
		"tabbed":  "containerTypes: [Section]\ntabbedTypes: [Tabs]\n",
		"syntax":  "containerTypes: [Section\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(write(t, "arbor.yaml", content))
			assert.Error(t, err)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolverOptions(t *testing.T) {
	cfg := config.Default()
	cfg.ContainerTypes = []string{"Section"}
	cfg.TabbedTypes = nil
	cfg.ChildRules = map[string][]string{"Section": {"Text"}}

	r := placement.New(cfg.ResolverOptions()...)
	assert.True(t, r.IsContainer("Section"))
	assert.False(t, r.IsContainer("Grid"))

	got := r.Resolve(domain.Gesture{
		Drag:   domain.Drag{ID: "x", Origin: domain.OriginPalette, DraggedType: "Image"},
		Target: domain.DropTarget{TargetID: "container-s"},
	}, []domain.Component{{ID: "s", Type: "Section", Children: []domain.Component{}}})
	_, rejected := got.Rejected()
	assert.True(t, rejected, "child rules come from the config")
}
