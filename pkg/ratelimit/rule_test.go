package ratelimit_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subgate/pkg/ratelimit"
)

func TestParseRule(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ratelimit.Rule
		wantErr bool
	}{
		{in: "5/1m", want: ratelimit.Rule{Limit: 5, Window: time.Minute}},
		{in: " 120 / 60s ", want: ratelimit.Rule{Limit: 120, Window: time.Minute}},
		{in: "5", wantErr: true},
		{in: "x/1m", wantErr: true},
		{in: "5/forever", wantErr: true},
		{in: "0/1m", wantErr: true},
		{in: "5/0s", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ratelimit.ParseRule(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ratelimit.ErrInvalidRule)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}

func TestRoutes_UnmarshalText(t *testing.T) {
	t.Parallel()

	var routes ratelimit.Routes
	require.NoError(t, routes.UnmarshalText([]byte("login=5/1m, webhooks=120/60s,")))
	assert.Equal(t, ratelimit.Routes{
		"login":    {Limit: 5, Window: time.Minute},
		"webhooks": {Limit: 120, Window: time.Minute},
	}, routes)

	assert.ErrorIs(t, routes.UnmarshalText([]byte("=5/1m")), ratelimit.ErrInvalidRule)
	assert.ErrorIs(t, routes.UnmarshalText([]byte("login:5/1m")), ratelimit.ErrInvalidRule)
}

func TestLoadRules(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default: 30/1m
routes:
  login: 10/1m
  search:
    limit: 20
    window: 10s
`), 0o600))

	set, err := ratelimit.LoadRules(ratelimit.Config{
		RoutesFile: path,
		Default:    ratelimit.Rule{Limit: 60, Window: time.Minute},
		Routes:     ratelimit.Routes{"login": {Limit: 3, Window: time.Minute}},
	})
	require.NoError(t, err)

	assert.Equal(t, ratelimit.Rule{Limit: 30, Window: time.Minute}, set.Default)
	assert.Equal(t, ratelimit.Rule{Limit: 3, Window: time.Minute}, set.Rule("login"), "env overrides file")
	assert.Equal(t, ratelimit.Rule{Limit: 20, Window: 10 * time.Second}, set.Rule("search"))
	assert.Equal(t, ratelimit.Rule{Limit: 120, Window: time.Minute}, set.Rule("webhooks"), "built-in default")
	assert.Equal(t, set.Default, set.Rule("unknown"))
	assert.Equal(t, ratelimit.Rule{Limit: 5, Window: time.Minute}, set.Rule("refresh"), "built-in default")
	assert.Equal(t, []string{"login", "refresh", "search", "webhooks"}, set.RouteIDs())
}

func TestLoadRules_Errors(t *testing.T) {
	t.Parallel()

	_, err := ratelimit.LoadRules(ratelimit.Config{RoutesFile: "/does/not/exist.yaml", Default: ratelimit.Rule{Limit: 1, Window: time.Second}})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routes:\n  login: nope\n"), 0o600))
	_, err = ratelimit.LoadRules(ratelimit.Config{RoutesFile: path, Default: ratelimit.Rule{Limit: 1, Window: time.Second}})
	assert.Error(t, err)

	_, err = ratelimit.LoadRules(ratelimit.Config{})
	assert.ErrorIs(t, err, ratelimit.ErrInvalidRule)
}
