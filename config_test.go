package milcubes_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	milcubes "github.com/eWloYW8/ZJUMilCubesHelper"
)

func TestConfigFile_Profiles(t *testing.T) {
	t.Run("get by name", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{
			{Name: "prod", Username: "admin@example.com"},
			{Name: "staging", CookiesFile: "cookies.json"},
		}}

		p, err := cfg.GetProfile("staging")
		require.NoError(t, err)
		assert.Equal(t, "cookies.json", p.CookiesFile)
	})

	t.Run("empty name returns default", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{
			{Name: "prod"},
			{Name: "staging", Default: true},
		}}

		p, err := cfg.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "staging", p.Name)
	})

	t.Run("no default marked returns first", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{
			{Name: "prod"},
			{Name: "staging"},
		}}

		p, err := cfg.GetDefaultProfile()
		require.NoError(t, err)
		assert.Equal(t, "prod", p.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{{Name: "prod"}}}
		_, err := cfg.GetProfile("missing")
		assert.ErrorIs(t, err, milcubes.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{}
		_, err := cfg.GetProfile("")
		assert.ErrorIs(t, err, milcubes.ErrNoProfiles)
	})

	t.Run("add duplicate", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{}
		require.NoError(t, cfg.AddProfile(milcubes.Profile{Name: "prod"}))
		err := cfg.AddProfile(milcubes.Profile{Name: "prod"})
		assert.ErrorIs(t, err, milcubes.ErrProfileExists)
	})

	t.Run("set default clears others", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{
			{Name: "a", Default: true},
			{Name: "b"},
		}}
		require.NoError(t, cfg.SetDefault("b"))
		assert.False(t, cfg.Profiles[0].Default)
		assert.True(t, cfg.Profiles[1].Default)
	})

	t.Run("remove", func(t *testing.T) {
		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{{Name: "a"}, {Name: "b"}}}
		require.NoError(t, cfg.RemoveProfile("a"))
		assert.Len(t, cfg.Profiles, 1)
		assert.ErrorIs(t, cfg.RemoveProfile("a"), milcubes.ErrProfileNotFound)
	})
}

func TestConfigFile_SaveLoad(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "conf", "config.yaml")

		cfg := &milcubes.ConfigFile{Profiles: []milcubes.Profile{
			{
				Name:     "prod",
				BaseURL:  "https://milcubes.zju.edu.cn",
				Username: "admin@example.com",
				Password: "s3cret",
				Default:  true,
			},
		}}
		require.NoError(t, cfg.Save(path))

		loaded, err := milcubes.LoadConfigFile(path)
		require.NoError(t, err)
		assert.Equal(t, cfg.Profiles, loaded.Profiles)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := milcubes.LoadConfigFile("/nonexistent/config.yaml")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("profiles: [broken"), 0o600))

		_, err := milcubes.LoadConfigFile(path)
		assert.Error(t, err)
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Run("empty config is valid", func(t *testing.T) {
		cfg := &milcubes.Config{}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("valid base url", func(t *testing.T) {
		cfg := &milcubes.Config{BaseURL: "https://milcubes.zju.edu.cn"}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("malformed base url", func(t *testing.T) {
		cfg := &milcubes.Config{BaseURL: "not a url"}
		assert.Error(t, cfg.Validate())
	})
}

func TestMergeConfig(t *testing.T) {
	profile := &milcubes.Config{
		BaseURL:  "https://profile.example",
		Username: "profile@example.com",
		Password: "profile-pass",
	}
	flags := &milcubes.Config{
		Username: "flag@example.com",
	}

	merged := milcubes.MergeConfig(profile, nil, flags)
	assert.Equal(t, "https://profile.example", merged.BaseURL)
	assert.Equal(t, "flag@example.com", merged.Username)
	assert.Equal(t, "profile-pass", merged.Password)
}

func TestConfigFromProfile(t *testing.T) {
	t.Run("nil profile", func(t *testing.T) {
		cfg := milcubes.ConfigFromProfile(nil)
		require.NotNil(t, cfg)
		assert.Empty(t, cfg.BaseURL)
	})

	t.Run("copies fields", func(t *testing.T) {
		cfg := milcubes.ConfigFromProfile(&milcubes.Profile{
			Name:        "prod",
			BaseURL:     "https://milcubes.zju.edu.cn",
			CookiesFile: "cookies.json",
		})
		assert.Equal(t, "https://milcubes.zju.edu.cn", cfg.BaseURL)
		assert.Equal(t, "cookies.json", cfg.CookiesFile)
	})
}
