package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv blanks every variable Load reads and points the user config
// directory at a temp dir.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, name := range EnvVars() {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "local", cfg.Platform)
	assert.Equal(t, "prism-review.md", cfg.ArtifactPath)
	assert.Equal(t, 65000, cfg.MaxCommentLength)
	assert.Equal(t, "claude", cfg.Generator.Command)
	assert.Equal(t, []string{"-p"}, cfg.Generator.Args)
	assert.False(t, cfg.Verbose)
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.MaxCommentLength = 0
	assert.ErrorContains(t, cfg.Validate(), "max_comment_length")

	cfg = Default()
	cfg.Generator.Command = "  "
	assert.ErrorContains(t, cfg.Validate(), "generator.command")

	cfg = Default()
	cfg.ArtifactPath = ""
	assert.ErrorContains(t, cfg.Validate(), "artifact_path")
}

func TestMergeEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PRISM_PLATFORM", "github")
	t.Setenv("PRISM_GENERATOR_CMD", "my-reviewer")
	t.Setenv("PRISM_GENERATOR_ARGS", `--model sonnet --prompt-prefix "be brief"`)
	t.Setenv("PRISM_ARTIFACT_PATH", "out/review.md")
	t.Setenv("PRISM_MAX_COMMENT_LENGTH", "1200")
	t.Setenv("PRISM_BASE_BRANCH", "develop")
	t.Setenv("PRISM_VERBOSE", "true")
	t.Setenv("PRISM_PRETTY", "1")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3")
	t.Setenv("BITBUCKET_API_URL", "https://bb.example.com/2.0")

	cfg := Default()
	require.NoError(t, mergeEnv(&cfg))

	assert.Equal(t, "github", cfg.Platform)
	assert.Equal(t, "my-reviewer", cfg.Generator.Command)
	assert.Equal(t, []string{"--model", "sonnet", "--prompt-prefix", "be brief"}, cfg.Generator.Args)
	assert.Equal(t, "out/review.md", cfg.ArtifactPath)
	assert.Equal(t, 1200, cfg.MaxCommentLength)
	assert.Equal(t, "develop", cfg.BaseBranch)
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.Pretty)
	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.GitHub.APIURL)
	assert.Equal(t, "https://bb.example.com/2.0", cfg.Bitbucket.APIURL)
}

func TestMergeEnv_Invalid(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"PRISM_MAX_COMMENT_LENGTH", "notanumber"},
		{"PRISM_VERBOSE", "maybe"},
		{"PRISM_GENERATOR_ARGS", `"unterminated`},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(tt.env, tt.value)
			cfg := Default()
			err := mergeEnv(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestSplitArgs(t *testing.T) {
	args, err := SplitArgs(`-p --append-system-prompt 'review $CHANGES carefully'`)
	require.NoError(t, err)
	assert.Equal(t, []string{"-p", "--append-system-prompt", "review $CHANGES carefully"}, args)

	args, err = SplitArgs("")
	require.NoError(t, err)
	assert.Empty(t, args)
	assert.NotNil(t, args)
}

func TestMergeOverrides(t *testing.T) {
	cfg := Default()
	require.NoError(t, mergeOverrides(&cfg, map[string]string{
		"platform":           "bitbucket",
		"generator.command":  "reviewer",
		"generator.args":     "--fast",
		"max_comment_length": "500",
		"artifact_path":      "",
	}))
	assert.Equal(t, "bitbucket", cfg.Platform)
	assert.Equal(t, "reviewer", cfg.Generator.Command)
	assert.Equal(t, []string{"--fast"}, cfg.Generator.Args)
	assert.Equal(t, 500, cfg.MaxCommentLength)
	assert.Equal(t, "prism-review.md", cfg.ArtifactPath, "empty override leaves value alone")
}

func TestMergeOverrides_Nil(t *testing.T) {
	cfg := Default()
	require.NoError(t, mergeOverrides(&cfg, nil))
	assert.Equal(t, Default(), cfg)
}

func TestSetField_UnknownKey(t *testing.T) {
	cfg := Default()
	assert.ErrorContains(t, SetField(&cfg, "nonexistent", "value"), "unknown config key")
}

func TestSetField_InvalidInt(t *testing.T) {
	cfg := Default()
	assert.Error(t, SetField(&cfg, "max_comment_length", "lots"))
}

func TestMergeFile(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{
		Platform:         "github",
		MaxCommentLength: 100,
		Generator:        GeneratorConfig{Args: []string{}},
		GitHub:           ForgeConfig{APIURL: "https://ghe.example.com/api/v3"},
		Verbose:          true,
	})
	assert.Equal(t, "github", dst.Platform)
	assert.Equal(t, 100, dst.MaxCommentLength)
	assert.Equal(t, "claude", dst.Generator.Command)
	assert.Equal(t, []string{}, dst.Generator.Args, "explicit empty args clear the default")
	assert.Equal(t, "https://ghe.example.com/api/v3", dst.GitHub.APIURL)
	assert.True(t, dst.Verbose)
	assert.Equal(t, "prism-review.md", dst.ArtifactPath)
}

func TestMergeFile_Empty(t *testing.T) {
	dst := Default()
	mergeFile(&dst, Config{})
	assert.Equal(t, Default(), dst)
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "prism-ci"), dir)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "prism-ci", "config.toml"), path)
}

func TestLoadFile_Formats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"c.toml": "platform = \"bitbucket\"\nmax_comment_length = 300\n\n[generator]\ncommand = \"rev\"\nargs = [\"-x\"]\n",
		"c.yaml": "platform: bitbucket\nmax_comment_length: 300\ngenerator:\n  command: rev\n  args: [\"-x\"]\n",
		"c.json": `{"platform":"bitbucket","maxCommentLength":300,"generator":{"command":"rev","args":["-x"]}}`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			cfg, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "bitbucket", cfg.Platform)
			assert.Equal(t, 300, cfg.MaxCommentLength)
			assert.Equal(t, "rev", cfg.Generator.Command)
			assert.Equal(t, []string{"-x"}, cfg.Generator.Args)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("platform = "), 0o644))
	_, err := LoadFile(bad)
	assert.ErrorContains(t, err, "parsing config file")

	ini := filepath.Join(dir, "c.ini")
	require.NoError(t, os.WriteFile(ini, []byte("x=1"), 0o644))
	_, err = LoadFile(ini)
	assert.ErrorContains(t, err, "unsupported config file format")
}

func TestSaveAndLoad(t *testing.T) {
	isolateEnv(t)

	cfg := Default()
	cfg.Platform = "github"
	cfg.Generator.Args = []string{"-p", "--verbose"}
	require.NoError(t, Save(cfg))

	path, err := ConfigPath()
	require.NoError(t, err)
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	merged, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "github", merged.Platform)
}

func TestSave_ReplacesLongerFile(t *testing.T) {
	isolateEnv(t)
	path, err := ConfigPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("# stale\n"+strings.Repeat("x = 1\n", 500)), 0o644))

	require.NoError(t, Save(Default()))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), loaded)
}

func TestSave_UnwritablePath(t *testing.T) {
	dir := isolateEnv(t)
	// The config file path is occupied by a directory.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "prism-ci", "config.toml"), 0o755))

	err := Save(Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating config file")
}

func TestLoad_Precedence(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "prism.yaml")
	require.NoError(t, os.WriteFile(path, []byte("platform: bitbucket\nartifact_path: file.md\nbase_branch: trunk\n"), 0o644))
	t.Setenv("PRISM_PLATFORM", "github")
	t.Setenv("PRISM_ARTIFACT_PATH", "env.md")

	cfg, err := Load(path, map[string]string{"artifact_path": "flag.md"})
	require.NoError(t, err)

	assert.Equal(t, "github", cfg.Platform, "env beats file")
	assert.Equal(t, "flag.md", cfg.ArtifactPath, "flag beats env")
	assert.Equal(t, "trunk", cfg.BaseBranch, "file beats default")
	assert.Equal(t, 65000, cfg.MaxCommentLength)
}

func TestLoadSaved_IgnoresEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PRISM_PLATFORM", "github")

	cfg, err := LoadSaved("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, SetField(&cfg, "base_branch", "develop"))
	require.NoError(t, Save(cfg))

	again, err := LoadSaved("")
	require.NoError(t, err)
	assert.Equal(t, "develop", again.BaseBranch)
	assert.Equal(t, "local", again.Platform)
}
