package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/spf13/viper"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/edupulse/internal/model"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. EDUPULSE_ENV_DIR=.venv.
const EnvPrefix = "EDUPULSE"

// DefaultFileName is the file written by `edupulse config init`.
const DefaultFileName = "edupulse.yaml"

// candidateFiles are searched in order inside the project directory.
var candidateFiles = []string{
	"edupulse.yaml",
	"edupulse.yml",
	"edupulse.json",
	"edupulse.jsonc",
}

// Config is the effective project configuration.
type Config struct {
	// AppName is used in banners and messages.
	AppName string `mapstructure:"app_name" yaml:"app_name" json:"app_name"`

	// EnvDir is the isolated environment directory, relative to the project.
	EnvDir string `mapstructure:"env_dir" yaml:"env_dir" json:"env_dir"`

	// Manifest is the dependency manifest passed to `pip install -r`.
	Manifest string `mapstructure:"manifest" yaml:"manifest" json:"manifest"`

	// EntryPoint is the script launched inside the environment.
	EntryPoint string `mapstructure:"entry_point" yaml:"entry_point" json:"entry_point"`

	// EnvFile is a dotenv file merged into the application's environment.
	// Empty disables it.
	EnvFile string `mapstructure:"env_file" yaml:"env_file" json:"env_file"`

	// Interpreters are the candidate interpreter names, tried in order.
	Interpreters []string `mapstructure:"interpreters" yaml:"interpreters" json:"interpreters"`

	// MinPython is the minimum accepted interpreter version, e.g. "3.8".
	MinPython string `mapstructure:"min_python" yaml:"min_python" json:"min_python"`

	// UpgradeInstaller controls the `pip install --upgrade pip` step.
	UpgradeInstaller bool `mapstructure:"upgrade_installer" yaml:"upgrade_installer" json:"upgrade_installer"`

	// Pause asks for acknowledgment after a failure.
	Pause bool `mapstructure:"pause" yaml:"pause" json:"pause"`

	// CacheFiles are regenerable application files removed by `clean --cache`.
	CacheFiles []string `mapstructure:"cache_files" yaml:"cache_files" json:"cache_files"`

	// ExpectedEnv lists variables the application reads; status warns
	// when they are neither in the env file nor the process environment.
	ExpectedEnv []string `mapstructure:"expected_env" yaml:"expected_env" json:"expected_env"`

	// Source is the configuration file that was loaded, empty when only
	// defaults and environment variables apply.
	Source string `mapstructure:"-" yaml:"-" json:"-"`
}

// DefaultInterpreters returns the interpreter candidates for the current OS.
// On Windows the launcher `py` is a common fallback when `python` is absent.
func DefaultInterpreters() []string {
	if runtime.GOOS == "windows" {
		return []string{"python", "py", "python3"}
	}
	return []string{"python3", "python"}
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	return &Config{
		AppName:          "EduPulse",
		EnvDir:           "venv",
		Manifest:         "requirements.txt",
		EntryPoint:       "main.py",
		EnvFile:          ".env",
		Interpreters:     DefaultInterpreters(),
		MinPython:        "3.8",
		UpgradeInstaller: true,
		Pause:            true,
		CacheFiles:       []string{"cache.json"},
		ExpectedEnv:      []string{"NEWS_API_KEY"},
	}
}

// setDefaults registers every key with viper. AutomaticEnv only resolves
// keys viper already knows about, so every field needs a default here.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("app_name", d.AppName)
	v.SetDefault("env_dir", d.EnvDir)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("entry_point", d.EntryPoint)
	v.SetDefault("env_file", d.EnvFile)
	v.SetDefault("interpreters", d.Interpreters)
	v.SetDefault("min_python", d.MinPython)
	v.SetDefault("upgrade_installer", d.UpgradeInstaller)
	v.SetDefault("pause", d.Pause)
	v.SetDefault("cache_files", d.CacheFiles)
	v.SetDefault("expected_env", d.ExpectedEnv)
}

// FindConfigFile returns the first candidate config file present in
// projectDir, or "" when there is none.
func FindConfigFile(projectDir string) string {
	for _, name := range candidateFiles {
		path := filepath.Join(projectDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load builds the effective configuration for projectDir.
//
// If explicitPath is non-empty it must exist; otherwise the project
// directory is searched with FindConfigFile. Returns a CLIError with
// ExitConfigError for unreadable, unparsable or invalid configuration.
func Load(projectDir, explicitPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	// An exported but empty variable is a value, so EDUPULSE_ENV_FILE=
	// disables the env file.
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()

	path := explicitPath
	if path == "" {
		path = FindConfigFile(projectDir)
	}

	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to decode configuration", err)
	}
	cfg.Source = path

	if err := cfg.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid configuration", err)
	}
	return cfg, nil
}

// readConfigFile feeds a YAML or JSON(C) file into v.
func readConfigFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to read config file %s", path), err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json", ".jsonc":
		// Strip comments and trailing commas so hand-edited files parse.
		data = jsonc.ToJSON(data)
		v.SetConfigType("json")
	case ".yaml", ".yml":
		v.SetConfigType("yaml")
	default:
		return model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unsupported config file extension %q (valid: .yaml, .yml, .json, .jsonc)", ext))
	}

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return model.WrapCLIError(model.ExitConfigError, fmt.Sprintf("failed to parse config file %s", path), err)
	}
	return nil
}

// versionRegex accepts "3", "3.8" or "3.8.10".
var versionRegex = regexp.MustCompile(`^\d+(\.\d+){0,2}$`)

// Validate checks field values. Paths must stay inside the project
// directory so `clean` can never remove anything outside it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AppName) == "" {
		return fmt.Errorf("app_name must not be empty")
	}

	paths := []struct {
		key      string
		value    string
		optional bool
	}{
		{"env_dir", c.EnvDir, false},
		{"manifest", c.Manifest, false},
		{"entry_point", c.EntryPoint, false},
		{"env_file", c.EnvFile, true},
	}
	for _, p := range paths {
		if p.value == "" {
			if p.optional {
				continue
			}
			return fmt.Errorf("%s must not be empty", p.key)
		}
		if err := validateLocalPath(p.key, p.value); err != nil {
			return err
		}
	}
	if filepath.Clean(c.EnvDir) == "." {
		return fmt.Errorf("env_dir must not be the project directory itself")
	}

	for _, f := range c.CacheFiles {
		if err := validateLocalPath("cache_files", f); err != nil {
			return err
		}
	}

	if len(c.Interpreters) == 0 {
		return fmt.Errorf("interpreters must list at least one candidate")
	}
	for _, name := range c.Interpreters {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("interpreters must not contain empty names")
		}
	}

	if c.MinPython != "" && !versionRegex.MatchString(c.MinPython) {
		return fmt.Errorf("min_python %q is not a version (expected e.g. 3.8)", c.MinPython)
	}
	return nil
}

func validateLocalPath(key, value string) error {
	if !filepath.IsLocal(value) {
		return fmt.Errorf("%s %q must be a relative path inside the project directory", key, value)
	}
	return nil
}

// Resolve returns rel joined onto projectDir.
func Resolve(projectDir, rel string) string {
	return filepath.Join(projectDir, rel)
}

// WriteYAML encodes the configuration as YAML with two-space indentation.
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

// WriteFile writes the configuration to path as YAML, refusing to replace
// an existing file unless overwrite is set.
func (c *Config) WriteFile(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("%s already exists (use --force to overwrite)", path))
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := c.WriteYAML(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
