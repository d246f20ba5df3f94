package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/focus/errors"
	"github.com/grovetools/focus/pkg/paths"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames lists the project config file names in precedence order.
var configNames = []string{
	"focus.yml",
	"focus.yaml",
	".focus.yml",
	".focus.yaml",
	"focus.toml",
	".focus.toml",
}

// knownSections are the top-level keys decoded into Config itself.
var knownSections = map[string]bool{
	"version": true,
	"storage": true,
	"daemon":  true,
	"focus":   true,
}

// Load reads and parses a single configuration file.
func Load(path string) (*Config, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	return LoadFromMap(raw)
}

// LoadDefault loads configuration relative to the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger loads configuration with hierarchical merging:
// 1. Global config ($XDG_CONFIG_HOME/focus/focus.yml) - base layer
// 2. Project config (focus.yml found from startDir upward) - overrides global
//
// Both layers are optional; with neither present the defaults apply.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	merged := make(map[string]interface{})

	if globalPath := findInDir(paths.ConfigDir()); globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalRaw, err := readRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
		} else {
			merged = mergeMaps(merged, globalRaw)
		}
	}

	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectRaw, err := readRaw(projectPath)
		if err != nil {
			return nil, err
		}
		merged = mergeMaps(merged, projectRaw)
	} else if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		return nil, err
	}

	return LoadFromMap(merged)
}

// LoadFromBytes parses configuration from bytes. format is "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	raw, err := parseRaw(data, format)
	if err != nil {
		return nil, err
	}
	return LoadFromMap(raw)
}

// LoadFromMap validates a raw configuration map against the schema,
// decodes it and applies defaults.
func LoadFromMap(raw map[string]interface{}) (*Config, error) {
	if raw == nil {
		raw = make(map[string]interface{})
	}

	validator, err := NewSchemaValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create validator")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigValidation, "schema validation failed")
	}

	var cfg Config
	core := make(map[string]interface{})
	for key, value := range raw {
		if knownSections[key] {
			core[key] = value
			continue
		}
		if cfg.Extensions == nil {
			cfg.Extensions = make(map[string]interface{})
		}
		cfg.Extensions[key] = value
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to create decoder")
	}
	if err := decoder.Decode(core); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode configuration")
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigFile searches for a focus config file from startDir up to the
// filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		if path := findInDir(dir); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir).WithDetail("searchPath", startDir)
}

func findInDir(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func readRaw(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	format := "yaml"
	if strings.HasSuffix(path, ".toml") {
		format = "toml"
	}
	raw, err := parseRaw(data, format)
	if err != nil {
		if focusErr, ok := err.(*errors.FocusError); ok {
			return nil, focusErr.WithDetail("path", path)
		}
		return nil, err
	}
	return raw, nil
}

func parseRaw(data []byte, format string) (map[string]interface{}, error) {
	expanded := []byte(expandEnvVars(string(data)))

	raw := make(map[string]interface{})
	switch format {
	case "toml":
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML configuration")
		}
	default:
		if err := yaml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML configuration")
		}
	}
	return raw, nil
}

// mergeMaps deep-merges src over dst. Nested maps merge; other values replace.
func mergeMaps(dst, src map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(dst)+len(src))
	for k, v := range dst {
		out[k] = v
	}
	for k, v := range src {
		srcMap, srcIsMap := v.(map[string]interface{})
		dstMap, dstIsMap := out[k].(map[string]interface{})
		if srcIsMap && dstIsMap {
			out[k] = mergeMaps(dstMap, srcMap)
			continue
		}
		out[k] = v
	}
	return out
}

// expandEnvVars replaces ${VAR} with environment variable values
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
