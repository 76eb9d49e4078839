// Package config loads the plotter configuration from built-in defaults, an
// optional config file, ACCPLOT_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/user/accuracy_plotter_go/internal/analysis"
	"github.com/user/accuracy_plotter_go/internal/parser"
)

const (
	// DefaultConfigName is looked up in the working directory when no --config is given.
	DefaultConfigName = "accuracy_plotter"
	// DefaultFilenameTemplate maps a method and dataset to a result file name.
	DefaultFilenameTemplate = "{method}-{dataset}.txt"
	// EnvPrefix prefixes environment overrides, e.g. ACCPLOT_FORMAT=pdf.
	EnvPrefix = "ACCPLOT"
)

// DefaultDatasets are the datasets the experiments were run on.
var DefaultDatasets = []string{"breast_cancer", "mammographic_masses", "seismic_bumps", "zoo"}

// DefaultMethods are the result families produced per dataset.
var DefaultMethods = []Method{
	{ID: "full-1hl", Label: "Fully connected (1 hidden layer)"},
	{ID: "full-2hl", Label: "Fully connected (2 hidden layers)"},
	{ID: "full-min_supp", Label: "Min supp", LevelColumn: parser.MaxLevelColumn},
	{ID: "full-min_cv", Label: "Min CV", LevelColumn: parser.MaxLevelColumn},
	{ID: "full-min_cfc", Label: "Min CFC", LevelColumn: parser.MaxLevelColumn},
}

// Method is one result family as written in the config file.
type Method struct {
	ID          string `mapstructure:"id"`
	Label       string `mapstructure:"label"`
	LevelColumn string `mapstructure:"level_column"`
	XColumn     string `mapstructure:"x_column"`
	ValueColumn string `mapstructure:"value_column"`
}

// Spec converts the method into its aggregation description.
func (m Method) Spec() analysis.MethodSpec {
	label := m.Label
	if strings.TrimSpace(label) == "" {
		label = m.ID
	}
	return analysis.MethodSpec{
		ID:          m.ID,
		Label:       label,
		LevelColumn: strings.ToLower(strings.TrimSpace(m.LevelColumn)),
		XColumn:     strings.ToLower(strings.TrimSpace(m.XColumn)),
		ValueColumn: strings.ToLower(strings.TrimSpace(m.ValueColumn)),
	}
}

// Config is the fully merged configuration.
type Config struct {
	Datasets         []string `mapstructure:"datasets"`
	Methods          []Method `mapstructure:"methods"`
	InputDir         string   `mapstructure:"input_dir"`
	OutputDir        string   `mapstructure:"output_dir"`
	FilenameTemplate string   `mapstructure:"filename_template"`
	Format           string   `mapstructure:"format"`
	WidthInches      float64  `mapstructure:"width"`
	HeightInches     float64  `mapstructure:"height"`
	Report           string   `mapstructure:"report"`
	Summary          bool     `mapstructure:"summary"`
	FailFast         bool     `mapstructure:"fail_fast"`
	LogLevel         string   `mapstructure:"log_level"`
	LogFile          string   `mapstructure:"log_file"`
	ConfigPath       string   `mapstructure:"-"`
}

// ResultPath returns the input file path for a method and dataset.
func (c Config) ResultPath(method, dataset string) string {
	tmpl := c.FilenameTemplate
	if tmpl == "" {
		tmpl = DefaultFilenameTemplate
	}
	name := strings.NewReplacer("{method}", method, "{dataset}", dataset).Replace(tmpl)
	return filepath.Join(c.InputDir, name)
}

// ChartPath returns the output image path for a dataset.
func (c Config) ChartPath(dataset string) string {
	return filepath.Join(c.OutputDir, fmt.Sprintf("%s-accuracy.%s", dataset, strings.ToLower(c.Format)))
}

// ReportPath returns the PDF report path, relative paths resolved against OutputDir.
// It is empty when the report is disabled.
func (c Config) ReportPath() string {
	if strings.TrimSpace(c.Report) == "" {
		return ""
	}
	if filepath.IsAbs(c.Report) {
		return c.Report
	}
	return filepath.Join(c.OutputDir, c.Report)
}

// Validate checks the settings that would otherwise fail halfway through a run.
func (c Config) Validate() error {
	if len(c.Datasets) == 0 {
		return errors.New("config must name at least one dataset")
	}
	if len(c.Methods) == 0 {
		return errors.New("config must name at least one method")
	}
	seen := make(map[string]bool, len(c.Methods))
	for i, m := range c.Methods {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("method #%d has no id", i+1)
		}
		if seen[m.ID] {
			return fmt.Errorf("method %q listed twice", m.ID)
		}
		seen[m.ID] = true
	}
	switch strings.ToLower(c.Format) {
	case "png", "pdf", "svg":
	default:
		return fmt.Errorf("unsupported format %q (want png, pdf or svg)", c.Format)
	}
	if c.WidthInches <= 0 || c.HeightInches <= 0 {
		return fmt.Errorf("chart size must be positive, got %gx%g inches", c.WidthInches, c.HeightInches)
	}
	if !strings.Contains(c.filenameTemplate(), "{method}") || !strings.Contains(c.filenameTemplate(), "{dataset}") {
		return fmt.Errorf("filename template %q must contain {method} and {dataset}", c.FilenameTemplate)
	}
	return nil
}

func (c Config) filenameTemplate() string {
	if c.FilenameTemplate == "" {
		return DefaultFilenameTemplate
	}
	return c.FilenameTemplate
}

// SetDefaults registers built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("datasets", DefaultDatasets)
	v.SetDefault("methods", DefaultMethods)
	v.SetDefault("input_dir", ".")
	v.SetDefault("output_dir", ".")
	v.SetDefault("filename_template", DefaultFilenameTemplate)
	v.SetDefault("format", "png")
	v.SetDefault("width", 12.0)
	v.SetDefault("height", 7.0)
	v.SetDefault("report", "")
	v.SetDefault("summary", true)
	v.SetDefault("fail_fast", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load merges defaults, the config file, the environment and flags.
// With an empty path, accuracy_plotter.{yaml,json,toml} in the working directory
// is used if present; an explicit path must exist.
// Only flags the user actually set override the lower layers.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	cfg.Format = strings.ToLower(cfg.Format)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// bindFlags maps dashed flag names onto config keys, e.g. --input-dir -> input_dir.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || !f.Changed {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
