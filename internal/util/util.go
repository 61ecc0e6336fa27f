package util

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ClusterConfig struct {
	Host          string `mapstructure:"host"`
	Port          uint16 `mapstructure:"port"`
	User          string `mapstructure:"user"`
	KeyFile       string `mapstructure:"key_file"`
	KnownHosts    string `mapstructure:"known_hosts"`
	StrictHostKey bool   `mapstructure:"strict_host_key"`
}

type SubmitConfig struct {
	Namespace    string `mapstructure:"namespace"`
	ArtifactDir  string `mapstructure:"artifact_dir"`
	DefaultImage string `mapstructure:"default_image"`
}

type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type Config struct {
	Cluster ClusterConfig `mapstructure:"cluster"`
	Submit  SubmitConfig  `mapstructure:"submit"`
	Log     LogConfig     `mapstructure:"log"`
}

var (
	DefaultConfigPath       string
	DefaultUserConfigPrefix string
	DefaultKeyFilePath      string
	DefaultKnownHostsPath   string
)

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	DefaultUserConfigPrefix = ".config/condorfe"
	DefaultConfigPath = filepath.Join(home, DefaultUserConfigPrefix, "config.yaml")
	DefaultKeyFilePath = filepath.Join(home, ".ssh", "id_rsa")
	DefaultKnownHostsPath = filepath.Join(home, ".ssh", "known_hosts")
}

func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("cluster.host", "condor")
	v.SetDefault("cluster.port", 22)
	v.SetDefault("cluster.user", "")
	v.SetDefault("cluster.key_file", DefaultKeyFilePath)
	v.SetDefault("cluster.known_hosts", DefaultKnownHostsPath)
	v.SetDefault("cluster.strict_host_key", true)

	v.SetDefault("submit.namespace", "")
	v.SetDefault("submit.artifact_dir", "")
	v.SetDefault("submit.default_image", "python:3.7.10-slim")

	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// ParseConfig reads the YAML configuration at path. A missing file is not an
// error: every field has a default so the tools stay usable without any
// on-disk configuration.
func ParseConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaultConfig(v)

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func ParseLogLevel(level string) (log.Level, error) {
	switch level {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("invalid debug level: %s", level)
	}
}

func InitLogger(level log.Level) {
	log.SetLevel(level)
	if level >= log.TraceLevel {
		log.SetReportCaller(true)
	}
	log.SetFormatter(&nested.Formatter{})
}

// SetupFileLogging tees log output into a rotated file. Called after
// InitLogger when the config names a log file.
func SetupFileLogging(path string) {
	if path == "" {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}))
}

func SetBorderlessTable(table *tablewriter.Table) {
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetHeaderLine(false)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetNoWhiteSpace(true)
}

func SetBorderTable(table *tablewriter.Table) {
	table.SetBorders(tablewriter.Border{Left: true, Top: true, Right: true, Bottom: true})
	table.SetCenterSeparator("|")
	table.SetTablePadding("\t")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
}

// RunEWrapperForLeafCommand silences cobra's own error/usage output on leaf
// commands so that RunAndHandleExit is the single place errors get reported.
func RunEWrapperForLeafCommand(cmd *cobra.Command) {
	for _, c := range cmd.Commands() {
		RunEWrapperForLeafCommand(c)
	}

	if !cmd.HasSubCommands() {
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
	}
}

// RunAndHandleExit executes the command tree and converts a returned
// *CondorError into the process exit code.
func RunAndHandleExit(cmd *cobra.Command) {
	if err := cmd.Execute(); err != nil {
		var condorErr *CondorError
		if errors.As(err, &condorErr) {
			if condorErr.Message != "" {
				log.Error(condorErr.Message)
			}
			os.Exit(condorErr.Code)
		}
		log.Error(err)
		os.Exit(ErrorGeneric)
	}
	os.Exit(ErrorSuccess)
}
