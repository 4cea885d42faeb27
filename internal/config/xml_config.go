// Package config provides XML-based configuration management so the tool
// can run beside the host design application without extra setup.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gpokora/FA-Wire-Tool-sub002/internal/models"
)

// AppConfig represents the root XML configuration structure.
type AppConfig struct {
	XMLName xml.Name `xml:"FAWireTool"`

	Server     ServerConfig     `xml:"Server"`
	Storage    StorageConfig    `xml:"Storage"`
	Defaults   DefaultsConfig   `xml:"Defaults"`
	Processing ProcessingConfig `xml:"Processing"`
	Advanced   AdvancedConfig   `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains data and output directory settings.
type StorageConfig struct {
	DataDirectory   string `xml:"DataDirectory"`
	OutputDirectory string `xml:"OutputDirectory"`
}

// DefaultsConfig holds the electrical defaults applied when a circuit
// definition omits a parameter block.
type DefaultsConfig struct {
	SystemVoltage   float64 `xml:"SystemVoltage"`
	MinVoltage      float64 `xml:"MinVoltage"`
	WireGauge       string  `xml:"WireGauge"`
	SupplyDistance  float64 `xml:"SupplyDistance"`
	RoutingOverhead float64 `xml:"RoutingOverhead"`
	SafetyPercent   float64 `xml:"SafetyPercent"`
	MaxLoad         float64 `xml:"MaxLoad"`
}

// ProcessingConfig contains session housekeeping settings.
type ProcessingConfig struct {
	SessionTimeoutMinutes  int `xml:"SessionTimeoutMinutes"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains tuning options.
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "127.0.0.1",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "16M",
		},
		Storage: StorageConfig{
			DataDirectory:   "./data",
			OutputDirectory: "./data/reports",
		},
		Defaults: DefaultsConfig{
			SystemVoltage:   24.0,
			MinVoltage:      16.0,
			WireGauge:       "16 AWG",
			SupplyDistance:  50.0,
			RoutingOverhead: 1.15,
			SafetyPercent:   0.10,
			MaxLoad:         3.0,
		},
		Processing: ProcessingConfig{
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from an XML file, creating the default on
// first run.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))
	return config, nil
}

// Save writes the configuration to an XML file.
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- FA Wire Tool Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
	if outDir := os.Getenv("OUTPUT_DIR"); outDir != "" {
		c.Storage.OutputDirectory = outDir
	}
}

// resolvePaths converts relative paths to absolute based on config file location.
func (c *AppConfig) resolvePaths(configDir string) {
	if !filepath.IsAbs(c.Storage.DataDirectory) {
		c.Storage.DataDirectory = filepath.Join(configDir, c.Storage.DataDirectory)
	}
	if !filepath.IsAbs(c.Storage.OutputDirectory) {
		c.Storage.OutputDirectory = filepath.Join(configDir, c.Storage.OutputDirectory)
	}
}

// GetDataDir returns the absolute data directory path.
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetOutputDir returns the absolute report output directory path.
func (c *AppConfig) GetOutputDir() string {
	return c.Storage.OutputDirectory
}

// GetServerAddr returns the server bind address.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// DefaultParameters converts the Defaults section into a parameter set.
func (c *AppConfig) DefaultParameters() models.ParameterSet {
	p := models.ParameterSet{
		SystemVoltage:   c.Defaults.SystemVoltage,
		MinVoltage:      c.Defaults.MinVoltage,
		WireGauge:       models.WireGauge(c.Defaults.WireGauge),
		SupplyDistance:  c.Defaults.SupplyDistance,
		RoutingOverhead: c.Defaults.RoutingOverhead,
		SafetyPercent:   c.Defaults.SafetyPercent,
		MaxLoad:         c.Defaults.MaxLoad,
	}
	p.ResolveResistance()
	return p
}

// EnsureDirectories creates all necessary directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.OutputDirectory,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
