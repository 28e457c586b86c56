// Package config is for app wide settings
package config

import (
	_ "embed"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

var (
	home, _ = homedir.Dir()

	// rootDir is the root directory where blastkit settings and tools live
	rootDir = filepath.Join(home, ".blastkit")
)

// DefaultConfig is the client config that's embedded with blastkit
// and installed on the first run
//
//go:embed config.yaml
var DefaultConfig []byte

// Config is the root-level settings struct. It's a mix of settings
// available in config.yaml and those available from the environment
type Config struct {
	// the config file's version
	Version string `mapstructure:"version"`

	// BLAST+ release to install and run, eg 2.12.0
	BlastVersion string `mapstructure:"blast-version"`

	// BLAST+ download URL. {version} is replaced with BlastVersion
	BlastURLTemplate string `mapstructure:"blast-url"`

	// Entrez Direct download URL
	EDirectURL string `mapstructure:"edirect-url"`

	// ToolsPath is where BLAST+ and EDirect are installed
	ToolsPath string `mapstructure:"tools-dir"`

	// DatabasesPath is where local BLAST databases are kept
	DatabasesPath string `mapstructure:"databases-dir"`

	// FetchThreads is the number of NCBI identifiers fetched at once
	FetchThreads int `mapstructure:"fetch-threads"`

	// SearchEValue is the default expectation value of a search
	SearchEValue string `mapstructure:"search-evalue"`

	// SearchMaxEntries is the default -max_target_seqs of a search
	SearchMaxEntries int `mapstructure:"search-max-entries"`

	// PubChem SDF URL. {cid} and {dim} are replaced per compound
	PubChemSDFURLTemplate string `mapstructure:"pubchem-sdf-url"`

	// HTTPTimeoutSeconds bounds each HTTP download
	HTTPTimeoutSeconds int `mapstructure:"http-timeout"`

	// NCBIAPIKey is passed to EDirect as NCBI_API_KEY
	NCBIAPIKey string `mapstructure:"ncbi-api-key"`

	// NCBIEmail is passed to EDirect as EMAIL
	NCBIEmail string `mapstructure:"ncbi-email"`
}

// SetRoot changes the blastkit settings directory (~/.blastkit by default).
func SetRoot(dir string) {
	rootDir = dir
}

// Root returns the blastkit settings directory.
func Root() string {
	return rootDir
}

func configPath() string {
	return filepath.Join(rootDir, "config.yaml")
}

func defaultToolsDir() string {
	return filepath.Join(rootDir, "tools")
}

// Setup checks that the blastkit directory exists.
// It creates one and writes the default config file to it otherwise.
func Setup() {
	for _, dir := range []string{rootDir, defaultToolsDir()} {
		_, err := os.Stat(dir)
		if os.IsNotExist(err) {
			if err = os.MkdirAll(dir, 0755); err != nil {
				log.Fatal(err)
			}
		} else if err != nil {
			log.Fatal(err)
		}
	}

	// copy the default config file if it doesn't exist
	_, err := os.Stat(configPath())
	if os.IsNotExist(err) {
		if err = os.WriteFile(configPath(), DefaultConfig, 0644); err != nil {
			log.Fatal(err)
		}
	} else if err != nil {
		log.Fatal(err)
	}

	loadEnvFiles()
}

// loadEnvFiles reads .env files from the blastkit dir and the working dir.
// Variables already in the environment are not overridden.
func loadEnvFiles() {
	var envFiles []string
	for _, f := range []string{filepath.Join(rootDir, ".env"), ".env"} {
		if _, err := os.Stat(f); err == nil {
			envFiles = append(envFiles, f)
		}
	}
	if len(envFiles) == 0 {
		return
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Printf("failed to load env files %v: %v", envFiles, err)
	}
}

// New returns a new Config struct populated by settings from
// config.yaml, in the blastkit dir, or some other settings file the user
// points to with the "--config" flag
func New() *Config {
	// read in the default settings first
	viper.SetConfigType("yaml")
	viper.SetConfigFile(configPath())
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}

	viper.SetEnvPrefix("BLASTKIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("ncbi-api-key", "BLASTKIT_NCBI_API_KEY", "NCBI_API_KEY"); err != nil {
		log.Fatal(err)
	}
	if err := viper.BindEnv("ncbi-email", "BLASTKIT_NCBI_EMAIL", "NCBI_EMAIL"); err != nil {
		log.Fatal(err)
	}

	if userConfig := viper.GetString("config"); userConfig != "" {
		if err := checkUserConfig(userConfig); err != nil {
			log.Fatalf("bad settings file %s: %v", userConfig, err)
		}

		viper.SetConfigFile(userConfig)               // user has specified a new path for a settings file
		if err := viper.MergeInConfig(); err != nil { // read in user defined settings file
			log.Fatal(err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		log.Fatalf("failed to decode settings file %s: %v", viper.ConfigFileUsed(), err)
	}
	return config
}

// checkUserConfig decodes a user settings file strictly so that
// mistyped values are reported before they're merged
func checkUserConfig(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	userData := make(map[string]interface{})
	if err := yaml.NewDecoder(file).Decode(userData); err != nil {
		return err
	}

	return mapstructure.WeakDecode(userData, &Config{})
}

// BlastHome is where the BLAST+ release is installed. BLAST_HOME wins
// over the tools directory.
func (c *Config) BlastHome() string {
	if env := os.Getenv("BLAST_HOME"); env != "" {
		return env
	}
	return filepath.Join(c.ToolsDir(), "blast-"+c.BlastVersion)
}

// EDirectHome is where Entrez Direct is installed. EDIRECT_HOME wins
// over the tools directory.
func (c *Config) EDirectHome() string {
	if env := os.Getenv("EDIRECT_HOME"); env != "" {
		return env
	}
	return filepath.Join(c.ToolsDir(), "edirect")
}

// ToolsDir is the parent directory of the installed tools.
func (c *Config) ToolsDir() string {
	if c.ToolsPath != "" {
		return c.ToolsPath
	}
	return defaultToolsDir()
}

// DatabasesDir is the absolute path to the local BLAST databases.
func (c *Config) DatabasesDir() string {
	dir := c.DatabasesPath
	if dir == "" {
		dir = filepath.Join(c.BlastHome(), "databases")
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// BlastURL returns the download URL of the configured BLAST+ release.
func (c *Config) BlastURL() string {
	return strings.ReplaceAll(c.BlastURLTemplate, "{version}", c.BlastVersion)
}

// PubChemURL returns the SDF download URL of a compound, 2D or 3D.
func (c *Config) PubChemURL(cid string, dim int) string {
	return strings.NewReplacer(
		"{cid}", cid,
		"{dim}", strconv.Itoa(dim),
	).Replace(c.PubChemSDFURLTemplate)
}

// HTTPTimeout returns the timeout of a single download.
func (c *Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
