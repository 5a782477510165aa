package config

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"path"

	"gopkg.in/yaml.v2"
)

const (
	configDir  string = ".jdwpd"
	configFile string = "config.yml"
)

// Config defines the defaults cmd/jdwpd loads from its config file before
// applying command-line overrides. Unlike the session core (which touches
// no files per its embedding contract), the demo CLI is free to persist
// ambient preferences the way any long-lived command-line tool would.
type Config struct {
	// ListenAddress is the default "host:port" that replaces the address
	// in --agentlib, in any mode, when --listen is not passed on the
	// command line.
	ListenAddress string `yaml:"listen-address,omitempty"`
	// LogOutput is the default comma separated category list used when
	// -log is passed without -log-output.
	LogOutput string `yaml:"log-output,omitempty"`
	// LogDest is the default log destination (file path or fd number).
	LogDest string `yaml:"log-dest,omitempty"`
}

// LoadConfig attempts to populate a Config from config.yml, creating a
// default file on first run. Failures are logged and degrade to zero
// values rather than aborting startup: a missing or unreadable config
// file should never prevent jdwpd from serving a session.
func LoadConfig() *Config {
	if err := createConfigPath(); err != nil {
		fmt.Printf("could not create config directory: %v\n", err)
		return &Config{}
	}
	fullConfigFile, err := ConfigFilePath(configFile)
	if err != nil {
		fmt.Printf("unable to get config file path: %v\n", err)
		return &Config{}
	}

	f, err := os.Open(fullConfigFile)
	if err != nil {
		f, err = createDefaultConfig(fullConfigFile)
		if err != nil {
			fmt.Printf("error creating default config file: %v\n", err)
			return &Config{}
		}
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fmt.Printf("unable to read config data: %v\n", err)
		return &Config{}
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		fmt.Printf("unable to decode config file: %v\n", err)
		return &Config{}
	}
	return &c
}

func createDefaultConfig(p string) (*os.File, error) {
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("unable to create config file: %w", err)
	}
	if _, err := f.WriteString(defaultConfigYAML); err != nil {
		return nil, fmt.Errorf("unable to write default configuration: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return f, nil
}

const defaultConfigYAML = `# Configuration file for jdwpd.
#
# This is the default configuration file. Available options are provided,
# but disabled. Delete the leading hash mark to enable an item.

# Default listen address used by 'jdwpd serve' when -listen is omitted.
# listen-address: "localhost:8000"

# Default log category list used when -log is passed without -log-output.
# log-output: "session,transport"

# Default log destination: a file path, or a decimal file descriptor.
# log-dest: ""
`

func createConfigPath() error {
	dir, err := ConfigFilePath("")
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// ConfigFilePath returns the full path to the given config file name
// inside jdwpd's per-user config directory.
func ConfigFilePath(file string) (string, error) {
	home := "."
	if usr, err := user.Current(); err == nil {
		home = usr.HomeDir
	}
	return path.Join(home, configDir, file), nil
}
