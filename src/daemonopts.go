package irmux

/********************************************************************************
 *
 * Purpose:	Daemon options: log level, driver selection, default keymap
 *		search directories (spec 9 A.4). Distinct from, and never a
 *		substitute for, the remote/keymap grammar config.go parses.
 *
 * Description:	Grounded on the teacher's own declared yaml.v3 dependency,
 *		used here for the same kind of small typed options struct any
 *		long-running daemon in the pack reaches for.
 *
 *******************************************************************************/

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DaemonOptions is the typed shape of irmuxd's own YAML options file,
// separate from the remote-definition files it loads via ParseConfig.
type DaemonOptions struct {
	Driver      string   `yaml:"driver"`
	Device      string   `yaml:"device"`
	LogLevel    string   `yaml:"log_level"`
	LogDir      string   `yaml:"log_dir"`
	KeymapPaths []string `yaml:"keymap_paths"`
	Advertise   bool     `yaml:"advertise"`
	ListenAddr  string   `yaml:"listen_addr"`
}

// DefaultDaemonOptions returns the options a fresh install starts from.
func DefaultDaemonOptions() DaemonOptions {
	return DaemonOptions{
		Driver:      "gpio",
		LogLevel:    "info",
		KeymapPaths: []string{"/etc/irmux/remotes.d"},
		Advertise:   true,
		ListenAddr:  ":8765",
	}
}

// LoadDaemonOptions reads and parses a YAML options file, starting from
// DefaultDaemonOptions so an absent key keeps its default.
func LoadDaemonOptions(path string) (DaemonOptions, error) {
	opts := DefaultDaemonOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}
