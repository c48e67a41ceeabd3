// Package conftools wires viper, pflag and mapstructure together for daemon configuration.
package conftools

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const Redacted = "***REDACTED***"

// Initialize reads configuration from <appName>.yaml in the working directory,
// and from environment variables prefixed with the upper case application name.
// Dashes and dots in keys are underscores in environment variable names.
func Initialize(appName string) {
	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(appName)
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
}

func decoderHook(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.ErrorUnused = true
}

func Load(cfg any) error {
	var err error

	err = viper.ReadInConfig()
	if err != nil {
		notFound := viper.ConfigFileNotFoundError{}
		if !errors.As(err, &notFound) {
			return err
		}
	}

	flag.Parse()

	err = viper.BindPFlags(flag.CommandLine)
	if err != nil {
		return err
	}

	err = viper.Unmarshal(cfg, decoderHook)
	if err != nil {
		return err
	}

	return nil
}

// Format returns a human-readable printout of all configuration options, except secret stuff.
func Format(disallowedKeys []string) []string {
	var keys sort.StringSlice = viper.AllKeys()

	printed := make([]string, 0, len(keys))

	keys.Sort()
	for _, key := range keys {
		if slices.Contains(disallowedKeys, key) {
			printed = append(printed, fmt.Sprintf("%s: %s", key, Redacted))
		} else {
			printed = append(printed, fmt.Sprintf("%s: %v", key, viper.Get(key)))
		}
	}

	return printed
}
