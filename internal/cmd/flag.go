package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	required                             bool
	isBool                               bool
	// bindViper maps the flag onto the application config key of the same
	// name with dashes replaced by underscores.
	bindViper bool
}

var (
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is $HOME/.config/txtwriter/config.yaml)",
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress console logging",
		isBool:    true,
		bindViper: true,
	}
	debugFlag = commandLineFlag{
		name:      "debug",
		usage:     "enable debug logging",
		isBool:    true,
		bindViper: true,
	}
	logFormatFlag = commandLineFlag{
		name:      "log-format",
		usage:     "log format (text or json)",
		bindViper: true,
	}
	tasksFlag = commandLineFlag{
		name:      "tasks",
		shorthand: "n",
		usage:     "number of write tasks (default from config, otherwise 1)",
		bindViper: true,
	}
	baseFlag = commandLineFlag{
		name:      "base-config",
		shorthand: "b",
		usage:     "job definition merged beneath the job file",
		bindViper: true,
	}
	dotenvFlag = commandLineFlag{
		name:  "dotenv",
		usage: "comma separated .env files used to expand ${VAR} references",
	}
	outputFlag = commandLineFlag{
		name:         "output",
		shorthand:    "o",
		defaultValue: "table",
		usage:        "output format (table or yaml)",
	}
	inputFlag = commandLineFlag{
		name:         "input",
		shorthand:    "i",
		defaultValue: "-",
		usage:        "NDJSON record file, - reads stdin",
	}
	dirtyFileFlag = commandLineFlag{
		name:      "dirty-file",
		usage:     "JSON lines file receiving dirty records",
		bindViper: true,
	}
	metricsTextfileFlag = commandLineFlag{
		name:      "metrics-textfile",
		usage:     "write Prometheus metrics to this file after the run",
		bindViper: true,
	}
)

// commonFlags are added to every command built by NewCommand.
var commonFlags = []commandLineFlag{configFlag, quietFlag, debugFlag, logFormatFlag}

func initFlags(cmd *cobra.Command, additionalFlags ...commandLineFlag) {
	flags := slices.Concat(commonFlags, additionalFlags)
	for _, flag := range flags {
		if flag.isBool {
			cmd.Flags().BoolP(flag.name, flag.shorthand, flag.defaultValue == "true", flag.usage)
		} else {
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
		if flag.required {
			if err := cmd.MarkFlagRequired(flag.name); err != nil {
				fmt.Printf("failed to mark flag %s as required: %v\n", flag.name, err)
			}
		}
	}
}

// bindFlags binds config flags to v so that a flag set on the command line
// overrides the config file and the environment.
func bindFlags(v *viper.Viper, cmd *cobra.Command, additionalFlags ...commandLineFlag) error {
	flags := slices.Concat(commonFlags, additionalFlags)
	for _, flag := range flags {
		if !flag.bindViper {
			continue
		}
		key := viperKey(flag.name)
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag.name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.name, err)
		}
	}
	return nil
}

func viperKey(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}
