package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const envPrefix = "KUBECTL_FLUIDOS"

// bindEnvVars binds environment variables to the flags in fs.
// Environment variable names are generated as KUBECTL_FLUIDOS_<FLAG_NAME>
// where the flag name is converted to uppercase and dashes are replaced
// with underscores.
//
// For example:
//   - Flag "log-level" becomes environment variable "KUBECTL_FLUIDOS_LOG_LEVEL"
//   - Flag "mspl-url" becomes environment variable "KUBECTL_FLUIDOS_MSPL_URL"
//
// Arguments take precedence over environment variables, which take precedence
// over the configuration file and default values. Flags set from the
// environment are marked as changed.
//
// This function also updates flag usage descriptions to include the environment
// variable name, making it visible in help output.
func bindEnvVars(fs *pflag.FlagSet) {
	fs.VisitAll(bindFlagToEnv)
}

func bindFlagToEnv(flag *pflag.Flag) {
	if flag.Deprecated != "" {
		return
	}

	envName := flagToEnvName(flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	err := flag.Value.Set(envValue)
	if err != nil {
		// Keep the default value.
		slog.Error("failed to set flag from environment variable",
			slog.String("flag", flag.Name),
			slog.String("env", envName),
			slog.String("value", envValue),
			slog.Any("error", err),
		)

		return
	}

	flag.Changed = true
}

// flagToEnvName converts a flag name to its corresponding environment variable name.
// Example: "log-level" -> "KUBECTL_FLUIDOS_LOG_LEVEL".
func flagToEnvName(flagName string) string {
	envName := strings.ReplaceAll(flagName, "-", "_")
	return strings.ToUpper(envPrefix + "_" + envName)
}
