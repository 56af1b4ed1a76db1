package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	xstrings "github.com/charmbracelet/x/exp/strings"
	"github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/fluidos-project/kubectl-fluidos/pkg/config"
	"github.com/fluidos-project/kubectl-fluidos/pkg/kubectl"
	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
	"github.com/fluidos-project/kubectl-fluidos/pkg/modelbased"
	"github.com/fluidos-project/kubectl-fluidos/pkg/mspl"
)

// Options holds every flag of the plugin. Plugin flags are consumed by
// kubectl-fluidos, while kube flags are also forwarded to kubectl.
type Options struct {
	Kube        *genericclioptions.ConfigFlags
	pluginFlags *pflag.FlagSet
	kubeFlags   *pflag.FlagSet

	LogLevel       string
	LogFormat      string
	ConfigPath     string
	KubectlCommand string
	Verbosity      string
	MSPL           mspl.Flags
	ShowConfig     bool
	WriteConfig    bool
}

func NewOptions() *Options {
	o := &Options{
		Kube:        genericclioptions.NewConfigFlags(true),
		pluginFlags: pflag.NewFlagSet("plugin", pflag.ContinueOnError),
		kubeFlags:   pflag.NewFlagSet("kube", pflag.ContinueOnError),
	}

	o.addPluginFlags(o.pluginFlags)
	o.Kube.AddFlags(o.kubeFlags)
	o.kubeFlags.StringVarP(&o.Verbosity, "v", "v", "", "Log level verbosity passed to kubectl")

	return o
}

func (o *Options) addPluginFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogLevel, "log-level", config.DefaultLogLevel,
		fmt.Sprintf("Log level (%s)", xstrings.EnglishJoin(log.AllLevels, true)))
	fs.StringVar(&o.LogFormat, "log-format", config.DefaultLogFormat,
		fmt.Sprintf("Log format (%s)", xstrings.EnglishJoin(log.AllFormats, true)))
	fs.StringVar(&o.ConfigPath, "fluidos-config", "", "Path to the kubectl-fluidos configuration file")
	fs.StringVar(&o.KubectlCommand, "kubectl", kubectl.DefaultCommand, "Command used for kubectl apply")
	fs.BoolVar(&o.ShowConfig, "fluidos-show-config", false, "Print the active configuration and exit")
	fs.BoolVar(&o.WriteConfig, "fluidos-write-config", false, "Write the default configuration files and exit")

	o.MSPL.AddFlags(fs)
}

// AddFlags registers all flags on fs, so that they show up in help output.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.AddFlagSet(o.pluginFlags)
	fs.AddFlagSet(o.kubeFlags)
}

// PluginFlags returns the flags that are not forwarded to kubectl.
func (o *Options) PluginFlags() *pflag.FlagSet {
	return o.pluginFlags
}

// Parse parses args with fs, which must hold the flags registered by
// [Options.AddFlags]. Flags unknown to fs are left for kubectl. It
// returns args with the plugin flags removed.
func (o *Options) Parse(fs *pflag.FlagSet, args []string) ([]string, error) {
	fs.ParseErrorsAllowlist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	err := fs.Parse(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}

		return nil, fmt.Errorf("invalid argument: %w", err)
	}

	return StripFlags(o.pluginFlags, args), nil
}

// StripFlags returns args without the flags defined in fs, including
// their values. Arguments after "--" are kept as is.
func StripFlags(fs *pflag.FlagSet, args []string) []string {
	out := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		if !strings.HasPrefix(arg, "--") {
			out = append(out, arg)
			continue
		}

		name, _, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")

		flag := fs.Lookup(name)
		if flag == nil {
			out = append(out, arg)
			continue
		}

		if !hasValue && flag.NoOptDefVal == "" && i+1 < len(args) {
			// Skip the separate value.
			i++
		}
	}

	return out
}

// Complete fills options that were set by neither flags nor environment
// variables from cfg, then records the effective values back into cfg.
func (o *Options) Complete(cfg *config.Config) {
	fromConfig := func(name string, dst *string, src string) {
		if src != "" && !mspl.Changed(o.pluginFlags, name) {
			*dst = src
		}
	}

	fromConfig("log-level", &o.LogLevel, cfg.Log.Level)
	fromConfig("log-format", &o.LogFormat, cfg.Log.Format)
	fromConfig("kubectl", &o.KubectlCommand, cfg.Kubectl.Command)
	fromConfig("mspl-url", &o.MSPL.URL, cfg.MSPL.URL)
	fromConfig("mspl-hostname", &o.MSPL.Hostname, cfg.MSPL.Hostname)
	fromConfig("mspl-schema", &o.MSPL.Schema, cfg.MSPL.Schema)

	if cfg.MSPL.Port != 0 && !mspl.Changed(o.pluginFlags, "mspl-port") {
		o.MSPL.Port = cfg.MSPL.Port
	}

	cfg.Log.Level = o.LogLevel
	cfg.Log.Format = o.LogFormat
	cfg.Kubectl.Command = o.KubectlCommand
	cfg.MSPL.URL = o.MSPL.URL
	cfg.MSPL.Hostname = o.MSPL.Hostname
	cfg.MSPL.Schema = o.MSPL.Schema
	cfg.MSPL.Port = o.MSPL.Port

	if ns := o.explicitNamespace(); ns != "" {
		cfg.ModelBased.Namespace = ns
	}
}

// Namespace returns the namespace for FLUIDOSDeployment resources: the
// --namespace flag, then the configured namespace, then the namespace of
// the current kubeconfig context.
func (o *Options) Namespace(cfg *config.Config) string {
	if ns := o.explicitNamespace(); ns != "" {
		return ns
	}

	if cfg.ModelBased.Namespace != "" {
		return cfg.ModelBased.Namespace
	}

	ns, _, err := o.Kube.ToRawKubeConfigLoader().Namespace()
	if err != nil || ns == "" {
		slog.Debug("no namespace in kubeconfig, using default", slog.Any("err", err))

		return modelbased.DefaultNamespace
	}

	return ns
}

func (o *Options) explicitNamespace() string {
	if o.Kube.Namespace == nil {
		return ""
	}

	return *o.Kube.Namespace
}
