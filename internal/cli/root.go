package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	"k8s.io/client-go/dynamic"

	"github.com/fluidos-project/kubectl-fluidos/pkg/config"
	"github.com/fluidos-project/kubectl-fluidos/pkg/dispatch"
	"github.com/fluidos-project/kubectl-fluidos/pkg/execs"
	"github.com/fluidos-project/kubectl-fluidos/pkg/intent"
	"github.com/fluidos-project/kubectl-fluidos/pkg/kubectl"
	"github.com/fluidos-project/kubectl-fluidos/pkg/log"
	"github.com/fluidos-project/kubectl-fluidos/pkg/modelbased"
	"github.com/fluidos-project/kubectl-fluidos/pkg/mspl"
	"github.com/fluidos-project/kubectl-fluidos/pkg/telemetry"
	"github.com/fluidos-project/kubectl-fluidos/pkg/version"
)

const (
	cmdName = "kubectl-fluidos"
	cmdDesc = `Apply manifests, MSPL policies and intent-annotated workloads to FLUIDOS.`
	cmdLong = `Apply a manifest to a FLUIDOS-enabled cluster.

The input (from -f/--filename or stdin) is inspected:

  - MSPL XML documents are sent to the MSPL orchestrator.
  - Kubernetes manifests annotated with fluidos-intent-* keys are wrapped
    into a FLUIDOSDeployment and created in the cluster.
  - Everything else is passed on to kubectl apply.

Flags not listed here are forwarded to kubectl apply.`
	cmdExamples = `  # Apply a deployment, routing it based on its contents
  kubectl fluidos -f deployment.yaml

  # Read from stdin
  cat policy.xml | kubectl fluidos --mspl-url http://orchestrator:8002/meservice

  # Create the FLUIDOSDeployment in another namespace
  kubectl fluidos -n workloads -f intent.yaml

  # Write the default configuration file
  kubectl fluidos --fluidos-write-config`
)

// ClientFunc creates the dynamic client used for FLUIDOSDeployment resources.
type ClientFunc func(getter modelbased.RESTConfigGetter) (dynamic.Interface, error)

type rootSettings struct {
	newClient ClientFunc
}

// RootOpt configures the root command.
type RootOpt func(*rootSettings)

// WithClientFunc overrides how the Kubernetes client is created.
func WithClientFunc(f ClientFunc) RootOpt {
	return func(s *rootSettings) {
		s.newClient = f
	}
}

func NewRootCmd(opts ...RootOpt) *cobra.Command {
	settings := &rootSettings{
		newClient: modelbased.NewClient,
	}
	for _, opt := range opts {
		opt(settings)
	}

	o := NewOptions()
	r := &runner{opts: o, settings: settings}

	cmd := &cobra.Command{
		Use:     cmdName + " [flags] -f FILENAME",
		Short:   cmdDesc,
		Long:    cmdLong,
		Example: cmdExamples,
		// Flags are parsed in run, so that kubectl flags pass through.
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Args:               cobra.ArbitraryArgs,
		RunE:               r.run,
	}

	bindEnvVars(o.PluginFlags())
	o.AddFlags(cmd.Flags())

	must(cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	))
	must(cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	))

	return cmd
}

type runner struct {
	opts     *Options
	settings *rootSettings
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	o := r.opts

	forward, err := o.Parse(cmd.Flags(), args)
	if errors.Is(err, pflag.ErrHelp) || flagSet(cmd.Flags(), "help") {
		return cmd.Help()
	}
	if err != nil {
		return err
	}

	if flagSet(cmd.Flags(), "version") {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n%s", cmdName, cmd.Version, version.Get())
		return err //nolint:wrapcheck // Output error.
	}

	cfgPath := o.ConfigPath
	required := cfgPath != ""
	if !required {
		cfgPath = config.GetPath()
	}

	if o.WriteConfig {
		err := config.WriteDefault(cfgPath, false)
		if err != nil {
			return fmt.Errorf("write config: %w", err)
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", cfgPath)
		return err //nolint:wrapcheck // Output error.
	}

	cfg, err := config.Load(cfgPath, required)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	o.Complete(cfg)

	logger, err := log.New(cmd.ErrOrStderr(), o.LogLevel, o.LogFormat)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	slog.SetDefault(logger)

	ctx := log.IntoContext(cmd.Context(), logger)

	if o.ShowConfig {
		b, err := cfg.Encode()
		if err != nil {
			return fmt.Errorf("encode config: %w", err)
		}

		_, err = cmd.OutOrStdout().Write(b)
		return err //nolint:wrapcheck // Output error.
	}

	shutdown, err := telemetry.Setup(ctx, logger, cmdName, version.GetVersion())
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		err := shutdown(ctx)
		if err != nil {
			logger.Debug("shutdown telemetry", slog.Any("err", err))
		}
	}()

	predicate, err := intent.FromConfig(cfg.Intent)
	if err != nil {
		return fmt.Errorf("intent: %w", err)
	}

	streams := genericiooptions.IOStreams{
		In:     cmd.InOrStdin(),
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	}

	handlers, err := r.handlers(cfg, streams)
	if err != nil {
		return err
	}

	router := dispatch.New(handlers,
		dispatch.WithPredicate(predicate),
		dispatch.WithErrorStream(streams.ErrOut),
		dispatch.WithLogger(logger),
	)

	logger.Debug("dispatching", slog.Any("args", forward))

	code := router.Dispatch(ctx, forward, streams.In)
	if code != 0 {
		return &ExitError{Code: code}
	}

	return nil
}

func (r *runner) handlers(cfg *config.Config, streams genericiooptions.IOStreams) (dispatch.Handlers, error) {
	o := r.opts

	applier, err := kubectl.NewApplier(o.KubectlCommand, kubectl.WithStreams(execs.Streams{
		In:  streams.In,
		Out: streams.Out,
		Err: streams.ErrOut,
	}))
	if err != nil {
		return dispatch.Handlers{}, fmt.Errorf("invalid argument: --kubectl: %w", err)
	}

	onMSPL := func(ctx context.Context, doc []byte) int {
		p := mspl.NewProcessor(mspl.Resolve(o.MSPL, o.Kube), mspl.WithOutput(streams.Out))
		return p.Process(ctx, doc)
	}

	onIntent := func(ctx context.Context, doc []byte) int {
		client, err := r.settings.newClient(o.Kube)
		if err != nil {
			fmt.Fprintf(streams.ErrOut, "error: %v\n", err)
			return 1
		}

		p := modelbased.NewProcessor(
			modelbased.Configuration{Namespace: o.Namespace(cfg)},
			client,
			modelbased.WithOutput(streams.Out),
		)

		return p.Process(ctx, doc)
	}

	return dispatch.Handlers{
		OnApply:  applier.Apply,
		OnMSPL:   onMSPL,
		OnIntent: onIntent,
	}, nil
}

func flagSet(fs *pflag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}

	return f.Value.String() == "true"
}
