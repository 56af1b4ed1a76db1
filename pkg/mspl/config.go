package mspl

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"k8s.io/client-go/rest"
)

const (
	DefaultHostname = "localhost"
	DefaultPort     = 8002
	DefaultSchema   = "http"

	// Path of the orchestrator's policy endpoint.
	Path = "/meservice"
)

// Configuration locates the MSPL orchestrator.
type Configuration struct {
	// URL overrides every other field when set.
	URL      string
	Hostname string
	Schema   string
	Port     int
}

// DefaultConfiguration returns a [Configuration] for a local orchestrator.
func DefaultConfiguration() Configuration {
	return Configuration{
		Hostname: DefaultHostname,
		Port:     DefaultPort,
		Schema:   DefaultSchema,
	}
}

// Endpoint returns the URL policies are posted to.
func (c Configuration) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}

	return fmt.Sprintf("%s://%s%s", c.Schema, net.JoinHostPort(c.Hostname, strconv.Itoa(c.Port)), Path)
}

// Flags holds the MSPL command line flags.
type Flags struct {
	URL      string
	Hostname string
	Schema   string
	Port     int
}

// DeprecatedFlags maps the misspelled flag names accepted by earlier
// releases to the flags replacing them.
var DeprecatedFlags = map[string]string{
	"mlps-url":      "mspl-url",
	"mlps-hostname": "mspl-hostname",
	"mlps-port":     "mspl-port",
	"mlps-schema":   "mspl-schema",
}

// AddFlags registers the flags on fs, along with their [DeprecatedFlags]
// aliases, which set the same fields.
func (f *Flags) AddFlags(fs *pflag.FlagSet) {
	for _, prefix := range []string{"mspl", "mlps"} {
		fs.StringVar(&f.URL, prefix+"-url", f.URL, "MSPL orchestrator URL, overrides the other --mspl flags")
		fs.StringVar(&f.Hostname, prefix+"-hostname", f.Hostname, "MSPL orchestrator hostname")
		fs.IntVar(&f.Port, prefix+"-port", f.Port, "MSPL orchestrator port")
		fs.StringVar(&f.Schema, prefix+"-schema", f.Schema, "MSPL orchestrator URL scheme (http or https)")
	}

	for name, replacement := range DeprecatedFlags {
		must(fs.MarkDeprecated(name, "use --"+replacement+" instead"))
	}
}

// Changed reports whether the flag name, or its deprecated alias, was set
// on fs.
func Changed(fs *pflag.FlagSet, name string) bool {
	if fs.Changed(name) {
		return true
	}

	for alias, replacement := range DeprecatedFlags {
		if replacement == name && fs.Changed(alias) {
			return true
		}
	}

	return false
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// RESTConfigGetter returns the REST configuration of the current cluster.
type RESTConfigGetter interface {
	ToRESTConfig() (*rest.Config, error)
}

// Resolve builds a [Configuration] from f. When f sets nothing, the
// orchestrator is assumed to run next to the API server of the current
// kubeconfig cluster. The kubeconfig is only consulted in that case, and
// kube may be nil.
func Resolve(f Flags, kube RESTConfigGetter) Configuration {
	if f.URL != "" {
		return Configuration{URL: f.URL}
	}

	cfg := DefaultConfiguration()

	if f.Hostname != "" || f.Port != 0 || f.Schema != "" {
		if f.Hostname != "" {
			cfg.Hostname = f.Hostname
		}

		if f.Port != 0 {
			cfg.Port = f.Port
		}

		if f.Schema != "" {
			cfg.Schema = f.Schema
		}

		return cfg
	}

	if kube == nil {
		return cfg
	}

	restCfg, err := kube.ToRESTConfig()
	if err != nil {
		slog.Debug("no kubeconfig, using default MSPL endpoint",
			slog.Any("err", err),
		)

		return cfg
	}

	if host := hostname(restCfg.Host); host != "" {
		cfg.Hostname = host
	}

	return cfg
}

// hostname extracts the host from an API server address, which may omit
// the scheme.
func hostname(server string) string {
	if server == "" {
		return ""
	}

	if !strings.Contains(server, "://") {
		server = "https://" + server
	}

	u, err := url.Parse(server)
	if err != nil {
		return ""
	}

	return u.Hostname()
}
