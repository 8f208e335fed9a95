package conf

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/spf13/cobra"

	"github.com/svanichkin/mycord/network"
	"github.com/svanichkin/mycord/ui"
)

// Options aggregates the configuration file and the command line, flags
// taking precedence.
type Options struct {
	Config     Config
	ConfigPath string
	Target     network.Target
	Username   string
	Verbose    bool
}

type cliFlags struct {
	ip, domain string
	port       int
	proxy      string
	config     string
	logFile    string
	user       string

	quiet, tui, gravemind, noMenu, verbose bool
}

// NewRootCommand builds the mycord command. run receives the merged options.
func NewRootCommand(run func(ctx context.Context, opts *Options) error) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:   "mycord [server]",
		Short: "Halo themed terminal chat client",
		Long: `mycord connects to a chat server and exchanges fixed size frames.

The server may be given as host, host:port, [v6]:port or a tcp://, ws:// or
wss:// URL. Without --tui messages are printed line by line.`,
		Example: `  mycord --tui --gravemind
  mycord --port 8080 --tui
  mycord --domain mycord.example.dev --tui
  mycord wss://chat.example.dev/mycord --proxy socks5://127.0.0.1:9050`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.resolve(cmd, args)
			if err != nil {
				return err
			}
			return run(cmd.Context(), opts)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.ip, "ip", "", "IP to connect to (default "+network.DefaultHost+")")
	fl.StringVar(&f.domain, "domain", "", "domain name to connect to")
	fl.IntVar(&f.port, "port", network.DefaultPort, "port to connect to")
	fl.BoolVar(&f.quiet, "quiet", false, "disable alerts and mention highlighting")
	fl.BoolVar(&f.tui, "tui", false, "full screen interface")
	fl.BoolVar(&f.gravemind, "gravemind", false, "start in Gravemind mode")
	fl.BoolVar(&f.noMenu, "no-menu", false, "skip the start menu in TUI mode")
	fl.StringVar(&f.proxy, "proxy", "", "SOCKS5 proxy URL, e.g. socks5://127.0.0.1:9050")
	fl.StringVar(&f.config, "config", "", "config file or profile name")
	fl.StringVar(&f.logFile, "log-file", "", "log file path")
	fl.StringVar(&f.user, "user", "", "username (default: current OS user)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
	cmd.MarkFlagsMutuallyExclusive("ip", "domain")
	return cmd
}

func (f *cliFlags) resolve(cmd *cobra.Command, args []string) (*Options, error) {
	path := resolveConfigPath(f.config)
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("ip") {
		if net.ParseIP(f.ip) == nil {
			return nil, fmt.Errorf("invalid IP address %q", f.ip)
		}
		cfg.Host = f.ip
	}
	if fl.Changed("domain") {
		d := strings.TrimSpace(f.domain)
		if d == "" {
			return nil, errors.New("--domain requires a value")
		}
		cfg.Host = d
	}
	if fl.Changed("port") {
		cfg.Port = f.port
	}
	if fl.Changed("proxy") {
		cfg.Proxy = f.proxy
	}
	if fl.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	cfg.Quiet = cfg.Quiet || f.quiet
	cfg.TUI = cfg.TUI || f.tui
	if f.gravemind {
		cfg.Theme = ui.GravemindName
	}
	if f.noMenu {
		cfg.StartMenu = false
	}
	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile()
	} else {
		cfg.LogFile = expandHome(cfg.LogFile)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	server := cfg.Host
	if len(args) == 1 {
		if fl.Changed("ip") || fl.Changed("domain") {
			return nil, errors.New("server given both as argument and flag")
		}
		server = args[0]
	}
	target, err := ParseDialTarget(server, cfg.Port)
	if err != nil {
		return nil, err
	}

	name, err := Username(f.user)
	if err != nil {
		return nil, err
	}
	return &Options{
		Config:     cfg,
		ConfigPath: path,
		Target:     target,
		Username:   name,
		Verbose:    f.verbose,
	}, nil
}
