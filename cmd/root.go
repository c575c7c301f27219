// Package cmd is the command line shell: the interactive booking screen plus
// scriptable subcommands for cashiers and gate staff.
package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/manifoldco/promptui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"studio-booking-cli/auth"
	"studio-booking-cli/config"
	"studio-booking-cli/logging"
	"studio-booking-cli/service"
	"studio-booking-cli/tui"
)

const appName = "studio-booking"

type BuildInfo struct {
	Version string
	Commit  string
}

// environment is what every command runs against.
type environment struct {
	cfg    config.Config
	log    logrus.FieldLogger
	client *service.Client
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	build  BuildInfo
}

// Execute runs the command line and returns the process exit code.
func Execute(build BuildInfo) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 2
	}
	log, closer, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer closer.Close()

	env := &environment{
		cfg:    cfg,
		log:    log,
		client: service.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
		build:  build,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(env).ExecuteContext(ctx); err != nil {
		log.WithError(err).Debug("command failed")
		fmt.Fprintln(env.errOut, "Error:", service.UserMessage(err))
		return 1
	}
	return 0
}

func newRootCmd(env *environment) *cobra.Command {
	var apiURL string

	root := &cobra.Command{
		Use:   appName,
		Short: "Studio seat booking from the terminal",
		Long: `Pick a studio, choose seats on the map and get a ticket with a QR code.
Run without a subcommand to open the interactive booking screen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("api") {
				return nil
			}
			apiURL = strings.TrimSpace(apiURL)
			if !strings.HasPrefix(apiURL, "http://") && !strings.HasPrefix(apiURL, "https://") {
				return &service.ValidationError{Field: "api", Message: fmt.Sprintf("--api must be an http(s) url, got %q", apiURL)}
			}
			env.client = service.NewClient(apiURL, &http.Client{Timeout: env.cfg.HTTPTimeout})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), env)
		},
	}
	root.PersistentFlags().StringVar(&apiURL, "api", env.cfg.APIURL, "booking API base url")

	root.AddCommand(
		newStudiosCmd(env),
		newSeatsCmd(env),
		newBookCmd(env),
		newValidateCmd(env),
		newBookingsCmd(env),
		newLoginCmd(env),
		newRegisterCmd(env),
		newLogoutCmd(env),
		newMockServerCmd(env),
		newVersionCmd(env),
	)
	return root
}

func runTUI(ctx context.Context, env *environment) error {
	m := tui.New(tui.Options{
		Client:  env.client,
		Session: env.session(),
		Log:     env.log,
		Now:     env.now,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// session returns the stored identity, anonymous when none can be read.
func (env *environment) session() *auth.Session {
	s, err := auth.Load()
	if err != nil {
		env.log.WithError(err).Warn("stored session unreadable")
	}
	return s
}

func (env *environment) prompt(label string, mask rune, validate promptui.ValidateFunc) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Mask:     mask,
		Validate: validate,
	}
	if rc, ok := env.in.(io.ReadCloser); ok {
		p.Stdin = rc
	}
	value, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(value), nil
}

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	return t
}

func requireText(field string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
