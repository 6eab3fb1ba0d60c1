package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dtroode/cacart/internal/api/grpc/contract"
	"github.com/dtroode/cacart/internal/authclient"
	"github.com/dtroode/cacart/internal/config"
	"github.com/dtroode/cacart/internal/logger"
	"github.com/dtroode/cacart/internal/model"
	"github.com/dtroode/cacart/internal/session"
	"github.com/dtroode/cacart/internal/validator"
)

type shellConfig struct {
	metricsAddr string
}

// NewShellCmd creates the interactive shell command.
func NewShellCmd() *cobra.Command {
	cfg := &shellConfig{}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive shop session",
		Long: `Start an interactive session against the shop backend. The login
prompt is shown until you sign in or continue as a guest.
The backend is configured with CACART_ environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.metricsAddr, "metrics-addr", "", "serve session metrics on this address")

	return cmd
}

func runShell(cmd *cobra.Command, cfg *shellConfig) error {
	clientCfg, err := config.NewClientConfig()
	if err != nil {
		return err
	}
	log := logger.NewWithWriter(os.Stderr, clientCfg.LogLevel)

	client, err := authclient.Dial(clientCfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", clientCfg.ServerAddr, err)
	}
	defer client.Close()

	registry := prometheus.NewRegistry()
	metrics := session.NewMetrics(registry)
	if cfg.metricsAddr != "" {
		stop := serveMetrics(cfg.metricsAddr, registry, log)
		defer stop()
	}

	ctx := cmd.Context()
	manager := session.NewManager(ctx, client, log.With("component", "session"), metrics)

	sh := &Shell{
		manager:      manager,
		catalog:      client,
		imageBaseURL: clientCfg.ImageBaseURL,
		out:          cmd.OutOrStdout(),
	}
	return sh.Run(ctx, cmd.InOrStdin())
}

func serveMetrics(addr string, registry *prometheus.Registry, log *logger.Logger) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("Shell: metrics server stopped", "error", err.Error())
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// Catalog is the product browsing part of the backend client.
type Catalog interface {
	ListProducts(ctx context.Context, query, tab string) ([]*contract.Product, error)
	GetProduct(ctx context.Context, id int64) (*contract.Product, error)
}

// Shell is a line-oriented front end over one session manager.
type Shell struct {
	manager      *session.Manager
	catalog      Catalog
	imageBaseURL string
	out          io.Writer
}

const helpText = `commands:
  signin <email> <password>            sign in with a password
  signup <email> <password> <confirm>  create an account
  anon                                 sign in anonymously
  guest                                browse without an account
  whoami                               show the signed-in user
  status                               show the session state
  products [tab] [query...]            list products (tabs: home, best_sellers, new_releases)
  product <id>                         show a product
  signout, logout                      end the session
  help                                 show this help
  quit                                 leave the shell`

var errQuit = errors.New("quit")

// Run reads commands from in until quit or end of input.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		s.prompt()
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		err := s.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
	}
}

func (s *Shell) prompt() {
	if s.manager.HasAccess() {
		fmt.Fprint(s.out, "cacart> ")
		return
	}
	fmt.Fprint(s.out, "login> ")
}

// Exec runs one command line.
func (s *Shell) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "signin":
		return s.signIn(ctx, args)
	case "signup":
		return s.signUp(ctx, args)
	case "anon":
		s.manager.SignInAnonymously(ctx)
		s.reportSignIn()
		return nil
	case "guest":
		s.manager.ContinueAsGuest()
		s.status()
		return nil
	case "signout":
		s.manager.SignOut(ctx)
		s.status()
		return nil
	case "logout":
		s.manager.Logout(ctx)
		s.status()
		return nil
	case "status":
		s.status()
		return nil
	case "whoami":
		return s.whoami(ctx)
	case "products":
		return s.products(ctx, args)
	case "product":
		return s.product(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
}

func (s *Shell) signIn(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: signin <email> <password>")
	}
	err := s.manager.SignInWithPassword(ctx, validator.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		s.fieldErrors(err)
		return nil
	}
	s.reportSignIn()
	return nil
}

func (s *Shell) signUp(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: signup <email> <password> <confirm>")
	}
	err := s.manager.SignUp(ctx, validator.Credentials{Email: args[0], Password: args[1], ConfirmPassword: args[2]})
	if err != nil {
		s.fieldErrors(err)
		return nil
	}
	s.reportSignIn()
	return nil
}

func (s *Shell) fieldErrors(err error) {
	var errs validator.Errors
	if !errors.As(err, &errs) {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	for _, fe := range errs {
		fmt.Fprintf(s.out, "  [%s] %s: %s\n", validator.StrokeColor(false, fe.Message), fe.Field, fe.Message)
	}
}

func (s *Shell) reportSignIn() {
	if !s.manager.IsLoggedIn() {
		fmt.Fprintln(s.out, "sign in failed")
		return
	}
	s.status()
}

func (s *Shell) status() {
	fmt.Fprintf(s.out, "state: %s\n", s.manager.State())
	if user, ok := s.manager.User(); ok {
		fmt.Fprintf(s.out, "user: %s\n", describeUser(user))
	}
}

func (s *Shell) whoami(ctx context.Context) error {
	user, ok := s.manager.CurrentUser(ctx)
	if !ok {
		fmt.Fprintln(s.out, "not signed in")
		return nil
	}
	fmt.Fprintln(s.out, describeUser(user))
	return nil
}

func describeUser(u session.User) string {
	if u.Anonymous {
		return fmt.Sprintf("anonymous (%s)", u.ID)
	}
	return fmt.Sprintf("%s (%s)", u.Email, u.ID)
}

func (s *Shell) requireAccess() error {
	if !s.manager.HasAccess() {
		return errors.New("sign in or continue as guest first")
	}
	return nil
}

func (s *Shell) products(ctx context.Context, args []string) error {
	if err := s.requireAccess(); err != nil {
		return err
	}

	tab := model.TabHome
	if len(args) > 0 {
		if t, err := model.ParseTab(args[0]); err == nil {
			tab = t
			args = args[1:]
		}
	}
	query := strings.Join(args, " ")

	products, err := s.catalog.ListProducts(ctx, query, string(tab))
	if err != nil {
		return err
	}

	if query != "" {
		fmt.Fprintf(s.out, "search %q\n", query)
	} else {
		fmt.Fprintln(s.out, tab.Title())
	}
	if len(products) == 0 {
		fmt.Fprintln(s.out, "  no products")
		return nil
	}
	for _, p := range products {
		fmt.Fprintf(s.out, "  %3d  %-40s %8.2f  %s\n", p.ID, p.Name, p.Price, p.Category)
	}
	return nil
}

func (s *Shell) product(ctx context.Context, args []string) error {
	if err := s.requireAccess(); err != nil {
		return err
	}
	if len(args) != 1 {
		return errors.New("usage: product <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", args[0])
	}

	p, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "%s\n  category: %s\n  price: %.2f\n  %s\n", p.Name, p.Category, p.Price, p.Description)
	for _, img := range p.Images {
		fmt.Fprintf(s.out, "  image: %s/products/%d/images/%s\n", strings.TrimRight(s.imageBaseURL, "/"), p.ID, img)
	}
	return nil
}
