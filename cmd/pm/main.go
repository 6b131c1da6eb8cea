package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Hussein-Mazeh/guardvault/auth"
	"github.com/Hussein-Mazeh/guardvault/internal/config"
	"github.com/Hussein-Mazeh/guardvault/internal/logging"
	"github.com/Hussein-Mazeh/guardvault/internal/service"
	"github.com/Hussein-Mazeh/guardvault/krypto"
	"github.com/Hussein-Mazeh/guardvault/store"
)

const cliVersion = "0.2.0"

type userError struct {
	msg string
}

func (e userError) Error() string { return e.msg }

func main() {
	if err := krypto.DisableCoreDumps(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not disable core dumps: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cli carries what every subcommand needs.
type cli struct {
	cfg    *config.Config
	svc    *service.Service
	log    logging.Logger
	stdin  io.Reader
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load("pm", args)
	if err != nil {
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printUsage(stderr)
		return 1
	}
	if len(rest) == 0 {
		printUsage(stderr)
		return 1
	}
	if rest[0] == "version" {
		fmt.Fprintln(stdout, cliVersion)
		return 0
	}

	logger, err := logging.NewText(stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	st, err := store.Open(ctx, cfg.Backend, cfg.VaultDir)
	if err != nil {
		return exitCode(stderr, fmt.Errorf("open %s storage: %w", cfg.Backend, err))
	}
	svc := service.New(st, service.Options{
		Timeout: cfg.InactivityTimeout,
		Policy:  policyFor(cfg),
		Logger:  logger,
	})
	defer svc.Close()

	c := &cli{
		cfg:    cfg,
		svc:    svc,
		log:    logger,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}

	var cmdErr error
	switch rest[0] {
	case "create":
		cmdErr = c.runCreate(ctx, rest[1:])
	case "import":
		cmdErr = c.runImport(ctx, rest[1:])
	case "codes":
		cmdErr = c.runCodes(ctx, rest[1:])
	case "list":
		cmdErr = c.runList(ctx, rest[1:])
	case "remove":
		cmdErr = c.runRemove(ctx, rest[1:])
	case "reset":
		cmdErr = c.runReset(ctx, rest[1:])
	case "session":
		cmdErr = c.runSession(ctx, rest[1:])
	default:
		printUsage(stderr)
		return 1
	}
	return exitCode(stderr, cmdErr)
}

func policyFor(cfg *config.Config) auth.ValidateOptions {
	opts := auth.DefaultValidateOptions()
	opts.MinScore = cfg.MinPasswordScore
	return opts
}

// exitCode reports err and maps it to the process exit status: 0 on success,
// 1 for problems the user can fix, 2 for anything unexpected.
func exitCode(w io.Writer, err error) int {
	if err == nil {
		return 0
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(w, uerr.Error())
		return 1
	}

	fmt.Fprintf(w, "unexpected error: %v\n", err)
	return 2
}

func (c *cli) promptPassword(prompt string) ([]byte, error) {
	fmt.Fprint(c.errOut, prompt)
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.errOut)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}

func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.errOut, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pm [global flags] <command>")
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprintln(w, "  -c, -config <file>   JSON config file")
	fmt.Fprintln(w, "  -dir <vault-dir>     vault directory")
	fmt.Fprintln(w, "  -backend <name>      file | sqlite | keychain | memory")
	fmt.Fprintln(w, "  -timeout <duration>  inactivity timeout (default 60s)")
	fmt.Fprintln(w, "  -min-score <0-4>     minimum strength for new master passwords")
	fmt.Fprintln(w, "  -log-level <level>   debug | info | warn | error")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version")
	fmt.Fprintln(w, "  create")
	fmt.Fprintln(w, "  import <file.maFile>...")
	fmt.Fprintln(w, "  codes [-watch]")
	fmt.Fprintln(w, "  list")
	fmt.Fprintln(w, "  remove <steam-id>")
	fmt.Fprintln(w, "  reset [-yes]")
	fmt.Fprintln(w, "  session")
}
