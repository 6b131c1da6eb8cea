package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Hussein-Mazeh/guardvault/internal/service"
	"github.com/Hussein-Mazeh/guardvault/internal/session"
)

func (c *cli) runSession(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return userError{msg: "unexpected positional arguments"}
	}
	if err := c.unlock(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sc := service.NewScheduler(c.svc)
	sc.RefreshInterval = c.cfg.RefreshInterval
	sc.PollInterval = c.cfg.PollInterval
	sc.OnLocked = func() {
		fmt.Fprintln(c.errOut, "\nsession locked after inactivity; type 'unlock' to continue")
	}
	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()

	fmt.Fprintln(c.out, "session unlocked; type 'help' for commands")
	err := c.sessionLoop(ctx)
	cancel()
	if runErr := <-done; err == nil {
		err = runErr
	}
	return err
}

func (c *cli) sessionLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.out, "pm> ")
		line, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				fmt.Fprintln(c.out)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		c.svc.ActivityPing()

		fields := strings.Fields(line)
		cmd := fields[0]
		args := fields[1:]

		if c.svc.State() == session.Locked && cmd != "unlock" && cmd != "exit" && cmd != "quit" && cmd != "help" && cmd != "reset" {
			fmt.Fprintln(c.errOut, "session is locked; type 'unlock' first")
			continue
		}

		switch cmd {
		case "help":
			printSessionHelp(c.out)
		case "codes":
			codes, err := c.svc.Codes(time.Now())
			if err != nil {
				c.handleSessionError(err)
				continue
			}
			printCodes(c.out, codes)
		case "list":
			c.handleSessionError(c.printAccounts())
		case "import":
			if len(args) == 0 {
				fmt.Fprintln(c.errOut, "import requires a file path")
				continue
			}
			for _, path := range args {
				if err := c.importFile(ctx, path); err != nil {
					fmt.Fprintf(c.errOut, "%s: %v\n", path, err)
				}
			}
		case "remove":
			if len(args) != 1 {
				fmt.Fprintln(c.errOut, "remove requires exactly one steam id")
				continue
			}
			if err := c.svc.RemoveAccount(ctx, args[0]); err != nil {
				c.handleSessionError(err)
				continue
			}
			fmt.Fprintf(c.out, "removed %s\n", args[0])
		case "lock":
			c.svc.Lock()
			fmt.Fprintln(c.out, "locked")
		case "unlock":
			if c.svc.State() == session.Unlocked {
				fmt.Fprintln(c.out, "already unlocked")
				continue
			}
			c.handleSessionError(c.unlock(ctx))
		case "reset":
			ok, err := c.confirm("This permanently erases every stored account. Type 'reset' to continue: ", "reset")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "reset cancelled")
				continue
			}
			if err := c.svc.Reset(ctx); err != nil {
				c.handleSessionError(err)
				continue
			}
			fmt.Fprintln(c.out, "vault erased")
			return nil
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(c.errOut, "unknown command: %s\n", cmd)
		}
	}
}

func (c *cli) handleSessionError(err error) {
	if err == nil {
		return
	}

	var uerr userError
	if errors.As(err, &uerr) {
		fmt.Fprintln(c.errOut, uerr.Error())
		return
	}
	if errors.Is(err, session.ErrLocked) {
		fmt.Fprintln(c.errOut, "session is locked; type 'unlock' first")
		return
	}

	fmt.Fprintf(c.errOut, "error: %v\n", err)
}

func printSessionHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  codes                 show current codes")
	fmt.Fprintln(w, "  list                  list accounts")
	fmt.Fprintln(w, "  import <file>...      add accounts from .maFile documents")
	fmt.Fprintln(w, "  remove <steam-id>     delete an account")
	fmt.Fprintln(w, "  lock | unlock")
	fmt.Fprintln(w, "  reset                 erase the vault")
	fmt.Fprintln(w, "  exit | quit")
}
