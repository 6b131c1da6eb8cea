package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Hussein-Mazeh/guardvault/auth"
	"github.com/Hussein-Mazeh/guardvault/internal/importer"
	"github.com/Hussein-Mazeh/guardvault/internal/service"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
)

func (c *cli) runCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	exists, err := c.svc.HasVault(ctx)
	if err != nil {
		return err
	}
	if exists {
		return userError{msg: "a vault already exists; use pm reset to start over"}
	}

	pw, err := c.promptPassword("Enter master password: ")
	if err != nil {
		return fmt.Errorf("read master password: %w", err)
	}
	defer zeroBytes(pw)

	confirm, err := c.promptPassword("Confirm master password: ")
	if err != nil {
		return fmt.Errorf("read confirmation password: %w", err)
	}
	defer zeroBytes(confirm)

	if !bytes.Equal(pw, confirm) {
		return userError{msg: "passwords do not match"}
	}

	if _, err := c.svc.Create(ctx, string(pw)); err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return userError{msg: err.Error()}
		}
		if errors.Is(err, service.ErrVaultExists) {
			return userError{msg: "a vault already exists; use pm reset to start over"}
		}
		return err
	}

	fmt.Fprintf(c.out, "vault created in %s (%s backend)\n", c.cfg.VaultDir, c.cfg.Backend)
	return nil
}

// unlock prompts for the master password until it opens the vault. Three
// wrong attempts end the command.
func (c *cli) unlock(ctx context.Context) error {
	for attempt := 0; attempt < 3; attempt++ {
		pw, err := c.promptPassword("Enter master password: ")
		if err != nil {
			return fmt.Errorf("read master password: %w", err)
		}
		_, err = c.svc.Unlock(ctx, string(pw))
		zeroBytes(pw)

		switch {
		case err == nil:
			return nil
		case errors.Is(err, service.ErrNoVault):
			return userError{msg: "no vault found; run pm create first"}
		case errors.Is(err, vault.ErrAuthentication):
			fmt.Fprintln(c.errOut, "wrong password or damaged vault")
		case errors.Is(err, vault.ErrCorruptVault):
			return userError{msg: "vault decrypted but its contents are corrupt; the accounts cannot be recovered"}
		default:
			return err
		}
	}
	return userError{msg: "failed to unlock vault"}
}

func (c *cli) runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() == 0 {
		return userError{msg: "import requires at least one .maFile path"}
	}

	if err := c.unlock(ctx); err != nil {
		return err
	}

	failed := 0
	for _, path := range fs.Args() {
		if err := c.importFile(ctx, path); err != nil {
			fmt.Fprintf(c.errOut, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return userError{msg: fmt.Sprintf("%d of %d imports failed", failed, fs.NArg())}
	}
	return nil
}

func (c *cli) importFile(ctx context.Context, path string) error {
	data, err := importer.Load(path)
	if err != nil {
		return err
	}
	if err := c.svc.AddAccount(ctx, data); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "imported %s\n", path)
	return nil
}

func (c *cli) runCodes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("codes", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var watch bool
	fs.BoolVar(&watch, "watch", false, "keep refreshing until interrupted or locked")
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	if err := c.unlock(ctx); err != nil {
		return err
	}
	if !watch {
		codes, err := c.svc.Codes(time.Now())
		if err != nil {
			return err
		}
		printCodes(c.out, codes)
		return nil
	}
	return c.watchCodes(ctx)
}

// watchCodes redraws the code table on every refresh. Refreshing is not
// activity, so the session locks after the inactivity timeout.
func (c *cli) watchCodes(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	locked := false
	sc := service.NewScheduler(c.svc)
	sc.RefreshInterval = c.cfg.RefreshInterval
	sc.PollInterval = c.cfg.PollInterval
	sc.OnRefresh = func(codes []service.CodeView) {
		fmt.Fprint(c.out, "\033[H\033[2J")
		printCodes(c.out, codes)
	}
	sc.OnLocked = func() {
		locked = true
		cancel()
	}

	if err := sc.Run(ctx); err != nil {
		return err
	}
	if locked {
		fmt.Fprintln(c.errOut, "session locked after inactivity")
	}
	return nil
}

func printCodes(w io.Writer, codes []service.CodeView) {
	if len(codes) == 0 {
		fmt.Fprintln(w, "no accounts; use pm import <file.maFile>")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tCODE\tEXPIRES")
	for _, cv := range codes {
		fmt.Fprintf(tw, "%s\t%s\t%ds\n", cv.AccountName, cv.Code, cv.SecondsRemaining)
	}
	tw.Flush()
}

func (c *cli) runList(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return userError{msg: "unexpected positional arguments"}
	}
	if err := c.unlock(ctx); err != nil {
		return err
	}
	return c.printAccounts()
}

func (c *cli) printAccounts() error {
	accounts, err := c.svc.Accounts()
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(c.out, "no accounts")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACCOUNT\tSTEAM ID")
	for _, a := range accounts {
		fmt.Fprintf(tw, "%s\t%s\n", a.AccountName, a.SteamID)
	}
	return tw.Flush()
}

func (c *cli) runRemove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return userError{msg: "remove requires exactly one steam id"}
	}
	if err := c.unlock(ctx); err != nil {
		return err
	}
	if err := c.svc.RemoveAccount(ctx, args[0]); err != nil {
		return userError{msg: err.Error()}
	}
	fmt.Fprintf(c.out, "removed %s\n", args[0])
	return nil
}

func (c *cli) runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var yes bool
	fs.BoolVar(&yes, "yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return userError{msg: "invalid arguments"}
	}
	if fs.NArg() != 0 {
		return userError{msg: "unexpected positional arguments"}
	}

	if !yes {
		ok, err := c.confirm("This permanently erases every stored account. Type 'reset' to continue: ", "reset")
		if err != nil {
			return err
		}
		if !ok {
			return userError{msg: "reset cancelled"}
		}
	}
	if err := c.svc.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "vault erased")
	return nil
}

func (c *cli) confirm(prompt, want string) (bool, error) {
	answer, err := c.readLine(prompt)
	if err != nil {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.EqualFold(answer, want), nil
}
