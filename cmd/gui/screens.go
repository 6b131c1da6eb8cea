package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/guardvault/auth"
	"github.com/Hussein-Mazeh/guardvault/internal/config"
	"github.com/Hussein-Mazeh/guardvault/internal/importer"
	"github.com/Hussein-Mazeh/guardvault/internal/logging"
	"github.com/Hussein-Mazeh/guardvault/internal/service"
	"github.com/Hussein-Mazeh/guardvault/internal/totp"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
)

type ui struct {
	ctx  context.Context
	cfg  *config.Config
	svc  *service.Service
	log  logging.Logger
	win  fyne.Window
	root *fyne.Container

	// Only touched on the fyne goroutine.
	codes    []service.CodeView
	list     *widget.List
	progress *widget.ProgressBar
}

func (u *ui) setScreen(obj fyne.CanvasObject) {
	u.root.Objects = []fyne.CanvasObject{obj}
	u.root.Refresh()
}

// activity wraps a callback so that using it extends the session.
func (u *ui) activity(fn func()) func() {
	return func() {
		u.svc.ActivityPing()
		fn()
	}
}

// startScheduler runs code refresh and the inactivity check for the lifetime
// of the window. UI updates are marshalled onto the fyne goroutine.
func (u *ui) startScheduler() {
	sc := service.NewScheduler(u.svc)
	sc.RefreshInterval = u.cfg.RefreshInterval
	sc.PollInterval = u.cfg.PollInterval
	sc.OnRefresh = func(codes []service.CodeView) {
		fyne.Do(func() { u.updateCodes(codes) })
	}
	sc.OnLocked = func() {
		fyne.Do(func() {
			u.showLogin()
			dialog.ShowInformation("Locked", "The vault was locked after a period of inactivity.", u.win)
		})
	}
	go func() {
		if err := sc.Run(u.ctx); err != nil {
			u.log.Error(u.ctx, "scheduler stopped", "error", err)
		}
	}()
}

// showStart picks the create or unlock screen depending on whether a vault
// is stored.
func (u *ui) showStart() {
	exists, err := u.svc.HasVault(u.ctx)
	if err != nil {
		dialog.ShowError(fmt.Errorf("check vault state: %w", err), u.win)
	}
	if exists {
		u.showLogin()
		return
	}
	u.showSetup()
}

func (u *ui) showSetup() {
	u.list = nil

	pass := widget.NewPasswordEntry()
	pass.SetPlaceHolder("Create master password")

	confirm := widget.NewPasswordEntry()
	confirm.SetPlaceHolder("Confirm master password")

	strength := widget.NewLabel("")
	pass.OnChanged = func(s string) {
		if s == "" {
			strength.SetText("")
			return
		}
		strength.SetText(fmt.Sprintf("Strength: %d / 4", auth.Strength(s)))
	}

	btnCreate := makePrimary(widget.NewButton("Create Vault", func() {
		if pass.Text == "" || confirm.Text == "" {
			dialog.ShowInformation("Create Vault", "Enter and confirm the master password.", u.win)
			return
		}
		if pass.Text != confirm.Text {
			dialog.ShowInformation("Create Vault", "Passwords do not match.", u.win)
			return
		}
		if _, err := u.svc.Create(u.ctx, pass.Text); err != nil {
			dialog.ShowError(fmt.Errorf("create vault: %w", err), u.win)
			return
		}
		pass.SetText("")
		confirm.SetText("")
		u.showVault()
	}))

	form := widget.NewForm(
		widget.NewFormItem("Master Password", pass),
		widget.NewFormItem("Confirm Password", confirm),
	)
	card := widget.NewCard(
		"Create Vault",
		"The master password encrypts every stored account. It cannot be recovered.",
		container.NewVBox(form, strength, container.NewHBox(layout.NewSpacer(), btnCreate)),
	)
	u.setScreen(container.NewCenter(container.NewPadded(card)))
}

func (u *ui) showLogin() {
	u.list = nil

	pass := widget.NewPasswordEntry()
	pass.SetPlaceHolder("Master password")

	unlock := func() {
		_, err := u.svc.Unlock(u.ctx, pass.Text)
		pass.SetText("")
		switch {
		case err == nil:
			u.showVault()
		case errors.Is(err, vault.ErrAuthentication):
			dialog.ShowInformation("Unlock", "Wrong password or damaged vault.", u.win)
		case errors.Is(err, vault.ErrCorruptVault):
			dialog.ShowError(errors.New("the vault decrypted but its contents are corrupt; the accounts cannot be recovered"), u.win)
		default:
			dialog.ShowError(fmt.Errorf("unlock failed: %w", err), u.win)
		}
	}
	pass.OnSubmitted = func(string) { unlock() }

	btnUnlock := makePrimary(widget.NewButton("Unlock", unlock))
	btnReset := widget.NewButton("Reset Vault…", u.confirmReset)

	card := widget.NewCard(
		"Unlock Vault",
		"",
		container.NewVBox(pass, container.NewHBox(btnReset, layout.NewSpacer(), btnUnlock)),
	)
	u.setScreen(container.NewCenter(container.NewPadded(card)))
	u.win.Canvas().Focus(pass)
}

func (u *ui) showVault() {
	u.codes = nil
	u.progress = widget.NewProgressBar()
	u.progress.Min = 0
	u.progress.Max = float64(totp.Step / time.Second)
	u.progress.TextFormatter = func() string {
		return fmt.Sprintf("%.0fs", u.progress.Value)
	}

	u.list = widget.NewList(
		func() int { return len(u.codes) },
		func() fyne.CanvasObject {
			name := widget.NewLabel("account")
			code := widget.NewLabel("XXXXX")
			code.TextStyle = fyne.TextStyle{Monospace: true, Bold: true}
			return container.NewHBox(name, layout.NewSpacer(), code)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < 0 || id >= len(u.codes) {
				return
			}
			row := obj.(*fyne.Container)
			row.Objects[0].(*widget.Label).SetText(u.codes[id].AccountName)
			row.Objects[2].(*widget.Label).SetText(u.codes[id].Code)
		},
	)
	u.list.OnSelected = func(id widget.ListItemID) {
		u.svc.ActivityPing()
		if id >= 0 && id < len(u.codes) {
			u.win.Clipboard().SetContent(u.codes[id].Code)
			u.log.Debug(u.ctx, "code copied", "account", u.codes[id].AccountName)
		}
		u.list.UnselectAll()
	}

	btnImport := makePrimary(widget.NewButton("Import .maFile", u.activity(u.importDialog)))
	btnLock := widget.NewButton("Lock", func() {
		u.svc.Lock()
		u.showLogin()
	})
	btnReset := widget.NewButton("Reset…", u.activity(u.confirmReset))

	controls := container.NewHBox(btnImport, layout.NewSpacer(), btnReset, btnLock)
	hint := widget.NewLabel("Tap an account to copy its code.")

	body := container.NewBorder(
		container.NewVBox(u.progress, hint),
		controls, nil, nil,
		u.list,
	)
	u.setScreen(sectionCard("Steam Guard Codes", body))

	if codes, err := u.svc.Codes(time.Now()); err == nil {
		u.updateCodes(codes)
	}
}

func (u *ui) updateCodes(codes []service.CodeView) {
	if u.list == nil {
		return
	}
	u.codes = codes
	u.list.Refresh()
	if len(codes) > 0 {
		u.progress.SetValue(float64(codes[0].SecondsRemaining))
	} else {
		u.progress.SetValue(float64(totp.SecondsRemaining(time.Now())))
	}
}

func (u *ui) importDialog() {
	dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
		u.svc.ActivityPing()
		if err != nil {
			dialog.ShowError(err, u.win)
			return
		}
		if rc == nil {
			return
		}
		defer rc.Close()

		data, err := io.ReadAll(io.LimitReader(rc, 1<<20))
		if err != nil {
			dialog.ShowError(fmt.Errorf("read %s: %w", rc.URI().Name(), err), u.win)
			return
		}
		if err := u.svc.AddAccount(u.ctx, data); err != nil {
			if errors.Is(err, importer.ErrImport) {
				dialog.ShowInformation("Import", fmt.Sprintf("%s was not imported: %v", rc.URI().Name(), err), u.win)
				return
			}
			dialog.ShowError(fmt.Errorf("import: %w", err), u.win)
			return
		}
		if codes, err := u.svc.Codes(time.Now()); err == nil {
			u.updateCodes(codes)
		}
	}, u.win)
}

func (u *ui) confirmReset() {
	dialog.ShowConfirm(
		"Reset Vault",
		"This permanently erases every stored account. Continue?",
		func(ok bool) {
			if !ok {
				return
			}
			if err := u.svc.Reset(u.ctx); err != nil {
				dialog.ShowError(fmt.Errorf("reset: %w", err), u.win)
				return
			}
			u.showSetup()
		},
		u.win,
	)
}
