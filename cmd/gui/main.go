package main

import (
	"context"
	"image/color"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/guardvault/auth"
	"github.com/Hussein-Mazeh/guardvault/internal/config"
	"github.com/Hussein-Mazeh/guardvault/internal/logging"
	"github.com/Hussein-Mazeh/guardvault/internal/service"
	"github.com/Hussein-Mazeh/guardvault/krypto"
	"github.com/Hussein-Mazeh/guardvault/store"
)

var royalBlue = color.NRGBA{R: 18, G: 57, B: 166, A: 255}        // #1239A6 (deep royal)
var royalBlueLight = color.NRGBA{R: 224, G: 233, B: 255, A: 255} // soft tint

type accentTheme struct{ fyne.Theme }

func (a accentTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	switch n {
	case theme.ColorNamePrimary:
		return royalBlue
	case theme.ColorNameFocus:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 200}
	case theme.ColorNameHover:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 30}
	}
	return a.Theme.Color(n, v)
}

// blueHeader creates a royal-blue title bar with white text.
func blueHeader(title string) fyne.CanvasObject {
	bg := canvas.NewRectangle(royalBlue)
	bg.SetMinSize(fyne.NewSize(0, 36))
	t := canvas.NewText(title, color.White)
	t.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewStack(bg, container.NewPadded(t))
}

// sectionCard wraps a header + body with padding and a light background.
func sectionCard(title string, body fyne.CanvasObject) *fyne.Container {
	bg := canvas.NewRectangle(royalBlueLight)
	content := container.NewBorder(
		blueHeader(title), nil, nil, nil,
		container.NewPadded(body),
	)
	return container.NewStack(bg, content)
}

// makePrimary makes a button follow the app accent (royal blue).
func makePrimary(btn *widget.Button) *widget.Button {
	btn.Importance = widget.HighImportance
	return btn
}

func main() {
	cfg, _, err := config.Load("gui", os.Args[1:])
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.NewText(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatalf("configure logging: %v", err)
	}
	if err := krypto.DisableCoreDumps(); err != nil {
		logger.Warn(context.Background(), "could not disable core dumps", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.Backend, cfg.VaultDir)
	if err != nil {
		log.Fatalf("open %s storage at %s: %v", cfg.Backend, cfg.VaultDir, err)
	}

	opts := auth.DefaultValidateOptions()
	opts.MinScore = cfg.MinPasswordScore
	svc := service.New(st, service.Options{
		Timeout: cfg.InactivityTimeout,
		Policy:  opts,
		Logger:  logger,
	})
	defer svc.Close()

	a := app.New()
	a.Settings().SetTheme(accentTheme{Theme: theme.LightTheme()})

	w := a.NewWindow("GuardVault")
	w.Resize(fyne.NewSize(520, 640))

	ui := &ui{
		ctx:  ctx,
		cfg:  cfg,
		svc:  svc,
		log:  logger,
		win:  w,
		root: container.NewStack(),
	}
	w.SetContent(ui.root)

	// Keyboard input anywhere in the window counts as activity.
	w.Canvas().SetOnTypedKey(func(*fyne.KeyEvent) { svc.ActivityPing() })
	w.Canvas().SetOnTypedRune(func(rune) { svc.ActivityPing() })

	ui.startScheduler()
	ui.showStart()

	w.ShowAndRun()
	logger.Info(ctx, "window closed", "vault_dir", cfg.VaultDir)
}
