// Command initvault prepares the configured storage backend: it creates the
// vault directory, applies the sqlite schema or checks keychain access, and
// reports whether a vault is already stored.
package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/Hussein-Mazeh/guardvault/internal/config"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
	"github.com/Hussein-Mazeh/guardvault/store"
)

func main() {
	cfg, _, err := config.Load("initvault", os.Args[1:])
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := os.MkdirAll(cfg.VaultDir, 0o700); err != nil {
		log.Fatalf("create vault directory: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Backend, cfg.VaultDir)
	if err != nil {
		log.Fatalf("open %s storage: %v", cfg.Backend, err)
	}
	defer st.Close()

	_, err = st.Get(ctx, vault.StorageName)
	switch {
	case err == nil:
		log.Printf("%s backend ready in %s; a vault is already stored", cfg.Backend, cfg.VaultDir)
	case errors.Is(err, store.ErrNotFound):
		log.Printf("%s backend ready in %s; run pm create to set a master password", cfg.Backend, cfg.VaultDir)
	default:
		log.Fatalf("read vault: %v", err)
	}
}
