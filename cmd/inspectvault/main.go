// Command inspectvault prints what is stored for a vault without decrypting
// it: blob sizes, nonce, salt and, for the sqlite backend, row timestamps.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Hussein-Mazeh/guardvault/internal/config"
	"github.com/Hussein-Mazeh/guardvault/internal/db"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
	"github.com/Hussein-Mazeh/guardvault/store"
)

func main() {
	cfg, _, err := config.Load("inspectvault", os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid arguments: %v\n", err)
		os.Exit(1)
	}
	ctx := context.Background()

	if cfg.Backend == store.BackendSQLite {
		if err := inspectSQLite(ctx, filepath.Join(cfg.VaultDir, store.SQLiteFilename)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	st, err := store.Open(ctx, cfg.Backend, cfg.VaultDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s storage: %v\n", cfg.Backend, err)
		os.Exit(1)
	}
	defer st.Close()

	data, err := st.Get(ctx, vault.StorageName)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println("no vault stored")
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "read vault: %v\n", err)
		os.Exit(1)
	}
	describe(vault.StorageName, data)
}

func inspectSQLite(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	d, err := db.Open(ctx, path)
	if err != nil {
		return err
	}
	defer d.Close()

	rows, err := db.ListBlobs(ctx, d)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no vault stored")
		return nil
	}
	for _, r := range rows {
		describe(r.Name, r.Data)
		fmt.Printf("  created %s, updated %s\n", r.CreatedAt, r.UpdatedAt)
	}
	return nil
}

func describe(name string, data []byte) {
	fmt.Printf("%s (%d bytes)\n", name, len(data))
	blob, err := vault.DecodeBlob(data)
	if err != nil {
		fmt.Printf("  not a valid vault blob: %v\n", err)
		return
	}
	fmt.Printf("  iv (base64): %s\n", base64.StdEncoding.EncodeToString(blob.IV))
	fmt.Printf("  ciphertext: %d bytes including tag\n", len(blob.Data))
	if len(blob.Salt) == 0 {
		fmt.Println("  salt: none (legacy fixed salt)")
	} else {
		fmt.Printf("  salt (base64): %s\n", base64.StdEncoding.EncodeToString(blob.Salt))
	}
}
