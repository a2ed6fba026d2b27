// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package vault performs the sanitize+encrypt and decrypt steps around a
// remote run. The video never leaves the machine with metadata or in clear.
package vault

import (
	"context"
	"fmt"
	"os"

	"github.com/ManuGH/renc/internal/execx"
	"github.com/rs/zerolog"
)

// Vault drives exiftool and gpg through an execx.Runner.
type Vault struct {
	Runner execx.Runner
	Log    zerolog.Logger
}

// SanitizeEncrypt strips all metadata from source and encrypts the result to
// recipient, writing out. The two tools are connected by a pipe so no
// sanitized plaintext ever lands on disk.
func (v *Vault) SanitizeEncrypt(ctx context.Context, source, out, recipient string) error {
	producer := execx.Spec{
		Name: "exiftool",
		Args: []string{
			"-api", "LargeFileSupport=1",
			"-all=",
			"-o", "-",
			source,
		},
	}
	consumer := execx.Spec{
		Name: "gpg",
		Args: []string{
			"--quiet", "--yes", "--batch",
			"--encrypt",
			"--recipient", recipient,
			"--output", out,
		},
	}
	if err := v.Runner.Pipe(ctx, producer, consumer); err != nil {
		// No partial-file guarantee from the pipe; drop whatever gpg wrote.
		_ = os.Remove(out)
		return fmt.Errorf("sanitize and encrypt %s: %w", source, err)
	}
	v.Log.Debug().Str("path", out).Msg("encrypted payload written")
	return nil
}

// Decrypt decrypts in to out for recipient and returns out. The encrypted
// input is removed afterwards, whether decryption succeeded or not.
func (v *Vault) Decrypt(ctx context.Context, in, out, recipient string) (string, error) {
	defer func() {
		if err := os.Remove(in); err != nil && !os.IsNotExist(err) {
			v.Log.Warn().Err(err).Str("path", in).Msg("could not remove encrypted artifact")
		}
	}()

	_, err := v.Runner.Run(ctx, execx.Spec{
		Name: "gpg",
		Args: []string{
			"--quiet", "--yes", "--batch",
			"--decrypt",
			"--recipient", recipient,
			"--output", out,
			in,
		},
	})
	if err != nil {
		return "", fmt.Errorf("decrypt %s: %w", in, err)
	}
	v.Log.Debug().Str("path", out).Msg("artifact decrypted")
	return out, nil
}
