// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"fmt"
	"os"

	"github.com/google/renameio/v2"
)

const starterConfig = `# renc configuration
# Remote repository hosting the transcode workflow (owner/name).
repo: ""
workflow_file: "transcode.yml"
default_branch: "main"
# Local clone used for tag push operations.
git_context_dir: "."

# GPG key id the CI runner decrypts uploads with.
action_recipient: ""
# GPG key id results are encrypted back to.
user_recipient: ""

# Fallback upload endpoint for payloads between 2 GiB and 4 GB.
direct_upload_url: "https://temp.sh/upload"

# Orchestration tuning.
locate_attempts: 24
locate_interval: 5s
poll_interval: 15s
settle_delay: 8s
download_attempts: 3
download_base_delay: 5s

presets_path: "presets.yaml"
log_level: "info"
`

// WriteDefault writes a commented starter config. The write is atomic and
// refuses to clobber an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return renameio.WriteFile(path, []byte(starterConfig), 0o600)
}
