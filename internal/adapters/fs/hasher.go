// Package fs provides filesystem-backed hashing and output verification.
package fs

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints build steps with XXHash. A fingerprint covers the
// synthesized command and the content of every input, so it changes exactly
// when a re-run could produce different output. Inputs include the
// build-produced ones: the per-source archives a combine merges and the
// dependency archives a link consumes, resolved under the profile being
// built. Without those a recompiled source would leave downstream
// fingerprints unchanged and serve stale archives from cache.
type Hasher struct{}

// NewHasher creates a Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Fingerprint computes the fingerprint of one step under one profile.
func (h *Hasher) Fingerprint(step *domain.Step, profile domain.Profile, root string) (string, error) {
	hasher := xxhash.New()

	_, _ = hasher.WriteString(step.ID.String())
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(string(profile))
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(step.Commands.Get(profile))
	_, _ = hasher.Write([]byte{0})

	for _, src := range step.Srcs {
		if err := hashFile(hasher, filepath.Join(root, src)); err != nil {
			return "", err
		}
		_, _ = hasher.Write([]byte{0})
	}

	for _, member := range step.Members {
		memberPath := domain.OutputPath(profile, step.Unit, member)
		if err := hashFile(hasher, filepath.Join(root, memberPath)); err != nil {
			return "", err
		}
		_, _ = hasher.Write([]byte{0})
	}

	for _, ref := range step.ArchiveRefs {
		if err := hashFile(hasher, filepath.Join(root, domain.RefPath(profile, ref))); err != nil {
			return "", err
		}
		_, _ = hasher.Write([]byte{0})
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

// hashFile streams one file's content into the digest. A missing source is
// hashed as absent rather than failing here; the compile step itself will
// report it with the toolchain's own diagnostics.
func hashFile(hasher *xxhash.Digest, path string) error {
	f, err := os.Open(path) //nolint:gosec // path is controlled by caller
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			_, _ = hasher.WriteString("absent")
			return nil
		}
		return zerr.With(zerr.Wrap(err, "failed to open source"), "path", path)
	}
	defer f.Close() //nolint:errcheck // best effort close in defer

	if _, err := io.Copy(hasher, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to hash source"), "path", path)
	}
	return nil
}
