package fs

import (
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/SkeneZr/cc-rules/internal/core/domain"
	"github.com/SkeneZr/cc-rules/internal/core/ports"
)

var _ ports.Verifier = (*Verifier)(nil)

// Verifier checks that executed steps actually produced their declared
// artifact. A toolchain that exits zero without writing its output would
// otherwise poison the fingerprint store.
type Verifier struct{}

// NewVerifier creates a Verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// VerifyOutput reports whether the step's artifact exists under root.
func (v *Verifier) VerifyOutput(root string, step *domain.Step, profile domain.Profile) (bool, error) {
	out := step.Output(profile)
	if out == "" {
		return true, nil
	}

	_, err := os.Stat(filepath.Join(root, out))
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return false, nil
		}
		return false, zerr.With(zerr.Wrap(err, "failed to stat output"), "path", out)
	}
	return true, nil
}
