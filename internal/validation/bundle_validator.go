// Package validation checks uploaded COMTRADE bundles before they reach
// the decoder. It guards the request boundary only; COMTRADE structural
// correctness is the decoder's business.
package validation

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"unicode/utf8"

	apierrors "ctview/internal/errors"
)

// BundleExtensions are the file extensions a COMTRADE bundle may carry.
var BundleExtensions = map[string]bool{
	".cfg": true,
	".dat": true,
	".hdr": true,
	".inf": true,
}

// BundleValidator validates uploaded record bundles.
type BundleValidator struct {
	logger       *slog.Logger
	maxFileBytes int64
}

// NewBundleValidator creates a bundle validator. maxFileBytes caps each
// individual file of the bundle.
func NewBundleValidator(logger *slog.Logger, maxFileBytes int64) *BundleValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &BundleValidator{
		logger:       logger.With(slog.String("component", "bundle_validator")),
		maxFileBytes: maxFileBytes,
	}
}

// ValidateExtension checks that an uploaded filename carries a bundle
// extension and returns it lowercased without the dot.
func (v *BundleValidator) ValidateExtension(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !BundleExtensions[ext] {
		return "", apierrors.NewValidationError(
			fmt.Sprintf("file %q has unsupported extension %q; expected .cfg, .dat, .hdr or .inf", filename, ext))
	}
	return strings.TrimPrefix(ext, "."), nil
}

// ValidateBundle checks a complete upload: the required CFG/DAT pair
// must be present, non-empty, within the size limit, and the CFG must be
// decodable text. HDR and INF are optional free text.
func (v *BundleValidator) ValidateBundle(cfg, dat []byte) error {
	if len(cfg) == 0 {
		return apierrors.NewValidationError("bundle is missing the .cfg file")
	}
	if len(dat) == 0 {
		return apierrors.NewValidationError("bundle is missing the .dat file")
	}
	if int64(len(cfg)) > v.maxFileBytes {
		return apierrors.NewValidationError(
			fmt.Sprintf("cfg file is %d bytes, limit is %d", len(cfg), v.maxFileBytes))
	}
	if int64(len(dat)) > v.maxFileBytes {
		return apierrors.NewValidationError(
			fmt.Sprintf("dat file is %d bytes, limit is %d", len(dat), v.maxFileBytes))
	}
	if !utf8.Valid(cfg) {
		return apierrors.NewValidationError("cfg file is not valid text")
	}
	if len(strings.Split(strings.TrimSpace(string(cfg)), "\n")) < 2 {
		return apierrors.NewValidationError("cfg file is too short to be a COMTRADE configuration")
	}

	v.logger.Debug("bundle validated",
		slog.Int("cfg_bytes", len(cfg)),
		slog.Int("dat_bytes", len(dat)))
	return nil
}
