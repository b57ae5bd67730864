package config

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	snerrors "github.com/standardbeagle/snip/internal/errors"
	"github.com/standardbeagle/snip/internal/locate"
	"github.com/standardbeagle/snip/internal/parser"
)

// MaxFileSizeLimit caps extract.max_file_size.
const MaxFileSizeLimit = 1024 * 1024 * 1024

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults
// Returns an error if validation fails
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateExtractConfig(&cfg.Extract); err != nil {
		return err
	}
	if err := v.validateSuggestConfig(&cfg.Suggest); err != nil {
		return err
	}
	if cfg.Performance.MaxWorkers < 0 {
		return snerrors.NewConfigError("performance.max_workers", strconv.Itoa(cfg.Performance.MaxWorkers),
			fmt.Errorf("cannot be negative"))
	}
	if cfg.Watch.DebounceMs < 0 {
		return snerrors.NewConfigError("watch.debounce_ms", strconv.Itoa(cfg.Watch.DebounceMs),
			fmt.Errorf("cannot be negative"))
	}
	for _, l := range cfg.Languages {
		if err := v.validateLanguage(l); err != nil {
			return err
		}
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateExtractConfig(e *Extract) error {
	if e.MaxFileSize <= 0 || e.MaxFileSize > MaxFileSizeLimit {
		return snerrors.NewConfigError("extract.max_file_size", strconv.FormatInt(e.MaxFileSize, 10),
			fmt.Errorf("must be between 1 and %d bytes", MaxFileSizeLimit))
	}
	switch e.Format {
	case FormatText, FormatRange, FormatJSON:
	default:
		return snerrors.NewConfigError("extract.format", e.Format,
			fmt.Errorf("must be one of %s, %s, %s", FormatText, FormatRange, FormatJSON))
	}
	return nil
}

func (v *Validator) validateSuggestConfig(s *Suggest) error {
	if s.Threshold < 0 || s.Threshold > 1 {
		return snerrors.NewConfigError("suggest.threshold", strconv.FormatFloat(s.Threshold, 'f', -1, 64),
			fmt.Errorf("must be between 0 and 1"))
	}
	if s.Max < 0 {
		return snerrors.NewConfigError("suggest.max", strconv.Itoa(s.Max), fmt.Errorf("cannot be negative"))
	}
	if _, err := locate.ParseAlgorithm(s.Algorithm); err != nil {
		return snerrors.NewConfigError("suggest.algorithm", s.Algorithm,
			fmt.Errorf("%w, must be one of %s", err, strings.Join(locate.Algorithms(), ", ")))
	}
	return nil
}

func (v *Validator) validateLanguage(l Language) error {
	if _, err := parser.ParseLanguage(l.Name); err != nil {
		return snerrors.NewConfigError("language", l.Name, err)
	}
	for _, p := range l.Patterns {
		if !doublestar.ValidatePattern(p) {
			return snerrors.NewConfigError("language."+l.Name+".pattern", p, fmt.Errorf("invalid glob pattern"))
		}
	}
	return nil
}

// setSmartDefaults applies smart defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core for the OS, minimum of 1
	if cfg.Performance.MaxWorkers == 0 {
		cfg.Performance.MaxWorkers = max(1, runtime.NumCPU()-1)
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 200
	}
	if cfg.Version == 0 {
		cfg.Version = 1
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
