package checker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// FixOutcome describes the fixes applied to one document.
type FixOutcome struct {
	Document  string           `json:"file"`
	Applied   []scan.FixAction `json:"applied"`
	Remaining []scan.Finding   `json:"remaining"`
	Content   string           `json:"-"`
	Written   bool             `json:"written"`
}

// FixOption configures FixFile and FixAll.
type FixOption func(*fixOptions)

type fixOptions struct {
	dryRun bool
}

// WithDryRun computes fixes without writing the file or touching the store.
func WithDryRun() FixOption {
	return func(o *fixOptions) { o.dryRun = true }
}

// FixText applies fixes to text without any I/O. An empty identifier fixes
// every unbound model name; otherwise only identifier is fixed and
// ErrNoFindings is returned when it has no finding.
func (c *Checker) FixText(text, identifier string) (FixOutcome, error) {
	if c.tooLarge(int64(len(text))) {
		return FixOutcome{}, fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, len(text), c.cfg.Host.MaxFileSizeBytes)
	}

	outcome := FixOutcome{Content: text}
	findings := c.scan(text)

	if identifier != "" {
		if !hasIdentifier(findings, identifier) {
			return FixOutcome{}, fmt.Errorf("%w: %s", ErrNoFindings, identifier)
		}
		fix := c.scanner.SynthesizeFix(text, identifier)
		outcome.Content = fix.Apply(text)
		outcome.Applied = []scan.FixAction{fix}
		outcome.Remaining = c.scan(outcome.Content)
		return outcome, nil
	}

	if len(findings) == 0 {
		return FixOutcome{}, ErrNoFindings
	}

	// Each distinct unbound name gets exactly one import, in first-use order.
	attempted := make(map[string]bool)
	for {
		target := ""
		for _, f := range findings {
			if !attempted[f.Identifier] {
				target = f.Identifier
				break
			}
		}
		if target == "" {
			break
		}
		attempted[target] = true

		fix := c.scanner.SynthesizeFix(outcome.Content, target)
		outcome.Content = fix.Apply(outcome.Content)
		outcome.Applied = append(outcome.Applied, fix)
		findings = c.scan(outcome.Content)
	}

	outcome.Remaining = findings
	return outcome, nil
}

func hasIdentifier(findings []scan.Finding, identifier string) bool {
	for _, f := range findings {
		if f.Identifier == identifier {
			return true
		}
	}
	return false
}

// FixFile inserts an import for identifier into path, writes the file back
// and rescans it. An empty identifier behaves like FixAll.
func (c *Checker) FixFile(ctx context.Context, path, identifier string, opts ...FixOption) (FixOutcome, error) {
	var o fixOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := ctx.Err(); err != nil {
		return FixOutcome{}, err
	}

	// Serialize read-modify-write cycles so concurrent fixes don't clobber each other.
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		return FixOutcome{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if c.tooLarge(info.Size()) {
		return FixOutcome{}, fmt.Errorf("%w: %s", ErrFileTooLarge, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return FixOutcome{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	outcome, err := c.FixText(string(content), identifier)
	if err != nil {
		return FixOutcome{}, err
	}
	outcome.Document = path

	if o.dryRun {
		return outcome, nil
	}

	if err := writeFileAtomic(path, []byte(outcome.Content), info.Mode().Perm()); err != nil {
		return FixOutcome{}, err
	}
	outcome.Written = true

	// Fresh scan of the written content replaces the stored findings.
	outcome.Remaining = c.CheckText(path, outcome.Content).Findings

	c.log.WithFields(logrus.Fields{
		"file":      path,
		"imports":   len(outcome.Applied),
		"remaining": len(outcome.Remaining),
	}).Info("applied fix")

	return outcome, nil
}

// FixAll inserts one import per distinct unbound model name in path.
func (c *Checker) FixAll(ctx context.Context, path string, opts ...FixOption) (FixOutcome, error) {
	return c.FixFile(ctx, path, "", opts...)
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// PreviewFix reads path and returns the fix that would import identifier,
// without applying it.
func (c *Checker) PreviewFix(path, identifier string) (scan.FixAction, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return scan.FixAction{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return c.scanner.SynthesizeFix(string(content), identifier), nil
}
