// Package resolve decides what happens when edit validation produces
// warnings. The core validator and applier stay pure; this package owns the
// loop that persists warnings, consults the operator, or triggers
// regeneration until validation comes back clean or a terminal decision is
// made.
package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Policy names the strategy applied when validation warnings are found.
type Policy string

// Supported policies.
const (
	PolicyAsk      Policy = "ask"
	PolicyRetry    Policy = "retry"
	PolicyManual   Policy = "manual"
	PolicyFail     Policy = "fail"
	PolicyFailSoft Policy = "fail:soft"
	PolicyFailHard Policy = "fail:hard"
)

// ParsePolicy validates a policy name. An unrecognized name is a
// configuration error, never a silent success.
func ParsePolicy(s string) (policy Policy, err error) {
	switch Policy(s) {
	case PolicyAsk, PolicyRetry, PolicyManual, PolicyFail, PolicyFailSoft, PolicyFailHard:
		policy = Policy(s)
		return policy, err
	default:
		err = errors.Errorf("invalid validation policy %q: must be one of ask, retry, manual, fail, fail:soft, fail:hard", s)
		return policy, err
	}
}

// ValidationError carries the warning list out of a failed resolution.
// Recoverable errors leave side files intact for inspection; Cleanup signals
// the caller that accumulated side files should be removed.
type ValidationError struct {
	Warnings    []string
	Recoverable bool
	Cleanup     bool
}

// Error implements error.
func (e *ValidationError) Error() (msg string) {
	msg = fmt.Sprintf("validation failed with %d warnings", len(e.Warnings))
	return msg
}

// SidePaths holds the side-file locations the resolver may write or clean
// up. They are explicit configuration so the core stays testable without
// process-wide path constants.
type SidePaths struct {
	Edits    string
	Warnings string
	Diff     string
	Plan     string
}

// Prompter is the capability for obtaining operator decisions. It exists so
// the manual and ask policies can be driven by tests or a UI event loop
// instead of a real terminal.
type Prompter interface {
	// Interactive reports whether operator input is possible at all.
	Interactive() bool
	// Choose displays a prompt and returns the operator's raw choice.
	Choose(prompt string) (choice string, err error)
	// Confirm blocks until the operator acknowledges the prompt.
	Confirm(prompt string) (err error)
	// Say emits an informational message.
	Say(msg string)
	// Warn emits a warning message.
	Warn(msg string)
}

// Resolver coordinates validation outcomes. Regenerate, when wired, asks
// the external generator for a corrected batch given the current warnings;
// Reload re-reads the edits side file after manual editing and reports
// whether it parses.
type Resolver struct {
	Paths      SidePaths
	Prompter   Prompter
	Regenerate func(warnings []string) error
	Reload     func() error
}

// Resolve loops until the validate function returns no warnings or a
// terminal decision is made. The returned error, if any, is a
// *ValidationError for policy-driven failures.
func (r *Resolver) Resolve(validate func() []string, policy Policy) (err error) {
	if _, err = ParsePolicy(string(policy)); err != nil {
		return err
	}

	for {
		warnings := validate()
		if len(warnings) == 0 {
			return nil
		}

		effective := policy
		if effective == PolicyAsk {
			effective, err = r.ask(warnings)
			if err != nil {
				return err
			}
		}

		switch effective {
		case PolicyFail, PolicyFailSoft:
			err = r.persistWarnings(warnings)
			if err != nil {
				return err
			}
			err = &ValidationError{Warnings: warnings, Recoverable: true}
			return err

		case PolicyFailHard:
			err = r.persistWarnings(warnings)
			if err != nil {
				return err
			}
			err = &ValidationError{Warnings: warnings, Recoverable: false, Cleanup: true}
			return err

		case PolicyRetry:
			if r.Regenerate == nil {
				r.Prompter.Say("Retry requested but no regeneration is available; switching to manual...")
				err = r.manual(warnings)
				if err != nil {
					return err
				}
				continue
			}
			err = r.Regenerate(warnings)
			if err != nil {
				err = errors.Wrap(err, "failed to regenerate edits")
				return err
			}
			r.Prompter.Say("Generated corrected edits, re-validating...")

		case PolicyManual:
			err = r.manual(warnings)
			if err != nil {
				return err
			}

		default:
			err = errors.Errorf("invalid validation policy %q", effective)
			return err
		}
	}
}

// ask prompts the operator to pick a policy for this round of warnings.
func (r *Resolver) ask(warnings []string) (chosen Policy, err error) {
	if !r.Prompter.Interactive() {
		err = &ValidationError{
			Warnings:    append([]string{"ask mode not available - non-interactive terminal"}, warnings...),
			Recoverable: false,
		}
		return chosen, err
	}

	r.Prompter.Warn("Validation errors found:")
	for _, warning := range warnings {
		r.Prompter.Warn("   " + warning)
	}

	for {
		var choice string
		choice, err = r.Prompter.Choose("Choose: (s)oft-fail, (h)ard-fail, (m)anual, (r)etry: ")
		if err != nil {
			err = errors.Wrap(err, "failed to read operator choice")
			return chosen, err
		}

		switch strings.ToLower(strings.TrimSpace(choice)) {
		case "s", "soft", "fail", "fail:soft":
			chosen = PolicyFailSoft
			return chosen, err
		case "h", "hard", "fail:hard":
			chosen = PolicyFailHard
			return chosen, err
		case "m", "manual":
			chosen = PolicyManual
			return chosen, err
		case "r", "retry":
			chosen = PolicyRetry
			return chosen, err
		default:
			r.Prompter.Say("Invalid choice. Please enter s, h, m, or r.")
		}
	}
}

// manual persists the warnings and blocks until the operator reports the
// edits file fixed and it parses again.
func (r *Resolver) manual(warnings []string) (err error) {
	if !r.Prompter.Interactive() {
		err = &ValidationError{
			Warnings:    append([]string{"manual mode not available - non-interactive terminal"}, warnings...),
			Recoverable: false,
		}
		return err
	}

	err = r.persistWarnings(warnings)
	if err != nil {
		return err
	}

	r.Prompter.Warn(fmt.Sprintf("Validation errors found. Please edit %s manually:", r.Paths.Edits))
	for _, warning := range warnings {
		r.Prompter.Warn("   " + warning)
	}

	for {
		err = r.Prompter.Confirm("Press Enter after editing the edits file to re-validate...")
		if err != nil {
			err = errors.Wrap(err, "failed to read operator confirmation")
			return err
		}

		if r.Reload == nil {
			return nil
		}

		err = r.Reload()
		if err == nil {
			r.Prompter.Say("File edited, re-validating...")
			return nil
		}
		r.Prompter.Warn(err.Error())
	}
}

// persistWarnings writes the warning list, newline-joined, to the warnings
// side file for operator review.
func (r *Resolver) persistWarnings(warnings []string) (err error) {
	if r.Paths.Warnings == "" {
		return err
	}

	err = os.MkdirAll(filepath.Dir(r.Paths.Warnings), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create warnings directory for: %s", r.Paths.Warnings)
		return err
	}

	err = os.WriteFile(r.Paths.Warnings, []byte(strings.Join(warnings, "\n")+"\n"), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to persist warnings: %s", r.Paths.Warnings)
		return err
	}

	return err
}

// CleanupSideFiles removes accumulated side files after a hard failure.
// Missing files are ignored.
func (r *Resolver) CleanupSideFiles() (removed []string) {
	for _, path := range []string{r.Paths.Edits, r.Paths.Warnings, r.Paths.Diff, r.Paths.Plan} {
		if path == "" {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		if rmErr := os.Remove(path); rmErr == nil {
			removed = append(removed, path)
		}
	}
	return removed
}
