package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/loomcli/loom/pkg/config"
	"github.com/loomcli/loom/pkg/document"
	"github.com/loomcli/loom/pkg/edit"
	"github.com/loomcli/loom/pkg/llm"
	"github.com/loomcli/loom/pkg/resolve"
	"github.com/pkg/errors"
)

// resolveRisk picks the risk level from flag, then config.
func resolveRisk(flagValue string, cfg config.Config) (risk edit.RiskLevel, err error) {
	if flagValue != "" {
		risk, err = edit.ParseRisk(flagValue)
		return risk, err
	}
	risk = cfg.GetRisk()
	return risk, err
}

// resolvePolicy picks the resolution policy from flag, then config.
func resolvePolicy(flagValue string, cfg config.Config) (policy resolve.Policy, err error) {
	if flagValue != "" {
		policy, err = resolve.ParsePolicy(flagValue)
		return policy, err
	}
	policy = cfg.GetOnError()
	return policy, err
}

// newGenerationClient builds the edit generator from config and flags,
// wiring the response cache unless disabled.
func newGenerationClient(cfg config.Config, flagModel string, noCache bool) (client *llm.Client, err error) {
	model := flagModel
	if model == "" {
		model = cfg.GetModel()
	}

	client = llm.NewClient(cfg.AnthropicAPIKey, model)

	if cfg.Cache.Enabled && !noCache {
		var cacheDir string
		cacheDir, err = cfg.GetCacheDir()
		if err != nil {
			return client, err
		}

		var cache *llm.Cache
		cache, err = llm.NewCache(cacheDir, time.Duration(cfg.Cache.TTLHours)*time.Hour)
		if err != nil {
			err = errors.Wrap(err, "failed to initialize response cache")
			return client, err
		}
		client = client.WithCache(cache)
	}

	return client, err
}

// writeEditBatch persists an edit batch as indented JSON.
func writeEditBatch(batch edit.Batch, path string) (err error) {
	var data []byte
	data, err = json.MarshalIndent(batch, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal edit batch")
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for: %s", path)
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write edit batch: %s", path)
		return err
	}

	return err
}

// readEditBatch loads an edit batch from disk.
func readEditBatch(path string) (batch edit.Batch, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read edit batch: %s", path)
		return batch, err
	}

	batch, err = edit.ParseBatch(data)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse edit batch: %s", path)
		return batch, err
	}

	return batch, err
}

// writeSideFile persists text content to a side file, creating the parent
// directory as needed.
func writeSideFile(content, path string) (err error) {
	err = os.MkdirAll(filepath.Dir(path), 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create directory for: %s", path)
		return err
	}

	err = os.WriteFile(path, []byte(content), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write file: %s", path)
		return err
	}

	return err
}

// formatPlan renders a human-readable summary of an edit batch, one line
// per operation.
func formatPlan(batch edit.Batch, lines document.Lines) (plan string, err error) {
	var ops []edit.Operation
	ops, err = batch.Operations()
	if err != nil {
		return plan, err
	}

	rows := make([]string, 0, len(ops)+2)
	rows = append(rows, fmt.Sprintf("%d operation(s) proposed by %s", len(ops), batch.Meta.Model))
	rows = append(rows, "")

	for _, op := range ops {
		switch o := op.(type) {
		case edit.ReplaceLine:
			rows = append(rows, fmt.Sprintf("replace line %d: %q -> %q", o.Line, lines[o.Line], o.Text))
		case edit.ReplaceRange:
			rows = append(rows, fmt.Sprintf("replace lines %d-%d with %d line(s)", o.Start, o.End, countLines(o.Text)))
		case edit.InsertAfter:
			rows = append(rows, fmt.Sprintf("insert %d line(s) after line %d", countLines(o.Text), o.Line))
		case edit.DeleteRange:
			rows = append(rows, fmt.Sprintf("delete lines %d-%d", o.Start, o.End))
		}
	}

	plan = strings.Join(rows, "\n") + "\n"
	return plan, err
}

func countLines(text string) (count int) {
	count = strings.Count(text, "\n") + 1
	return count
}

// mustBatchJSON renders a batch for inclusion in a correction prompt. A
// batch that round-tripped through ParseBatch always marshals.
func mustBatchJSON(batch edit.Batch) (text string) {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		text = "{}"
		return text
	}
	text = string(data)
	return text
}

// tailoredPath derives the default output path for an applied resume,
// inserting a .tailored marker before the extension.
func tailoredPath(resumePath string) (path string) {
	ext := filepath.Ext(resumePath)
	path = strings.TrimSuffix(resumePath, ext) + ".tailored" + ext
	return path
}

// sectionsPath is the conventional location of the section map for a
// resume.
func sectionsPath(resumePath string) (path string) {
	path = filepath.Join(filepath.Dir(resumePath), config.LoomDirName, "sections.json")
	return path
}

// resolveValidation runs the warning-resolution loop for a batch against
// the resume, re-reading the batch from its side file when the operator
// edits it manually and regenerating through the client when wired.
func resolveValidation(batchRef *edit.Batch, lines document.Lines, risk edit.RiskLevel,
	policy resolve.Policy, paths resolve.SidePaths, regenerate func(warnings []string) error) (err error) {

	resolver := &resolve.Resolver{
		Paths:      paths,
		Prompter:   resolve.NewTerminalPrompter(),
		Regenerate: regenerate,
		Reload: func() (reloadErr error) {
			var reloaded edit.Batch
			reloaded, reloadErr = readEditBatch(paths.Edits)
			if reloadErr != nil {
				return reloadErr
			}
			*batchRef = reloaded
			return reloadErr
		},
	}

	err = resolver.Resolve(func() (warnings []string) {
		warnings = edit.Validate(*batchRef, lines, risk)
		return warnings
	}, policy)

	var vErr *resolve.ValidationError
	if errors.As(err, &vErr) && vErr.Cleanup {
		removed := resolver.CleanupSideFiles()
		for _, path := range removed {
			if getVerbose() {
				fmt.Printf("Removed %s\n", path)
			}
		}
	}

	return err
}

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				// Clear the line and ensure cursor is at start of new line
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
