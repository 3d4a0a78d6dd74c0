// Package orchestrator coordinates the rename and tagging stages for prepfiles.
package orchestrator

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"prepfiles/internal/config"
	"prepfiles/internal/metadata"
	"prepfiles/internal/output"
	"prepfiles/internal/prompt"
	"prepfiles/internal/renamer"
	"prepfiles/internal/scanner"
	"prepfiles/internal/tagging"
)

// Orchestrator runs the selected stages against one library root.
type Orchestrator struct {
	config    *config.Configuration
	out       *output.Output
	confirmer prompt.Confirmer
	opener    tagging.Opener
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithConfirmer sets the confirmation capability for the rename gate.
func WithConfirmer(c prompt.Confirmer) Option {
	return func(o *Orchestrator) { o.confirmer = c }
}

// WithOpener sets the tag writer used by the metadata stage.
func WithOpener(op tagging.Opener) Option {
	return func(o *Orchestrator) { o.opener = op }
}

// New creates an orchestrator for a validated configuration.
func New(cfg *config.Configuration, out *output.Output, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config: cfg,
		out:    out,
		opener: tagging.DefaultOpener,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the rename stage and then the metadata stage, as selected.
// Per-item failures are collected in the summary; only an unreadable root
// is returned as an error.
func (o *Orchestrator) Run() (*Summary, error) {
	start := time.Now()
	summary := &Summary{Root: o.config.Root}

	if o.config.RunsFilenames() {
		report, err := o.renameStage(summary)
		if err != nil {
			return nil, err
		}
		summary.Rename = report
	}

	if o.config.RunsMetadata() {
		if summary.Rename != nil {
			o.out.Info("")
		}
		report, err := o.metadataStage()
		if err != nil {
			return nil, err
		}
		summary.Tagging = report
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// BuildPlan plans every album folder rename under root, followed by every
// track rename inside those album folders. Directories that cannot be read
// are returned as errors alongside the plan.
func BuildPlan(root string) (*renamer.Plan, []error, error) {
	artists, err := scanner.ListDirs(root)
	if err != nil {
		return nil, nil, err
	}

	albums := &renamer.Plan{}
	tracks := &renamer.Plan{}
	var errs []error

	for _, artist := range artists {
		p, err := renamer.PlanAlbumRenames(artist.FullPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		albums.Merge(p)

		albumDirs, err := scanner.ListDirs(artist.FullPath)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, album := range albumDirs {
			p, err := renamer.PlanTrackRenames(album.FullPath)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			tracks.Merge(p)
		}
	}

	// Track operations resolve against committed album paths, so albums go first.
	albums.Merge(tracks)
	return albums, errs, nil
}

func (o *Orchestrator) renameStage(summary *Summary) (*renamer.ExecutionReport, error) {
	root := o.config.Root

	plan, errs, err := BuildPlan(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	for _, e := range errs {
		summary.ScanErrors = append(summary.ScanErrors, e)
		o.out.Status(output.StatusFail, "%v", e)
	}

	interactive := o.config.Interactive()
	if !interactive || plan.Empty() {
		o.out.Info("%s", plan.Preview(root))
	}

	report, err := renamer.Execute(plan, renamer.ExecuteOptions{
		Confirm:   interactive,
		Confirmer: o.confirmer,
		Root:      root,
	})
	if err != nil {
		return nil, err
	}

	if report.Declined {
		o.out.Info("Aborted. No changes applied.")
		return report, nil
	}

	o.reportSkips(renameSkips(report.Skips))
	for _, c := range report.Conflicts {
		o.out.Status(output.StatusFail, "%s -> %s: destination taken by %s",
			o.rel(c.SourcePath()), c.DestinationName, o.rel(c.With))
	}

	if len(report.Results) > 0 {
		o.out.Info("\nApplying changes...")
	}
	for _, r := range report.Results {
		if r.Err != nil {
			o.out.Status(output.StatusFail, "%s -> %s: %v", o.rel(r.Source), o.rel(r.Destination), r.Err)
			continue
		}
		o.out.Status(output.StatusOK, "%s -> %s", o.rel(r.Source), o.rel(r.Destination))
	}

	if len(report.Results) > 0 {
		o.out.Info("\nDone. Applied %d rename(s).", report.Applied)
	}
	return report, nil
}

func (o *Orchestrator) metadataStage() (*metadata.TaggingReport, error) {
	started := false
	report, err := metadata.DeriveAndTag(o.config.Root, metadata.Options{
		Opener: o.opener,
		Filter: scanner.NewAudioFilter(o.config.AudioExtensions),
		Progress: func(done, total int) {
			if !started {
				o.out.StartProgress(total, "Tagging")
				started = true
			}
			o.out.UpdateProgress(done)
		},
	})
	o.out.EndProgress()
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", o.config.Root, err)
	}

	o.reportSkips(taggingSkips(report.Skips))
	for _, u := range report.Updates {
		o.out.Status(output.StatusOK, "updated tags: %s", o.rel(u.Path))
		for _, c := range u.Changes {
			o.out.Verbose("    %s: %q -> %q", c.Field, c.From, c.To)
		}
	}
	for _, f := range report.Failures {
		o.out.Status(output.StatusFail, "%v", f)
	}

	if report.Tagged == 0 && report.Failed == 0 {
		o.out.Info("No metadata updates required.")
	} else {
		o.out.Info("\nDone. Updated %d file(s).", report.Tagged)
	}
	return report, nil
}

// reportSkips lists names that did not parse. They are only shown in
// verbose mode.
func (o *Orchestrator) reportSkips(skips map[string]error) {
	if !o.out.IsVerbose() {
		return
	}
	paths := make([]string, 0, len(skips))
	for p := range skips {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		o.out.Status(output.StatusSkip, "%s: %v", o.rel(p), skips[p])
	}
}

func renameSkips(skips []renamer.Skip) map[string]error {
	m := make(map[string]error, len(skips))
	for _, s := range skips {
		m[s.Path] = s.Err
	}
	return m
}

func taggingSkips(skips []metadata.Skip) map[string]error {
	m := make(map[string]error, len(skips))
	for _, s := range skips {
		m[s.Path] = s.Err
	}
	return m
}

func (o *Orchestrator) rel(path string) string {
	if r, err := filepath.Rel(o.config.Root, path); err == nil {
		return r
	}
	return path
}
