// Package pipeline runs the page workflow: fetch tips, caption images, match them,
// generate, extract, normalize and write the page.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthpage/internal/captions"
	"healthpage/internal/core"
	"healthpage/internal/extract"
	"healthpage/internal/logger"
	"healthpage/internal/normalize"
	"healthpage/internal/profile"
	"healthpage/internal/prompt"
	"healthpage/internal/render"
)

// Status is the outcome of a run that did not fail.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusNoTips          Status = "no_tips"
	StatusNoImages        Status = "no_images"
	StatusEmptyGeneration Status = "empty_generation"
	StatusInvalid         Status = "invalid"
)

const (
	MessageSuccess  = "Page generated successfully."
	MessageNoTips   = "No health tips found."
	MessageNoImages = "No images could be paired with the health tips."
)

// Config holds orchestrator configuration
type Config struct {
	ImageDir          string
	OutputPath        string
	RawOutputPath     string // optional copy of the unprocessed generation
	GenerationTimeout time.Duration
	GeneratorName     string // shown in the empty-generation message
	ImageWidth        int
	Unmatched         normalize.UnmatchedPolicy
	MarkdownExport    bool
}

// DefaultConfig returns the prototype defaults
func DefaultConfig() *Config {
	return &Config{
		ImageDir:          "llava-images",
		OutputPath:        "prototype-final.html",
		GenerationTimeout: 300 * time.Second,
		GeneratorName:     "Ollama",
		ImageWidth:        normalize.DefaultImageWidth,
		Unmatched:         normalize.UnmatchedDrop,
	}
}

// Request is the demographic input of one run.
type Request struct {
	Age    int
	Gender string
}

// Result describes a finished run.
type Result struct {
	RunID        string
	Status       Status
	Message      string
	Profile      core.Profile
	Pairings     []core.Pairing
	Unmatched    []core.Tip
	Prompt       string
	Document     string
	OutputPath   string
	MarkdownPath string
	Preview      string // iframe snippet embedding Document
	Warnings     []string
	Duration     time.Duration
}

func (r *Result) warn(msg string, args ...any) {
	logger.Warn(msg, args...)
	if len(args) > 0 {
		msg = fmt.Sprintf("%s (%v)", msg, args[len(args)-1])
	}
	r.Warnings = append(r.Warnings, msg)
}

// Orchestrator runs the end-to-end page workflow
type Orchestrator struct {
	tips      TipSource
	captioner ImageCaptioner
	matcher   TipMatcher
	generator PageGenerator
	recorder  RunRecorder // optional
	config    *Config
	closers   []func() error
}

// NewOrchestrator creates an orchestrator with all dependencies. recorder may be nil.
func NewOrchestrator(
	tips TipSource,
	captioner ImageCaptioner,
	matcher TipMatcher,
	generator PageGenerator,
	recorder RunRecorder,
	config *Config,
) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Orchestrator{
		tips:      tips,
		captioner: captioner,
		matcher:   matcher,
		generator: generator,
		recorder:  recorder,
		config:    config,
	}
}

// Close releases resources owned by the collaborators.
func (o *Orchestrator) Close() error {
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		if err := o.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run produces the page for one request.
//
// No tips, no pairable images and an empty generation are ordinary outcomes reported through Result.Status.
// Invalid input, collaborator failures and output the gate rejects are returned as *Error.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	p, err := profile.Parse(req.Age, req.Gender)
	if err != nil {
		return nil, newError(KindInputInvalid, "validate", "invalid demographic input", err)
	}

	res := &Result{RunID: uuid.New().String(), Profile: p}
	log := logger.With("run_id", res.RunID)
	log.Info().Int("age", p.Age).Str("gender", string(p.Gender)).Msg("Starting page run")

	tipList, err := o.tips.Tips(ctx, p)
	if err != nil {
		res.warn("Tip source failed, continuing without tips", "error", err.Error())
	}
	if len(tipList) == 0 {
		res.Status, res.Message = StatusNoTips, MessageNoTips
		return o.finish(res, start), nil
	}

	captionMap, err := o.captioner.Collect(ctx, o.config.ImageDir)
	if err != nil {
		return nil, o.fail(res, start, newError(KindUpstreamFault, "caption", "failed to caption images", err))
	}
	images := captions.Assets(captionMap)

	matched, err := o.matcher.Match(ctx, tipList, images)
	if err != nil {
		return nil, o.fail(res, start, newError(KindUpstreamFault, "match", "failed to match tips with images", err))
	}
	res.Pairings, res.Unmatched = matched.Pairings, matched.Unmatched
	for _, tip := range matched.Unmatched {
		res.Warnings = append(res.Warnings, fmt.Sprintf("tip %q has no image", tip.Title))
	}
	if len(res.Pairings) == 0 {
		res.warn("No tip could be paired with an image", "images", len(images), "kind", string(KindUpstreamEmpty))
		res.Status, res.Message = StatusNoImages, MessageNoImages
		return o.finish(res, start), nil
	}

	res.Prompt = prompt.Synthesize(res.Pairings, p)
	log.Debug().Int("pairings", len(res.Pairings)).Int("prompt_chars", len(res.Prompt)).Msg("Prompt synthesized")

	raw := o.generate(ctx, res)
	if strings.TrimSpace(raw) == "" {
		res.Status = StatusEmptyGeneration
		res.Message = fmt.Sprintf("Failed to generate valid HTML from %s.", o.config.GeneratorName)
		return o.finish(res, start), nil
	}

	if o.config.RawOutputPath != "" {
		if _, err := render.WriteDocument(o.config.RawOutputPath, raw); err != nil {
			res.warn("Failed to save raw generation", "error", err.Error())
		}
	}

	if err := o.complete(ctx, res, raw); err != nil {
		return nil, o.fail(res, start, err)
	}
	return o.finish(res, start), nil
}

// Render runs extraction, the validity gate, normalization and output for raw generator
// text that was produced elsewhere.
func (o *Orchestrator) Render(ctx context.Context, req Request, raw string) (*Result, error) {
	start := time.Now()

	p, err := profile.Parse(req.Age, req.Gender)
	if err != nil {
		return nil, newError(KindInputInvalid, "validate", "invalid demographic input", err)
	}

	res := &Result{RunID: uuid.New().String(), Profile: p}
	if err := o.complete(ctx, res, raw); err != nil {
		return nil, o.fail(res, start, err)
	}
	return o.finish(res, start), nil
}

// generate calls the generator under the configured timeout. Failures are logged and
// reported as empty text.
func (o *Orchestrator) generate(ctx context.Context, res *Result) string {
	timeout := o.config.GenerationTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().GenerationTimeout
	}
	gctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := o.generator.Generate(gctx, res.Prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			res.warn("Generation timed out", "timeout", timeout.String())
		} else {
			res.warn("Generation failed", "error", err.Error())
		}
		return ""
	}
	return raw
}

func (o *Orchestrator) complete(ctx context.Context, res *Result, raw string) *Error {
	extracted := extract.Extract(raw)
	if extracted.Degraded {
		if !extract.LooksLikeHTML(extracted.Document) {
			return newError(KindGenerationInvalid, "extract", "generator output contains no HTML document", nil)
		}
		res.warn("Extraction degraded, normalizing raw output", "kind", string(KindExtractionDegraded))
	}

	pipe := normalize.New(normalize.Options{
		ImageWidth:   o.config.ImageWidth,
		PageTitle:    profile.PageTitles.Value(res.Profile),
		PrimaryColor: profile.Palettes.Value(res.Profile),
		Unmatched:    o.config.Unmatched,
	})
	out, err := pipe.Run(ctx, extracted.Document)
	if err != nil {
		return newError(KindStageFault, "normalize", "normalization failed", err)
	}
	for _, fault := range out.Faults {
		res.Warnings = append(res.Warnings, fault.Error())
	}
	res.Document = out.Document

	path, err := render.WriteDocument(o.config.OutputPath, res.Document)
	if err != nil {
		return newError(KindUpstreamFault, "write", "failed to write page", err)
	}
	res.OutputPath = path
	res.Preview = render.IframeSnippet(res.Document)

	if o.config.MarkdownExport {
		mdPath, err := render.WriteMarkdown(path, res.Document)
		if err != nil {
			res.warn("Markdown export failed", "error", err.Error())
		} else {
			res.MarkdownPath = mdPath
		}
	}

	res.Status, res.Message = StatusSuccess, MessageSuccess
	return nil
}

func (o *Orchestrator) fail(res *Result, start time.Time, err *Error) error {
	res.Status, res.Message = StatusInvalid, err.Error()
	if err.Kind != KindGenerationInvalid {
		res.Status = Status(err.Kind)
	}
	o.finish(res, start)
	return err
}

func (o *Orchestrator) finish(res *Result, start time.Time) *Result {
	res.Duration = time.Since(start)
	logger.Info("Page run finished",
		"run_id", res.RunID,
		"status", string(res.Status),
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds())

	if o.recorder != nil {
		record := core.RunRecord{
			ID:         res.RunID,
			Age:        res.Profile.Age,
			Gender:     res.Profile.Gender,
			Status:     string(res.Status),
			OutputPath: res.OutputPath,
			Pairings:   res.Pairings,
			Warnings:   res.Warnings,
			CreatedAt:  time.Now().UTC(),
		}
		if err := o.recorder.RecordRun(record); err != nil {
			logger.Warn("Failed to record run", "run_id", res.RunID, "error", err.Error())
		}
	}
	return res
}
