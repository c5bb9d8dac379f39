package pipeline

import (
	"context"
	"errors"
	"fmt"

	"healthpage/internal/captions"
	"healthpage/internal/config"
	"healthpage/internal/llm"
	"healthpage/internal/logger"
	"healthpage/internal/matcher"
	"healthpage/internal/normalize"
	"healthpage/internal/store"
	"healthpage/internal/tips"
	"healthpage/internal/vision"
)

// Builder wires the collaborators named in the configuration into an Orchestrator
type Builder struct {
	cfg       *config.Config
	skipCache bool
	rawOutput string

	gemini *llm.Client
}

// NewBuilder creates a builder for the given configuration
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

// WithoutCache disables the SQLite caches and run history
func (b *Builder) WithoutCache() *Builder {
	b.skipCache = true
	return b
}

// WithRawOutput saves the unprocessed generation to path
func (b *Builder) WithRawOutput(path string) *Builder {
	b.rawOutput = path
	return b
}

// WithGeminiClient supplies an existing Gemini client instead of dialing one
func (b *Builder) WithGeminiClient(client *llm.Client) *Builder {
	b.gemini = client
	return b
}

// Build constructs a fully configured Orchestrator. Call Close on it when done.
func (b *Builder) Build(ctx context.Context) (*Orchestrator, error) {
	cfg := b.cfg
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	db := b.openStore()
	if db != nil {
		closers = append(closers, db.Close)
	}

	generator, generatorName, err := b.generator(ctx)
	if err != nil {
		cleanup()
		return nil, err
	}

	embedder, err := b.embedder(ctx, db)
	if err != nil {
		cleanup()
		return nil, err
	}

	captioner, captionerName, closeCaptioner, err := b.captioner(ctx)
	if err != nil {
		cleanup()
		return nil, err
	}
	if closeCaptioner != nil {
		closers = append(closers, closeCaptioner)
	}
	collector := b.collector(captioner, captionerName, db)

	strategy, err := matcher.ParseStrategy(cfg.Matching.Strategy)
	if err != nil {
		cleanup()
		return nil, err
	}

	unmatched, err := normalize.ParseUnmatchedPolicy(cfg.Render.UnmatchedContent)
	if err != nil {
		cleanup()
		return nil, err
	}

	var recorder RunRecorder
	if db != nil {
		recorder = db
	}

	orch := NewOrchestrator(
		b.tipSource(),
		collector,
		matcher.New(embedder, strategy),
		generator,
		recorder,
		&Config{
			ImageDir:          cfg.Images.Directory,
			OutputPath:        cfg.Render.OutputFile,
			RawOutputPath:     b.rawOutput,
			GenerationTimeout: config.ParseDuration(cfg.Generation.Timeout, DefaultConfig().GenerationTimeout),
			GeneratorName:     generatorName,
			ImageWidth:        cfg.Render.ImageWidth,
			Unmatched:         unmatched,
			MarkdownExport:    cfg.Render.MarkdownExport,
		},
	)
	orch.closers = closers

	logger.Debug("Pipeline built",
		"generator", generatorName,
		"embedding", cfg.Embedding.Provider,
		"captioner", captionerName,
		"strategy", string(strategy),
		"cache", db != nil)
	return orch, nil
}

// BuildCollector wires only the caption collector, for captioning without generating.
// The returned function releases the cache and captioning client.
func (b *Builder) BuildCollector(ctx context.Context) (*captions.Collector, func() error, error) {
	if b.cfg == nil {
		return nil, nil, fmt.Errorf("configuration is required")
	}

	captioner, name, closeCaptioner, err := b.captioner(ctx)
	if err != nil {
		return nil, nil, err
	}

	db := b.openStore()
	closeFn := func() error {
		var errs []error
		if db != nil {
			errs = append(errs, db.Close())
		}
		if closeCaptioner != nil {
			errs = append(errs, closeCaptioner())
		}
		return errors.Join(errs...)
	}
	return b.collector(captioner, name, db), closeFn, nil
}

// openStore returns nil when caching is disabled or the database cannot be opened.
func (b *Builder) openStore() *store.Store {
	if b.skipCache || !b.cfg.Cache.Enabled {
		return nil
	}
	s, err := store.NewStore(b.cfg.Cache.Directory)
	if err != nil {
		logger.Warn("Failed to initialize cache, continuing without it", "error", err.Error())
		return nil
	}
	return s
}

func (b *Builder) collector(captioner captions.Captioner, name string, db *store.Store) *captions.Collector {
	var cache captions.Cache
	if db != nil {
		cache = db
	}
	return captions.NewCollector(captioner, name, cache, b.cfg.Images.Concurrency)
}

func (b *Builder) geminiClient(ctx context.Context) (*llm.Client, error) {
	if b.gemini != nil {
		return b.gemini, nil
	}
	g := b.cfg.AI.Gemini
	client, err := llm.NewClient(ctx, llm.Options{
		APIKey:         g.APIKey,
		Model:          g.Model,
		EmbeddingModel: g.EmbeddingModel,
		CaptionModel:   g.CaptionModel,
		Dimensions:     int32(b.cfg.Embedding.Dimensions),
		Temperature:    g.Temperature,
	})
	if err != nil {
		return nil, err
	}
	b.gemini = client
	return client, nil
}

func (b *Builder) generator(ctx context.Context) (llm.Generator, string, error) {
	switch b.cfg.Generation.Provider {
	case "ollama":
		o := b.cfg.Generation.Ollama
		gen := llm.NewOllamaGenerator(o.Binary, o.Model)
		return llm.NewTracedGenerator(gen, gen.Model), "Ollama", nil
	case "gemini", "":
		client, err := b.geminiClient(ctx)
		if err != nil {
			return nil, "", err
		}
		return llm.NewTracedGenerator(client, client.ModelName()), "Gemini", nil
	default:
		return nil, "", fmt.Errorf("unknown generation provider %q", b.cfg.Generation.Provider)
	}
}

func (b *Builder) embedder(ctx context.Context, db *store.Store) (llm.Embedder, error) {
	var (
		embedder llm.Embedder
		model    string
	)
	switch b.cfg.Embedding.Provider {
	case "hash":
		embedder = llm.NewHashEmbedder(b.cfg.Embedding.Dimensions)
		model = fmt.Sprintf("hash-%d", b.cfg.Embedding.Dimensions)
	case "gemini", "":
		client, err := b.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		embedder = client
		model = fmt.Sprintf("%s-%d", b.cfg.AI.Gemini.EmbeddingModel, b.cfg.Embedding.Dimensions)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", b.cfg.Embedding.Provider)
	}

	if db == nil {
		return embedder, nil
	}
	return llm.NewCachedEmbedder(embedder, model, db), nil
}

func (b *Builder) captioner(ctx context.Context) (captions.Captioner, string, func() error, error) {
	switch b.cfg.Images.Captioner {
	case "vision":
		c, err := vision.NewLabelCaptioner(ctx, b.cfg.Vision.CredentialsFile, b.cfg.Vision.MaxLabels)
		if err != nil {
			return nil, "", nil, err
		}
		return c, "vision", c.Close, nil
	case "gemini", "":
		client, err := b.geminiClient(ctx)
		if err != nil {
			return nil, "", nil, err
		}
		return client, "gemini:" + b.cfg.AI.Gemini.CaptionModel, nil, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown captioner %q", b.cfg.Images.Captioner)
	}
}

func (b *Builder) tipSource() TipSource {
	t := b.cfg.Tips
	if t.Source == "file" {
		return tips.NewFileSource(t.File, t.SampleSize, t.Seed)
	}
	return tips.NewHealthFinder(t.Endpoint, config.ParseDuration(t.Timeout, 0), t.SampleSize, t.Seed)
}
