package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// GeneratorConfig tunes generation calls.
type GeneratorConfig struct {
	BatchSize   int
	Concurrency int

	// MaxTokens is the per-requirement budget; a batch asks for MaxTokens times its size.
	MaxTokens   int
	Temperature float64
}

// RecordGenerator produces records for requirements through the oracle.
type RecordGenerator struct {
	oracle  driven.Oracle
	parser  *RecordParser
	retry   RetryPolicy
	cfg     GeneratorConfig
	prompts driven.PromptStore
}

// NewRecordGenerator creates a generator.
func NewRecordGenerator(oracle driven.Oracle, parser *RecordParser, retry RetryPolicy, cfg GeneratorConfig) *RecordGenerator {
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 1
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &RecordGenerator{oracle: oracle, parser: parser, retry: retry, cfg: cfg}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (g *RecordGenerator) SetPromptStore(store driven.PromptStore) {
	g.prompts = store
}

// Batches splits requirements into groups of at most size.
func Batches(reqs []domain.Requirement, size int) [][]domain.Requirement {
	if size < 1 {
		size = 1
	}
	var out [][]domain.Requirement
	for i := 0; i < len(reqs); i += size {
		out = append(out, reqs[i:min(i+size, len(reqs))])
	}
	return out
}

// Generate dispatches batches concurrently, then parses the replies in batch
// order so identities from seq stay deterministic. Any batch failure fails
// the whole generation with a GenerationError.
func (g *RecordGenerator) Generate(
	ctx context.Context,
	reqs []domain.Requirement,
	seq *domain.IDSequence,
) (ParseResult, error) {
	batches := Batches(reqs, g.cfg.BatchSize)
	replies := make([]string, len(batches))

	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Concurrency)
	for i, batch := range batches {
		eg.Go(func() error {
			logger.Info("Processing batch %d/%d (%d requirements)", i+1, len(batches), len(batch))
			prompt := buildGeneratePrompt(g.prompts, g.parser.Template(), batch)
			params := driven.GenerateParams{
				MaxTokens:   g.cfg.MaxTokens * len(batch),
				Temperature: g.cfg.Temperature,
			}
			reply, attempts, err := g.retry.Do(ectx, func(ctx context.Context) (string, error) {
				return g.oracle.Generate(ctx, prompt, params)
			})
			if err != nil {
				return &domain.GenerationError{Batch: i + 1, Attempts: attempts, Err: err}
			}
			replies[i] = reply
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return ParseResult{}, fmt.Errorf("generate records: %w", err)
	}

	var result ParseResult
	tmpl := g.parser.Template()
	for i, reply := range replies {
		parsed := g.parser.Parse(reply, seq)
		traceUntraced(tmpl, batches[i], parsed.Records)
		logger.Info("Batch %d generated %d record(s)", i+1, len(parsed.Records))
		result.Records = append(result.Records, parsed.Records...)
		result.Dropped = append(result.Dropped, parsed.Dropped...)
	}
	return result, nil
}

// traceUntraced fills empty trace fields when the batch held a single
// requirement. Otherwise the owner is unknown and the field stays empty.
func traceUntraced(tmpl domain.RecordTemplate, batch []domain.Requirement, records []domain.Record) {
	if tmpl.TraceField == "" {
		return
	}
	for i := range records {
		if records[i].Get(tmpl.TraceField) != "" {
			continue
		}
		if len(batch) == 1 {
			records[i].Set(tmpl.TraceField, batch[0].ID)
			continue
		}
		logger.Warn("record %s does not name its requirement; %s left empty",
			records[i].Get(tmpl.IdentityField), tmpl.TraceField)
	}
}
