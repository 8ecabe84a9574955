package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Vincent-Xiao/rust-bert/generate"
)

// newGenerateCmd creates the generate command. Every flag defaults to
// the reference decoding configuration.
func newGenerateCmd() *cobra.Command {
	cfg := generate.DefaultGenerateConfig()

	cmd := &cobra.Command{
		Use:   "generate [PROMPT...]",
		Short: "Generate text continuations for prompts",
		Long: `Generate text continuations for prompts using a built-in demo model.

Without prompts, generation starts from the beginning-of-sequence token.`,
		RunE: func(_ *cobra.Command, args []string) error {
			return runGenerate(cfg, args)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&cfg.MinLength, "min-length", cfg.MinLength, "Minimum total sequence length in tokens")
	flags.IntVar(&cfg.MaxLength, "max-length", cfg.MaxLength, "Maximum total sequence length in tokens")
	flags.BoolVar(&cfg.DoSample, "sample", cfg.DoSample, "Sample stochastically instead of decoding greedily")
	flags.BoolVar(&cfg.EarlyStopping, "early-stopping", cfg.EarlyStopping, "Stop beam search once enough hypotheses are complete")
	flags.IntVar(&cfg.NumBeams, "num-beams", cfg.NumBeams, "Number of beams (1 disables beam search)")
	flags.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	flags.IntVar(&cfg.TopK, "top-k", cfg.TopK, "Keep only the K highest-scoring tokens (0 disables)")
	flags.Float64Var(&cfg.TopP, "top-p", cfg.TopP, "Nucleus sampling probability mass (1 disables)")
	flags.Float64Var(&cfg.RepetitionPenalty, "repetition-penalty", cfg.RepetitionPenalty, "Penalty for already generated tokens (1 disables)")
	flags.Float64Var(&cfg.LengthPenalty, "length-penalty", cfg.LengthPenalty, "Exponent normalizing beam scores by length")
	flags.IntVar(&cfg.NoRepeatNgramSize, "no-repeat-ngram-size", cfg.NoRepeatNgramSize, "Ban repeating n-grams of this size (0 disables)")
	flags.IntVar(&cfg.NumReturnSequences, "num-return-sequences", cfg.NumReturnSequences, "Sequences returned per prompt")
	flags.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Sampling seed (-1 for nondeterministic)")

	return cmd
}

// runGenerate wires the demo model into a text generator and decodes
// every prompt, reporting progress on stderr.
func runGenerate(cfg generate.GenerateConfig, prompts []string) error {
	logger := slog.With("run_id", uuid.NewString())
	logger.Info("starting generation",
		"prompts", len(prompts),
		"sample", cfg.DoSample,
		"num_beams", cfg.NumBeams,
		"max_length", cfg.MaxLength)

	tok := newDemoTokenizer()
	gen, err := generate.NewTextGenerator(newDemoModel(tok), tok, cfg)
	if err != nil {
		return err
	}

	start := time.Now()

	if len(prompts) == 0 {
		outputs, err := gen.Generate(nil)
		if err != nil {
			return err
		}
		printOutputs("", outputs)
		logger.Info("generation complete", "outputs", len(outputs), "duration", time.Since(start))
		return nil
	}

	bar := progressbar.Default(int64(len(prompts)), "generating")
	results := make([][]string, len(prompts))
	for i, prompt := range prompts {
		outputs, err := gen.Generate([]string{prompt})
		if err != nil {
			return fmt.Errorf("generate prompt %d: %w", i+1, err)
		}
		results[i] = outputs
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	total := 0
	for i, prompt := range prompts {
		printOutputs(prompt, results[i])
		total += len(results[i])
	}
	logger.Info("generation complete", "outputs", total, "duration", time.Since(start))
	return nil
}

func printOutputs(prompt string, outputs []string) {
	if prompt != "" {
		fmt.Printf("> %s\n", prompt)
	}
	for _, text := range outputs {
		fmt.Printf("  %s\n", text)
	}
}
