package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const (
	DefaultOllamaBinary = "ollama"
	DefaultOllamaModel  = "deepseek-r1:7b"
)

// waitDelay bounds how long Wait blocks on output pipes after the process is killed.
const waitDelay = 5 * time.Second

// reasoning models emit their chain of thought before the answer
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// OllamaGenerator runs a local model through the ollama CLI, writing the prompt to stdin.
type OllamaGenerator struct {
	Binary string
	Model  string
}

// NewOllamaGenerator returns a generator for model, using the ollama binary on PATH when binary is empty.
func NewOllamaGenerator(binary, model string) *OllamaGenerator {
	if binary == "" {
		binary = DefaultOllamaBinary
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaGenerator{Binary: binary, Model: model}
}

// Generate runs `ollama run <model>` and returns its stdout. Cancellation of ctx kills the process.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, g.Binary, "run", g.Model)
	cmd.Stdin = strings.NewReader(prompt)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("ollama run %s: %w", g.Model, ctx.Err())
		}
		return "", fmt.Errorf("ollama run %s: %w: %s", g.Model, err, strings.TrimSpace(stderr.String()))
	}

	return thinkBlock.ReplaceAllString(stdout.String(), ""), nil
}
