// Package cli implements the interactive terminal driver: it collects the
// cohort size and per-track popularity scores and renders forecasts.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/okian/cutoffs/internal/domain/prediction"
	"github.com/okian/cutoffs/internal/domain/reference"
)

// Prompter asks for input line by line and re-prompts until each answer is
// valid.
type Prompter struct {
	in        *bufio.Scanner
	out       io.Writer
	minCohort int
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithMinCohortSize sets the smallest accepted cohort size.
func WithMinCohortSize(n int) Option {
	return func(p *Prompter) {
		if n > 0 {
			p.minCohort = n
		}
	}
}

// NewPrompter reads answers from r and writes prompts to w.
func NewPrompter(r io.Reader, w io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		in:        bufio.NewScanner(r),
		out:       w,
		minCohort: prediction.MinCohortSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Answers holds what the operator entered.
type Answers struct {
	CohortSize int
	Popularity []float64
}

// Collect asks for the cohort size and then one popularity score per track.
func (p *Prompter) Collect(ctx context.Context, tracks []reference.Track, year int) (Answers, error) {
	fmt.Fprintln(p.out, "\n--- Engineering GPA Cutoff Predictor ---")

	n, err := p.CohortSize(ctx)
	if err != nil {
		return Answers{}, err
	}
	pop, err := p.Popularity(ctx, tracks, year)
	if err != nil {
		return Answers{}, err
	}
	return Answers{CohortSize: n, Popularity: pop}, nil
}

// CohortSize asks for a whole number no smaller than the minimum intake.
func (p *Prompter) CohortSize(ctx context.Context) (int, error) {
	for {
		line, err := p.ask(ctx, fmt.Sprintf("Enter total cohort size (minimum %d): ", p.minCohort))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(p.out, "Invalid input. Please enter a whole number.")
			continue
		}
		if err := prediction.CheckCohortSize(n, p.minCohort); err != nil {
			fmt.Fprintf(p.out, "Cohort size must be at least %d.\n", p.minCohort)
			continue
		}
		return n, nil
	}
}

// Popularity asks for one score per track, in track order.
func (p *Prompter) Popularity(ctx context.Context, tracks []reference.Track, year int) ([]float64, error) {
	fmt.Fprintf(p.out, "\nEnter your perceived popularity score (%g-%g) for each specialisation in %d:\n",
		reference.MinPopularity, reference.MaxPopularity, year)

	out := make([]float64, 0, len(tracks))
	for _, tr := range tracks {
		v, err := p.score(ctx, tr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (p *Prompter) score(ctx context.Context, tr reference.Track) (float64, error) {
	for {
		line, err := p.ask(ctx, fmt.Sprintf("Popularity score for %s: ", tr))
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			fmt.Fprintf(p.out, "Invalid input. Please enter a number between %g and %g.\n",
				reference.MinPopularity, reference.MaxPopularity)
			continue
		}
		if err := prediction.CheckPopularity(v); err != nil {
			fmt.Fprintf(p.out, "Score must be between %g and %g.\n",
				reference.MinPopularity, reference.MaxPopularity)
			continue
		}
		return v, nil
	}
}

func (p *Prompter) ask(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", ErrInputClosed, err)
		}
		return "", ErrInputClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// ParsePopularity parses a comma separated list of scores, one per track.
func ParsePopularity(s string, tracks int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != tracks {
		return nil, fmt.Errorf("%w: got %d popularity scores for %d tracks", prediction.ErrInvalidInput, len(parts), tracks)
	}
	out := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: popularity[%d] %q is not a number", prediction.ErrInvalidInput, i, part)
		}
		if err := prediction.CheckPopularity(v); err != nil {
			return nil, fmt.Errorf("popularity[%d]: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
