// Package evaluation scores textual agent output against named criteria and
// keeps an append-only history of every evaluation performed.
//
// The scoring function is a deliberate length-based heuristic
// (min(len(output)/1000, 1.0) per criterion) standing in for a model-backed
// judge. The contract that matters to callers is shape and determinism:
// the same output and criteria always produce the same scores.
package evaluation

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"
)

// snippetLen caps the output excerpt kept in history records.
const snippetLen = 100

// Evaluation is a single scored output. CriteriaScores maps each criterion
// name to its [0,1] score; OverallScore is the arithmetic mean across
// criteria, or 0.0 when no criteria were supplied.
type Evaluation struct {
	Output         string             `json:"output"`
	CriteriaScores map[string]float64 `json:"criteria_scores"`
	OverallScore   float64            `json:"overall_score"`
	Timestamp      time.Time          `json:"timestamp"`
}

// BatchResult aggregates independent evaluations of several outputs.
type BatchResult struct {
	Evaluations  []Evaluation `json:"evaluations"`
	AverageScore float64      `json:"average_score"`
}

// Engine evaluates outputs and accumulates history. Safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	history []Evaluation
}

// NewEngine constructs an Engine with empty history.
func NewEngine() *Engine {
	return &Engine{}
}

// EvaluateOutput scores output against each criterion. Criteria map names to
// human-readable descriptions; the descriptions are documentation only and do
// not influence the score. The evaluation is appended to history and returned.
func (e *Engine) EvaluateOutput(output string, criteria map[string]string) Evaluation {
	eval := Evaluation{
		Output:         snippet(output),
		CriteriaScores: make(map[string]float64, len(criteria)),
		Timestamp:      time.Now(),
	}

	if len(criteria) > 0 {
		total := 0.0
		for name := range criteria {
			score := float64(len(output)) / 1000.0
			if score > 1.0 {
				score = 1.0
			}
			eval.CriteriaScores[name] = score
			total += score
		}
		eval.OverallScore = total / float64(len(criteria))
	}

	e.mu.Lock()
	e.history = append(e.history, eval)
	e.mu.Unlock()

	return eval
}

// BatchEvaluate scores each output independently against the same criteria
// and reports the mean overall score (0.0 for an empty batch).
func (e *Engine) BatchEvaluate(outputs []string, criteria map[string]string) BatchResult {
	result := BatchResult{Evaluations: make([]Evaluation, 0, len(outputs))}
	for _, output := range outputs {
		result.Evaluations = append(result.Evaluations, e.EvaluateOutput(output, criteria))
	}
	if len(result.Evaluations) > 0 {
		total := 0.0
		for _, eval := range result.Evaluations {
			total += eval.OverallScore
		}
		result.AverageScore = total / float64(len(result.Evaluations))
	}
	return result
}

// History returns a copy of the full evaluation history in append order.
func (e *Engine) History() []Evaluation {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]Evaluation, len(e.history))
	copy(cp, e.history)
	return cp
}

// Report renders a one-line human-readable summary of all evaluations so far.
func (e *Engine) Report() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.history) == 0 {
		return "No evaluations performed yet."
	}
	total := 0.0
	for _, eval := range e.history {
		total += eval.OverallScore
	}
	avg := total / float64(len(e.history))
	return fmt.Sprintf("Evaluations: %d, Average Score: %.2f", len(e.history), avg)
}

// snippet truncates the output to snippetLen bytes, backing off to a rune
// boundary so a multi-byte rune is never split.
func snippet(output string) string {
	if len(output) <= snippetLen {
		return output
	}
	n := snippetLen
	for n > 0 && !utf8.RuneStart(output[n]) {
		n--
	}
	return output[:n] + "..."
}
