// Package interview runs the mock interview: questions from a resume, a score
// per answer and a closing summary.
package interview

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"github.com/arunjadaun2002/FlyPrep/internal/domain"
)

const (
	TypeTechnical      = "technical"
	TypeExperience     = "experience"
	TypeProblemSolving = "problem-solving"

	MaxScore = 10
)

type Question struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Type     string `json:"type"`
}

type Feedback struct {
	Strengths   []string `json:"strengths"`
	Areas       []string `json:"areas"`
	Suggestions string   `json:"suggestions"`
}

type Analysis struct {
	Score    int      `json:"score"`
	Feedback Feedback `json:"feedback"`
}

type Summary struct {
	TotalQuestions  int      `json:"totalQuestions"`
	AverageScore    float64  `json:"averageScore"`
	Strengths       []string `json:"strengths"`
	Areas           []string `json:"areas"`
	Recommendations []string `json:"recommendations"`
}

// Oracle scores interview answers. The heuristic one below is deterministic;
// a model-backed one can replace it behind this interface.
type Oracle interface {
	GenerateQuestions(ctx context.Context, resume Resume) ([]Question, error)
	Analyze(ctx context.Context, question, answer string) (Analysis, error)
	Summarize(ctx context.Context, results []Analysis) (Summary, error)
}

var skills = []string{
	"react", "angular", "vue", "javascript", "typescript", "node", "go", "golang",
	"python", "java", "c++", "sql", "postgres", "mongodb", "docker", "kubernetes",
	"aws", "gcp", "azure", "machine learning", "data structures", "rest", "graphql",
}

var (
	wordRe    = regexp.MustCompile(`[\p{L}\p{N}+#']+`)
	numberRe  = regexp.MustCompile(`\d`)
	exampleRe = regexp.MustCompile(`(?i)\b(for example|for instance|such as|i built|i led|i implemented|we built|in my last|at my previous)\b`)
	resultRe  = regexp.MustCompile(`(?i)\b(result|improved|reduced|increased|delivered|learned|impact)\w*`)
)

type HeuristicOracle struct {
	questionCount int
}

func NewHeuristicOracle(questionCount int) *HeuristicOracle {
	if questionCount < 3 {
		questionCount = 3
	}
	return &HeuristicOracle{questionCount: questionCount}
}

// GenerateQuestions asks about skills found in the resume text and always
// ends with one experience and one problem-solving question.
func (o *HeuristicOracle) GenerateQuestions(ctx context.Context, resume Resume) ([]Question, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found := detectSkills(resume.Text)
	technical := o.questionCount - 2

	prompts := make([]Question, 0, o.questionCount)
	for i := 0; i < technical; i++ {
		q := "Walk me through the technology you are strongest in and a hard bug you fixed with it."
		if i < len(found) {
			q = fmt.Sprintf("Can you tell me more about your experience with %s?", displaySkill(found[i]))
		} else if i > 0 {
			q = "How do you keep your technical skills current?"
		}
		prompts = append(prompts, Question{Type: TypeTechnical, Question: q})
	}
	prompts = append(prompts,
		Question{Type: TypeExperience, Question: "What was your role in the most significant project on your resume?"},
		Question{Type: TypeProblemSolving, Question: "Describe a performance or reliability problem you handled and how you approached it."},
	)
	for i := range prompts {
		prompts[i].ID = i + 1
	}
	return prompts, nil
}

func detectSkills(text string) []string {
	lower := " " + strings.ToLower(text) + " "
	found := lo.Filter(skills, func(s string, _ int) bool { return containsWord(lower, s) })
	return lo.UniqBy(found, displaySkill)
}

// containsWord reports whether w occurs in padded text as a whole word.
func containsWord(padded, w string) bool {
	for from := 0; ; {
		idx := strings.Index(padded[from:], w)
		if idx < 0 {
			return false
		}
		idx += from
		if !isWordByte(padded[idx-1]) && !isWordByte(padded[idx+len(w)]) {
			return true
		}
		from = idx + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

func displaySkill(s string) string {
	switch s {
	case "aws", "gcp", "sql", "rest":
		return strings.ToUpper(s)
	case "graphql":
		return "GraphQL"
	case "javascript":
		return "JavaScript"
	case "typescript":
		return "TypeScript"
	case "golang", "go":
		return "Go"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Analyze scores an answer on length, concrete examples, measurable results,
// structure and how much of the question it addresses.
func (o *HeuristicOracle) Analyze(ctx context.Context, question, answer string) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	if strings.TrimSpace(question) == "" {
		return Analysis{}, fmt.Errorf("%w: question is required", domain.ErrInvalidInput)
	}
	words := wordRe.FindAllString(strings.ToLower(answer), -1)
	if len(words) == 0 {
		return Analysis{
			Score: 0,
			Feedback: Feedback{
				Strengths:   []string{},
				Areas:       []string{"No answer was given"},
				Suggestions: "Answer every question, even briefly, and build from there.",
			},
		}, nil
	}

	var (
		score     int
		strengths []string
		areas     []string
	)

	switch n := len(words); {
	case n >= 80:
		score += 3
		strengths = append(strengths, "Thorough answer")
	case n >= 40:
		score += 2
		strengths = append(strengths, "Clear communication")
	case n >= 15:
		score++
		areas = append(areas, "Could elaborate further")
	default:
		areas = append(areas, "Answer is too short")
	}

	if exampleRe.MatchString(answer) {
		score += 2
		strengths = append(strengths, "Uses concrete examples")
	} else {
		areas = append(areas, "Could provide more specific examples")
	}

	if numberRe.MatchString(answer) || resultRe.MatchString(answer) {
		score += 2
		strengths = append(strengths, "Talks about outcomes")
	} else {
		areas = append(areas, "Mention the results or impact of your work")
	}

	if sentences := countSentences(answer); sentences >= 3 {
		score++
		strengths = append(strengths, "Well structured")
	} else {
		areas = append(areas, "Consider structuring the answer (situation, action, result)")
	}

	if overlap := keywordOverlap(question, words); overlap >= 0.3 {
		score += 2
		strengths = append(strengths, "Stays on topic")
	} else {
		areas = append(areas, "Address the question more directly")
	}

	score = min(score, MaxScore)
	return Analysis{
		Score: score,
		Feedback: Feedback{
			Strengths:   lo.Ternary(strengths == nil, []string{}, strengths),
			Areas:       lo.Ternary(areas == nil, []string{}, areas),
			Suggestions: suggestionFor(areas),
		},
	}, nil
}

func countSentences(s string) int {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	return len(lo.Filter(parts, func(p string, _ int) bool { return strings.TrimSpace(p) != "" }))
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "to": {}, "of": {}, "in": {}, "on": {},
	"you": {}, "your": {}, "me": {}, "about": {}, "can": {}, "what": {}, "how": {}, "did": {},
	"do": {}, "with": {}, "tell": {}, "more": {}, "was": {}, "is": {}, "it": {}, "for": {},
}

func keywordOverlap(question string, answerWords []string) float64 {
	keys := lo.Uniq(lo.Filter(wordRe.FindAllString(strings.ToLower(question), -1), func(w string, _ int) bool {
		_, stop := stopWords[w]
		return !stop && len(w) > 2
	}))
	if len(keys) == 0 {
		return 1
	}
	set := lo.SliceToMap(answerWords, func(w string) (string, struct{}) { return w, struct{}{} })
	hits := lo.CountBy(keys, func(k string) bool {
		_, ok := set[k]
		return ok
	})
	return float64(hits) / float64(len(keys))
}

func suggestionFor(areas []string) string {
	if len(areas) == 0 {
		return "Strong answer. Keep the same structure in the next ones."
	}
	return "Focus next on: " + strings.ToLower(areas[0]) + "."
}

// Summarize aggregates analyses into the closing report.
func (o *HeuristicOracle) Summarize(ctx context.Context, results []Analysis) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	if len(results) == 0 {
		return Summary{}, fmt.Errorf("%w: results are required", domain.ErrInvalidInput)
	}
	for _, r := range results {
		if r.Score < 0 || r.Score > MaxScore {
			return Summary{}, fmt.Errorf("%w: score %d out of range", domain.ErrInvalidInput, r.Score)
		}
	}

	total := lo.SumBy(results, func(r Analysis) int { return r.Score })
	avg := math.Round(float64(total)/float64(len(results))*10) / 10

	strengths := topN(lo.FlatMap(results, func(r Analysis, _ int) []string { return r.Feedback.Strengths }), 3)
	areas := topN(lo.FlatMap(results, func(r Analysis, _ int) []string { return r.Feedback.Areas }), 3)

	recs := lo.Map(areas, func(a string, _ int) string { return recommendationFor(a) })
	if avg < 5 {
		recs = append(recs, "Practice with more mock interviews before the real one")
	}
	if len(recs) == 0 {
		recs = append(recs, "Keep practicing to stay sharp")
	}

	return Summary{
		TotalQuestions:  len(results),
		AverageScore:    avg,
		Strengths:       strengths,
		Areas:           areas,
		Recommendations: lo.Uniq(recs),
	}, nil
}

// topN returns the most frequent entries, ties broken by first appearance.
func topN(items []string, n int) []string {
	counts := lo.CountValues(items)
	uniq := lo.Uniq(items)
	out := make([]string, 0, n)
	for len(out) < n && len(uniq) > 0 {
		best := lo.MaxBy(uniq, func(a, b string) bool { return counts[a] > counts[b] })
		out = append(out, best)
		uniq = lo.Without(uniq, best)
	}
	return out
}

func recommendationFor(area string) string {
	switch {
	case strings.Contains(area, "example"):
		return "Work on providing concrete examples"
	case strings.Contains(area, "result"):
		return "Quantify the outcome of your work"
	case strings.Contains(area, "structur"):
		return "Use the STAR format for behavioural answers"
	case strings.Contains(area, "short"), strings.Contains(area, "elaborate"):
		return "Give fuller answers of one to two minutes"
	case strings.Contains(area, "directly"):
		return "Answer the question asked before adding context"
	default:
		return "Review: " + area
	}
}
