package tool

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spinlab/coach/agent/store"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"

	NoPerformanceMessage = "Nenhum dado de performance encontrado. Complete sessões de roleplay ou tenha reuniões avaliadas para gerar o resumo."

	sourceSummary  = "summary"
	sourceComputed = "computed"
)

// AggregationPolicy holds the thresholds used when the performance summary
// is recomputed from raw evaluations.
type AggregationPolicy struct {
	// Scores above ScaleThreshold are on a 0-100 scale and get divided by ScaleDivisor.
	ScaleThreshold float64 `split_words:"true" default:"10"`
	ScaleDivisor   float64 `split_words:"true" default:"10"`
	TrendThreshold float64 `split_words:"true" default:"0.5"`
	TrendWindow    int     `split_words:"true" default:"3"`
	PhraseWindow   int     `split_words:"true" default:"5"`
	PhraseLimit    int     `split_words:"true" default:"5"`
}

func DefaultAggregationPolicy() AggregationPolicy {
	return AggregationPolicy{
		ScaleThreshold: 10,
		ScaleDivisor:   10,
		TrendThreshold: 0.5,
		TrendWindow:    3,
		PhraseWindow:   5,
		PhraseLimit:    5,
	}
}

// withDefaults replaces unset or unusable fields with the default values.
func (p AggregationPolicy) withDefaults() AggregationPolicy {
	def := DefaultAggregationPolicy()
	if p.ScaleThreshold <= 0 {
		p.ScaleThreshold = def.ScaleThreshold
	}
	if p.ScaleDivisor <= 0 {
		p.ScaleDivisor = def.ScaleDivisor
	}
	if p.TrendThreshold < 0 {
		p.TrendThreshold = def.TrendThreshold
	}
	if p.TrendWindow < 3 {
		p.TrendWindow = def.TrendWindow
	}
	if p.PhraseWindow <= 0 {
		p.PhraseWindow = def.PhraseWindow
	}
	if p.PhraseLimit <= 0 {
		p.PhraseLimit = def.PhraseLimit
	}
	return p
}

func NormalizeScore(score float64) float64 {
	return DefaultAggregationPolicy().Normalize(score)
}

func ClassifyTrend(newestFirst []float64) string {
	return DefaultAggregationPolicy().Trend(newestFirst)
}

func RankPhrases(lists [][]string, limit int) []string {
	return rankPhrases(lists, limit)
}

// Normalize maps a score onto 0-10. Values already in range are unchanged,
// so applying it twice is the same as applying it once.
func (p AggregationPolicy) Normalize(score float64) float64 {
	if score > p.ScaleThreshold && p.ScaleDivisor > 0 {
		return score / p.ScaleDivisor
	}
	return score
}

// Trend compares the mean of the two newest scores with the third newest.
// Differences of exactly TrendThreshold are stable.
func (p AggregationPolicy) Trend(newestFirst []float64) string {
	window := p.TrendWindow
	if window < 3 {
		window = 3
	}
	if len(newestFirst) < window {
		return TrendStable
	}
	a, b, c := newestFirst[0], newestFirst[1], newestFirst[2]
	delta := round((a+b)/2-c, 6)
	switch {
	case delta > p.TrendThreshold:
		return TrendImproving
	case delta < -p.TrendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// rankPhrases counts phrases case-insensitively and returns the most frequent
// ones, keeping the spelling seen first. Ties keep first-seen order.
func rankPhrases(lists [][]string, limit int) []string {
	type entry struct {
		text  string
		count int
		first int
	}
	byKey := map[string]*entry{}
	order := 0
	for _, list := range lists {
		for _, phrase := range list {
			text := strings.TrimSpace(phrase)
			if text == "" {
				continue
			}
			key := strings.ToLower(text)
			if e, ok := byKey[key]; ok {
				e.count++
				continue
			}
			byKey[key] = &entry{text: text, count: 1, first: order}
			order++
		}
	}

	entries := make([]*entry, 0, len(byKey))
	for _, e := range byKey {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].first < entries[j].first
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.text)
	}
	return out
}

type evaluationSample struct {
	at        time.Time
	score     float64
	spin      *SpinAverages
	strengths []string
	gaps      []string
	meet      bool
}

func (p AggregationPolicy) normalizeSpin(s store.SpinScores) SpinAverages {
	return SpinAverages{
		Situation:   p.Normalize(s.Situation),
		Problem:     p.Normalize(s.Problem),
		Implication: p.Normalize(s.Implication),
		NeedPayoff:  p.Normalize(s.NeedPayoff),
	}
}

// samples merges evaluated roleplay sessions and meet evaluations, newest first.
func (p AggregationPolicy) samples(sessions []store.RoleplaySession, meets []store.MeetEvaluation) []evaluationSample {
	out := make([]evaluationSample, 0, len(sessions)+len(meets))
	for _, s := range sessions {
		if s.Evaluation == nil {
			continue
		}
		at := s.CreatedAt
		if s.EndedAt != nil {
			at = *s.EndedAt
		}
		spin := p.normalizeSpin(s.Evaluation.Spin)
		out = append(out, evaluationSample{
			at:        at,
			score:     p.Normalize(s.Evaluation.OverallScore),
			spin:      &spin,
			strengths: s.Evaluation.TopStrengths,
			gaps:      s.Evaluation.CriticalGaps,
		})
	}
	for _, m := range meets {
		spin := p.normalizeSpin(m.Spin())
		out = append(out, evaluationSample{
			at:        m.CreatedAt,
			score:     p.Normalize(m.OverallScore),
			spin:      &spin,
			strengths: m.Strengths,
			gaps:      m.Gaps,
			meet:      true,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.After(out[j].at) })
	return out
}

// Summarize recomputes the summary from raw evaluations. ok is false when
// there is nothing to summarize.
func (p AggregationPolicy) Summarize(sessions []store.RoleplaySession, meets []store.MeetEvaluation) (PerformanceSummaryPayload, bool) {
	samples := p.samples(sessions, meets)
	if len(samples) == 0 {
		return PerformanceSummaryPayload{}, false
	}

	out := PerformanceSummaryPayload{
		Source:       sourceComputed,
		TopStrengths: []string{},
		CriticalGaps: []string{},
	}

	var (
		sum       float64
		spinSum   SpinAverages
		spinCount int
		scores    = make([]float64, 0, len(samples))
	)
	for i, s := range samples {
		if s.meet {
			out.TotalMeetEvaluations++
		} else {
			out.TotalSessions++
		}
		sum += s.score
		scores = append(scores, s.score)
		if i == 0 || s.score > out.BestScore {
			out.BestScore = s.score
		}
		if s.spin != nil {
			spinSum.Situation += s.spin.Situation
			spinSum.Problem += s.spin.Problem
			spinSum.Implication += s.spin.Implication
			spinSum.NeedPayoff += s.spin.NeedPayoff
			spinCount++
		}
	}

	out.OverallAverage = round(sum/float64(len(samples)), 1)
	out.BestScore = round(out.BestScore, 1)
	out.LastScore = round(samples[0].score, 1)
	if spinCount > 0 {
		n := float64(spinCount)
		out.Spin = SpinAverages{
			Situation:   round(spinSum.Situation/n, 1),
			Problem:     round(spinSum.Problem/n, 1),
			Implication: round(spinSum.Implication/n, 1),
			NeedPayoff:  round(spinSum.NeedPayoff/n, 1),
		}
	}
	out.Trend = p.Trend(scores)

	recent := samples
	if p.PhraseWindow > 0 && len(recent) > p.PhraseWindow {
		recent = recent[:p.PhraseWindow]
	}
	strengths := make([][]string, 0, len(recent))
	gaps := make([][]string, 0, len(recent))
	for _, s := range recent {
		strengths = append(strengths, s.strengths)
		gaps = append(gaps, s.gaps)
	}
	out.TopStrengths = rankPhrases(strengths, p.PhraseLimit)
	out.CriticalGaps = rankPhrases(gaps, p.PhraseLimit)

	return out, true
}

// FromStored converts the precomputed summary row.
func (p AggregationPolicy) FromStored(row *store.PerformanceSummary) PerformanceSummaryPayload {
	trend := row.Trend
	switch trend {
	case TrendImproving, TrendDeclining, TrendStable:
	default:
		trend = TrendStable
	}
	out := PerformanceSummaryPayload{
		Source:         sourceSummary,
		TotalSessions:  row.TotalSessions,
		OverallAverage: round(p.Normalize(row.OverallAverage), 1),
		BestScore:      round(p.Normalize(row.BestScore), 1),
		LastScore:      round(p.Normalize(row.LastScore), 1),
		Spin: SpinAverages{
			Situation:   round(p.Normalize(row.SpinSituation), 1),
			Problem:     round(p.Normalize(row.SpinProblem), 1),
			Implication: round(p.Normalize(row.SpinImplic), 1),
			NeedPayoff:  round(p.Normalize(row.SpinNeedPayoff), 1),
		},
		TopStrengths: nonNil(row.TopStrengths),
		CriticalGaps: nonNil(row.CriticalGaps),
		Trend:        trend,
	}
	if !row.UpdatedAt.IsZero() {
		out.UpdatedAt = row.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

var spinLabels = [4]string{"Situação", "Problema", "Implicação", "Necessidade de solução"}

// spinExtremes names the strongest and weakest SPIN dimensions.
func spinExtremes(avg SpinAverages) (strongest, weakest string) {
	values := [4]float64{avg.Situation, avg.Problem, avg.Implication, avg.NeedPayoff}
	hi, lo := 0, 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[hi] {
			hi = i
		}
		if values[i] < values[lo] {
			lo = i
		}
	}
	return spinLabels[hi], spinLabels[lo]
}

func round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
