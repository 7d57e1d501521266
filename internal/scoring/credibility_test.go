package scoring

import (
	"math"
	"strings"
	"testing"

	"newscollector/internal/core"
	"newscollector/internal/registry"
)

func TestSourceTrustByTier(t *testing.T) {
	s := NewCredibilityScorer(nil)
	tests := []struct {
		tier core.Tier
		want float64
	}{
		{core.TierWhitelist, 0.95},
		{core.Tier1, 0.85},
		{core.Tier2, 0.65},
		{core.Tier3, 0.40},
		{core.TierBlacklist, 0.0},
		{core.Tier("unknown"), 0.5},
	}
	for _, tt := range tests {
		a := core.Article{ID: "a", SourceTier: tt.tier}
		got := s.Score(&a, NewBatch(nil)).Credibility
		if got != tt.want {
			t.Errorf("tier %s: expected credibility %f, got %f", tt.tier, tt.want, got)
		}
	}
}

func TestSourceTrustPrefersRegistryBase(t *testing.T) {
	manifest := `
sources:
  alpha:
    name: Alpha
    base_url: https://alpha.example.com
    tier: tier3
    credibility_base_score: 92
`
	reg, err := registry.LoadBytes([]byte(manifest))
	if err != nil {
		t.Fatalf("LoadBytes failed: %v", err)
	}

	s := NewCredibilityScorer(reg)
	a := core.Article{ID: "a", SourceID: "alpha", SourceTier: core.Tier3}
	got := s.Score(&a, NewBatch(nil)).Credibility
	if got != 0.92 {
		t.Errorf("registry base should override the tier mapping: expected 0.92, got %f", got)
	}
}

func TestCrossSourceCorroboration(t *testing.T) {
	// Three articles sharing a story across three distinct sources, plus
	// one unrelated article from a fourth.
	batch := []core.Article{
		{ID: "a", SourceID: "s1", SourceTier: core.Tier2, Title: "government announces semiconductor investment plan"},
		{ID: "b", SourceID: "s2", SourceTier: core.Tier2, Title: "government announces semiconductor investment"},
		{ID: "c", SourceID: "s3", SourceTier: core.Tier2, Title: "government announces big semiconductor investment plan"},
		{ID: "d", SourceID: "s4", SourceTier: core.Tier2, Title: "local bakery wins pastry contest"},
	}
	agg := NewBatch(batch)
	s := NewCredibilityScorer(nil)

	for _, id := range []string{"a", "b", "c"} {
		var target *core.Article
		for i := range batch {
			if batch[i].ID == id {
				target = &batch[i]
			}
		}
		got := s.Score(target, agg).Credibility
		// tier2 base 0.65 + 0.05 for 2 corroborators
		if math.Abs(got-0.70) > 1e-9 {
			t.Errorf("article %s: expected 0.70, got %f", id, got)
		}
	}

	unrelated := s.Score(&batch[3], agg).Credibility
	if unrelated != 0.65 {
		t.Errorf("unrelated article should get no bonus: expected 0.65, got %f", unrelated)
	}
}

func TestCrossSourceBonusTiers(t *testing.T) {
	// Four same-story articles from four sources: each sees 3 corroborators.
	var batch []core.Article
	for _, src := range []string{"s1", "s2", "s3", "s4"} {
		batch = append(batch, core.Article{
			ID: src + "-a", SourceID: src, SourceTier: core.Tier2,
			Title: "central bank raises interest rates again",
		})
	}
	agg := NewBatch(batch)
	s := NewCredibilityScorer(nil)

	got := s.Score(&batch[0], agg).Credibility
	if got != 0.80 {
		t.Errorf("3 corroborators should add 0.15: expected 0.80, got %f", got)
	}
}

func TestShortTitleEarnsNoBonus(t *testing.T) {
	batch := []core.Article{
		{ID: "a", SourceID: "s1", SourceTier: core.Tier2, Title: "big news"},
		{ID: "b", SourceID: "s2", SourceTier: core.Tier2, Title: "big news"},
	}
	agg := NewBatch(batch)
	s := NewCredibilityScorer(nil)
	if got := s.Score(&batch[0], agg).Credibility; got != 0.65 {
		t.Errorf("titles under 3 words earn no bonus: expected 0.65, got %f", got)
	}
}

func TestEvidenceScore(t *testing.T) {
	if got := evidenceScore(""); got != 0.3 {
		t.Errorf("empty body should score 0.3, got %f", got)
	}

	rich := `정부 관계자는 "내년 예산이 12% 증가한다"고 밝혔다. 보고서에 따르면 투자 규모는 3조 원이다. 자세한 내용은 https://example.com/report 참고.`
	poor := "아무 근거 없는 짧은 글"
	if evidenceScore(rich) <= evidenceScore(poor) {
		t.Error("evidence-rich body should outscore an unsubstantiated one")
	}

	long := strings.Repeat("본문 내용이 이어집니다. ", 500)
	if got := evidenceScore(long); got > 1.0 {
		t.Errorf("evidence score must cap at 1.0, got %f", got)
	}
}

func TestSensationalismPenalty(t *testing.T) {
	if got := sensationalismPenalty("차분한 경제 기사 제목"); got != 0 {
		t.Errorf("neutral title should have no penalty, got %f", got)
	}

	got := sensationalismPenalty("[충격] 경악 폭탄 대박 역대급 발표!!!")
	if got <= 0.5 {
		t.Errorf("heavily sensational title should exceed 0.5, got %f", got)
	}
	if got > 1.0 {
		t.Errorf("penalty must cap at 1.0, got %f", got)
	}
}

func TestQualityClamped(t *testing.T) {
	s := NewCredibilityScorer(nil)
	a := core.Article{ID: "a", SourceTier: core.Tier2, Title: "[충격] 경악 폭탄 대박!!!", Body: ""}
	r := s.Score(&a, NewBatch(nil))
	if r.Quality < 0 || r.Quality > 1 {
		t.Errorf("quality out of range: %f", r.Quality)
	}
}
