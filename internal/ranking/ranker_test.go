package ranking

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"newscollector/internal/core"
)

var testClock = func() time.Time {
	return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
}

func newTestRanker() *Ranker {
	return New(nil, Options{Clock: testClock})
}

// cleanArticle builds an article wholesome enough to pass the policy filter.
func cleanArticle(id, sourceID, title string, published time.Time) core.Article {
	return core.Article{
		ID:         id,
		SourceID:   sourceID,
		SourceName: sourceID,
		SourceTier: core.Tier1,
		Title:      title,
		Body: title + " 관련 내용이 이어진다.\n" +
			title + " 두 번째 문단에서도 흐름이 이어진다.",
		URL:         "https://" + sourceID + ".example.com/" + id,
		PublishedAt: published,
	}
}

func TestPresetWeightsSumToOne(t *testing.T) {
	for _, preset := range []string{"quality", "trending", "credible", "latest", "unknown"} {
		w := PresetWeights(preset)
		sum := w.Popularity + w.Relevance + w.Quality + w.Credibility
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("preset %s weights sum to %f", preset, sum)
		}
	}
}

func TestRankPositionsAndScoreBounds(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	var articles []core.Article
	for i := 0; i < 6; i++ {
		articles = append(articles, cleanArticle(
			fmt.Sprintf("a%d", i), fmt.Sprintf("s%d", i),
			fmt.Sprintf("정부 정책 발표 내용 정리 %d", i),
			now.Add(-time.Duration(i)*time.Hour),
		))
	}

	for _, preset := range []string{"quality", "trending", "credible", "latest"} {
		got := r.Rank(articles, preset, 10, nil)
		for i, a := range got {
			if a.RankPosition != i+1 {
				t.Errorf("preset %s: rank position %d at index %d", preset, a.RankPosition, i)
			}
			if a.FinalScore < 0 || a.FinalScore > 100 {
				t.Errorf("preset %s: final score out of range: %f", preset, a.FinalScore)
			}
		}
	}
}

func TestRankRespectsLimit(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	var articles []core.Article
	for i := 0; i < 8; i++ {
		articles = append(articles, cleanArticle(
			fmt.Sprintf("a%d", i), fmt.Sprintf("s%d", i),
			fmt.Sprintf("완전히 다른 주제 기사 번호 %d", i),
			now.Add(-time.Duration(i)*time.Hour),
		))
	}

	got := r.Rank(articles, "quality", 3, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
}

func TestRankEmptyBatch(t *testing.T) {
	r := newTestRanker()
	if got := r.Rank(nil, "quality", 10, nil); got != nil {
		t.Errorf("empty batch should rank to nil, got %v", got)
	}
}

func TestLatestPresetOrdersByPublishedAt(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	// Five articles spanning a week, deliberately shuffled.
	offsets := []int{3, 0, 6, 1, 5}
	var articles []core.Article
	for i, days := range offsets {
		articles = append(articles, cleanArticle(
			fmt.Sprintf("a%d", i), fmt.Sprintf("s%d", i),
			fmt.Sprintf("주간 이슈 정리 기사 %d", i),
			now.AddDate(0, 0, -days),
		))
	}

	got := r.Rank(articles, "latest", 10, nil)
	for i := 1; i < len(got); i++ {
		if got[i-1].PublishedAt.Before(got[i].PublishedAt) {
			t.Fatalf("latest preset must order by published_at descending, position %d", i)
		}
	}
	// Scores are still computed even though ordering ignores them.
	for _, a := range got {
		if a.FinalScore == 0 {
			t.Errorf("final score should be computed for %s", a.ID)
		}
	}
}

func TestLatestPresetNilTimestampsLast(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	articles := []core.Article{
		cleanArticle("dated", "s1", "시간 정보가 있는 기사 제목", now),
		cleanArticle("undated", "s2", "시간 정보가 없는 기사 제목", time.Time{}),
	}

	got := r.Rank(articles, "latest", 10, nil)
	if len(got) != 2 || got[len(got)-1].ID != "undated" {
		t.Fatalf("articles without a timestamp must sort last, got %v", ids(got))
	}
}

func TestPolicyDropsSpam(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	spam := core.Article{
		ID: "spam", SourceID: "s1", SourceTier: core.Tier1,
		Title: "[충격] 클릭 하세요",
		Body: strings.Repeat("클릭 지금구매 특가 할인 카지노 광고. ", 4) +
			"클릭 지금구매 특가 할인 카지노 광고.",
		URL:         "https://s1.example.com/spam",
		PublishedAt: now,
	}
	clean := cleanArticle("ok", "s2", "정책 브리핑 결과 발표 정리", now)

	got := r.Rank([]core.Article{spam, clean}, "quality", 10, nil)
	for _, a := range got {
		if a.ID == "spam" {
			t.Error("spam article must be dropped by the policy filter")
		}
	}
}

func TestPolicyFlagsSuspiciousCredibility(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	weak := cleanArticle("weak", "s1", "소규모 매체의 단신 기사 내용", now)
	weak.SourceTier = core.Tier3 // trust 0.40, below the 0.6 threshold

	got := r.Rank([]core.Article{weak}, "quality", 10, nil)
	if len(got) != 1 {
		t.Fatalf("low credibility keeps the article, got %d results", len(got))
	}
	if !contains(got[0].PolicyFlags, FlagSuspiciousCredibility) {
		t.Errorf("expected %s flag, got %v", FlagSuspiciousCredibility, got[0].PolicyFlags)
	}
}

func TestDiversityCap(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	var articles []core.Article
	for i := 0; i < 6; i++ {
		articles = append(articles, cleanArticle(
			fmt.Sprintf("a%d", i), "single_source",
			fmt.Sprintf("완전히 서로 다른 기사 주제 %d", i),
			now.Add(-time.Duration(i)*time.Minute),
		))
	}
	other := cleanArticle("b", "other_source", "다른 소스의 기사 제목 하나", now)
	articles = append(articles, other)

	got := r.Rank(articles, "quality", 10, nil)
	counts := map[string]int{}
	for _, a := range got {
		counts[a.SourceID]++
	}
	if counts["single_source"] > 3 {
		t.Errorf("diversity cap exceeded: %d from one source", counts["single_source"])
	}
	if counts["other_source"] != 1 {
		t.Errorf("the other source's article should survive, got %d", counts["other_source"])
	}
}

func TestDiversityFallsBackToSourceName(t *testing.T) {
	r := newTestRanker()
	now := testClock()

	// Six articles all tagged with the aggregator's source id but three
	// distinct publisher names, two each.
	names := []string{"paper-a", "paper-a", "paper-b", "paper-b", "paper-c", "paper-c"}
	var articles []core.Article
	for i, name := range names {
		a := cleanArticle(fmt.Sprintf("a%d", i), "aggregator",
			fmt.Sprintf("서로 전혀 겹치지 않는 이야기 %d", i),
			now.Add(-time.Duration(i)*time.Minute))
		a.SourceName = name
		articles = append(articles, a)
	}

	got := r.Rank(articles, "quality", 10, nil)
	if len(got) != 6 {
		t.Fatalf("two per name is under the cap of 3; expected all 6, got %d", len(got))
	}
	counts := map[string]int{}
	for _, a := range got {
		counts[a.SourceName]++
	}
	for name, n := range counts {
		if n > 3 {
			t.Errorf("per-name cap exceeded for %s: %d", name, n)
		}
	}
}

func TestRankDeterministic(t *testing.T) {
	now := testClock()
	var articles []core.Article
	for i := 0; i < 5; i++ {
		articles = append(articles, cleanArticle(
			fmt.Sprintf("a%d", i), fmt.Sprintf("s%d", i),
			fmt.Sprintf("반복 실행 동일성 검증 기사 %d", i),
			now.Add(-time.Duration(i)*time.Hour),
		))
	}

	first := newTestRanker().Rank(articles, "quality", 10, []string{"검증"})
	second := newTestRanker().Rank(articles, "quality", 10, []string{"검증"})

	if !reflect.DeepEqual(ids(first), ids(second)) {
		t.Fatalf("ranking must be deterministic: %v vs %v", ids(first), ids(second))
	}
	for i := range first {
		if first[i].FinalScore != second[i].FinalScore {
			t.Errorf("scores differ at %d: %f vs %f", i, first[i].FinalScore, second[i].FinalScore)
		}
	}
}

func TestFinalScoreOneDecimal(t *testing.T) {
	r := newTestRanker()
	got := r.Rank([]core.Article{cleanArticle("a", "s1", "소수점 검증용 기사 제목", testClock())}, "quality", 1, nil)
	if len(got) != 1 {
		t.Fatal("expected one result")
	}
	scaled := got[0].FinalScore * 10
	if math.Abs(scaled-math.Round(scaled)) > 1e-9 {
		t.Errorf("final score should round to one decimal, got %f", got[0].FinalScore)
	}
}

func ids(articles []core.ScoredArticle) []string {
	var out []string
	for _, a := range articles {
		out = append(out, a.ID)
	}
	return out
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
