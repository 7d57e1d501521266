package normalize

import (
	"regexp"
	"strings"
)

// categoryRule maps matching keywords to one canonical category. Rules are
// checked in order and the first hit wins, so more specific vocabularies
// come before broader ones.
type categoryRule struct {
	category string
	keywords []string
}

// categoryRules is data, not code: extending the vocabulary must not touch
// the inference logic.
var categoryRules = []categoryRule{
	{"politics", []string{"politics", "정치", "국회", "대통령", "정당"}},
	{"economy", []string{"economy", "경제", "기업", "주식", "금융", "business", "finance"}},
	{"society", []string{"society", "사회", "범죄", "교육", "복지"}},
	{"it", []string{"tech", "it", "기술", "소프트웨어", "ai", "인공지능", "technology"}},
	{"science", []string{"science", "과학", "연구", "우주", "바이오"}},
	{"culture", []string{"culture", "문화", "예술", "영화", "음악"}},
	{"sports", []string{"sports", "스포츠", "축구", "야구", "농구"}},
	{"international", []string{"world", "international", "국제", "세계", "외교"}},
	{"entertainment", []string{"entertainment", "연예", "아이돌", "드라마"}},
}

// InferCategory matches the provider's category hint and the title against
// the keyword table, case-insensitively. No match yields the empty string.
func InferCategory(hint, title string) string {
	text := strings.ToLower(hint + " " + title)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return ""
}

// videoTitlePatterns match broadcast program listings and live streams
// that show up in news feeds but carry no article body worth ranking.
var videoTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`뉴스와이드\s*\d{1,2}월\s*\d{1,2}일`),
	regexp.MustCompile(`뉴스데스크\s*\d{1,2}월\s*\d{1,2}일`),
	regexp.MustCompile(`뉴스룸\s*\d{1,2}월\s*\d{1,2}일`),
	regexp.MustCompile(`뉴스특보\s*\d{1,2}월\s*\d{1,2}일`),
	regexp.MustCompile(`\d{1,2}:\d{2}\s*~\s*\d{1,2}:\d{2}`),
	regexp.MustCompile(`(?i)^\[.*생중계.*\]`),
	regexp.MustCompile(`(?i)^\[.*LIVE.*\]`),
	regexp.MustCompile(`(?i)^\[.*라이브.*\]`),
}

// IsVideoTitle reports whether the title looks like a broadcast program
// or live stream rather than an article.
func IsVideoTitle(title string) bool {
	for _, p := range videoTitlePatterns {
		if p.MatchString(title) {
			return true
		}
	}
	return false
}
