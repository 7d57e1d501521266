package scoring

// keywordSynonyms expands a requested keyword into related search terms:
// transliterations across Korean and English plus domain-related words.
// The table is data; adding an alias must not touch the scoring rules.
var keywordSynonyms = map[string][]string{
	// English → Korean
	"kpop":          {"k-pop", "케이팝", "아이돌", "idol"},
	"ai":            {"인공지능", "artificial intelligence", "머신러닝", "딥러닝"},
	"election":      {"선거", "투표", "vote", "대선", "출마"},
	"nba":           {"농구", "basketball"},
	"bts":           {"방탄소년단", "방탄"},
	"nato":          {"나토", "북대서양조약기구"},
	"un":            {"유엔", "국제연합", "united nations"},
	"nasa":          {"나사", "항공우주국"},
	"gdp":           {"국내총생산", "성장률"},
	"inflation":     {"인플레이션", "물가", "물가상승"},
	"trade":         {"무역", "통상", "관세"},
	"congress":      {"의회", "국회"},
	"president":     {"대통령", "대선"},
	"olympics":      {"올림픽"},
	"fifa":          {"피파", "월드컵"},
	"climate":       {"기후", "기후변화", "온난화"},
	"semiconductor": {"반도체", "칩"},
	"startup":       {"스타트업", "창업"},

	// Korean → English and related Korean terms
	"반도체":  {"semiconductor", "칩", "chip", "파운드리"},
	"경제":   {"economy", "gdp", "성장률", "물가", "금리"},
	"축구":   {"football", "soccer", "fifa", "월드컵"},
	"야구":   {"baseball", "mlb", "프로야구", "타자", "투수"},
	"부동산":  {"real estate", "아파트", "주택", "집값", "매매"},
	"주식":   {"stock", "증시", "코스피", "나스닥", "주가"},
	"영화":   {"movie", "film", "cinema", "극장", "감독", "배우", "오스카", "개봉"},
	"예술":   {"art", "미술", "작품", "전시", "작가", "갤러리"},
	"외교":   {"diplomacy", "diplomatic", "대사", "외무", "정상회담", "회담"},
	"선거":   {"election", "투표", "vote", "대선", "출마", "당선", "후보"},
	"정치":   {"politics", "정당", "국회", "의원", "여당", "야당"},
	"교육":   {"education", "학교", "학생", "대학", "교사", "수업"},
	"범죄":   {"crime", "사건", "수사", "검찰", "경찰", "체포"},
	"인공지능": {"ai", "머신러닝", "딥러닝", "chatgpt", "gpt"},
	"스포츠":  {"sports", "경기", "선수", "대회", "리그"},
	"문화":   {"culture", "예술", "공연", "전시", "축제"},
	"과학":   {"science", "연구", "실험", "논문", "발견"},
	"우주":   {"space", "nasa", "위성", "로켓", "발사"},
	"기후변화": {"climate change", "온난화", "탄소", "환경"},
	"드라마":  {"drama", "시청률", "방영", "출연"},
	"음악":   {"music", "가수", "앨범", "콘서트", "노래"},
	"올림픽":  {"olympics", "메달", "금메달"},
	"물가":   {"inflation", "소비자물가", "가격", "인상"},
	"인구":   {"population", "출생률", "고령화", "인구감소"},
}

// Synonyms returns the expansion terms for a lowercase keyword, or nil.
func Synonyms(keyword string) []string {
	return keywordSynonyms[keyword]
}
