package scrape

import (
	"regexp"
	"strings"
)

// Boilerplate that news pages append around the article text.
var (
	bylinePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^[가-힣]{2,4}\s*기자\s*$`),
		regexp.MustCompile(`(?m)^\S+@\S+\.\S+\s*$`),
		regexp.MustCompile(`(?mi)^by\s+[\w\s.]+$`),
	}

	relatedListRe = regexp.MustCompile(`(?m)^(관련\s*기사|추천\s*기사|함께\s*본\s*기사|related\s+articles?).*$`)

	copyrightRe = regexp.MustCompile(`(?mi)^(ⓒ|©|copyright|저작권자|무단\s*전재|all rights reserved).*$`)

	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// StripBoilerplate removes author bylines, related-article lists and
// copyright footers, then collapses runs of blank lines.
func StripBoilerplate(body string) string {
	for _, p := range bylinePatterns {
		body = p.ReplaceAllString(body, "")
	}
	body = relatedListRe.ReplaceAllString(body, "")
	body = copyrightRe.ReplaceAllString(body, "")
	body = blankRunsRe.ReplaceAllString(body, "\n\n")
	return strings.TrimSpace(body)
}

// imageExcludePatterns mark icons, logos, ads, share buttons and other
// non-editorial images by URL substring.
var imageExcludePatterns = []string{
	"icon", "logo", "btn", "button", "badge", "banner",
	"ad_", "ads_", "/ad/", "/ads/", "adsense", "advert", "sponsor",
	"pixel", "tracker", "spacer", "blank", "loading", "spinner",
	"1x1", "1px", "transparent", "sprite", "emoji", "placeholder",
	"avatar", "profile", "journalist", "reporter", "byline",
	"thumb_", "_thumb", "/thumb/", "small_", "_small", "mini_", "_mini",
	"sns", "share", "social", "kakao", "facebook", "twitter",
	"instagram", "youtube", "tiktok", "linkedin",
	"comment", "reply", "like", "vote", "reaction",
	"/related/", "/recommend/", "/popular/",
}

var imageAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

var imageSizeRe = regexp.MustCompile(`[_-](\d+)x(\d+)`)

// ValidNewsImage rejects URLs matching known ad/icon patterns, non-photo
// extensions, and images whose URL-embedded dimensions fall below the
// minimum resolution.
func ValidNewsImage(imgURL string, minWidth, minHeight int) bool {
	if !strings.HasPrefix(imgURL, "http") {
		return false
	}
	if strings.Contains(imgURL, "{{") || strings.Contains(imgURL, "}}") {
		return false
	}

	lower := strings.ToLower(imgURL)
	path := lower
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	hasExt := false
	for _, ext := range imageAllowedExtensions {
		if strings.HasSuffix(path, ext) {
			hasExt = true
			break
		}
	}
	if !hasExt {
		// Extension-less URLs pass only when hosted on an image domain.
		imageHosts := []string{"imgnews", "img", "image", "photo", "cdn", "media"}
		isImageHost := false
		for _, host := range imageHosts {
			if strings.Contains(lower, host) {
				isImageHost = true
				break
			}
		}
		if !isImageHost {
			return false
		}
	}

	for _, pattern := range imageExcludePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}

	if m := imageSizeRe.FindStringSubmatch(lower); m != nil {
		width, height := atoi(m[1]), atoi(m[2])
		if width < minWidth || height < minHeight {
			return false
		}
	}
	return true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
