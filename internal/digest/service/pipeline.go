package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"sf-weekly-pulse/internal/digest/dto"
	"sf-weekly-pulse/pkg/utils"
)

const (
	// DefaultDedupThreshold is the title-similarity level at or above which
	// two articles are considered the same story.
	DefaultDedupThreshold = 0.6
	// DefaultMaxArticles caps how many articles survive aggregation.
	DefaultMaxArticles = 10
	// DefaultMaxKeywords caps extracted keywords per article set.
	DefaultMaxKeywords = 5
)

var stopWords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "being": {}, "between": {},
	"could": {}, "during": {}, "every": {}, "first": {}, "from": {},
	"have": {}, "here": {}, "into": {}, "just": {}, "like": {}, "more": {},
	"most": {}, "new": {}, "news": {}, "other": {}, "over": {}, "said": {},
	"says": {}, "some": {}, "than": {}, "that": {}, "their": {}, "them": {},
	"there": {}, "these": {}, "they": {}, "this": {}, "those": {}, "through": {},
	"under": {}, "were": {}, "what": {}, "when": {}, "where": {}, "which": {},
	"while": {}, "will": {}, "with": {}, "would": {}, "your": {}, "year": {},
	"years": {}, "week": {}, "francisco": {},
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// FilterByStartDate keeps articles whose published date parses to a time at
// or after midnight of cutoff. Articles with unparseable dates are EXCLUDED:
// the externally-facing weekly digest fails closed. Contrast with
// FilterByRecentDays, which fails open.
func FilterByStartDate(articles []dto.NewsArticle, cutoff time.Time) []dto.NewsArticle {
	start := utils.StartOfDay(cutoff)
	var kept []dto.NewsArticle
	for _, a := range articles {
		published, ok := utils.ParseArticleDate(a.PublishedDate)
		if !ok {
			continue
		}
		if !published.Before(start) {
			kept = append(kept, a)
		}
	}
	return kept
}

// FilterByRecentDays keeps articles published within the last N days.
// Articles with unparseable dates are INCLUDED: the generic aggregation
// helper fails open so odd feeds are not silently dropped.
func FilterByRecentDays(articles []dto.NewsArticle, days int) []dto.NewsArticle {
	if days <= 0 {
		return articles
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var kept []dto.NewsArticle
	for _, a := range articles {
		published, ok := utils.ParseArticleDate(a.PublishedDate)
		if !ok || !published.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept
}

// DeduplicateArticles collapses near-duplicate articles in a single greedy
// pass: an incoming article is dropped if its title-word Jaccard similarity
// against any already-accepted article meets the threshold, or if its URL was
// already seen. O(n^2) in the accepted set, fine at digest scale.
func DeduplicateArticles(articles []dto.NewsArticle, threshold float64) []dto.NewsArticle {
	if threshold <= 0 {
		threshold = DefaultDedupThreshold
	}

	seenURLs := make(map[string]struct{})
	var accepted []dto.NewsArticle
	acceptedSets := make([]map[string]struct{}, 0, len(articles))

	for _, a := range articles {
		words := titleWordSet(a.Title)

		duplicate := false
		for _, existing := range acceptedSets {
			if jaccard(words, existing) >= threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		if _, seen := seenURLs[a.URL]; seen {
			continue
		}

		seenURLs[a.URL] = struct{}{}
		accepted = append(accepted, a)
		acceptedSets = append(acceptedSets, words)
	}

	return accepted
}

// titleWordSet folds a title to lowercase and keeps tokens longer than three
// characters.
func titleWordSet(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(title), -1) {
		if len(w) > 3 {
			set[w] = struct{}{}
		}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// RankArticles orders articles by descriptive richness, a crude proxy using
// combined title and snippet length. The sort is stable so equally-sized
// articles keep their original order.
func RankArticles(articles []dto.NewsArticle) []dto.NewsArticle {
	ranked := make([]dto.NewsArticle, len(articles))
	copy(ranked, articles)
	sort.SliceStable(ranked, func(i, j int) bool {
		return len(ranked[i].Title)+len(ranked[i].Snippet) > len(ranked[j].Title)+len(ranked[j].Snippet)
	})
	return ranked
}

// AggregateArticles is the generic aggregation entry point: lenient date
// filter, then optional dedup and rank, then truncation. The weekly digest
// path uses FilterByStartDate directly instead; both variants are load-bearing
// because their date-filter strictness differs.
func AggregateArticles(articles []dto.NewsArticle, opts dto.AggregateOptions) []dto.NewsArticle {
	result := articles
	if opts.FilterDays > 0 {
		result = FilterByRecentDays(result, opts.FilterDays)
	}
	if opts.Deduplicate {
		result = DeduplicateArticles(result, DefaultDedupThreshold)
	}
	if opts.Rank {
		result = RankArticles(result)
	}

	maxArticles := opts.MaxArticles
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}
	if len(result) > maxArticles {
		result = result[:maxArticles]
	}
	return result
}

// ExtractKeywords mines the most frequent meaningful words from article
// titles (double weight) and snippets, drops stop words and short tokens,
// and returns the top keywords title-cased. Frequency ties break by first
// occurrence across the input, tracked explicitly since map iteration order
// is randomized.
func ExtractKeywords(articles []dto.NewsArticle, maxKeywords int) []string {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	freq := make(map[string]int)
	var order []string

	addWords := func(text string, weight int) {
		for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
			if len(w) <= 3 {
				continue
			}
			if _, stop := stopWords[w]; stop {
				continue
			}
			if _, seen := freq[w]; !seen {
				order = append(order, w)
			}
			freq[w] += weight
		}
	}

	for _, a := range articles {
		addWords(a.Title, 2)
		addWords(a.Snippet, 1)
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	keywords := make([]string, len(order))
	for i, w := range order {
		keywords[i] = utils.TitleCase(w)
	}
	return keywords
}
