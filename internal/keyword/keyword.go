// Package keyword is the Keyword Extractor (C4): topic/entity/event
// keyword bags per article and the Jaccard-style composite pairwise score
// that screens candidate pairs before the embedding and LLM cascade stages
// (§4.3). Built on plain stdlib string/regexp matching against a closed
// vocabulary — no NLP or tokenization library appears anywhere in the
// reference pack, and a fixed-vocabulary bucket match is arithmetic on
// sets, not a parsing concern, so no third-party dependency fits here.
package keyword

import (
	"regexp"
	"strings"
)

// Topic is one of the eight closed-vocabulary buckets from §4.3.
type Topic string

const (
	TopicPolitics      Topic = "politics"
	TopicEconomy       Topic = "economy"
	TopicTechnology    Topic = "technology"
	TopicHealth        Topic = "health"
	TopicInternational Topic = "international"
	TopicClimate       Topic = "climate"
	TopicCrime         Topic = "crime"
	TopicSports        Topic = "sports"
)

var topicVocabulary = map[Topic][]string{
	TopicPolitics:      {"president", "senate", "congress", "election", "policy", "governor", "legislation", "vote", "campaign", "parliament"},
	TopicEconomy:       {"inflation", "market", "stocks", "jobs", "unemployment", "gdp", "recession", "trade", "tariff", "interest rate"},
	TopicTechnology:    {"ai", "software", "startup", "chip", "app", "cyber", "data breach", "robot", "silicon valley", "internet"},
	TopicHealth:        {"hospital", "vaccine", "disease", "outbreak", "fda", "treatment", "health care", "pandemic", "virus", "surgery"},
	TopicInternational: {"un", "nato", "embassy", "treaty", "foreign minister", "border", "summit", "sanctions", "diplomat", "war"},
	TopicClimate:       {"climate", "carbon", "emissions", "wildfire", "drought", "hurricane", "renewable", "flood", "heatwave", "greenhouse"},
	TopicCrime:         {"shooting", "arrest", "police", "trial", "murder", "theft", "fraud", "indictment", "investigation", "suspect"},
	TopicSports:        {"championship", "tournament", "playoffs", "coach", "draft", "olympics", "match", "league", "score", "stadium"},
}

var eventKeywords = []string{
	"breaking", "shooting", "announces", "dies", "resigns", "launches", "wins", "collapses", "erupts", "strikes",
}

var titledPersonRe = regexp.MustCompile(`\b(President|Senator|Governor|Secretary|Minister|Dr\.|Mr\.|Ms\.|Mrs\.|General|Chief Justice|Prime Minister)\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?`)
var organizationRe = regexp.MustCompile(`\b([A-Z][a-z]*(?:\s+[A-Z][a-z]*){0,3}\s+(?:Inc\.|Corp\.|Corporation|Company|LLC|Ltd\.))\b`)
var placeRe = regexp.MustCompile(`\b(Washington|London|Paris|Beijing|Moscow|Tokyo|New York|California|Texas|Ukraine|Russia|China|Israel|Gaza)\b`)
var moneyRe = regexp.MustCompile(`\$[0-9][0-9,.]*\s*(?:million|billion|trillion)?`)
var dateRe = regexp.MustCompile(`\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2}(?:,\s*\d{4})?`)
var quotedRe = regexp.MustCompile(`"([^"]{3,80})"`)
var capitalizedSpanRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,3})\b`)

// Bags holds the three keyword sets produced for one article.
type Bags struct {
	Topics   map[string]bool
	Keywords map[string]bool
	Entities map[string]bool
}

// Extract produces the topic/keyword/entity bags for an article's
// title+summary text.
func Extract(title, summary string) Bags {
	text := strings.ToLower(title + " " + summary)
	original := title + " " + summary

	topics := map[string]bool{}
	keywords := map[string]bool{}
	for topic, words := range topicVocabulary {
		for _, w := range words {
			if strings.Contains(text, w) {
				topics[string(topic)] = true
				keywords[w] = true
			}
		}
	}
	for _, w := range eventKeywords {
		if strings.Contains(text, w) {
			keywords[w] = true
		}
	}

	entities := map[string]bool{}
	for _, re := range []*regexp.Regexp{titledPersonRe, organizationRe, placeRe, moneyRe, dateRe, capitalizedSpanRe} {
		for _, m := range re.FindAllString(original, -1) {
			entities[strings.ToLower(strings.TrimSpace(m))] = true
		}
	}
	for _, m := range quotedRe.FindAllStringSubmatch(original, -1) {
		entities[strings.ToLower(strings.TrimSpace(m[1]))] = true
	}

	return Bags{Topics: topics, Keywords: keywords, Entities: entities}
}

// DefaultSemanticThreshold (τ_sem) from §4.3/§4.5.
const DefaultSemanticThreshold = 0.3

// CompositeScore computes the §4.3 weighted Jaccard score between two
// articles' bags: 0.3·J(keywords) + 0.4·J(topics) + 0.3·entity_score,
// where entity_score = exact_jaccard + 0.5·partial_jaccard.
func CompositeScore(a, b Bags) float64 {
	kw := jaccard(a.Keywords, b.Keywords)
	tp := jaccard(a.Topics, b.Topics)
	entityScore := entityJaccard(a.Entities, b.Entities)
	return 0.3*kw + 0.4*tp + 0.3*entityScore
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for k := range a {
		if b[k] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// TitleJaccard is the "title-jaccard" fallback strategy named in §9: plain
// word-level Jaccard similarity over two article titles, used in place of
// the LLM verification stage when no provider is available.
func TitleJaccard(titleA, titleB string) float64 {
	return wordJaccard(titleA, titleB)
}

// ContentJaccard is the word-level Jaccard similarity over two articles'
// summary text, the second term of the "weighted" fallback strategy.
func ContentJaccard(contentA, contentB string) float64 {
	return wordJaccard(contentA, contentB)
}

// FallbackScore resolves the §9 "Fallback similarity formula" open
// question: strategy "title-jaccard" uses TitleJaccard alone, anything
// else (including the "weighted" default) uses 0.6*title + 0.4*content.
func FallbackScore(strategy, titleA, contentA, titleB, contentB string) float64 {
	if strategy == "title-jaccard" {
		return TitleJaccard(titleA, titleB)
	}
	return 0.6*TitleJaccard(titleA, titleB) + 0.4*ContentJaccard(contentA, contentB)
}

func wordJaccard(a, b string) float64 {
	return jaccard(wordSet(a), wordSet(b))
}

func wordSet(s string) map[string]bool {
	out := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(s)) {
		out[w] = true
	}
	return out
}

// entityJaccard combines an exact-match Jaccard with a softer partial-match
// Jaccard (substring containment between entity strings), per §4.3.
func entityJaccard(a, b map[string]bool) float64 {
	exact := jaccard(a, b)

	partialInter := 0
	seen := map[string]bool{}
	for ea := range a {
		for eb := range b {
			if ea == eb {
				continue
			}
			if strings.Contains(ea, eb) || strings.Contains(eb, ea) {
				key := ea + "|" + eb
				if ea > eb {
					key = eb + "|" + ea
				}
				if !seen[key] {
					seen[key] = true
					partialInter++
				}
			}
		}
	}
	union := len(a) + len(b)
	var partial float64
	if union > 0 {
		partial = float64(partialInter) / float64(union)
	}
	return exact + 0.5*partial
}
