// Package recommend ranks catalog games against a genre/platform preference
// using TF-IDF cosine similarity blended with the catalog rating.
package recommend

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultTopK is used when the caller asks for zero or fewer results.
	DefaultTopK = 20
	// DefaultAlpha weights similarity against normalized rating.
	DefaultAlpha = 0.8
	// MaxFeatures caps the vocabulary at the most frequent terms.
	MaxFeatures = 5000
)

var tokenPattern = regexp.MustCompile(`\w\w+`)

type namedRef struct {
	Name string `json:"name"`
}

type platformRef struct {
	Platform namedRef `json:"platform"`
}

// CatalogGame is the subset of an ingested catalog entry the recommender reads.
type CatalogGame struct {
	Name            string        `json:"name"`
	BackgroundImage string        `json:"background_image"`
	Rating          float64       `json:"rating"`
	RatingsCount    int           `json:"ratings_count"`
	Genres          []namedRef    `json:"genres"`
	Platforms       []platformRef `json:"platforms"`
	Tags            []namedRef    `json:"tags"`
}

// Recommendation is one ranked result.
type Recommendation struct {
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Rating    float64 `json:"rating"`
	Genres    string  `json:"genres"`
	Platforms string  `json:"platforms"`
	Score     float64 `json:"score"`
}

type item struct {
	name      string
	image     string
	rating    float64
	genres    []string
	platforms []string
	vector    map[int]float64
}

// Recommender holds the fitted vocabulary and document vectors.
type Recommender struct {
	items     []item
	vocab     map[string]int
	idf       []float64
	maxRating float64
}

// Load reads the ingestion output file and fits a Recommender on it.
func Load(path string) (*Recommender, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read games file: %w", err)
	}

	var games []CatalogGame
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("decode games file: %w", err)
	}
	return New(games), nil
}

// New fits a Recommender. Entries without a name and repeated names are skipped.
func New(games []CatalogGame) *Recommender {
	r := &Recommender{vocab: make(map[string]int)}

	seen := make(map[string]bool)
	var docs [][]string
	for _, g := range games {
		name := strings.TrimSpace(g.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		it := item{name: name, image: g.BackgroundImage, rating: g.Rating}
		var features []string
		for _, genre := range g.Genres {
			it.genres = append(it.genres, genre.Name)
			features = append(features, feature(genre.Name))
		}
		for _, p := range g.Platforms {
			it.platforms = append(it.platforms, p.Platform.Name)
			features = append(features, feature(p.Platform.Name))
		}
		for _, tag := range g.Tags {
			features = append(features, feature(tag.Name))
		}

		r.items = append(r.items, it)
		docs = append(docs, tokenize(strings.Join(features, " ")))
		if g.Rating > r.maxRating {
			r.maxRating = g.Rating
		}
	}

	r.fit(docs)
	for i, doc := range docs {
		r.items[i].vector = r.transform(doc)
	}
	return r
}

// Len returns the number of games the recommender ranks.
func (r *Recommender) Len() int { return len(r.items) }

// Recommend ranks every game by alpha*similarity + (1-alpha)*rating/maxRating.
func (r *Recommender) Recommend(genre, platform string, topK int, alpha float64) []Recommendation {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var query []string
	if g := strings.TrimSpace(genre); g != "" {
		query = append(query, feature(g))
	}
	if p := strings.TrimSpace(platform); p != "" {
		query = append(query, feature(p))
	}
	qv := r.transform(tokenize(strings.Join(query, " ")))

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, len(r.items))
	for i, it := range r.items {
		ratingNorm := it.rating
		if r.maxRating > 0 {
			ratingNorm = it.rating / r.maxRating
		}
		results[i] = scored{idx: i, score: alpha*dot(qv, it.vector) + (1-alpha)*ratingNorm}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })

	if len(results) > topK {
		results = results[:topK]
	}

	out := make([]Recommendation, 0, len(results))
	for _, s := range results {
		it := r.items[s.idx]
		out = append(out, Recommendation{
			Name:      it.name,
			Image:     it.image,
			Rating:    it.rating,
			Genres:    strings.Join(it.genres, "|"),
			Platforms: strings.Join(it.platforms, "|"),
			Score:     s.score,
		})
	}
	return out
}

// fit builds the vocabulary from the MaxFeatures most frequent terms and
// computes smoothed idf weights: ln((1+n)/(1+df)) + 1.
func (r *Recommender) fit(docs [][]string) {
	termCount := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		inDoc := make(map[string]bool)
		for _, tok := range doc {
			termCount[tok]++
			if !inDoc[tok] {
				inDoc[tok] = true
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(termCount))
	for t := range termCount {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if termCount[terms[i]] != termCount[terms[j]] {
			return termCount[terms[i]] > termCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > MaxFeatures {
		terms = terms[:MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	r.idf = make([]float64, len(terms))
	for i, t := range terms {
		r.vocab[t] = i
		r.idf[i] = math.Log((1+n)/(1+float64(docFreq[t]))) + 1
	}
}

// transform returns the l2-normalized tf-idf vector of a tokenized document.
func (r *Recommender) transform(tokens []string) map[int]float64 {
	vec := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := r.vocab[tok]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for idx, tf := range vec {
		w := tf * r.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec
}

func dot(a, b map[int]float64) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float64
	for idx, w := range a {
		sum += w * b[idx]
	}
	return sum
}

func feature(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

func tokenize(s string) []string {
	return tokenPattern.FindAllString(strings.ToLower(s), -1)
}
