package cart

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/yungbote/salesagent-backend/internal/services"
	"github.com/yungbote/salesagent-backend/internal/workers"
)

type ProductRef struct {
	ProductID string
	Name      string
}

// ProductResolver maps free text to a catalog product reference.
type ProductResolver interface {
	Resolve(ctx context.Context, text string) (ProductRef, bool, error)
}

type keyword struct {
	re  *regexp.Regexp
	ref ProductRef
}

var defaultKeywords = []keyword{
	{re: regexp.MustCompile(`(?i)\blaptops?\b`), ref: ProductRef{ProductID: "LAPTOP001", Name: "Laptop"}},
	{re: regexp.MustCompile(`(?i)\b(?:smart)?phones?\b`), ref: ProductRef{ProductID: "PHONE001", Name: "Phone"}},
}

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "my": true, "me": true, "i": true,
	"in": true, "into": true, "of": true, "for": true, "and": true, "please": true,
	"add": true, "buy": true, "get": true, "order": true, "purchase": true, "put": true,
	"want": true, "would": true, "like": true, "some": true, "cart": true, "it": true,
	"x": true, "pc": true, "pcs": true, "piece": true, "pieces": true, "unit": true, "units": true,
	"can": true, "you": true, "need": true, "also": true, "one": true, "more": true,
}

var wordRe = regexp.MustCompile(`[a-z0-9][a-z0-9-]*`)

// KeywordResolver checks a small fixed keyword table first and then falls back to a catalog
// name search over the remaining words of the message.
type KeywordResolver struct {
	catalog services.CatalogService
}

func NewKeywordResolver(catalog services.CatalogService) *KeywordResolver {
	return &KeywordResolver{catalog: catalog}
}

func (r *KeywordResolver) Resolve(ctx context.Context, text string) (ProductRef, bool, error) {
	for _, k := range defaultKeywords {
		if k.re.MatchString(text) {
			return k.ref, true, nil
		}
	}
	if r == nil || r.catalog == nil {
		return ProductRef{}, false, nil
	}
	for _, term := range searchTerms(text) {
		p, err := r.catalog.FindByName(workers.DB(ctx), term)
		if err != nil {
			return ProductRef{}, false, err
		}
		if p != nil {
			return ProductRef{ProductID: p.ProductID, Name: p.Name}, true, nil
		}
	}
	return ProductRef{}, false, nil
}

// searchTerms returns the remaining phrase followed by its words, longest first.
func searchTerms(text string) []string {
	var words []string
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if stopWords[w] || isNumber(w) || len(w) < 3 {
			continue
		}
		words = append(words, w)
	}
	if len(words) == 0 {
		return nil
	}
	out := []string{}
	if len(words) > 1 {
		out = append(out, strings.Join(words, " "))
	}
	byLen := append([]string(nil), words...)
	sort.SliceStable(byLen, func(i, j int) bool { return len(byLen[i]) > len(byLen[j]) })
	return append(out, byLen...)
}

func isNumber(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}
