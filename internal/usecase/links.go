package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cartscout/backend/internal/domain"
)

// asinPatterns extract an Amazon ASIN (10-char alphanumeric token) from a
// purchase URL, most specific first.
var asinPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/dp/([A-Z0-9]{10})`),
	regexp.MustCompile(`/product/([A-Z0-9]{10})`),
	regexp.MustCompile(`asin=([A-Z0-9]{10})`),
	regexp.MustCompile(`/([A-Z0-9]{10})(?:/|$)`),
}

// junkURLFragments mark URLs the model tends to hallucinate or that lead
// nowhere useful.
var junkURLFragments = []string{
	"example.com",
	"placeholder",
	"amazon.com/gp/help",
	"localhost",
	"127.0.0.1",
}

var (
	linkSpecialChars = regexp.MustCompile(`[^\w\s]`)
	priceDigits      = regexp.MustCompile(`\d+`)
)

// ValidateURL reports whether a purchase URL is usable: http(s) scheme and
// none of the known junk fragments.
func ValidateURL(rawURL string) bool {
	if rawURL == "" || rawURL == domain.PriceUnknown {
		return false
	}

	lower := strings.ToLower(rawURL)
	for _, fragment := range junkURLFragments {
		if strings.Contains(lower, fragment) {
			return false
		}
	}

	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}

// ExtractASIN pulls an Amazon product identifier out of a URL, or returns
// the empty string.
func ExtractASIN(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	for _, pattern := range asinPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			return match[1]
		}
	}
	return ""
}

// SearchFallbackURL builds an Amazon search link from a product title, for
// products with no usable direct link.
func SearchFallbackURL(title string) string {
	clean := linkSpecialChars.ReplaceAllString(title, "")
	query := strings.Join(strings.Fields(clean), "+")
	return "https://www.amazon.com/s?k=" + query
}

// SpecificSearchURL refines the search link with a price ceiling derived
// from the product's listed price.
func SpecificSearchURL(title, price string) string {
	clean := linkSpecialChars.ReplaceAllString(title, "")
	query := strings.Join(strings.Fields(clean), "+")

	if price != "" && price != domain.PriceUnknown {
		if match := priceDigits.FindString(price); match != "" {
			if n, err := strconv.Atoi(match); err == nil {
				query += "+under+" + strconv.Itoa(n+50)
			}
		}
	}

	return "https://www.amazon.com/s?k=" + query + "&ref=sr_st_price-asc-rank"
}

// ResolveProductLink produces the best available purchase link for a
// product: its own URL when valid, a canonical product page synthesized
// from the ASIN, or a title-based search link.
func ResolveProductLink(p domain.Product) string {
	if ValidateURL(p.PurchaseURL) {
		return p.PurchaseURL
	}

	asin := p.ASIN
	if asin == "" {
		asin = ExtractASIN(p.PurchaseURL)
	}
	if asin != "" {
		return "https://www.amazon.com/dp/" + asin
	}

	return SpecificSearchURL(p.Title, p.Price)
}
