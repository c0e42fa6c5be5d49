package featurize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

// NumHandPicked is the length of the hand picked feature vector.
const NumHandPicked = 20

// FeatureNames lists the hand picked features in vector order.
var FeatureNames = [NumHandPicked]string{
	"is_https",
	"main_domain_word_count",
	"sub_domain_count",
	"is_www",
	"is_www_weird",
	"path_word_count",
	"suspicious_tld",
	"sub_domain_digits",
	"path_digits",
	"arg_digits",
	"total_digits",
	"has_at_symbol",
	"word_count",
	"domain_length",
	"path_length",
	"args_length",
	"dot_count",
	"capital_count",
	"is_ip_address",
	"has_suspicious_symbol",
}

var (
	wwwWeirdRe = regexp.MustCompile(`^www.+`)
	ipHostRe   = regexp.MustCompile(`^(\d+\.)+\d+$`)
)

// suspiciousTLDs are cheap TLDs that are heavily over represented in
// phishing feeds.
var suspiciousTLDs = map[string]bool{
	"xyz":  true,
	"biz":  true,
	"info": true,
}

// handPicked computes the 20 lexical features for one tokenized URL.
// Counting features exclude the synthetic "@" path marker so they
// reflect real words only.
func handPicked(rawURL string, data urltoken.URLData) []float64 {
	v := make([]float64, NumHandPicked)

	hasAt := len(data.Path) > 0 && data.Path[len(data.Path)-1] == "@"

	v[0] = boolFeature(data.Scheme == "https")
	v[1] = float64(len(data.Domains.Main))
	v[2] = float64(len(data.Domains.Sub))
	if len(data.Domains.Sub) > 0 {
		v[3] = boolFeature(data.Domains.Sub[0] == "www")
		v[4] = boolFeature(wwwWeirdRe.MatchString(data.Domains.Sub[0]))
	}
	v[5] = float64(len(data.Path) - boolInt(hasAt))
	v[6] = boolFeature(suspiciousTLDs[data.Domains.TLD])

	subDigits := countDigits(data.Domains.Sub)
	pathDigits := countDigits(data.Path)
	argDigits := countDigits(flattenArgs(data.Args))
	v[7] = float64(subDigits)
	v[8] = float64(pathDigits)
	v[9] = float64(argDigits)
	v[10] = float64(subDigits + pathDigits + argDigits)

	v[11] = boolFeature(hasAt)
	v[12] = float64(len(urltoken.Flatten(data)) - boolInt(hasAt))
	v[13] = float64(len(data.Raw.Host))
	v[14] = float64(len(data.Raw.Path))
	v[15] = float64(len(data.Raw.Query))
	v[16] = float64(strings.Count(data.Raw.Path, ".") + strings.Count(data.Raw.Query, "."))
	v[17] = float64(countUppercase(urltoken.Decode(rawURL)))
	v[18] = boolFeature(ipHostRe.MatchString(data.Raw.Host))
	v[19] = boolFeature(hasSuspiciousSymbol(data.Raw.Path) || hasSuspiciousSymbol(data.Raw.Query))

	return v
}

func hasSuspiciousSymbol(segment string) bool {
	return strings.Contains(segment, "@") ||
		strings.Contains(segment, "\\") ||
		strings.Contains(segment, "//")
}

func countDigits(tokens []string) int {
	n := 0
	for _, tok := range tokens {
		for _, r := range tok {
			if r >= '0' && r <= '9' {
				n++
			}
		}
	}
	return n
}

func countUppercase(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
