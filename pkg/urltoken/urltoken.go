// Package urltoken decomposes raw URL strings into word level tokens
// without fetching any page content. A URL is decoded, split into its
// structural parts and each part is segmented into dictionary words,
// so "http://www.geocities.com/news" becomes tokens like
// ["http", "www", "geo", "cities", "com", "news"].
package urltoken

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	urlRe      = regexp.MustCompile(`^(https?)://([-a-zA-Z0-9@:%._+~#=]+\.[a-zA-Z0-9()]{1,12})\b([-a-zA-Z0-9()@:%_+;.~#&/=]*)\??([-a-zA-Z0-9()@:%_+;.~#&/=?\\]*)`)
	argDelimRe = regexp.MustCompile(`(?:&amp;)|;|&|\\`)
)

// RawParts holds the four structural groups of a URL after decoding and
// lowercasing, before any word segmentation.
type RawParts struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Path   string `json:"path"`
	Query  string `json:"query"`
}

// DomainData holds the tokenized host. Sub contains the tokens of every
// label left of the registered name, Main the tokens of the label next
// to the TLD. The TLD itself is never segmented.
type DomainData struct {
	Sub  []string `json:"sub"`
	Main []string `json:"main"`
	TLD  string   `json:"tld"`
}

// ParamValPair holds the tokens of one query argument. Value is empty
// when the argument has no "=value" part.
type ParamValPair struct {
	Param []string `json:"param"`
	Value []string `json:"value"`
}

// URLData is the full tokenization of one URL.
type URLData struct {
	Scheme  string         `json:"scheme"`
	Domains DomainData     `json:"domains"`
	Path    []string       `json:"path"`
	Args    []ParamValPair `json:"args"`
	Raw     RawParts       `json:"raw"`
}

// Tokenizer turns URL strings into URLData. The zero value is not
// usable; construct with NewTokenizer.
type Tokenizer struct {
	splitter    *Splitter
	expansions  map[string]string
	reversePath bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithSplitter replaces the embedded word list with a custom Splitter.
func WithSplitter(s *Splitter) Option {
	return func(t *Tokenizer) { t.splitter = s }
}

// WithExpansions enables abbreviation expansion using the given table.
// Pass DefaultExpansions() for the built in one.
func WithExpansions(table map[string]string) Option {
	return func(t *Tokenizer) { t.expansions = table }
}

// WithReversedPath reverses the order of path tokens, which puts the
// most specific part of the URL first.
func WithReversedPath() Option {
	return func(t *Tokenizer) { t.reversePath = true }
}

// NewTokenizer returns a Tokenizer backed by the embedded frequency
// dictionary unless overridden by options.
func NewTokenizer(opts ...Option) *Tokenizer {
	t := &Tokenizer{splitter: DefaultSplitter()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokenize decodes and tokenizes a single URL.
func (t *Tokenizer) Tokenize(rawURL string) (URLData, error) {
	parts, err := SplitRaw(Decode(rawURL))
	if err != nil {
		return URLData{}, err
	}
	data := URLData{
		Scheme:  parts.Scheme,
		Domains: t.domainTokens(parts.Host),
		Path:    t.pathTokens(parts.Path),
		Args:    t.argTokens(parts.Query),
		Raw:     parts,
	}
	if t.reversePath {
		for l, r := 0, len(data.Path)-1; l < r; l, r = l+1, r-1 {
			data.Path[l], data.Path[r] = data.Path[r], data.Path[l]
		}
	}
	if t.expansions != nil {
		data = t.expandData(data)
	}
	return data, nil
}

// Tokenize tokenizes a URL with a default Tokenizer.
func Tokenize(rawURL string) (URLData, error) {
	return NewTokenizer().Tokenize(rawURL)
}

// Decode reverses percent escapes and HTML entities. Malformed escape
// sequences are kept verbatim instead of failing the whole URL.
func Decode(rawURL string) string {
	return html.UnescapeString(percentDecode(rawURL))
}

// SplitRaw lowercases a decoded URL and splits it into scheme, host,
// path and query. It fails on anything that does not start with an
// http or https scheme followed by a dotted host.
func SplitRaw(decoded string) (RawParts, error) {
	m := urlRe.FindStringSubmatch(strings.ToLower(decoded))
	if m == nil {
		return RawParts{}, fmt.Errorf("failed to match url format: %s", decoded)
	}
	return RawParts{Scheme: m[1], Host: m[2], Path: m[3], Query: m[4]}, nil
}

// Flatten returns all tokens of a URL in reading order: scheme, sub
// domain, main domain, TLD, path, then each argument as param tokens
// followed by value tokens.
func Flatten(d URLData) []string {
	tokens := make([]string, 0, 8+len(d.Path))
	tokens = append(tokens, d.Scheme)
	tokens = append(tokens, d.Domains.Sub...)
	tokens = append(tokens, d.Domains.Main...)
	tokens = append(tokens, d.Domains.TLD)
	tokens = append(tokens, d.Path...)
	for _, pair := range d.Args {
		tokens = append(tokens, pair.Param...)
		tokens = append(tokens, pair.Value...)
	}
	return tokens
}

// domainTokens splits the host into dot separated labels and segments
// every label except the TLD.
func (t *Tokenizer) domainTokens(host string) DomainData {
	labels := strings.Split(host, ".")
	d := DomainData{TLD: labels[len(labels)-1]}
	if len(labels) < 2 {
		return d
	}
	d.Main = t.splitter.Split(labels[len(labels)-2])
	for _, label := range labels[:len(labels)-2] {
		d.Sub = append(d.Sub, t.splitter.Split(label)...)
	}
	return d
}

// pathTokens segments each path component. A literal "@" token is
// appended when the path contains one, since user style paths like
// "/mdavis@webmail.org/" are a useful phishing signal.
func (t *Tokenizer) pathTokens(path string) []string {
	var tokens []string
	for _, seg := range strings.Split(path, "/") {
		tokens = append(tokens, t.splitter.Split(seg)...)
	}
	if strings.Contains(path, "@") {
		tokens = append(tokens, "@")
	}
	return tokens
}

// argTokens splits the query on argument delimiters, including HTML
// escaped ampersands that survived decoding, and segments each side of
// the first "=".
func (t *Tokenizer) argTokens(query string) []ParamValPair {
	if query == "" {
		return nil
	}
	var pairs []ParamValPair
	for _, arg := range argDelimRe.Split(query, -1) {
		if arg == "" {
			continue
		}
		parts := strings.Split(arg, "=")
		pair := ParamValPair{Param: t.splitter.Split(parts[0])}
		if len(parts) > 1 {
			pair.Value = t.splitter.Split(parts[1])
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

func (t *Tokenizer) expandData(d URLData) URLData {
	d.Domains.Sub = ExpandTokens(d.Domains.Sub, t.expansions)
	d.Domains.Main = ExpandTokens(d.Domains.Main, t.expansions)
	d.Path = ExpandTokens(d.Path, t.expansions)
	for i, pair := range d.Args {
		d.Args[i].Param = ExpandTokens(pair.Param, t.expansions)
		d.Args[i].Value = ExpandTokens(pair.Value, t.expansions)
	}
	return d
}

func percentDecode(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
