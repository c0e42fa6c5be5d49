// Command tokenize prints the token structure of URLs, either from
// the command line or one per line from a file. It is the debugging
// companion of the tokenizer package.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/nordlys-ml/urlclass/pkg/logging"
	"github.com/nordlys-ml/urlclass/pkg/urltoken"
)

func main() {
	file := flag.String("file", "", "read URLs from this file, one per line")
	flat := flag.Bool("flat", false, "print the flattened token list instead of the structure")
	expand := flag.Bool("expand", false, "apply the embedded abbreviation table")
	reverse := flag.Bool("reverse-path", false, "reverse the path tokens")
	flag.Parse()

	if err := logging.SetupLogger(logging.DefaultLogConfig()); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}

	var opts []urltoken.Option
	if *expand {
		opts = append(opts, urltoken.WithExpansions(urltoken.DefaultExpansions()))
	}
	if *reverse {
		opts = append(opts, urltoken.WithReversedPath())
	}
	tok := urltoken.NewTokenizer(opts...)

	urls := flag.Args()
	if *file != "" {
		fromFile, err := readURLs(*file)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to read URL file")
		}
		urls = append(urls, fromFile...)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: tokenize [flags] <url> [url...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed := 0
	for _, url := range urls {
		data, err := tok.Tokenize(url)
		if err != nil {
			log.Error().Err(err).Str("url", url).Msg("Failed to tokenize")
			failed++
			continue
		}
		if *flat {
			fmt.Println(strings.Join(urltoken.Flatten(data), " "))
			continue
		}
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal token structure")
		}
		fmt.Println(string(out))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func readURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}
