// Command scrapegen trains a scraper from a JSON file of (page, value)
// samples and either writes the trained scraper's shape to a JSON file or
// applies it to a new page and prints the result.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"scrapegen"
	"scrapegen/dom"
	"scrapegen/item"
)

// sampleFile is the on-disk shape of a training-sample set: each entry
// names an HTML file and the value expected to be read from it.
type sampleFile struct {
	Samples []struct {
		HTMLFile string `json:"html_file"`
		Value    any    `json:"value"`
	} `json:"samples"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "train":
		runTrain(os.Args[2:])
	case "run":
		runApply(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: scrapegen train -samples samples.json -out rules.json")
	fmt.Fprintln(os.Stderr, "       scrapegen run   -samples samples.json -page target.html")
	os.Exit(2)
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	samplesPath := fs.String("samples", "", "path to a JSON samples file")
	outPath := fs.String("out", "", "path to write the trained scraper's shape as JSON")
	fs.Parse(args)

	if *samplesPath == "" || *outPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	s, err := buildAndTrain(*samplesPath)
	if err != nil {
		log.Fatalf("training: %v", err)
	}

	out, err := json.MarshalIndent(s.ToDict(), "", "  ")
	if err != nil {
		log.Fatalf("encoding trained scraper: %v", err)
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		log.Fatalf("writing %s: %v", *outPath, err)
	}
	fmt.Printf("trained scraper written to %s\n", *outPath)
}

func runApply(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	samplesPath := fs.String("samples", "", "path to a JSON samples file")
	pagePath := fs.String("page", "", "path to the HTML page to scrape")
	fs.Parse(args)

	if *samplesPath == "" || *pagePath == "" {
		fs.Usage()
		os.Exit(2)
	}

	s, err := buildAndTrain(*samplesPath)
	if err != nil {
		log.Fatalf("training: %v", err)
	}

	f, err := os.Open(*pagePath)
	if err != nil {
		log.Fatalf("opening %s: %v", *pagePath, err)
	}
	defer f.Close()
	page, err := dom.NewPage(f)
	if err != nil {
		log.Fatalf("parsing %s: %v", *pagePath, err)
	}

	value, err := s.Scrape(page)
	if err != nil {
		log.Fatalf("scraping %s: %v", *pagePath, err)
	}

	out, err := json.MarshalIndent(valueToAny(value), "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))
}

func buildAndTrain(samplesPath string) (*scrapegen.Scraper, error) {
	raw, err := os.ReadFile(samplesPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", samplesPath, err)
	}
	var sf sampleFile
	if err := json.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", samplesPath, err)
	}
	if len(sf.Samples) == 0 {
		return nil, fmt.Errorf("%s: no samples", samplesPath)
	}

	samples := make([]scrapegen.Sample, len(sf.Samples))
	for i, raw := range sf.Samples {
		f, err := os.Open(raw.HTMLFile)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", raw.HTMLFile, err)
		}
		page, err := dom.NewPage(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", raw.HTMLFile, err)
		}
		value, err := item.FromAny(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		samples[i] = scrapegen.Sample{Page: page, Value: value}
	}

	s, err := scrapegen.Build(samples)
	if err != nil {
		return nil, err
	}
	if err := s.Train(); err != nil {
		return nil, err
	}
	return s, nil
}

// valueToAny converts a trained scraper's result into a plain Go value
// encoding/json can marshal - the mirror image of item.FromAny.
func valueToAny(v item.Value) any {
	switch x := v.(type) {
	case item.Leaf:
		return string(x)
	case item.List:
		out := make([]any, len(x))
		for i, elem := range x {
			out[i] = valueToAny(elem)
		}
		return out
	case item.Dict:
		out := make(map[string]any, len(x))
		for k, elem := range x {
			out[k] = valueToAny(elem)
		}
		return out
	default:
		return nil
	}
}
