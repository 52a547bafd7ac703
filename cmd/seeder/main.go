package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
)

// books is used when no catalogue is given.
var books = []Book{
	{
		ISBN13:       "9780008627843",
		ISBN10:       "0008627843",
		Title:        "The Hobbit",
		Format:       "ebook",
		Authors:      []string{"J.R.R. Tolkien"},
		Illustrators: []string{"J.R.R. Tolkien"},
		Publisher:    "Harper Collins",
		PageCount:    310,
		Genres:       []string{"fiction", "fantasy"},
		Price:        16.99,
	},
	{
		ISBN13:    "9780060929879",
		ISBN10:    "0060929871",
		Title:     "Brave New World",
		Format:    "paperback",
		Authors:   []string{"Aldous Huxley"},
		Publisher: "Harper Perennial",
		PageCount: 288,
		Genres:    []string{"fiction", "science fiction"},
		Price:     12.5,
	},
	{
		ISBN13:            "9780375704024",
		Title:             "Norwegian Wood",
		Format:            "paperback",
		Authors:           []string{"Haruki Murakami"},
		OtherContributors: []string{"Jay Rubin"},
		Publisher:         "Vintage",
		PageCount:         296,
		Genres:            []string{"fiction"},
		Price:             14.95,
	},
	{
		ISBN13:    "9780393354324",
		ISBN10:    "0393354326",
		Title:     "The Norton Anthology of Poetry",
		Format:    "hardback",
		Editors:   []string{"Margaret Ferguson", "Tim Kendall", "Mary Jo Salter"},
		Publisher: "W. W. Norton",
		PageCount: 2272,
		Genres:    []string{"poetry"},
		Price:     82.0,
	},
}

var (
	seedFileName = flag.String("src", "", "JSON array of book entries")
	outFileName  = flag.String("out", "", "file to write statements to (default stdout)")
	repeat       = flag.Int("repeat", 1, "number of times to emit each entry")
)

func init() {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
}

// readBooks decodes a JSON array of book entries.
func readBooks(r io.Reader) ([]Book, error) {
	var entries []Book
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode book entries: %w", err)
	}
	return entries, nil
}

// writeStatements writes one insert statement per line.
func writeStatements(w io.Writer, entries []Book, repeat int) (int, error) {
	bw := bufio.NewWriter(w)
	written := 0
	for range repeat {
		for i := range entries {
			if _, err := fmt.Fprintln(bw, entries[i].Statement()); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, bw.Flush()
}

func main() {
	flag.Parse()

	entries := books
	if *seedFileName != "" {
		f, err := os.Open(*seedFileName)
		if err != nil {
			panic(err)
		}
		entries, err = readBooks(f)
		f.Close()
		if err != nil {
			panic(err)
		}
	}

	var out io.Writer = os.Stdout
	if *outFileName != "" {
		f, err := os.Create(*outFileName)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		out = f
	}

	written, err := writeStatements(out, entries, *repeat)
	if err != nil {
		panic(err)
	}
	slog.Info("statements written", "count", written)
}
