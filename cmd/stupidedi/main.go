// Command stupidedi parses an X12 interchange file against a YAML schema
// catalog and prints any structural errors found. It exists to give the
// library a runnable demonstration entry point; it is not itself part of
// the parsing engine.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/SonderMindOrg/stupidedi"
)

func main() {
	catalogPath := flag.String("catalog", "", "path to a YAML schema catalog (omit to use the built-in demo catalog)")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: stupidedi [-catalog path] <edi-file>")
	}

	var catalog *stupidedi.Catalog
	var err error
	if *catalogPath == "" {
		catalog, err = stupidedi.DemoCatalog()
	} else {
		catalog, err = stupidedi.LoadCatalogYAML(*catalogPath)
	}
	if err != nil {
		log.Fatalf("loading catalog: %v", err)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("opening %s: %v", flag.Arg(0), err)
	}
	defer f.Close()

	interchange, errs, err := stupidedi.ReadMessage(context.Background(), f, catalog)
	if err != nil {
		log.Fatalf("parsing %s: %v", flag.Arg(0), err)
	}

	log.Printf("parsed interchange %s -> %s, control number %s",
		interchange.SenderID(), interchange.ReceiverID(), interchange.ControlNumber())

	if len(errs) == 0 {
		log.Printf("no structural errors")
		return
	}
	for _, e := range errs {
		log.Printf("%s", e)
	}
}
