package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/swdee/go-lanefind/record"
	"github.com/swdee/go-lanefind/report"
)

func main() {
	// disable logging timestamps
	log.SetFlags(0)

	// read in cli flags
	recFile := flag.String("i", "", "Lane recording file to read")
	outFile := flag.String("o", "report.html", "HTML file to write the report to")
	dump := flag.Bool("dump", false, "Print every frame record")

	flag.Parse()

	if *recFile == "" {
		log.Fatal("A recording file must be given with -i")
	}

	head, recs, err := record.ReadAll(*recFile)

	if err != nil {
		log.Fatalf("Error reading recording: %v", err)
	}

	log.Printf("Session %s, source %s, created %s, %d frames",
		head.Session, head.Source, head.Created.Format("2006-01-02 15:04:05"), len(recs))

	failed := 0

	for _, rec := range recs {
		if !rec.OK {
			failed++
		}

		if *dump {
			fmt.Println(format(rec))
		}
	}

	log.Printf("Failed frames: %d", failed)

	title := head.Source

	if title == "" {
		title = filepath.Base(*recFile)
	}

	if err := report.WriteHTML(*outFile, title, recs); err != nil {
		log.Fatalf("Error writing report: %v", err)
	}

	log.Printf("Report written to %s", *outFile)
}

// format returns the frame record as a single line
func format(rec record.FrameRecord) string {

	if !rec.OK {
		return fmt.Sprintf("%05d failed held=%t err=%q", rec.Index, rec.Held, rec.Error)
	}

	return fmt.Sprintf("%05d %-11s left=%.0fm right=%.0fm offset=%.2fm px=%d/%d",
		rec.Index, rec.Mode, rec.LeftRadius, rec.RightRadius, rec.Offset,
		rec.LeftPixels, rec.RightPixels)
}
