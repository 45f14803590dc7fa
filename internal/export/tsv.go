package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"truckspec/internal/catalog"
)

const tsvHeader = "brand\tmodel\tkind\tname\tpower\ttorque\trpm\tspeeds\tretarder\tratio\tcode"

// EncodeTSV writes one row per engine and transmission. Brands are sorted,
// models keep their document order.
func EncodeTSV(w io.Writer, doc catalog.Document) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, tsvHeader)

	for _, brand := range doc.Brands() {
		for _, m := range doc[brand] {
			for _, e := range m.Engines {
				writeRow(bw, brand, m.Model, "engine", e.Name, e.RatedPower, e.Torque, e.RPMLimit, "", "", "", e.Code)
			}
			for _, tr := range m.Transmissions {
				writeRow(bw, brand, m.Model, "transmission", tr.Name, "", "", "",
					strconv.Itoa(tr.Speeds), strconv.FormatBool(tr.Retarder), tr.Ratio, tr.Code)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write TSV: %w", err)
	}
	return nil
}

// WriteTSV writes the flat export to outputPath.
func WriteTSV(doc catalog.Document, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create TSV file: %w", err)
	}
	defer f.Close()

	if err := EncodeTSV(f, doc); err != nil {
		return err
	}

	log.Info().Str("path", outputPath).Int("brands", len(doc)).Msg("Exported catalogue to TSV")
	return nil
}

func writeRow(w io.Writer, cols ...string) {
	for i, c := range cols {
		cols[i] = escapeTSV(c)
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))
}

// escapeTSV replaces tabs and newlines in a string for TSV safety.
func escapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}
