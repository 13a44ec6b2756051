package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// ErrPrintedAndExitOK is returned by ParseArgs when --examples was given.
// Apps should catch this, print the examples and exit 0.
var ErrPrintedAndExitOK = errors.New("examples requested")

// PrintExamples writes a short quickstart to out.
func PrintExamples(out io.Writer) {
	if out == nil {
		return
	}
	head := color.New(color.Bold).SprintFunc()
	cmd := color.New(color.FgHiCyan).SprintFunc()

	fmt.Fprintf(out, "%s\n\n", head("pfmscan – quickstart"))

	fmt.Fprintln(out, "Scan a FASTA for motif occurrences (GFF lines):")
	fmt.Fprintf(out, "  %s\n\n", cmd("pfmscan -p motifs.pfm input.fa"))

	fmt.Fprintln(out, "BED regions against a genome, BED6 output:")
	fmt.Fprintf(out, "  %s\n\n", cmd("pfmscan -p motifs.pfm -g hg38.fa --bed peaks.bed"))

	fmt.Fprintln(out, "Count table at 5% FPR, all motifs per sequence:")
	fmt.Fprintf(out, "  %s\n\n", cmd("pfmscan -p motifs.pfm -f 0.05 -n 0 --table input.fa"))

	fmt.Fprintln(out, "Best score per sequence and motif, GC-normalized z-scores:")
	fmt.Fprintf(out, "  %s\n", cmd("pfmscan -p motifs.pfm --score-table -z --gc input.fa"))

	fmt.Fprintln(out, "\nTip: run with --help for all flags.")
}
