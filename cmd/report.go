package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mawngo/kcluster/internal/kmeans"
	"github.com/mawngo/kcluster/internal/reference"
)

type report struct {
	K    int `json:"k"`
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	*kmeans.Result
	Reference *comparison `json:"reference,omitempty"`
}

type comparison struct {
	Backend   string  `json:"backend"`
	Agreement float64 `json:"agreement"`
	*reference.Partition
}

func writeReport(w io.Writer, format string, rep report) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "points\t%d x %d\n", rep.Rows, rep.Cols)
	_, _ = fmt.Fprintf(tw, "clusters\t%d\n", rep.K)
	_, _ = fmt.Fprintf(tw, "state\t%s\n", rep.State)
	_, _ = fmt.Fprintf(tw, "iterations\t%d\n", rep.Iterations)
	_, _ = fmt.Fprintf(tw, "inertia\t%s\n", formatFloat(rep.Inertia))
	for _, d := range rep.Degenerate {
		_, _ = fmt.Fprintf(tw, "empty\tcluster %d at iteration %d\n", d.Cluster, d.Iteration)
	}
	if c := rep.Reference; c != nil {
		_, _ = fmt.Fprintf(tw, "agreement\t%.4f (%s, %d passes)\n", c.Agreement, c.Backend, c.Iterations)
	}
	_, _ = fmt.Fprintln(tw)

	_, _ = fmt.Fprintln(tw, "cluster\tsize\tcentroid")
	for i, c := range rep.Centroids {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\n", i, rep.Sizes[i], formatPoint(c))
	}
	_, _ = fmt.Fprintln(tw)

	_, _ = fmt.Fprintln(tw, "point\tcluster")
	for i, n := range rep.Assignment {
		_, _ = fmt.Fprintf(tw, "%d\t%d\n", i, n)
	}
	return tw.Flush()
}

type summary struct {
	K          int     `json:"k"`
	State      string  `json:"state"`
	Iterations int     `json:"iterations"`
	Inertia    float64 `json:"inertia"`
	Empty      int     `json:"empty"`
}

func writeSweep(w io.Writer, format string, summaries []summary) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "k\tstate\titerations\tinertia\tempty")
	for _, s := range summaries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%d\n", s.K, s.State, s.Iterations, formatFloat(s.Inertia), s.Empty)
	}
	return tw.Flush()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}

func formatPoint(p []float64) string {
	s := make([]string, len(p))
	for i, v := range p {
		s[i] = formatFloat(v)
	}
	return strings.Join(s, " ")
}
