package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mawngo/kcluster/internal/kmeans"
	"github.com/stretchr/testify/require"
)

const twoGroups = "# x y\n0 0\n0 1\n10 0\n10 1\n"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cli := NewCLI()
	out := &bytes.Buffer{}
	cli.command.SetOut(out)
	cli.command.SetErr(&bytes.Buffer{})
	cli.command.SetIn(strings.NewReader(stdin))
	cli.command.SetArgs(args)
	err := cli.command.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "points.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestCLI_TextReport(t *testing.T) {
	out, err := execute(t, "", writeInput(t, twoGroups), "-k", "2", "--init", "farthest")
	require.NoError(t, err)

	require.Contains(t, out, "converged")
	require.Contains(t, out, "0 0.5")
	require.Contains(t, out, "10 0.5")
	require.Contains(t, out, "point  cluster")
}

func TestCLI_JSONReport(t *testing.T) {
	out, err := execute(t, "", writeInput(t, twoGroups), "--init=farthest", "-f", "json")
	require.NoError(t, err)

	var rep struct {
		K          int         `json:"k"`
		Rows       int         `json:"rows"`
		Cols       int         `json:"cols"`
		Centroids  [][]float64 `json:"centroids"`
		Assignment []int       `json:"assignment"`
		Converged  bool        `json:"converged"`
		State      string      `json:"state"`
		Iterations int         `json:"iterations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, 2, rep.K)
	require.Equal(t, 4, rep.Rows)
	require.Equal(t, 2, rep.Cols)
	require.True(t, rep.Converged)
	require.Equal(t, "converged", rep.State)
	require.Equal(t, []int{0, 0, 1, 1}, rep.Assignment)
	require.Equal(t, [][]float64{{0, 0.5}, {10, 0.5}}, rep.Centroids)
}

func TestCLI_Stdin(t *testing.T) {
	out, err := execute(t, "1,2\n3,4\n5,9\n", "-k", "1", "--format", "json")
	require.NoError(t, err)

	var rep struct {
		Centroids  [][]float64 `json:"centroids"`
		Iterations int         `json:"iterations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, 1, rep.Iterations)
	require.InDelta(t, 3, rep.Centroids[0][0], 1e-9)
	require.InDelta(t, 5, rep.Centroids[0][1], 1e-9)
}

func TestCLI_Errors(t *testing.T) {
	input := writeInput(t, twoGroups)

	_, err := execute(t, "", input, "-k", "5")
	require.ErrorIs(t, err, kmeans.ErrInvalidConfiguration)

	_, err = execute(t, "", input, "--format", "yaml")
	require.ErrorContains(t, err, "unknown format")

	_, err = execute(t, "", input, "--init", "kmeans++")
	require.ErrorContains(t, err, "unknown init policy")

	_, err = execute(t, "", input, "--delimiter", "::")
	require.ErrorContains(t, err, "single character")

	_, err = execute(t, "", filepath.Join(t.TempDir(), "missing.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCLI_Sweep(t *testing.T) {
	out, err := execute(t, "", writeInput(t, twoGroups), "--sweep", "1:4", "-t", "2", "-f", "json")
	require.NoError(t, err)

	var summaries []summary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 4)
	for i, s := range summaries {
		require.Equal(t, i+1, s.K)
		require.Equal(t, "converged", s.State)
	}
	require.InDelta(t, 0, summaries[3].Inertia, 1e-9)

	_, err = execute(t, "", writeInput(t, twoGroups), "--sweep", "1:5")
	require.ErrorIs(t, err, kmeans.ErrInvalidConfiguration)
}

func TestCLI_CompareAndChart(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 10; i++ {
		b.WriteString("0 0\n100 100\n")
	}
	chart := filepath.Join(t.TempDir(), "chart.html")

	out, err := execute(t, "", writeInput(t, b.String()), "--init", "farthest", "--compare", "--chart", chart, "-f", "json")
	require.NoError(t, err)

	var rep struct {
		Reference struct {
			Backend    string  `json:"backend"`
			Agreement  float64 `json:"agreement"`
			Assignment []int   `json:"assignment"`
		} `json:"reference"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Equal(t, "muesli/kmeans", rep.Reference.Backend)
	require.Len(t, rep.Reference.Assignment, 20)
	require.GreaterOrEqual(t, rep.Reference.Agreement, 0.0)
	require.LessOrEqual(t, rep.Reference.Agreement, 1.0)

	html, err := os.ReadFile(chart)
	require.NoError(t, err)
	require.Contains(t, string(html), "Cluster 0")
	require.Contains(t, string(html), "Centroids")
}

func TestParseSweep(t *testing.T) {
	lo, hi, err := parseSweep("2:6")
	require.NoError(t, err)
	require.Equal(t, 2, lo)
	require.Equal(t, 6, hi)

	for _, s := range []string{"3", "a:4", "2:b", "0:3", "5:2"} {
		_, _, err := parseSweep(s)
		require.Error(t, err, s)
	}
}
