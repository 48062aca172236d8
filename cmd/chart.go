package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/mawngo/kcluster/internal/kmeans"
)

// writeChart renders the first two columns of data as an HTML scatter chart,
// one series per cluster plus one for the centroids. One-column data is
// drawn on the x axis.
func writeChart(filename string, data kmeans.Dataset, r *kmeans.Result) error {
	xy := func(p []float64) []interface{} {
		if len(p) < 2 {
			return []interface{}{p[0], 0}
		}
		return []interface{}{p[0], p[1]}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "K-means clustering",
			Subtitle: fmt.Sprintf("k=%d, %s after %d iterations", len(r.Centroids), r.State, r.Iterations),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x0"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "x1"}),
	)

	series := make([][]opts.ScatterData, len(r.Centroids))
	for i, n := range r.Assignment {
		series[n] = append(series[n], opts.ScatterData{Value: xy(data[i])})
	}
	for n, points := range series {
		scatter.AddSeries(fmt.Sprintf("Cluster %d", n), points)
	}

	centroids := make([]opts.ScatterData, len(r.Centroids))
	for n, c := range r.Centroids {
		centroids[n] = opts.ScatterData{Name: fmt.Sprintf("Centroid %d", n), Value: xy(c), Symbol: "diamond", SymbolSize: 16}
	}
	scatter.AddSeries("Centroids", centroids)

	o, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		err := o.Close()
		if err != nil {
			slog.Error("Error closing chart file",
				slog.String("out", filename),
				slog.Any("err", err))
		}
	}()
	return scatter.Render(o)
}
