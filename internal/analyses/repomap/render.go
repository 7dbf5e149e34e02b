package repomap

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// renderHeight is the chart canvas height for the repo map bar chart.
const renderHeight = "400px"

// RenderTopN renders the top-N PageRank-scored files as an HTML bar chart,
// the same go-echarts idiom the teacher's per-analyzer plot.go files use
// for their own score distributions (e.g. clones.generateCloneTypePieChart),
// applied here to RepoMap's file-importance ranking instead of a
// history-mining metric.
func RenderTopN(res Result, n int, w io.Writer) error {
	names := TopN(res.PageRank, n)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Repo Map — File Importance",
			Subtitle: "Top files by PageRank score over the call/import graph",
		}),
		charts.WithInitializationOpts(opts.Initialization{Height: renderHeight}),
	)

	scores := make([]opts.BarData, len(names))
	for i, name := range names {
		scores[i] = opts.BarData{Value: res.PageRank[name]}
	}

	bar.SetXAxis(names).
		AddSeries("PageRank", scores).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))

	return bar.Render(w)
}
