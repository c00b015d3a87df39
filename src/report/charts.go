package report

import (
	"MissionLaunches/src/processor"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// 分类配色
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// 连续色阶，由浅到深
var matterScale = []string{
	"#FDEDB0", "#FAB67E", "#F27B5E", "#D34F62", "#A23367", "#6A2360", "#2F0F3D",
}

var rivalColors = map[string]string{
	"USA":                "#636efa",
	"Russian Federation": "#EF553B",
}

func initOpts(pageTitle string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: pageTitle,
		Width:     "1200px",
		Height:    "700px",
	})
}

func titleOpts(title string) charts.GlobalOpts {
	return charts.WithTitleOpts(opts.Title{Title: title, Left: "center"})
}

func continuousScale(peak int) charts.GlobalOpts {
	if peak < 1 {
		peak = 1
	}
	return charts.WithVisualMapOpts(opts.VisualMap{
		Calculable: opts.Bool(true),
		Min:        0,
		Max:        float32(peak),
		InRange:    &opts.VisualMapInRange{Color: matterScale},
	})
}

// OrganizationBar 各组织发射总数柱状图，每个组织一种颜色
func OrganizationBar(w io.Writer, rows processor.CountRows) error {
	names := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	for i, r := range rows {
		names[i] = r.Key
		data[i] = opts.BarData{
			Name:      r.Key,
			Value:     r.Count,
			ItemStyle: &opts.ItemStyle{Color: palette[i%len(palette)]},
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Launches per Organization"),
		titleOpts("Total Launches per Organization"),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Organizations",
			AxisLabel: &opts.AxisLabel{Rotate: 60, Interval: "0"},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Total Launches"}),
	)
	bar.SetXAxis(names).AddSeries("Launches", data)
	return bar.Render(w)
}

// PriceHistogram 价格分布直方图
func PriceHistogram(w io.Writer, bins []processor.Bin) error {
	labels := make([]string, len(bins))
	data := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%s-%s", formatPrice(b.Lo), formatPrice(b.Hi))
		data[i] = opts.BarData{Value: b.Count}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Price Histogram"),
		titleOpts("Amount of Rockets to Price"),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Price (In Millions $)",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Count"}),
	)
	bar.SetXAxis(labels).AddSeries("Rockets", data,
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "0%"}),
	)
	return bar.Render(w)
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// CountryMap 世界地图，按国家着色
// 国家名取查询表中的地图名称，查不到时使用原名
func CountryMap(w io.Writer, title, seriesName string, rows processor.CountryCounts, reg *processor.Registry) error {
	data := make([]opts.MapData, 0, len(rows))
	for _, r := range rows {
		name := r.Country
		if c, ok := reg.ByAlpha3(r.ISO); ok {
			name = c.MapName()
		}
		data = append(data, opts.MapData{Name: name, Value: r.Count})
	}

	m := charts.NewMap()
	m.RegisterMapType("world")
	m.SetGlobalOptions(
		initOpts(title),
		titleOpts(title),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		continuousScale(rows.Max()),
	)
	m.AddSeries(seriesName, data)
	return m.Render(w)
}

// Sunburst 国家 -> 组织 -> 任务结果 旭日图
func Sunburst(w io.Writer, nodes []*processor.Node) error {
	sun := charts.NewSunburst()
	sun.SetGlobalOptions(
		initOpts("Space Exploration Data"),
		titleOpts("Space Exploration Data"),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	sun.AddSeries("launches", sunburstData(nodes),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
		charts.WithSunburstOpts(opts.SunburstChart{Animation: opts.Bool(true)}),
	)
	return sun.Render(w)
}

func sunburstData(nodes []*processor.Node) []opts.SunBurstData {
	out := make([]opts.SunBurstData, len(nodes))
	for i, n := range nodes {
		out[i] = opts.SunBurstData{Name: n.Name, Value: float64(n.Value)}
		if len(n.Children) > 0 {
			children := sunburstData(n.Children)
			out[i].Children = make([]*opts.SunBurstData, len(children))
			for j := range children {
				out[i].Children[j] = &children[j]
			}
		}
	}
	return out
}

// RivalBar 冷战时期美苏每年发射次数分组柱状图
func RivalBar(w io.Writer, rows processor.YearCountryCounts, rivals []string) error {
	years := rows.Years()
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = strconv.Itoa(y)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("USA vs USSR"),
		titleOpts("USA vs USSR"),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Launches"}),
	)
	bar.SetXAxis(labels)

	for i, country := range rivals {
		counts, present := rows.Pivot(country, years)
		color, ok := rivalColors[country]
		if !ok {
			color = palette[i%len(palette)]
		}

		data := make([]opts.BarData, len(years))
		for j := range years {
			// 当年没有发射时不画柱
			var v interface{} = "-"
			if present[j] {
				v = counts[j]
			}
			data[j] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: color}}
		}
		bar.AddSeries(country, data)
	}
	return bar.Render(w)
}

// YearBar 每年发射次数柱状图，颜色随数量变化
func YearBar(w io.Writer, rows processor.YearCounts) error {
	labels := make([]string, len(rows))
	data := make([]opts.BarData, len(rows))
	peak := 0
	for i, r := range rows {
		labels[i] = strconv.Itoa(r.Year)
		data[i] = opts.BarData{Value: r.Count}
		if r.Count > peak {
			peak = r.Count
		}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts("Launches Per Year"),
		titleOpts("Launches Per Year"),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Launches"}),
		continuousScale(peak),
	)
	bar.SetXAxis(labels).AddSeries("Launches", data)
	return bar.Render(w)
}
