package report

import (
	"MissionLaunches/src/processor"
	"fmt"
	"image/color"
	"math"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	dodgerBlue = color.RGBA{R: 30, G: 144, B: 255, A: 180}
	crimson    = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// yearTicks 1900 起每 5 年一个刻度，至少到 2020
func yearTicks(last int) plot.ConstantTicks {
	end := 2020
	if last > end {
		end = last
	}
	var ticks plot.ConstantTicks
	for y := 1900; y <= end; y += 5 {
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: strconv.Itoa(y)})
	}
	return ticks
}

// PriceTrendPNG 年度平均价格散点图，叠加移动平均折线，保存为 png
func PriceTrendPNG(path string, prices processor.YearPrices, window int) error {
	if len(prices) == 0 {
		return fmt.Errorf("price trend: no priced launches")
	}

	p := plot.New()
	p.Title.Text = "Avg Price Overtime"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = "Price in Millions $"
	p.X.Label.Text = "Year"

	years := prices.Years()
	means := prices.Means()

	points := make(plotter.XYs, len(prices))
	for i := range prices {
		points[i].X = float64(years[i])
		points[i].Y = means[i]
	}

	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return fmt.Errorf("price trend scatter: %w", err)
	}
	scatter.GlyphStyle.Color = dodgerBlue
	scatter.GlyphStyle.Radius = vg.Points(5)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(scatter)
	p.Legend.Add("Avg Price", scatter)

	// 未定义的移动平均点不画
	var trend plotter.XYs
	for i, v := range processor.MovingAverage(means, window) {
		if math.IsNaN(v) {
			continue
		}
		trend = append(trend, plotter.XY{X: float64(years[i]), Y: v})
	}
	if len(trend) > 0 {
		line, err := plotter.NewLine(trend)
		if err != nil {
			return fmt.Errorf("price trend line: %w", err)
		}
		line.Color = crimson
		line.Width = vg.Points(3)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("%d-year moving average", window), line)
	}

	p.Add(plotter.NewGrid())
	p.X.Min = 1900
	p.X.Max = math.Max(2020, float64(years[len(years)-1]))
	p.X.Tick.Marker = yearTicks(years[len(years)-1])
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.Legend.Top = true

	if err := p.Save(14*vg.Inch, 8*vg.Inch, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
