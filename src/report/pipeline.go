package report

import (
	"MissionLaunches/src/config"
	"MissionLaunches/src/datapush"
	"MissionLaunches/src/datasource/file"
	"MissionLaunches/src/processor"
	"MissionLaunches/src/storage"
	"MissionLaunches/src/utils"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// 报表文件名
const (
	OrganizationsFile = "launches_per_organization.html"
	HistogramFile     = "price_histogram.html"
	CountryMapFile    = "launches_per_country.html"
	FailureMapFile    = "failures_per_country.html"
	SunburstFile      = "sunburst.html"
	YearBarFile       = "launches_per_year.html"
	RivalBarFile      = "usa_vs_ussr.html"
	PriceTrendFile    = "avg_price_per_year.png"
)

// Result 一次运行的产物
type Result struct {
	Rows      int
	Artifacts []string // 按生成顺序
	Workbook  string   // 导出的 xlsx，未导出为空
}

// Pipeline 加载、派生列，然后按固定顺序生成全部报表
type Pipeline struct {
	cfg      *config.Config
	dc       *config.DataConfig
	logger   *storage.Logger
	console  *Console
	registry *processor.Registry
	enricher *processor.Enricher
	pusher   datapush.Pusher
}

// NewPipeline 创建报表流水线，console 为控制台报表的输出位置
func NewPipeline(cfg *config.Config, dc *config.DataConfig, logger *storage.Logger, console io.Writer) (*Pipeline, error) {
	reg, err := processor.DefaultRegistry()
	if err != nil {
		return nil, err
	}

	var pusher datapush.Pusher = datapush.NopPusher{}
	if cfg.OpenViewer {
		pusher = datapush.NewBrowserPusher(logger)
	}

	return &Pipeline{
		cfg:      cfg,
		dc:       dc,
		logger:   logger,
		console:  NewConsole(console),
		registry: reg,
		enricher: processor.NewEnricher(dc, reg, cfg.UnmappedCountry, logger),
		pusher:   pusher,
	}, nil
}

// SetPusher 替换报表推送方式
func (p *Pipeline) SetPusher(pusher datapush.Pusher) {
	p.pusher = pusher
}

// run 保存一次运行中的共享状态，df 在派生完成后只读
type run struct {
	df       dataframe.DataFrame
	result   *Result
	sheets   []utils.Sheet
	outputTo string
}

type step struct {
	name string
	fn   func(r *run) error
}

// Run 执行全部报表；ctx 取消后在下一个报表开始前停止
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	t1 := time.Now()

	// 1. 读取数据集
	raw, err := file.ReadDataset(p.cfg.DataFile, file.Options{
		SheetName:    p.cfg.SheetName,
		Encoding:     p.cfg.Encoding,
		Rename:       p.dc.RenameColumns,
		Drop:         p.dc.DropColumns,
		Required:     p.dc.RequiredColumns,
		StrictSchema: p.cfg.StrictSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	p.logger.Info(fmt.Sprintf("已读取 %s: %d 行, %d 列", p.cfg.DataFile, raw.Nrow(), raw.Ncol()))

	// 2. 派生 Country / ISO / year / Price
	df, err := p.enricher.Enrich(raw)
	if err != nil {
		return nil, fmt.Errorf("enrich dataset: %w", err)
	}

	if err := os.MkdirAll(p.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	r := &run{
		df:       df,
		result:   &Result{Rows: df.Nrow()},
		outputTo: p.cfg.OutputDir,
	}

	// 3. 依次生成报表
	for _, s := range p.steps() {
		if err := ctx.Err(); err != nil {
			p.logger.Warning(fmt.Sprintf("已取消，跳过 %s 及之后的报表", s.name))
			return r.result, err
		}
		if err := s.fn(r); err != nil {
			return r.result, fmt.Errorf("%s: %w", s.name, err)
		}
		p.logger.Debug("完成报表 " + s.name)
	}

	// 4. 导出汇总表
	if p.cfg.ExportXLSX != "" && len(r.sheets) > 0 {
		path := filepath.Join(p.cfg.OutputDir, p.cfg.ExportXLSX)
		if err := utils.SaveToExcel(r.sheets, path); err != nil {
			return r.result, fmt.Errorf("export summary: %w", err)
		}
		r.result.Workbook = path
		p.logger.Info("汇总表已导出: " + path)
	}

	// 5. 打开报表
	pushed := datapush.PushAll(p.pusher, r.result.Artifacts, p.logger)

	p.logger.Info(fmt.Sprintf("报表生成完成: %d 个文件, 已推送 %d 个, 耗时 %v",
		len(r.result.Artifacts), pushed, time.Since(t1)))
	return r.result, nil
}

func (p *Pipeline) steps() []step {
	return []step{
		{"launches per organization", p.organizations},
		{"price histogram", p.priceHistogram},
		{"launches per country", p.countryMap},
		{"failures per country", p.failureMap},
		{"sunburst", p.sunburst},
		{"spending per organization", p.spending},
		{"launches per year", p.yearBar},
		{"cold war", p.coldWar},
		{"average price per year", p.priceTrend},
		{"data summary", p.summary},
	}
}

// writeHTML 创建报表文件并记录到结果中
func (r *run) writeHTML(name string, render func(w io.Writer) error) error {
	path := filepath.Join(r.outputTo, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	r.result.Artifacts = append(r.result.Artifacts, path)
	return nil
}

func (r *run) addSheet(name string, frame dataframe.DataFrame) {
	r.sheets = append(r.sheets, utils.Sheet{Name: name, Frame: frame})
}

func (p *Pipeline) organizations(r *run) error {
	rows, err := processor.LaunchesPerOrganization(r.df)
	if err != nil {
		return err
	}
	r.addSheet("organizations", rows.Frame(processor.ColOrganization))
	return r.writeHTML(OrganizationsFile, func(w io.Writer) error {
		return OrganizationBar(w, rows)
	})
}

func (p *Pipeline) priceHistogram(r *run) error {
	priced, err := processor.PricedLaunches(r.df)
	if err != nil {
		return err
	}
	bins, err := processor.Histogram(processor.Prices(priced), p.cfg.HistogramBins)
	if err != nil {
		return err
	}
	if len(bins) == 0 {
		p.logger.Warning("没有价格大于 0 的记录，直方图为空")
	}
	return r.writeHTML(HistogramFile, func(w io.Writer) error {
		return PriceHistogram(w, bins)
	})
}

func (p *Pipeline) countryMap(r *run) error {
	rows, err := processor.LaunchesPerCountry(r.df)
	if err != nil {
		return err
	}
	r.addSheet("countries", rows.Frame(processor.ColLaunches))
	return r.writeHTML(CountryMapFile, func(w io.Writer) error {
		return CountryMap(w, "Rocket Launches per Country", "Total Launches", rows, p.registry)
	})
}

func (p *Pipeline) failureMap(r *run) error {
	rows, err := processor.FailuresPerCountry(r.df)
	if err != nil {
		return err
	}
	r.addSheet("failures", rows.Frame(processor.ColFailures))
	return r.writeHTML(FailureMapFile, func(w io.Writer) error {
		return CountryMap(w, "Rocket Failures per Country", "Total Failures", rows, p.registry)
	})
}

func (p *Pipeline) sunburst(r *run) error {
	nodes, err := processor.Hierarchy(r.df, processor.ColCountry, processor.ColOrganization, processor.ColMissionStatus)
	if err != nil {
		return err
	}
	return r.writeHTML(SunburstFile, func(w io.Writer) error {
		return Sunburst(w, nodes)
	})
}

func (p *Pipeline) spending(r *run) error {
	rows, err := processor.SpendingPerOrganization(r.df)
	if err != nil {
		return err
	}
	r.addSheet("spending", rows.Frame())
	p.console.PrintSpending(rows)
	return nil
}

func (p *Pipeline) yearBar(r *run) error {
	rows, err := processor.LaunchesPerYear(r.df)
	if err != nil {
		return err
	}
	r.addSheet("years", rows.Frame())
	return r.writeHTML(YearBarFile, func(w io.Writer) error {
		return YearBar(w, rows)
	})
}

func (p *Pipeline) coldWar(r *run) error {
	rows, err := processor.RivalLaunchesPerYear(p.enricher.ColdWarRemap(r.df), p.dc.ColdWar)
	if err != nil {
		return err
	}
	r.addSheet("cold_war", rows.Frame())
	return r.writeHTML(RivalBarFile, func(w io.Writer) error {
		return RivalBar(w, rows, p.dc.ColdWar.Rivals)
	})
}

func (p *Pipeline) priceTrend(r *run) error {
	prices, err := processor.MeanPricePerYear(r.df)
	if err != nil {
		return err
	}
	if len(prices) == 0 {
		p.logger.Warning("没有价格大于 0 的记录，跳过价格趋势图")
		return nil
	}
	r.addSheet("avg_price", prices.Frame(p.cfg.MovingAverage))

	path := filepath.Join(r.outputTo, PriceTrendFile)
	if err := PriceTrendPNG(path, prices, p.cfg.MovingAverage); err != nil {
		return err
	}
	r.result.Artifacts = append(r.result.Artifacts, path)
	return nil
}

func (p *Pipeline) summary(r *run) error {
	p.console.PrintSummary(processor.Summary(r.df))
	for _, col := range []string{processor.ColRocketStatus, processor.ColMissionStatus} {
		counts, err := processor.ValueCounts(r.df, col)
		if err != nil {
			return err
		}
		p.console.PrintValueCounts(col, counts)
	}
	return nil
}
