package processor

import (
	"MissionLaunches/src/config"
	"MissionLaunches/src/utils"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// 统计列名
const (
	ColLaunches = "Launches"
	ColFailures = "Failures"
	ColSpending = "Spending"
	ColAvgPrice = "AvgPrice"
	ColMovAvg   = "MovingAverage"
)

// CountRow 单键计数
type CountRow struct {
	Key   string
	Count int
}

type CountRows []CountRow

// Total 计数之和
func (rows CountRows) Total() int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}

// Frame 转换为 DataFrame，用于导出
func (rows CountRows) Frame(keyCol string) dataframe.DataFrame {
	keys := make([]string, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		keys[i], counts[i] = r.Key, r.Count
	}
	return dataframe.New(
		series.New(keys, series.String, keyCol),
		series.New(counts, series.Int, ColLaunches),
	)
}

// CountryCount 国家维度计数
type CountryCount struct {
	Country string
	ISO     string
	Count   int
}

type CountryCounts []CountryCount

func (rows CountryCounts) Total() int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}

// Max 最大计数，没有数据时为 0
func (rows CountryCounts) Max() int {
	m := 0
	for _, r := range rows {
		if r.Count > m {
			m = r.Count
		}
	}
	return m
}

func (rows CountryCounts) Frame(countCol string) dataframe.DataFrame {
	countries := make([]string, len(rows))
	codes := make([]string, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		countries[i], codes[i], counts[i] = r.Country, r.ISO, r.Count
	}
	return dataframe.New(
		series.New(countries, series.String, ColCountry),
		series.New(codes, series.String, ColISO),
		series.New(counts, series.Int, countCol),
	)
}

// YearCount 年度计数
type YearCount struct {
	Year  int
	Count int
}

type YearCounts []YearCount

func (rows YearCounts) Total() int {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	return total
}

func (rows YearCounts) Frame() dataframe.DataFrame {
	years := make([]int, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		years[i], counts[i] = r.Year, r.Count
	}
	return dataframe.New(
		series.New(years, series.Int, ColYear),
		series.New(counts, series.Int, ColLaunches),
	)
}

// YearCountryCount (年, 国家) 计数
type YearCountryCount struct {
	Year    int
	Country string
	Count   int
}

type YearCountryCounts []YearCountryCount

// Years 出现过的年份，升序
func (rows YearCountryCounts) Years() []int {
	seen := map[int]bool{}
	var years []int
	for _, r := range rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	return years
}

// Pivot 以 years 为行展开某个国家的计数，缺失的年份返回 ok=false
func (rows YearCountryCounts) Pivot(country string, years []int) ([]int, []bool) {
	byYear := map[int]int{}
	for _, r := range rows {
		if r.Country == country {
			byYear[r.Year] = r.Count
		}
	}
	counts := make([]int, len(years))
	present := make([]bool, len(years))
	for i, y := range years {
		counts[i], present[i] = byYear[y]
	}
	return counts, present
}

func (rows YearCountryCounts) Frame() dataframe.DataFrame {
	years := make([]int, len(rows))
	countries := make([]string, len(rows))
	counts := make([]int, len(rows))
	for i, r := range rows {
		years[i], countries[i], counts[i] = r.Year, r.Country, r.Count
	}
	return dataframe.New(
		series.New(years, series.Int, ColYear),
		series.New(countries, series.String, ColCountry),
		series.New(counts, series.Int, ColLaunches),
	)
}

// Spending 组织总花费(百万美元)
type Spending struct {
	Organization string
	Total        float64
}

type Spendings []Spending

func (rows Spendings) Frame() dataframe.DataFrame {
	orgs := make([]string, len(rows))
	totals := make([]float64, len(rows))
	for i, r := range rows {
		orgs[i], totals[i] = r.Organization, r.Total
	}
	return dataframe.New(
		series.New(orgs, series.String, ColOrganization),
		series.New(totals, series.Float, ColSpending),
	)
}

// YearPrice 年度平均价格
type YearPrice struct {
	Year int
	Mean float64
}

type YearPrices []YearPrice

func (rows YearPrices) Years() []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Year
	}
	return out
}

func (rows YearPrices) Means() []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Mean
	}
	return out
}

// Frame 附带移动平均列，未定义的点为 NaN
func (rows YearPrices) Frame(window int) dataframe.DataFrame {
	years := rows.Years()
	means := rows.Means()
	return dataframe.New(
		series.New(years, series.Int, ColYear),
		series.New(means, series.Float, ColAvgPrice),
		series.New(MovingAverage(means, window), series.Float, ColMovAvg),
	)
}

// groups 按 cols 分组，返回每组的 DataFrame
// 分组前只保留分组列，避免 gota 重新推断无关列的类型
func groups(df dataframe.DataFrame, cols ...string) (map[string]dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return map[string]dataframe.DataFrame{}, nil
	}
	if missing := utils.MissingColumns(df, cols); len(missing) > 0 {
		return nil, fmt.Errorf("group by: missing column %s", strings.Join(missing, ", "))
	}

	g := df.Select(cols).GroupBy(cols...)
	if g == nil {
		return nil, fmt.Errorf("group by: no columns")
	}
	if g.Err != nil {
		return nil, fmt.Errorf("group by %v: %w", cols, g.Err)
	}
	return g.GetGroups(), nil
}

// countBy 单列计数，按数量降序、键名升序
func countBy(df dataframe.DataFrame, col string) (CountRows, error) {
	gs, err := groups(df, col)
	if err != nil {
		return nil, err
	}

	rows := make(CountRows, 0, len(gs))
	for _, g := range gs {
		rows = append(rows, CountRow{Key: g.Col(col).Elem(0).String(), Count: g.Nrow()})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

// LaunchesPerOrganization 每个组织的发射次数
func LaunchesPerOrganization(df dataframe.DataFrame) (CountRows, error) {
	return countBy(df, ColOrganization)
}

// ValueCounts 某列各取值的出现次数
func ValueCounts(df dataframe.DataFrame, col string) (CountRows, error) {
	return countBy(df, col)
}

// positivePrice 只保留 Price > 0 的行
func positivePrice(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return df, nil
	}
	if df.Col(ColPrice).Type() != series.Float {
		return dataframe.DataFrame{}, fmt.Errorf("price column is %s, clean it first", df.Col(ColPrice).Type())
	}

	out := df.Filter(dataframe.F{Colname: ColPrice, Comparator: series.Greater, Comparando: 0.0})
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter price: %w", out.Err)
	}
	return out, nil
}

// PricedLaunches 有价格的发射记录，按价格降序
func PricedLaunches(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	priced, err := positivePrice(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if priced.Nrow() < 2 {
		return priced, nil
	}

	sorted := priced.Arrange(dataframe.RevSort(ColPrice))
	if sorted.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("sort by price: %w", sorted.Err)
	}
	return sorted, nil
}

// countByCountry (Country, ISO) 计数，按数量降序、国家名升序
func countByCountry(df dataframe.DataFrame) (CountryCounts, error) {
	gs, err := groups(df, ColCountry, ColISO)
	if err != nil {
		return nil, err
	}

	rows := make(CountryCounts, 0, len(gs))
	for _, g := range gs {
		rows = append(rows, CountryCount{
			Country: g.Col(ColCountry).Elem(0).String(),
			ISO:     g.Col(ColISO).Elem(0).String(),
			Count:   g.Nrow(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Country < rows[j].Country
	})
	return rows, nil
}

// LaunchesPerCountry 每个国家的发射次数
func LaunchesPerCountry(df dataframe.DataFrame) (CountryCounts, error) {
	return countByCountry(df)
}

// FailuresPerCountry 每个国家 Mission_Status == "Failure" 的次数
func FailuresPerCountry(df dataframe.DataFrame) (CountryCounts, error) {
	if df.Nrow() == 0 {
		return CountryCounts{}, nil
	}
	failed := df.Filter(dataframe.F{Colname: ColMissionStatus, Comparator: series.Eq, Comparando: "Failure"})
	if failed.Err != nil {
		return nil, fmt.Errorf("filter failures: %w", failed.Err)
	}
	return countByCountry(failed)
}

// SpendingPerOrganization 各组织 Price > 0 的总花费，降序
func SpendingPerOrganization(df dataframe.DataFrame) (Spendings, error) {
	priced, err := positivePrice(df)
	if err != nil {
		return nil, err
	}

	orgs := priced.Col(ColOrganization).Records()
	prices := Prices(priced)

	totals := map[string]float64{}
	for i, org := range orgs {
		totals[org] += prices[i]
	}

	rows := make(Spendings, 0, len(totals))
	for org, total := range totals {
		rows = append(rows, Spending{Organization: org, Total: total})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Organization < rows[j].Organization
	})
	return rows, nil
}

// LaunchesPerYear 每年发射次数，按年份升序
func LaunchesPerYear(df dataframe.DataFrame) (YearCounts, error) {
	gs, err := groups(df, ColYear)
	if err != nil {
		return nil, err
	}

	rows := make(YearCounts, 0, len(gs))
	for _, g := range gs {
		year, err := g.Col(ColYear).Elem(0).Int()
		if err != nil {
			return nil, fmt.Errorf("launches per year: %w", err)
		}
		rows = append(rows, YearCount{Year: year, Count: g.Nrow()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// RivalLaunchesPerYear 冷战对手每年的发射次数
// df 应为 ColdWarRemap 之后的表，只统计截止年份(含)之前且国家属于 Rivals 的行
func RivalLaunchesPerYear(df dataframe.DataFrame, cw config.ColdWarConfig) (YearCountryCounts, error) {
	if df.Nrow() == 0 || len(cw.Rivals) == 0 {
		return YearCountryCounts{}, nil
	}

	rivals := make([]dataframe.F, 0, len(cw.Rivals))
	for _, c := range cw.Rivals {
		rivals = append(rivals, dataframe.F{Colname: ColCountry, Comparator: series.Eq, Comparando: c})
	}

	era := df.Filter(dataframe.F{Colname: ColYear, Comparator: series.LessEq, Comparando: cw.CutoffYear})
	if era.Err != nil {
		return nil, fmt.Errorf("filter cold war years: %w", era.Err)
	}
	if era.Nrow() == 0 {
		return YearCountryCounts{}, nil
	}
	// 多个 F 之间为或关系
	era = era.Filter(rivals...)
	if era.Err != nil {
		return nil, fmt.Errorf("filter rivals: %w", era.Err)
	}

	gs, err := groups(era, ColYear, ColCountry)
	if err != nil {
		return nil, err
	}

	rows := make(YearCountryCounts, 0, len(gs))
	for _, g := range gs {
		year, err := g.Col(ColYear).Elem(0).Int()
		if err != nil {
			return nil, fmt.Errorf("rival launches per year: %w", err)
		}
		rows = append(rows, YearCountryCount{
			Year:    year,
			Country: g.Col(ColCountry).Elem(0).String(),
			Count:   g.Nrow(),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Country < rows[j].Country
	})
	return rows, nil
}

// MeanPricePerYear Price > 0 的年度平均价格，按年份升序
func MeanPricePerYear(df dataframe.DataFrame) (YearPrices, error) {
	priced, err := positivePrice(df)
	if err != nil {
		return nil, err
	}
	if priced.Nrow() == 0 {
		return YearPrices{}, nil
	}

	yearCol := priced.Col(ColYear)
	prices := Prices(priced)

	byYear := map[int][]float64{}
	for i := 0; i < priced.Nrow(); i++ {
		year, err := yearCol.Elem(i).Int()
		if err != nil {
			return nil, fmt.Errorf("mean price per year: %w", err)
		}
		byYear[year] = append(byYear[year], prices[i])
	}

	rows := make(YearPrices, 0, len(byYear))
	for year, values := range byYear {
		rows = append(rows, YearPrice{Year: year, Mean: stat.Mean(values, nil)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Year < rows[j].Year })
	return rows, nil
}

// MovingAverage 尾随移动平均，前 window-1 个点没有定义，记为 NaN
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 {
		window = 1
	}
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = stat.Mean(values[i-window+1:i+1], nil)
	}
	return out
}

// Bin 直方图的一个区间 [Lo, Hi)
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Histogram 在最小值与最大值之间等宽分箱，NaN 被忽略
func Histogram(values []float64, bins int) ([]Bin, error) {
	if bins < 1 {
		return nil, fmt.Errorf("histogram: bins must be positive, got %d", bins)
	}

	x := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			x = append(x, v)
		}
	}
	if len(x) == 0 {
		return nil, nil
	}
	sort.Float64s(x)

	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// 最大值落在最后一个区间内
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return out, nil
}

// DataSummary 数据集概况
type DataSummary struct {
	Rows          int
	Cols          int
	Columns       []string
	MissingByCol  map[string]int
	HasMissing    bool
	Duplicates    int
	HasDuplicates bool
}

// Summary 统计行列数、空值与重复行
func Summary(df dataframe.DataFrame) DataSummary {
	rows, cols := df.Dims()
	s := DataSummary{
		Rows:         rows,
		Cols:         cols,
		Columns:      df.Names(),
		MissingByCol: make(map[string]int, cols),
	}

	for _, name := range s.Columns {
		col := df.Col(name)
		for i := 0; i < col.Len(); i++ {
			if utils.IsMissing(col.Elem(i)) {
				s.MissingByCol[name]++
			}
		}
		if s.MissingByCol[name] > 0 {
			s.HasMissing = true
		}
	}

	records := df.Records()
	if len(records) > 1 {
		seen := make(map[string]bool, len(records)-1)
		for _, rec := range records[1:] {
			key := strings.Join(rec, "\x1f")
			if seen[key] {
				s.Duplicates++
				continue
			}
			seen[key] = true
		}
	}
	s.HasDuplicates = s.Duplicates > 0
	return s
}

// Node 旭日图节点
type Node struct {
	Name     string
	Value    int
	Children []*Node
}

// Hierarchy 按 cols 逐层嵌套计数，例如 Country -> Organization -> Mission_Status
func Hierarchy(df dataframe.DataFrame, cols ...string) ([]*Node, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("hierarchy: no columns")
	}
	if missing := utils.MissingColumns(df, cols); len(missing) > 0 {
		return nil, fmt.Errorf("hierarchy: missing column %s", strings.Join(missing, ", "))
	}

	columns := make([][]string, len(cols))
	for i, c := range cols {
		columns[i] = df.Col(c).Records()
	}

	root := &Node{}
	index := map[*Node]map[string]*Node{}
	for row := 0; row < df.Nrow(); row++ {
		parent := root
		for level := range cols {
			name := columns[level][row]
			children, ok := index[parent]
			if !ok {
				children = map[string]*Node{}
				index[parent] = children
			}
			child, ok := children[name]
			if !ok {
				child = &Node{Name: name}
				children[name] = child
				parent.Children = append(parent.Children, child)
			}
			child.Value++
			parent = child
		}
	}

	sortNodes(root.Children)
	return root.Children, nil
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Value != nodes[j].Value {
			return nodes[i].Value > nodes[j].Value
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
