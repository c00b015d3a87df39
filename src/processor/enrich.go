package processor

import (
	"MissionLaunches/src/config"
	"MissionLaunches/src/storage"
	"MissionLaunches/src/utils"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 数据集列名
const (
	ColOrganization  = "Organization"
	ColLocation      = "Location"
	ColDate          = "Date"
	ColPrice         = "Price"
	ColMissionStatus = "Mission_Status"
	ColRocketStatus  = "Rocket_Status"
	ColCountry       = "Country"
	ColISO           = "ISO"
	ColYear          = "year"
)

var (
	ErrBadPrice = errors.New("unparsable price")
	ErrBadDate  = errors.New("unparsable date")
)

// Enricher 派生 Country / ISO / year / Price 列
// 每一步都返回新的 DataFrame，不修改输入
type Enricher struct {
	dc       *config.DataConfig
	registry *Registry
	policy   string
	logger   *storage.Logger
}

// NewEnricher 创建列派生器，policy 为 config.UnmappedFail 或 config.UnmappedSkip
func NewEnricher(dc *config.DataConfig, registry *Registry, policy string, logger *storage.Logger) *Enricher {
	if policy == "" {
		policy = config.UnmappedFail
	}
	return &Enricher{dc: dc, registry: registry, policy: policy, logger: logger}
}

// Enrich 按固定顺序完成全部派生列，报表阶段之前只调用一次
func (e *Enricher) Enrich(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	df = e.AddCountry(df)

	df, err := e.AddISO(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df, err = AddYear(df, e.dc.DateLayouts)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	df, err = CleanPrice(df)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	e.logger.Info(fmt.Sprintf("数据派生完成: %d 行, %d 列", df.Nrow(), df.Ncol()))
	return df, nil
}

// CountryFromLocation 取 Location 最后一个逗号之后的部分
func CountryFromLocation(location string) string {
	if i := strings.LastIndex(location, ","); i >= 0 {
		location = location[i+1:]
	}
	return strings.TrimSpace(location)
}

// AddCountry 由 Location 派生 Country，并套用修正表
func (e *Enricher) AddCountry(df dataframe.DataFrame) dataframe.DataFrame {
	locations := df.Col(ColLocation).Records()
	countries := make([]string, len(locations))
	for i, loc := range locations {
		name := CountryFromLocation(loc)
		if fixed, ok := e.dc.GetCountryOverride(name); ok {
			name = fixed
		}
		countries[i] = name
	}
	return df.Mutate(series.New(countries, series.String, ColCountry))
}

// AddISO 为 Country 查询三位码
// 默认策略下查询失败直接返回错误；skip 策略下丢弃该行并记录警告
func (e *Enricher) AddISO(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	countries := df.Col(ColCountry).Records()

	keep := make([]int, 0, len(countries))
	codes := make([]string, 0, len(countries))
	skipped := map[string]int{}

	for i, name := range countries {
		c, err := e.registry.Get(name)
		if err != nil {
			if e.policy != config.UnmappedSkip {
				return dataframe.DataFrame{}, fmt.Errorf("row %d: %w (extend country_overrides)", i, err)
			}
			skipped[name]++
			continue
		}
		keep = append(keep, i)
		codes = append(codes, c.Alpha3)
	}

	for name, n := range skipped {
		e.logger.Warning(fmt.Sprintf("未识别的国家 %q，已跳过 %d 行", name, n))
	}

	if len(keep) < len(countries) {
		if len(keep) == 0 {
			return dataframe.DataFrame{}, fmt.Errorf("no rows left after dropping unmapped countries")
		}
		df = df.Subset(keep)
	}

	df = df.Mutate(series.New(codes, series.String, ColISO))
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("add ISO column: %w", df.Err)
	}
	return df, nil
}

// AddYear 解析 Date 并派生整数列 year
func AddYear(df dataframe.DataFrame, layouts []string) (dataframe.DataFrame, error) {
	dates := df.Col(ColDate).Records()
	years := make([]int, len(dates))
	for i, d := range dates {
		t, err := utils.ParseTime(d, layouts)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: %w: %v", i, ErrBadDate, err)
		}
		years[i] = t.Year()
	}
	return df.Mutate(series.New(years, series.Int, ColYear)), nil
}

// CleanPriceValue 去掉千位分隔符和 "nan" 后解析为数字，空值返回 NaN
func CleanPriceValue(raw string) (float64, error) {
	s := strings.ReplaceAll(raw, ",", "")
	s = strings.ReplaceAll(s, "nan", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "NaN" {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrBadPrice, raw)
	}
	return v, nil
}

// CleanPrice 把 Price 转换为浮点列，可重复调用
func CleanPrice(df dataframe.DataFrame) (dataframe.DataFrame, error) {
	// 已经是浮点列时不再经过字符串，Records() 只保留 6 位小数
	if df.Col(ColPrice).Type() == series.Float {
		for i, v := range Prices(df) {
			if math.IsInf(v, 0) {
				return dataframe.DataFrame{}, fmt.Errorf("row %d: %w: %v", i, ErrBadPrice, v)
			}
		}
		return df, nil
	}

	raw := df.Col(ColPrice).Records()
	cleaned := make([]string, len(raw))
	for i, r := range raw {
		v, err := CleanPriceValue(r)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("row %d: %w", i, err)
		}
		// 以字符串交给 gota，NaN 会被标记为缺失值
		if math.IsNaN(v) {
			cleaned[i] = "NaN"
		} else {
			cleaned[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return df.Mutate(series.New(cleaned, series.Float, ColPrice)), nil
}

// Prices 返回 Price 列的浮点值，缺失为 NaN
func Prices(df dataframe.DataFrame) []float64 {
	col := df.Col(ColPrice)
	out := make([]float64, col.Len())
	for i := 0; i < col.Len(); i++ {
		e := col.Elem(i)
		if e.IsNA() {
			out[i] = math.NaN()
			continue
		}
		out[i] = e.Float()
	}
	return out
}

// ColdWarRemap 返回副本：截止年份(含)之前的哈萨克斯坦发射归入俄罗斯
func (e *Enricher) ColdWarRemap(df dataframe.DataFrame) dataframe.DataFrame {
	cw := e.dc.ColdWar

	countries := df.Col(ColCountry).Records()
	codes := df.Col(ColISO).Records()
	years := df.Col(ColYear)

	newCountries := make([]string, len(countries))
	newCodes := make([]string, len(codes))
	for i := range countries {
		newCountries[i], newCodes[i] = countries[i], codes[i]

		year, err := years.Elem(i).Int()
		if err != nil || year > cw.CutoffYear {
			continue
		}
		if countries[i] == cw.FromCountry {
			newCountries[i] = cw.ToCountry
		}
		if codes[i] == cw.FromISO {
			newCodes[i] = cw.ToISO
		}
	}

	return df.
		Mutate(series.New(newCountries, series.String, ColCountry)).
		Mutate(series.New(newCodes, series.String, ColISO))
}
