package processor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/biter777/countries"
)

// ErrCountryNotFound 国家名无法在 ISO 3166 表中找到
var ErrCountryNotFound = errors.New("country not found in registry")

// 与 ECharts 世界地图名称不一致的国家
var mapNames = map[string]string{
	"ALA": "Aland",
	"BIH": "Bosnia and Herz.",
	"BOL": "Bolivia",
	"BRN": "Brunei",
	"CAF": "Central African Rep.",
	"CIV": "Côte d'Ivoire",
	"COD": "Dem. Rep. Congo",
	"COG": "Congo",
	"CPV": "Cape Verde",
	"CZE": "Czech Rep.",
	"DOM": "Dominican Rep.",
	"ESH": "W. Sahara",
	"FLK": "Falkland Is.",
	"FSM": "Micronesia",
	"GBR": "United Kingdom",
	"GNQ": "Eq. Guinea",
	"IRN": "Iran",
	"KOR": "Korea",
	"LAO": "Lao PDR",
	"MDA": "Moldova",
	"MKD": "Macedonia",
	"PRK": "Dem. Rep. Korea",
	"PSE": "Palestine",
	"RUS": "Russia",
	"SLB": "Solomon Is.",
	"SSD": "S. Sudan",
	"SWZ": "Swaziland",
	"SYR": "Syria",
	"TUR": "Turkey",
	"TWN": "Taiwan",
	"TZA": "Tanzania",
	"USA": "United States",
	"VEN": "Venezuela",
	"VNM": "Vietnam",
}

// Country ISO 3166-1 条目
type Country struct {
	Name    string // 英文名，如 "Russian Federation"
	Alpha2  string
	Alpha3  string
	Numeric string
	Display string // 世界地图上的名称，为空时使用 Name
}

// MapName 返回在世界地图中使用的名称
func (c Country) MapName() string {
	if c.Display != "" {
		return c.Display
	}
	return c.Name
}

// Registry 国家名与代码的查询表
// 查询不区分大小写，可以用英文名、两位码、三位码或数字码
type Registry struct {
	countries []Country
	index     map[string]int
	alpha3    map[string]int
}

var (
	defaultRegistry    *Registry
	defaultRegistryErr error
	registryOnce       sync.Once
)

// DefaultRegistry 返回包含全部 ISO 3166-1 国家的查询表
func DefaultRegistry() (*Registry, error) {
	registryOnce.Do(func() {
		defaultRegistry, defaultRegistryErr = NewRegistry(countries.All()...)
	})
	return defaultRegistry, defaultRegistryErr
}

// NewRegistry 用给定的国家代码构建查询表
// 不使用 countries.ByName 的别名匹配，"Russia" 这类写法必须通过修正表映射
func NewRegistry(codes ...countries.CountryCode) (*Registry, error) {
	reg := &Registry{
		countries: make([]Country, 0, len(codes)),
		index:     make(map[string]int, len(codes)*5),
		alpha3:    make(map[string]int, len(codes)),
	}

	var aliases []string
	var aliasPos []int
	for _, code := range codes {
		if !code.IsValid() || len(code.Alpha3()) != 3 {
			return nil, fmt.Errorf("load country registry: bad country code %d", int(code))
		}
		c := Country{
			Name:    code.String(),
			Alpha2:  code.Alpha2(),
			Alpha3:  code.Alpha3(),
			Numeric: fmt.Sprintf("%03d", int(code)),
			Display: mapNames[code.Alpha3()],
		}

		pos := len(reg.countries)
		reg.countries = append(reg.countries, c)
		reg.alpha3[c.Alpha3] = pos
		for _, key := range []string{c.Name, c.Alpha2, c.Alpha3, c.Numeric} {
			reg.index[strings.ToUpper(key)] = pos
		}
		for _, alias := range isoForms(c.Name) {
			aliases = append(aliases, alias)
			aliasPos = append(aliasPos, pos)
		}
	}

	// 倒装写法不能覆盖已有的名称或代码
	for i, alias := range aliases {
		key := strings.ToUpper(alias)
		if _, ok := reg.index[key]; !ok {
			reg.index[key] = aliasPos[i]
		}
	}
	return reg, nil
}

// isoForms 返回 ISO 3166 的倒装写法
// "Iran (Islamic Republic of)" -> "Iran, Islamic Republic of"
// "Republic of Korea" -> "Korea, Republic of"
func isoForms(name string) []string {
	var forms []string
	if open := strings.Index(name, " ("); open > 0 && strings.HasSuffix(name, ")") {
		forms = append(forms, name[:open]+", "+name[open+2:len(name)-1])
	}
	if at := strings.LastIndex(name, " of "); at > 0 && !strings.Contains(name, "(") {
		forms = append(forms, name[at+4:]+", "+name[:at]+" of")
	}
	return forms
}

// Get 精确查询国家(不做模糊匹配)
func (r *Registry) Get(key string) (Country, error) {
	if pos, ok := r.index[strings.ToUpper(strings.TrimSpace(key))]; ok {
		return r.countries[pos], nil
	}
	return Country{}, fmt.Errorf("%w: %q", ErrCountryNotFound, key)
}

// ByAlpha3 按三位码查询
func (r *Registry) ByAlpha3(code string) (Country, bool) {
	pos, ok := r.alpha3[strings.ToUpper(code)]
	if !ok {
		return Country{}, false
	}
	return r.countries[pos], true
}

// Len 条目数
func (r *Registry) Len() int {
	return len(r.countries)
}
