package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 环境变量前缀，例如 LAUNCHES_DATA_FILE
const EnvPrefix = "LAUNCHES"

// 未识别国家的处理策略
const (
	UnmappedFail = "fail" // 直接终止
	UnmappedSkip = "skip" // 记录警告并丢弃该行
)

// Config 结构体定义了应用程序的配置结构
type Config struct {
	DataFile        string `json:"data_file" yaml:"data_file" envconfig:"DATA_FILE" validate:"required"` // 发射数据集路径(csv/xlsx)
	SheetName       string `json:"sheet_name" yaml:"sheet_name" envconfig:"SHEET_NAME"`                  // xlsx 工作表名，为空取第一个
	Encoding        string `json:"encoding" yaml:"encoding" envconfig:"ENCODING" validate:"omitempty,oneof=utf-8 utf8 gbk latin1"`
	StrictSchema    bool   `json:"strict_schema" yaml:"strict_schema" envconfig:"STRICT_SCHEMA"` // 待删除的索引列缺失时是否报错
	OutputDir       string `json:"output_dir" yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	OpenViewer      bool   `json:"open_viewer" yaml:"open_viewer" envconfig:"OPEN_VIEWER"` // 生成后自动用浏览器打开
	ExportXLSX      string `json:"export_xlsx" yaml:"export_xlsx" envconfig:"EXPORT_XLSX"` // 汇总表导出文件名，为空不导出
	LogName         string `json:"log_name" yaml:"log_name" envconfig:"LOG_NAME" validate:"required"`
	LogLevel        string `json:"log_level" yaml:"log_level" envconfig:"LOG_LEVEL" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR"`
	HistogramBins   int    `json:"histogram_bins" yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"min=1"`
	MovingAverage   int    `json:"moving_average_window" yaml:"moving_average_window" envconfig:"MOVING_AVERAGE_WINDOW" validate:"min=1"`
	UnmappedCountry string `json:"unmapped_country" yaml:"unmapped_country" envconfig:"UNMAPPED_COUNTRY" validate:"oneof=fail skip"`
}

// ColdWarConfig 冷战时期(美苏对比)的国家归属修正
type ColdWarConfig struct {
	CutoffYear  int      `json:"cutoff_year" yaml:"cutoff_year"`
	FromCountry string   `json:"from_country" yaml:"from_country"`
	FromISO     string   `json:"from_iso" yaml:"from_iso"`
	ToCountry   string   `json:"to_country" yaml:"to_country"`
	ToISO       string   `json:"to_iso" yaml:"to_iso"`
	Rivals      []string `json:"rivals" yaml:"rivals"`
}

// DataConfig 数据处理相关的映射表
type DataConfig struct {
	RenameColumns    map[string]string `json:"rename_columns" yaml:"rename_columns"`
	DropColumns      []string          `json:"drop_columns" yaml:"drop_columns"`
	RequiredColumns  []string          `json:"required_columns" yaml:"required_columns"`
	CountryOverrides map[string]string `json:"country_overrides" yaml:"country_overrides"`
	DateLayouts      []string          `json:"date_layouts" yaml:"date_layouts"`
	ColdWar          ColdWarConfig     `json:"cold_war" yaml:"cold_war"`
}

var (
	once               sync.Once
	instance           *Config
	dataConfigInstance *DataConfig
	loadErr            error
	mu                 sync.RWMutex
)

// LoadConfig 只加载一次配置，后续调用直接返回同一实例
// 首次加载失败时，之后每次调用都返回同一个错误
func LoadConfig(folder, file, dataFile string) (*Config, *DataConfig, error) {
	once.Do(func() {
		instance, dataConfigInstance, loadErr = loadConfigs(folder, file, dataFile)
	})
	return instance, dataConfigInstance, loadErr
}

// ResolveFile 在 folder 中按 .json / .yaml / .yml 顺序查找 base 对应的配置文件
// 都不存在时返回 base.json
func ResolveFile(folder, base string) string {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if _, err := os.Stat(filepath.Join(folder, base+ext)); err == nil {
			return base + ext
		}
	}
	return base + ".json"
}

func loadConfigs(folder, file, dataFile string) (*Config, *DataConfig, error) {
	configFile := filepath.Join(folder, file)
	dataConfigFile := filepath.Join(folder, dataFile)

	var errs []error

	cfg, err := parseConfig(configFile)
	if err != nil {
		errs = append(errs, err)
	}

	dcfg, err := parseDataConfig(dataConfigFile)
	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return nil, nil, combineErrors(errs)
	}

	return cfg, dcfg, nil
}

func readFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read file %s: %w", filePath, err)
	}
	return data, nil
}

// decode 按扩展名选择 json 或 yaml
func decode(filePath string, data []byte, v interface{}) error {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return json.Unmarshal(data, v)
	}
}

func parseConfig(filePath string) (*Config, error) {
	data, err := readFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := decode(filePath, data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filePath, err)
	}

	// 环境变量优先于文件
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDataConfig(filePath string) (*DataConfig, error) {
	data, err := readFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read data config: %w", err)
	}

	var dcfg DataConfig
	if err := decode(filePath, data, &dcfg); err != nil {
		return nil, fmt.Errorf("parse data config %s: %w", filePath, err)
	}
	dcfg.fillDefaults()
	return &dcfg, nil
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}

	msg := "config load failed with multiple errors:"
	for _, err := range errs {
		msg = fmt.Sprintf("%s\n- %v", msg, err)
	}
	return fmt.Errorf("%s", msg)
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		DataFile:        "mission_launches.csv",
		Encoding:        "utf-8",
		StrictSchema:    true,
		OutputDir:       "output",
		LogName:         "app.log",
		LogLevel:        "INFO",
		HistogramBins:   20,
		MovingAverage:   3,
		UnmappedCountry: UnmappedFail,
	}
}

// Validate 校验配置字段
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DefaultDataConfig 返回内置的列映射与国家修正表
func DefaultDataConfig() *DataConfig {
	dc := &DataConfig{}
	dc.fillDefaults()
	return dc
}

func (dc *DataConfig) fillDefaults() {
	if dc.RenameColumns == nil {
		dc.RenameColumns = map[string]string{"Organisation": "Organization"}
	}
	if dc.DropColumns == nil {
		dc.DropColumns = []string{"Unnamed: 0", "Unnamed: 0.1"}
	}
	if dc.RequiredColumns == nil {
		dc.RequiredColumns = []string{"Organization", "Location", "Date", "Price", "Mission_Status", "Rocket_Status"}
	}
	if dc.CountryOverrides == nil {
		dc.CountryOverrides = map[string]string{
			"Gran Canaria":                   "USA",
			"Yellow Sea":                     "China",
			"Pacific Missile Range Facility": "USA",
			"Barents Sea":                    "Russian Federation",
			"Russia":                         "Russian Federation",
			"Pacific Ocean":                  "USA",
			"Marshall Islands":               "USA",
			"Iran":                           "Iran, Islamic Republic of",
			"North Korea":                    "Korea, Democratic People's Republic of",
			"South Korea":                    "Korea, Republic of",
			"Shahrud Missile Test Site":      "Iran, Islamic Republic of",
			"New Mexico":                     "USA",
		}
	}
	if dc.DateLayouts == nil {
		dc.DateLayouts = []string{
			"Mon Jan 02, 2006 15:04 MST",
			"Mon Jan 02, 2006",
			"2006-01-02 15:04:05",
			"2006-01-02",
			"2006/01/02",
			"2006-01-02T15:04:05Z07:00",
		}
	}
	cw := &dc.ColdWar
	if cw.CutoffYear == 0 {
		cw.CutoffYear = 1991
	}
	if cw.FromCountry == "" {
		cw.FromCountry, cw.FromISO = "Kazakhstan", "KAZ"
	}
	if cw.ToCountry == "" {
		cw.ToCountry, cw.ToISO = "Russian Federation", "RUS"
	}
	if cw.Rivals == nil {
		cw.Rivals = []string{"Russian Federation", "USA"}
	}
}

// GetCountryOverride 查询国家名修正
func (dc *DataConfig) GetCountryOverride(name string) (string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := dc.CountryOverrides[name]
	return v, ok
}

// SetCountryOverride 新增或覆盖一条国家名修正
func (dc *DataConfig) SetCountryOverride(name, value string) {
	mu.Lock()
	defer mu.Unlock()
	if dc.CountryOverrides == nil {
		dc.CountryOverrides = make(map[string]string)
	}
	dc.CountryOverrides[name] = value
}
