// reader.go
package file

import (
	"MissionLaunches/src/utils"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrMissingColumn 数据集缺少必需列
var ErrMissingColumn = errors.New("missing column")

// Options 读取数据集的参数
type Options struct {
	SheetName    string            // xlsx 工作表名，为空取第一个
	Encoding     string            // csv 字符集: utf-8 / gbk / latin1
	Rename       map[string]string // 旧列名 -> 新列名
	Drop         []string          // 需要删除的列(索引列)
	Required     []string          // 重命名之后必须存在的列
	StrictSchema bool              // Drop 中的列不存在时是否报错
}

// ReadDataset 读取数据集并完成列重命名、删除与校验
func ReadDataset(filePath string, opts Options) (dataframe.DataFrame, error) {
	var (
		df  dataframe.DataFrame
		err error
	)

	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx":
		df, err = ReadXLSX(filePath, opts.SheetName)
	default:
		df, err = ReadCSV(filePath, opts.Encoding)
	}
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	return PrepareColumns(df, opts)
}

// ReadCSV 把 csv 文件读成全部为字符串列的 DataFrame
func ReadCSV(filePath, encoding string) (dataframe.DataFrame, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open csv file %s: %w", filePath, err)
	}
	defer f.Close()

	r, err := decodeReader(f, encoding)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	// 类型由后续清洗步骤决定，这里全部按字符串读取
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse csv file %s: %w", filePath, df.Err)
	}
	return df, nil
}

// decodeReader 按字符集包装输入流
func decodeReader(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		// 顺便去掉 BOM
		return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())), nil
	case "gbk":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	case "latin1", "iso-8859-1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// ReadXLSX 读取 xlsx 工作表，第一行为标题行
func ReadXLSX(filePath, sheetName string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to open xlsx file %s: %w", filePath, err)
	}

	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx file %s has no sheets", filePath)
	}

	sheet := xlFile.Sheets[0]
	if sheetName != "" {
		s, ok := xlFile.Sheet[sheetName]
		if !ok {
			return dataframe.DataFrame{}, fmt.Errorf("sheet %q not found in %s", sheetName, filePath)
		}
		sheet = s
	}

	return convertSheetToDataFrame(sheet)
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame
func convertSheetToDataFrame(sheet *xlsx.Sheet) (dataframe.DataFrame, error) {
	if len(sheet.Rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s is empty", sheet.Name)
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, strings.TrimSpace(cell.String()))
	}
	// 去掉尾部空标题
	for len(headers) > 0 && headers[len(headers)-1] == "" {
		headers = headers[:len(headers)-1]
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("sheet %s has no header row", sheet.Name)
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		if row == nil || isBlankRow(row) {
			continue
		}
		// 行长度不足时补空字符串，保证各列等长
		for i := range headers {
			value := ""
			if i < len(row.Cells) {
				value = row.Cells[i].String()
			}
			columns[i] = append(columns[i], value)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}

	df := dataframe.New(seriesList...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("convert sheet %s: %w", sheet.Name, df.Err)
	}
	return df, nil
}

func isBlankRow(row *xlsx.Row) bool {
	for _, cell := range row.Cells {
		if strings.TrimSpace(cell.String()) != "" {
			return false
		}
	}
	return true
}

// PrepareColumns 重命名、删除索引列，并检查必需列
func PrepareColumns(df dataframe.DataFrame, opts Options) (dataframe.DataFrame, error) {
	for oldName, newName := range opts.Rename {
		if utils.HasColumn(df, oldName) && !utils.HasColumn(df, newName) {
			df = df.Rename(newName, oldName)
		}
	}

	var drop []string
	for _, col := range opts.Drop {
		if utils.HasColumn(df, col) {
			drop = append(drop, col)
		} else if opts.StrictSchema {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %s (expected index column)", ErrMissingColumn, col)
		}
	}
	if len(drop) > 0 {
		df = df.Drop(drop)
	}

	if missing := utils.MissingColumns(df, opts.Required); len(missing) > 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("prepare columns: %w", df.Err)
	}
	return df, nil
}
