package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

func Contains[T comparable](slice []T, item T) bool {
	for _, v := range slice {
		if v == item {
			return true
		}
	}
	return false
}

// 辅助函数：判断DataFrame是否有某列
func HasColumn(df dataframe.DataFrame, name string) bool {
	return Contains(df.Names(), name)
}

// MissingColumns 返回 df 中不存在的列名，顺序与 names 一致
func MissingColumns(df dataframe.DataFrame, names []string) []string {
	have := df.Names()
	var missing []string
	for _, n := range names {
		if !Contains(have, n) {
			missing = append(missing, n)
		}
	}
	return missing
}

// IsMissing 判断单元格是否为空值
func IsMissing(e series.Element) bool {
	return e.IsNA() || strings.TrimSpace(e.String()) == ""
}

// ParseTime 依次尝试 layouts 解析时间字符串
func ParseTime(s string, layouts []string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time value")
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", s)
}

// Sheet 导出到工作簿的一张表
type Sheet struct {
	Name  string
	Frame dataframe.DataFrame
}

// SaveToExcel 把多张 DataFrame 写入同一个 xlsx 文件，每张表一个工作表
func SaveToExcel(sheets []Sheet, filePath string) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to save")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		name := sheetName(s.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet %s: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}

		df := s.Frame
		// 写入列名
		colNames := df.Names()
		for c, col := range colNames {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(name, cell, col); err != nil {
				return err
			}
		}

		// 写入数据，空值留空
		for c, col := range colNames {
			s := df.Col(col)
			for rowIdx := 0; rowIdx < s.Len(); rowIdx++ {
				e := s.Elem(rowIdx)
				if e.IsNA() {
					continue
				}
				cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx+2)
				if err := f.SetCellValue(name, cell, e.Val()); err != nil {
					return err
				}
			}
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("save xlsx %s: %w", filePath, err)
	}
	return nil
}

// 工作表名最长31个字符
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
