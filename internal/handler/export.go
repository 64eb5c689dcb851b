package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// exportSheet 是一张待导出的表
type exportSheet struct {
	Name    string
	File    string
	Headers []string
	Widths  []float64
	Rows    [][]interface{}
}

func (s exportSheet) fileName(ext string) string {
	return fmt.Sprintf("%s_%s.%s", s.File, time.Now().Format("20060102"), ext)
}

func cellText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprint(x)
	}
}

// writeCSV 导出为 CSV
func writeCSV(c *gin.Context, s exportSheet) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", s.fileName("csv")))

	// UTF-8 BOM（让 Excel 正确识别库尔德文）
	_, _ = c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(s.Headers)
	for _, row := range s.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = cellText(v)
		}
		_ = writer.Write(rec)
	}
}

// writeXLSX 导出为 XLSX
func writeXLSX(c *gin.Context, s exportSheet) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := s.Name
	if len(sheetName) > 31 {
		sheetName = sheetName[:31]
	}
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}

	// 表头
	for i, h := range s.Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}
	// 数据
	for r, row := range s.Rows {
		for i, v := range row {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}
	// 列宽
	for i, w := range s.Widths {
		if w <= 0 {
			continue
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheetName, col, col, w)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", s.fileName("xlsx")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}
