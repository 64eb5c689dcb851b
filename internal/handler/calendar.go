package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"berdoz-admin/internal/calendar"
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/util"

	"github.com/gin-gonic/gin"
)

// CalendarHandler 负责日历网格预测接口
type CalendarHandler struct {
	Entries store.Collection[*models.CalendarEntry]
	Legend  *LegendBook
}

func NewCalendarHandler(entries store.Collection[*models.CalendarEntry], legend *LegendBook) *CalendarHandler {
	return &CalendarHandler{Entries: entries, Legend: legend}
}

type codeResp struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type cellResp struct {
	calendar.Cell
	Date  string     `json:"date"`
	Text  string     `json:"text"`
	Codes []codeResp `json:"codes"`
}

// GridByLabel GET /calendar/grid?month=&year=，year 为空时取当年
func (h *CalendarHandler) GridByLabel(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "month is required")
		return
	}
	year := time.Now().Year()
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 0 || y > 9999 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid year")
			return
		}
		year = y
	}
	h.respond(c, month, year, nil)
}

// GridByEntry GET /calendar/:id/grid，把已保存条目的单元格填进网格
func (h *CalendarHandler) GridByEntry(c *gin.Context) {
	entry, err := h.Entries.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.StoreError(c, err, "calendar entry")
		return
	}
	h.respond(c, entry.Month, entry.Year, entry)
}

func (h *CalendarHandler) respond(c *gin.Context, month string, year int, entry *models.CalendarEntry) {
	grid, labelErr := calendar.Predict(month, year)

	desc, err := h.Legend.Descriptions(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to load legend")
		return
	}

	var weeks [4][]string
	if entry != nil {
		weeks = entry.Weeks()
	}

	cells := make([]cellResp, 0, calendar.Weeks*calendar.Days)
	for _, cell := range grid.Cells() {
		r := cellResp{Cell: cell, Date: cell.Date.Format("2006-01-02"), Codes: []codeResp{}}
		if cell.Day < len(weeks[cell.Week]) {
			r.Text = weeks[cell.Week][cell.Day]
		}
		for _, code := range calendar.ExtractCodes(r.Text, nil) {
			d, ok := desc[code]
			if !ok {
				d = code
			}
			r.Codes = append(r.Codes, codeResp{Code: code, Description: d})
		}
		cells = append(cells, r)
	}

	warnings := []string{}
	if labelErr != nil {
		warnings = append(warnings, labelErr.Error())
	}

	resp := util.Response{
		"month":        month,
		"year":         grid.Resolved.Year,
		"target":       grid.Target().Format("2006-01-02"),
		"first_sunday": grid.FirstSunday.Format("2006-01-02"),
		"matched":      grid.Resolved.Matched,
		"cells":        cells,
		"warnings":     warnings,
	}
	if entry != nil {
		resp["id"] = entry.ID
	}
	util.Success(c, resp)
}
