package calendar

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultCodes 是学校使用的任务代码及其默认说明，图例中的说明优先。
var DefaultCodes = map[string]string{
	"A":  "Regis Name",
	"B":  "Media",
	"C":  "HR Staff Records",
	"D":  "E.parwarda records",
	"E":  "Bus Records",
	"F":  "Monitoring R",
	"G":  "S License Records",
	"H":  "Teacher Evaluation Records",
	"I":  "Student Absent",
	"J":  "Salary Records",
	"K":  "Pen Records",
	"L":  "Daily Manager Records",
	"M":  "Teacher Attendance",
	"N":  "Report Records",
	"O":  "Observed Student Records",
	"P":  "Class Record",
	"Q":  "Activities Records",
	"R":  "Future Plan Records",
	"S":  "Subject Records",
	"T":  "CoCar BM Records",
	"U":  "Parent Rec",
	"V":  "Security Records",
	"W":  "Clean Records",
	"X":  "Student Profile Record",
	"Y":  "Meeting & Discussion",
	"Z":  "Time Table",
	"A1": "Progress",
	"B1": "Orders",
	"C1": "Student Pay",
	"D1": "Exam Records",
	"E1": "First Day of CoCar",
	"F1": "CourseWare Record",
	"G1": "Material",
	"TB": "Daily Monitor Records",
}

var (
	codeSplit        = regexp.MustCompile(`[,\s]+`)
	abbreviationExpr = regexp.MustCompile(`[A-Z][A-Z0-9]*`)
)

// Known 报告代码是否有说明
type Known func(code string) bool

// DefaultKnown 只认 DefaultCodes 里的代码
func DefaultKnown(code string) bool {
	_, ok := DefaultCodes[code]
	return ok
}

// ExtractCodes 按逗号和空白切分单元格，按首次出现顺序返回去重后的已知代码。
// known 为 nil 时接受所有 token。
func ExtractCodes(text string, known Known) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range codeSplit.Split(strings.TrimSpace(text), -1) {
		code := strings.ToUpper(strings.TrimSpace(tok))
		if code == "" || seen[code] {
			continue
		}
		if known != nil && !known(code) {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// ExtractAbbreviations 找出单元格中所有大写缩写，去重排序，用于同步图例
func ExtractAbbreviations(cells []string) []string {
	seen := make(map[string]bool)
	for _, c := range cells {
		for _, m := range abbreviationExpr.FindAllString(c, -1) {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SortedUnique 去重并排序
func SortedUnique(codes []string) []string {
	seen := make(map[string]bool, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
