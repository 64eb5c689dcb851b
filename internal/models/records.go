package models

import (
	"strconv"
	"strings"
	"time"
)

// Activity 是一次学校活动，记录组织者和照片
type Activity struct {
	Meta            `bson:",inline"`
	ActivityType    string  `json:"activityType" bson:"activityType" validate:"max=256"`
	PreparationDate string  `json:"preparationDate" bson:"preparationDate" validate:"omitempty,yyyymmdd"`
	Content         string  `json:"content" bson:"content"`
	StartDate       string  `json:"startDate" bson:"startDate" validate:"omitempty,yyyymmdd"`
	WhoDidIt        string  `json:"whoDidIt" bson:"whoDidIt"`
	Helper          string  `json:"helper" bson:"helper"`
	ActivityImages  []Media `json:"activityImages" bson:"activityImages"`
	Notes           string  `json:"notes" bson:"notes"`
}

func (a *Activity) Normalize() {
	a.ActivityType = strings.TrimSpace(a.ActivityType)
	a.PreparationDate = strings.TrimSpace(a.PreparationDate)
	a.StartDate = strings.TrimSpace(a.StartDate)
}

// DailyAccount 是零用现金账的一行
type DailyAccount struct {
	Meta          `bson:",inline"`
	Number        Text    `json:"number" bson:"number"`
	Week          Text    `json:"week" bson:"week"`
	Purpose       string  `json:"purpose" bson:"purpose" validate:"max=256"`
	CheckNumber   Text    `json:"checkNumber" bson:"checkNumber"`
	Amount        Number  `json:"amount" bson:"amount"`
	Date          string  `json:"date" bson:"date" validate:"omitempty,yyyymmdd"`
	DayOfWeek     string  `json:"dayOfWeek" bson:"dayOfWeek"`
	ReceiptImages []Media `json:"receiptImages" bson:"receiptImages"`
	Notes         string  `json:"notes" bson:"notes"`
}

// Normalize 日期有效时补上星期几
func (d *DailyAccount) Normalize() {
	d.Date = strings.TrimSpace(d.Date)
	if d.DayOfWeek != "" {
		return
	}
	if t, err := time.Parse("2006-01-02", d.Date); err == nil {
		d.DayOfWeek = t.Weekday().String()
	}
}

// Period 取自日期，没有日期时为空
func (d *DailyAccount) Period() Period {
	t, err := time.Parse("2006-01-02", d.Date)
	if err != nil {
		return Period{}
	}
	return Period{Year: strconv.Itoa(t.Year()), Month: strconv.Itoa(int(t.Month()))}
}

func (d *DailyAccount) Total() float64 { return d.Amount.Float() }

// Leave 是员工请假和教师请假共有的部分
type Leave struct {
	Specialty     string `json:"specialty" bson:"specialty"`
	LeaveDate     string `json:"leaveDate" bson:"leaveDate" validate:"omitempty,yyyymmdd"`
	LeaveType     string `json:"leaveType" bson:"leaveType"`
	LeaveDuration string `json:"leaveDuration" bson:"leaveDuration"`
	OrderNumber   string `json:"orderNumber" bson:"orderNumber"`
	ReturnDate    string `json:"returnDate" bson:"returnDate" validate:"omitempty,yyyymmdd"`
	Notes         string `json:"notes" bson:"notes"`
}

func (l *Leave) trim() {
	l.LeaveDate = strings.TrimSpace(l.LeaveDate)
	l.ReturnDate = strings.TrimSpace(l.ReturnDate)
}

// EmployeeLeave 是非教学员工的请假
type EmployeeLeave struct {
	Meta         `bson:",inline"`
	EmployeeName string `json:"employeeName" bson:"employeeName" validate:"max=256"`
	Leave        `bson:",inline"`
}

func (e *EmployeeLeave) Normalize() {
	e.EmployeeName = strings.TrimSpace(e.EmployeeName)
	e.trim()
}

// OfficerLeave 是教师的请假
type OfficerLeave struct {
	Meta        `bson:",inline"`
	TeacherName string `json:"teacherName" bson:"teacherName" validate:"max=256"`
	Leave       `bson:",inline"`
}

func (o *OfficerLeave) Normalize() {
	o.TeacherName = strings.TrimSpace(o.TeacherName)
	o.trim()
}

// PermissionPending 是新的学生请假申请的初始状态
const PermissionPending = "چاوەڕوان"

// StudentPermission 是学生离校申请
type StudentPermission struct {
	Meta          `bson:",inline"`
	StudentName   string `json:"studentName" bson:"studentName" validate:"max=256"`
	Department    string `json:"department" bson:"department"`
	Stage         string `json:"stage" bson:"stage"`
	LeaveDuration string `json:"leaveDuration" bson:"leaveDuration"`
	StartDate     string `json:"startDate" bson:"startDate" validate:"omitempty,yyyymmdd"`
	EndDate       string `json:"endDate" bson:"endDate" validate:"omitempty,yyyymmdd"`
	Reason        string `json:"reason" bson:"reason"`
	Status        string `json:"status" bson:"status"`
}

func (p *StudentPermission) Normalize() {
	p.StudentName = strings.TrimSpace(p.StudentName)
	p.Status = strings.TrimSpace(p.Status)
	if p.Status == "" {
		p.Status = PermissionPending
	}
}

// SupervisedStudent 是受纪律监管的学生
type SupervisedStudent struct {
	Meta                 `bson:",inline"`
	StudentName          string `json:"studentName" bson:"studentName" validate:"max=256"`
	Department           string `json:"department" bson:"department"`
	Grade                string `json:"grade" bson:"grade"`
	ViolationType        string `json:"violationType" bson:"violationType"`
	List                 string `json:"list" bson:"list"`
	PunishmentType       string `json:"punishmentType" bson:"punishmentType"`
	GuardianNotification string `json:"guardianNotification" bson:"guardianNotification"`
	GuardianPhone        string `json:"guardianPhone" bson:"guardianPhone"`
}

func (s *SupervisedStudent) Normalize() {
	s.StudentName = strings.TrimSpace(s.StudentName)
	s.GuardianPhone = strings.TrimSpace(s.GuardianPhone)
}

// Supervision 在一行里记录一条教师违规和一条学生违规
type Supervision struct {
	Meta                  `bson:",inline"`
	TeacherName           string `json:"teacherName" bson:"teacherName" validate:"max=256"`
	Subject               string `json:"subject" bson:"subject"`
	TeacherDepartment     string `json:"teacherDepartment" bson:"teacherDepartment"`
	TeacherGrade          string `json:"teacherGrade" bson:"teacherGrade"`
	TeacherViolationType  string `json:"teacherViolationType" bson:"teacherViolationType"`
	TeacherPunishmentType string `json:"teacherPunishmentType" bson:"teacherPunishmentType"`
	StudentName           string `json:"studentName" bson:"studentName" validate:"max=256"`
	StudentDepartment     string `json:"studentDepartment" bson:"studentDepartment"`
	StudentGrade          string `json:"studentGrade" bson:"studentGrade"`
	StudentViolationType  string `json:"studentViolationType" bson:"studentViolationType"`
	StudentPunishmentType string `json:"studentPunishmentType" bson:"studentPunishmentType"`
}

// TeacherInfo 是教师按年级的每周课时
type TeacherInfo struct {
	Meta          `bson:",inline"`
	PoliticalName string `json:"politicalName" bson:"politicalName" validate:"max=256"`
	Program       string `json:"program" bson:"program"`
	Specialty     string `json:"specialty" bson:"specialty"`
	Subject       string `json:"subject" bson:"subject"`
	Grade1        Number `json:"grade1" bson:"grade1"`
	Grade2        Number `json:"grade2" bson:"grade2"`
	Grade3        Number `json:"grade3" bson:"grade3"`
	Grade4        Number `json:"grade4" bson:"grade4"`
	Grade5        Number `json:"grade5" bson:"grade5"`
	Grade6        Number `json:"grade6" bson:"grade6"`
	Grade7        Number `json:"grade7" bson:"grade7"`
	Grade8        Number `json:"grade8" bson:"grade8"`
	Grade9        Number `json:"grade9" bson:"grade9"`
	TotalHours    Text   `json:"totalHours" bson:"totalHours"`
	Notes         string `json:"notes" bson:"notes"`
}

func (t *TeacherInfo) Grades() []Number {
	return []Number{t.Grade1, t.Grade2, t.Grade3, t.Grade4, t.Grade5, t.Grade6, t.Grade7, t.Grade8, t.Grade9}
}

func (t *TeacherInfo) Normalize() {
	t.PoliticalName = strings.TrimSpace(t.PoliticalName)
	t.TotalHours = Text(strings.TrimSpace(string(t.TotalHours)))
}
