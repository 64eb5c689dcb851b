package catalog

import (
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/store"
	"berdoz-admin/internal/view"
)

// EmailSettingsCollection 保存唯一一条提醒设置文档
const EmailSettingsCollection = "email_settings"

func Activities() Def[*models.Activity] {
	return Def[*models.Activity]{
		Collection: "activities",
		Path:       "activities",
		Title:      "Activities",
		View: view.Config[*models.Activity]{
			Keys: []search.Key[*models.Activity]{
				{Name: "activityType", Weight: 0.3, Get: func(a *models.Activity) string { return a.ActivityType }},
				{Name: "content", Weight: 0.25, Get: func(a *models.Activity) string { return a.Content }},
				{Name: "people", Weight: 0.25, Get: func(a *models.Activity) string { return search.Join(a.WhoDidIt, a.Helper) }},
				{Name: "notes", Weight: 0.1, Get: func(a *models.Activity) string { return a.Notes }},
				{Name: "dates", Weight: 0.1, Get: func(a *models.Activity) string { return search.Join(a.PreparationDate, a.StartDate) }},
			},
		},
		Columns: []Column[*models.Activity]{
			{Header: "Activity Type", Width: 20, Value: func(a *models.Activity) interface{} { return a.ActivityType }},
			{Header: "Preparation Date", Width: 14, Value: func(a *models.Activity) interface{} { return a.PreparationDate }},
			{Header: "Content", Width: 36, Value: func(a *models.Activity) interface{} { return a.Content }},
			{Header: "Start Date", Width: 12, Value: func(a *models.Activity) interface{} { return a.StartDate }},
			{Header: "Done By", Width: 20, Value: func(a *models.Activity) interface{} { return a.WhoDidIt }},
			{Header: "Helper", Width: 20, Value: func(a *models.Activity) interface{} { return a.Helper }},
			{Header: "Images", Width: 8, Value: func(a *models.Activity) interface{} { return mediaCount(a.ActivityImages) }},
			{Header: "Notes", Width: 30, Value: func(a *models.Activity) interface{} { return a.Notes }},
		},
	}
}

// DailyAccounts 是零用现金账，和其它财务模块一样只对管理员开放
func DailyAccounts() Def[*models.DailyAccount] {
	return Def[*models.DailyAccount]{
		Collection: "daily_accounts",
		Path:       "daily-accounts",
		Title:      "Daily Accounts",
		AdminOnly:  true,
		View: view.Config[*models.DailyAccount]{
			Keys: []search.Key[*models.DailyAccount]{
				{Name: "purpose", Weight: 0.3, Get: func(d *models.DailyAccount) string { return d.Purpose }},
				{Name: "numbers", Weight: 0.15, Get: func(d *models.DailyAccount) string {
					return search.Join(string(d.Number), string(d.Week), string(d.CheckNumber))
				}},
				{Name: "amount", Weight: 0.25, Get: func(d *models.DailyAccount) string { return amountWords(d.Amount.Float()) }},
				{Name: "date", Weight: 0.15, Get: func(d *models.DailyAccount) string { return search.Join(d.Date, d.DayOfWeek) }},
				{Name: "notes", Weight: 0.15, Get: func(d *models.DailyAccount) string { return d.Notes }},
			},
			Period: func(d *models.DailyAccount) models.Period { return d.Period() },
			Amount: func(d *models.DailyAccount) float64 { return d.Total() },
		},
		Columns: []Column[*models.DailyAccount]{
			{Header: "No.", Width: 6, Value: func(d *models.DailyAccount) interface{} { return string(d.Number) }},
			{Header: "Week", Width: 6, Value: func(d *models.DailyAccount) interface{} { return string(d.Week) }},
			{Header: "Purpose", Width: 30, Value: func(d *models.DailyAccount) interface{} { return d.Purpose }},
			{Header: "Check Number", Width: 14, Value: func(d *models.DailyAccount) interface{} { return string(d.CheckNumber) }},
			{Header: "Amount", Width: 14, Value: func(d *models.DailyAccount) interface{} { return d.Amount.Float() }},
			{Header: "Date", Width: 12, Value: func(d *models.DailyAccount) interface{} { return d.Date }},
			{Header: "Day", Width: 10, Value: func(d *models.DailyAccount) interface{} { return d.DayOfWeek }},
			{Header: "Receipts", Width: 8, Value: func(d *models.DailyAccount) interface{} { return mediaCount(d.ReceiptImages) }},
			{Header: "Notes", Width: 30, Value: func(d *models.DailyAccount) interface{} { return d.Notes }},
		},
	}
}

func leaveKeys[T any](name func(T) string, leave func(T) *models.Leave) []search.Key[T] {
	return []search.Key[T]{
		{Name: "name", Weight: 0.35, Get: name},
		{Name: "specialty", Weight: 0.15, Get: func(v T) string { return leave(v).Specialty }},
		{Name: "leaveType", Weight: 0.2, Get: func(v T) string { return leave(v).LeaveType }},
		{Name: "orderNumber", Weight: 0.1, Get: func(v T) string { return leave(v).OrderNumber }},
		{Name: "dates", Weight: 0.1, Get: func(v T) string { return search.Join(leave(v).LeaveDate, leave(v).ReturnDate) }},
		{Name: "notes", Weight: 0.1, Get: func(v T) string { return leave(v).Notes }},
	}
}

func leaveColumns[T any](nameHeader string, name func(T) string, leave func(T) *models.Leave) []Column[T] {
	return []Column[T]{
		{Header: nameHeader, Width: 24, Value: func(v T) interface{} { return name(v) }},
		{Header: "Specialty", Width: 16, Value: func(v T) interface{} { return leave(v).Specialty }},
		{Header: "Leave Date", Width: 12, Value: func(v T) interface{} { return leave(v).LeaveDate }},
		{Header: "Leave Type", Width: 14, Value: func(v T) interface{} { return leave(v).LeaveType }},
		{Header: "Duration", Width: 10, Value: func(v T) interface{} { return leave(v).LeaveDuration }},
		{Header: "Order Number", Width: 14, Value: func(v T) interface{} { return leave(v).OrderNumber }},
		{Header: "Return Date", Width: 12, Value: func(v T) interface{} { return leave(v).ReturnDate }},
		{Header: "Notes", Width: 30, Value: func(v T) interface{} { return leave(v).Notes }},
	}
}

func EmployeeLeaves() Def[*models.EmployeeLeave] {
	name := func(e *models.EmployeeLeave) string { return e.EmployeeName }
	leave := func(e *models.EmployeeLeave) *models.Leave { return &e.Leave }
	return Def[*models.EmployeeLeave]{
		Collection: "employee_leaves",
		Path:       "employee-leaves",
		Title:      "Employee Leaves",
		Sort:       store.SortCreatedDesc,
		View:       view.Config[*models.EmployeeLeave]{Keys: leaveKeys(name, leave)},
		Columns:    leaveColumns("Employee", name, leave),
	}
}

func OfficerLeaves() Def[*models.OfficerLeave] {
	name := func(o *models.OfficerLeave) string { return o.TeacherName }
	leave := func(o *models.OfficerLeave) *models.Leave { return &o.Leave }
	return Def[*models.OfficerLeave]{
		Collection: "officer_leaves",
		Path:       "officer-leaves",
		Title:      "Officer Leaves",
		Sort:       store.SortCreatedDesc,
		View:       view.Config[*models.OfficerLeave]{Keys: leaveKeys(name, leave)},
		Columns:    leaveColumns("Teacher", name, leave),
	}
}

func StudentPermissions() Def[*models.StudentPermission] {
	return Def[*models.StudentPermission]{
		Collection: "student_permissions",
		Path:       "student-permissions",
		Title:      "Student Permissions",
		Sort:       store.SortCreatedDesc,
		View: view.Config[*models.StudentPermission]{
			Keys: []search.Key[*models.StudentPermission]{
				{Name: "studentName", Weight: 0.35, Get: func(p *models.StudentPermission) string { return p.StudentName }},
				{Name: "department", Weight: 0.15, Get: func(p *models.StudentPermission) string { return search.Join(p.Department, p.Stage) }},
				{Name: "reason", Weight: 0.25, Get: func(p *models.StudentPermission) string { return p.Reason }},
				{Name: "status", Weight: 0.15, Get: func(p *models.StudentPermission) string { return p.Status }},
				{Name: "dates", Weight: 0.1, Get: func(p *models.StudentPermission) string { return search.Join(p.StartDate, p.EndDate) }},
			},
		},
		Columns: []Column[*models.StudentPermission]{
			{Header: "Student", Width: 24, Value: func(p *models.StudentPermission) interface{} { return p.StudentName }},
			{Header: "Department", Width: 14, Value: func(p *models.StudentPermission) interface{} { return p.Department }},
			{Header: "Stage", Width: 10, Value: func(p *models.StudentPermission) interface{} { return p.Stage }},
			{Header: "Duration", Width: 10, Value: func(p *models.StudentPermission) interface{} { return p.LeaveDuration }},
			{Header: "Start Date", Width: 12, Value: func(p *models.StudentPermission) interface{} { return p.StartDate }},
			{Header: "End Date", Width: 12, Value: func(p *models.StudentPermission) interface{} { return p.EndDate }},
			{Header: "Reason", Width: 30, Value: func(p *models.StudentPermission) interface{} { return p.Reason }},
			{Header: "Status", Width: 12, Value: func(p *models.StudentPermission) interface{} { return p.Status }},
		},
	}
}

func SupervisedStudents() Def[*models.SupervisedStudent] {
	return Def[*models.SupervisedStudent]{
		Collection: "supervised_students",
		Path:       "supervised-students",
		Title:      "Supervised Students",
		View: view.Config[*models.SupervisedStudent]{
			Keys: []search.Key[*models.SupervisedStudent]{
				{Name: "studentName", Weight: 0.35, Get: func(s *models.SupervisedStudent) string { return s.StudentName }},
				{Name: "class", Weight: 0.15, Get: func(s *models.SupervisedStudent) string { return search.Join(s.Department, s.Grade, s.List) }},
				{Name: "violationType", Weight: 0.2, Get: func(s *models.SupervisedStudent) string { return s.ViolationType }},
				{Name: "punishmentType", Weight: 0.15, Get: func(s *models.SupervisedStudent) string { return s.PunishmentType }},
				{Name: "guardian", Weight: 0.15, Get: func(s *models.SupervisedStudent) string {
					return search.Join(s.GuardianNotification, s.GuardianPhone)
				}},
			},
		},
		Columns: []Column[*models.SupervisedStudent]{
			{Header: "Student", Width: 24, Value: func(s *models.SupervisedStudent) interface{} { return s.StudentName }},
			{Header: "Department", Width: 14, Value: func(s *models.SupervisedStudent) interface{} { return s.Department }},
			{Header: "Grade", Width: 8, Value: func(s *models.SupervisedStudent) interface{} { return s.Grade }},
			{Header: "Violation", Width: 20, Value: func(s *models.SupervisedStudent) interface{} { return s.ViolationType }},
			{Header: "List", Width: 10, Value: func(s *models.SupervisedStudent) interface{} { return s.List }},
			{Header: "Punishment", Width: 20, Value: func(s *models.SupervisedStudent) interface{} { return s.PunishmentType }},
			{Header: "Guardian Notified", Width: 16, Value: func(s *models.SupervisedStudent) interface{} { return s.GuardianNotification }},
			{Header: "Guardian Phone", Width: 16, Value: func(s *models.SupervisedStudent) interface{} { return s.GuardianPhone }},
		},
	}
}

func Supervision() Def[*models.Supervision] {
	return Def[*models.Supervision]{
		Collection: "supervision",
		Path:       "supervision",
		Title:      "Supervision",
		View: view.Config[*models.Supervision]{
			Keys: []search.Key[*models.Supervision]{
				{Name: "teacherName", Weight: 0.2, Get: func(s *models.Supervision) string { return s.TeacherName }},
				{Name: "studentName", Weight: 0.2, Get: func(s *models.Supervision) string { return s.StudentName }},
				{Name: "subject", Weight: 0.15, Get: func(s *models.Supervision) string { return s.Subject }},
				{Name: "departments", Weight: 0.15, Get: func(s *models.Supervision) string {
					return search.Join(s.TeacherDepartment, s.TeacherGrade, s.StudentDepartment, s.StudentGrade)
				}},
				{Name: "violations", Weight: 0.3, Get: func(s *models.Supervision) string {
					return search.Join(s.TeacherViolationType, s.TeacherPunishmentType, s.StudentViolationType, s.StudentPunishmentType)
				}},
			},
		},
		Columns: []Column[*models.Supervision]{
			{Header: "Teacher", Width: 22, Value: func(s *models.Supervision) interface{} { return s.TeacherName }},
			{Header: "Subject", Width: 16, Value: func(s *models.Supervision) interface{} { return s.Subject }},
			{Header: "Teacher Department", Width: 16, Value: func(s *models.Supervision) interface{} { return s.TeacherDepartment }},
			{Header: "Teacher Grade", Width: 10, Value: func(s *models.Supervision) interface{} { return s.TeacherGrade }},
			{Header: "Teacher Violation", Width: 20, Value: func(s *models.Supervision) interface{} { return s.TeacherViolationType }},
			{Header: "Teacher Punishment", Width: 20, Value: func(s *models.Supervision) interface{} { return s.TeacherPunishmentType }},
			{Header: "Student", Width: 22, Value: func(s *models.Supervision) interface{} { return s.StudentName }},
			{Header: "Student Department", Width: 16, Value: func(s *models.Supervision) interface{} { return s.StudentDepartment }},
			{Header: "Student Grade", Width: 10, Value: func(s *models.Supervision) interface{} { return s.StudentGrade }},
			{Header: "Student Violation", Width: 20, Value: func(s *models.Supervision) interface{} { return s.StudentViolationType }},
			{Header: "Student Punishment", Width: 20, Value: func(s *models.Supervision) interface{} { return s.StudentPunishmentType }},
		},
	}
}

func TeacherInfo() Def[*models.TeacherInfo] {
	grade := func(n int) Column[*models.TeacherInfo] {
		return Column[*models.TeacherInfo]{
			Header: "Grade " + string(rune('0'+n)),
			Width:  8,
			Value:  func(t *models.TeacherInfo) interface{} { return t.Grades()[n-1].Float() },
		}
	}
	cols := []Column[*models.TeacherInfo]{
		{Header: "Name", Width: 24, Value: func(t *models.TeacherInfo) interface{} { return t.PoliticalName }},
		{Header: "Program", Width: 14, Value: func(t *models.TeacherInfo) interface{} { return t.Program }},
		{Header: "Specialty", Width: 16, Value: func(t *models.TeacherInfo) interface{} { return t.Specialty }},
		{Header: "Subject", Width: 16, Value: func(t *models.TeacherInfo) interface{} { return t.Subject }},
	}
	for n := 1; n <= 9; n++ {
		cols = append(cols, grade(n))
	}
	cols = append(cols,
		Column[*models.TeacherInfo]{Header: "Total Hours", Width: 10, Value: func(t *models.TeacherInfo) interface{} { return string(t.TotalHours) }},
		Column[*models.TeacherInfo]{Header: "Notes", Width: 30, Value: func(t *models.TeacherInfo) interface{} { return t.Notes }},
	)

	return Def[*models.TeacherInfo]{
		Collection: "teacher_info",
		Path:       "teacher-info",
		Title:      "Teacher Info",
		View: view.Config[*models.TeacherInfo]{
			Keys: []search.Key[*models.TeacherInfo]{
				{Name: "politicalName", Weight: 0.35, Get: func(t *models.TeacherInfo) string { return t.PoliticalName }},
				{Name: "program", Weight: 0.15, Get: func(t *models.TeacherInfo) string { return t.Program }},
				{Name: "specialty", Weight: 0.2, Get: func(t *models.TeacherInfo) string { return t.Specialty }},
				{Name: "subject", Weight: 0.2, Get: func(t *models.TeacherInfo) string { return t.Subject }},
				{Name: "notes", Weight: 0.1, Get: func(t *models.TeacherInfo) string { return t.Notes }},
			},
		},
		Columns: cols,
	}
}
