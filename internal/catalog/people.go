package catalog

import (
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/view"
)

func Buses() Def[*models.Bus] {
	return Def[*models.Bus]{
		Collection: "bus_records",
		Path:       "bus",
		Title:      "Buses",
		View: view.Config[*models.Bus]{
			Keys: []search.Key[*models.Bus]{
				{Name: "busNumber", Weight: 0.2, Get: func(b *models.Bus) string { return b.BusNumber }},
				{Name: "busType", Weight: 0.15, Get: func(b *models.Bus) string { return b.BusType }},
				{Name: "route", Weight: 0.15, Get: func(b *models.Bus) string { return b.Route }},
				{Name: "driverName", Weight: 0.2, Get: func(b *models.Bus) string { return b.DriverName }},
				{Name: "driverPhone", Weight: 0.1, Get: func(b *models.Bus) string { return b.DriverPhone }},
				{Name: "driverLicense", Weight: 0.1, Get: func(b *models.Bus) string { return b.DriverLicense }},
				{Name: "notes", Weight: 0.1, Get: func(b *models.Bus) string { return b.Notes }},
				{Name: "searchableContent", Weight: 0.15, Get: func(b *models.Bus) string {
					return search.Join(b.BusNumber, b.BusType, b.Route,
						num(b.Capacity), num(b.StudentCount), num(b.TeacherCount),
						b.DriverName, b.DriverPhone, b.DriverLicense, b.Notes)
				}},
			},
		},
		Columns: []Column[*models.Bus]{
			{Header: "Bus Number", Width: 12, Value: func(b *models.Bus) interface{} { return b.BusNumber }},
			{Header: "Type", Width: 12, Value: func(b *models.Bus) interface{} { return b.BusType }},
			{Header: "Route", Width: 24, Value: func(b *models.Bus) interface{} { return b.Route }},
			{Header: "Capacity", Width: 10, Value: func(b *models.Bus) interface{} { return b.Capacity.Float() }},
			{Header: "Students", Width: 10, Value: func(b *models.Bus) interface{} { return b.StudentCount.Float() }},
			{Header: "Teachers", Width: 10, Value: func(b *models.Bus) interface{} { return b.TeacherCount.Float() }},
			{Header: "Driver", Width: 20, Value: func(b *models.Bus) interface{} { return b.DriverName }},
			{Header: "Driver Phone", Width: 16, Value: func(b *models.Bus) interface{} { return b.DriverPhone }},
			{Header: "Driver License", Width: 16, Value: func(b *models.Bus) interface{} { return b.DriverLicense }},
			{Header: "Notes", Width: 30, Value: func(b *models.Bus) interface{} { return b.Notes }},
		},
	}
}

func Staff() Def[*models.Staff] {
	return Def[*models.Staff]{
		Collection: "staff_records",
		Path:       "staff",
		Title:      "Staff",
		View: view.Config[*models.Staff]{
			Keys: []search.Key[*models.Staff]{
				{Name: "fullName", Weight: 0.25, Get: func(s *models.Staff) string { return s.FullName }},
				{Name: "mobile", Weight: 0.1, Get: func(s *models.Staff) string { return s.Mobile }},
				{Name: "department", Weight: 0.15, Get: func(s *models.Staff) string { return s.Department }},
				{Name: "education", Weight: 0.1, Get: func(s *models.Staff) string { return search.Join(s.Certificate, s.Education) }},
				{Name: "address", Weight: 0.1, Get: func(s *models.Staff) string { return s.Address }},
				{Name: "notes", Weight: 0.1, Get: func(s *models.Staff) string { return s.Notes }},
				{Name: "searchableContent", Weight: 0.2, Get: func(s *models.Staff) string {
					return search.Join(s.FullName, s.Mobile, s.Address, s.Gender, s.DateOfBirth,
						s.Certificate, s.Education, s.Attendance, s.Department, s.BloodType, s.Contract, s.Notes)
				}},
			},
		},
		Columns: []Column[*models.Staff]{
			{Header: "Full Name", Width: 24, Value: func(s *models.Staff) interface{} { return s.FullName }},
			{Header: "Mobile", Width: 16, Value: func(s *models.Staff) interface{} { return s.Mobile }},
			{Header: "Address", Width: 24, Value: func(s *models.Staff) interface{} { return s.Address }},
			{Header: "Gender", Width: 8, Value: func(s *models.Staff) interface{} { return s.Gender }},
			{Header: "Date of Birth", Width: 12, Value: func(s *models.Staff) interface{} { return s.DateOfBirth }},
			{Header: "Certificate", Width: 16, Value: func(s *models.Staff) interface{} { return s.Certificate }},
			{Header: "Education", Width: 16, Value: func(s *models.Staff) interface{} { return s.Education }},
			{Header: "Attendance", Width: 12, Value: func(s *models.Staff) interface{} { return s.Attendance }},
			{Header: "Department", Width: 16, Value: func(s *models.Staff) interface{} { return s.Department }},
			{Header: "Blood Type", Width: 8, Value: func(s *models.Staff) interface{} { return s.BloodType }},
			{Header: "Contract", Width: 12, Value: func(s *models.Staff) interface{} { return s.Contract }},
			{Header: "Notes", Width: 30, Value: func(s *models.Staff) interface{} { return s.Notes }},
		},
	}
}

func Teachers() Def[*models.Teacher] {
	return Def[*models.Teacher]{
		Collection: "teachers",
		Path:       "teachers",
		Title:      "Teachers",
		View: view.Config[*models.Teacher]{
			Keys: []search.Key[*models.Teacher]{
				{Name: "fullName", Weight: 0.3, Get: func(t *models.Teacher) string { return t.FullName }},
				{Name: "jobTitle", Weight: 0.15, Get: func(t *models.Teacher) string { return t.JobTitle }},
				{Name: "specialist", Weight: 0.15, Get: func(t *models.Teacher) string { return t.Specialist }},
				{Name: "certificate", Weight: 0.1, Get: func(t *models.Teacher) string { return t.Certificate }},
				{Name: "previousInstitution", Weight: 0.1, Get: func(t *models.Teacher) string { return t.PreviousInstitution }},
				{Name: "notes", Weight: 0.05, Get: func(t *models.Teacher) string { return t.Notes }},
				{Name: "searchableContent", Weight: 0.15, Get: func(t *models.Teacher) string {
					return search.Join(t.FullName, string(t.BirthYear), t.Certificate, t.JobTitle, t.Specialist,
						t.GraduationDate, t.StartDate, t.PreviousInstitution, t.BloodType, t.Notes)
				}},
			},
		},
		Columns: []Column[*models.Teacher]{
			{Header: "Full Name", Width: 24, Value: func(t *models.Teacher) interface{} { return t.FullName }},
			{Header: "Birth Year", Width: 10, Value: func(t *models.Teacher) interface{} { return string(t.BirthYear) }},
			{Header: "Certificate", Width: 16, Value: func(t *models.Teacher) interface{} { return t.Certificate }},
			{Header: "Job Title", Width: 16, Value: func(t *models.Teacher) interface{} { return t.JobTitle }},
			{Header: "Specialist", Width: 16, Value: func(t *models.Teacher) interface{} { return t.Specialist }},
			{Header: "Graduation", Width: 12, Value: func(t *models.Teacher) interface{} { return t.GraduationDate }},
			{Header: "Start Date", Width: 12, Value: func(t *models.Teacher) interface{} { return t.StartDate }},
			{Header: "Previous Institution", Width: 20, Value: func(t *models.Teacher) interface{} { return t.PreviousInstitution }},
			{Header: "Blood Type", Width: 8, Value: func(t *models.Teacher) interface{} { return t.BloodType }},
			{Header: "Notes", Width: 30, Value: func(t *models.Teacher) interface{} { return t.Notes }},
		},
	}
}

func ExamSupervision() Def[*models.ExamSupervision] {
	return Def[*models.ExamSupervision]{
		Collection: "exam_supervision",
		Path:       "exam-supervision",
		Title:      "Exam Supervision",
		View: view.Config[*models.ExamSupervision]{
			Keys: []search.Key[*models.ExamSupervision]{
				{Name: "subject", Weight: 0.25, Get: func(e *models.ExamSupervision) string { return e.Subject }},
				{Name: "supervisorName", Weight: 0.25, Get: func(e *models.ExamSupervision) string { return e.SupervisorName }},
				{Name: "stage", Weight: 0.15, Get: func(e *models.ExamSupervision) string { return e.Stage }},
				{Name: "examAchievement", Weight: 0.1, Get: func(e *models.ExamSupervision) string { return e.ExamAchievement }},
				{Name: "notes", Weight: 0.1, Get: func(e *models.ExamSupervision) string { return e.Notes }},
				{Name: "searchableContent", Weight: 0.15, Get: func(e *models.ExamSupervision) string {
					return search.Join(e.Subject, e.Stage, e.EndTime, e.ExamAchievement, e.SupervisorName,
						num(e.ObtainedScore), e.Notes)
				}},
			},
		},
		Columns: []Column[*models.ExamSupervision]{
			{Header: "Subject", Width: 20, Value: func(e *models.ExamSupervision) interface{} { return e.Subject }},
			{Header: "Stage", Width: 10, Value: func(e *models.ExamSupervision) interface{} { return e.Stage }},
			{Header: "End Time", Width: 10, Value: func(e *models.ExamSupervision) interface{} { return e.EndTime }},
			{Header: "Achievement", Width: 16, Value: func(e *models.ExamSupervision) interface{} { return e.ExamAchievement }},
			{Header: "Supervisor", Width: 20, Value: func(e *models.ExamSupervision) interface{} { return e.SupervisorName }},
			{Header: "Score", Width: 8, Value: func(e *models.ExamSupervision) interface{} { return e.ObtainedScore.Float() }},
			{Header: "Notes", Width: 30, Value: func(e *models.ExamSupervision) interface{} { return e.Notes }},
		},
	}
}
