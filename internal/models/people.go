package models

import "strings"

// Bus 是一辆校车及其线路和司机
type Bus struct {
	Meta               `bson:",inline"`
	BusNumber          string  `json:"busNumber" bson:"busNumber" validate:"max=64"`
	BusType            string  `json:"busType" bson:"busType"`
	Route              string  `json:"route" bson:"route"`
	Capacity           Number  `json:"capacity" bson:"capacity"`
	StudentCount       Number  `json:"studentCount" bson:"studentCount"`
	TeacherCount       Number  `json:"teacherCount" bson:"teacherCount"`
	DriverName         string  `json:"driverName" bson:"driverName"`
	DriverPhone        string  `json:"driverPhone" bson:"driverPhone"`
	DriverLicense      string  `json:"driverLicense" bson:"driverLicense"`
	DriverPhoto        []Media `json:"driverPhoto" bson:"driverPhoto"`
	DriverLicensePhoto []Media `json:"driverLicensePhoto" bson:"driverLicensePhoto"`
	DriverVideos       []Media `json:"driverVideos" bson:"driverVideos"`
	Notes              string  `json:"notes" bson:"notes"`
}

func (b *Bus) Normalize() {
	b.BusNumber = strings.TrimSpace(b.BusNumber)
	b.DriverPhone = strings.TrimSpace(b.DriverPhone)
}

// Staff 是非教学岗位的员工
type Staff struct {
	Meta              `bson:",inline"`
	FullName          string  `json:"fullName" bson:"fullName" validate:"max=256"`
	Mobile            string  `json:"mobile" bson:"mobile"`
	Address           string  `json:"address" bson:"address"`
	Gender            string  `json:"gender" bson:"gender"`
	DateOfBirth       string  `json:"dateOfBirth" bson:"dateOfBirth"`
	Certificate       string  `json:"certificate" bson:"certificate"`
	Education         string  `json:"education" bson:"education"`
	Attendance        string  `json:"attendance" bson:"attendance"`
	Department        string  `json:"department" bson:"department"`
	BloodType         string  `json:"bloodType" bson:"bloodType"`
	Contract          string  `json:"contract" bson:"contract"`
	CertificateImages []Media `json:"certificateImages" bson:"certificateImages"`
	Notes             string  `json:"notes" bson:"notes"`
}

func (s *Staff) Normalize() {
	s.FullName = strings.TrimSpace(s.FullName)
}

// Teacher 是教学人员
type Teacher struct {
	Meta                `bson:",inline"`
	FullName            string  `json:"fullName" bson:"fullName" validate:"max=256"`
	BirthYear           Text    `json:"birthYear" bson:"birthYear"`
	Certificate         string  `json:"certificate" bson:"certificate"`
	JobTitle            string  `json:"jobTitle" bson:"jobTitle"`
	Specialist          string  `json:"specialist" bson:"specialist"`
	GraduationDate      string  `json:"graduationDate" bson:"graduationDate"`
	StartDate           string  `json:"startDate" bson:"startDate"`
	PreviousInstitution string  `json:"previousInstitution" bson:"previousInstitution"`
	BloodType           string  `json:"bloodType" bson:"bloodType"`
	CertificateImages   []Media `json:"certificateImages" bson:"certificateImages"`
	Notes               string  `json:"notes" bson:"notes"`
}

func (t *Teacher) Normalize() {
	t.FullName = strings.TrimSpace(t.FullName)
}

// ExamSupervision 记录考试监考人和结果
type ExamSupervision struct {
	Meta            `bson:",inline"`
	Subject         string `json:"subject" bson:"subject" validate:"max=256"`
	Stage           string `json:"stage" bson:"stage"`
	EndTime         string `json:"endTime" bson:"endTime"`
	ExamAchievement string `json:"examAchievement" bson:"examAchievement"`
	SupervisorName  string `json:"supervisorName" bson:"supervisorName"`
	ObtainedScore   Number `json:"obtainedScore" bson:"obtainedScore"`
	Notes           string `json:"notes" bson:"notes"`
}
