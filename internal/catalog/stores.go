package catalog

import (
	"context"
	"fmt"
	"time"

	"berdoz-admin/internal/models"
	"berdoz-admin/internal/store"

	"go.mongodb.org/mongo-driver/mongo"
)

// Stores 为每个模块持有一个集合
type Stores struct {
	Calendar   store.Collection[*models.CalendarEntry]
	Legend     store.Collection[*models.LegendEntry]
	EmailTasks store.Collection[*models.EmailTask]

	MonthlyExpenses  store.Collection[*models.MonthlyExpense]
	KitchenExpenses  store.Collection[*models.KitchenExpense]
	BuildingExpenses store.Collection[*models.BuildingExpense]
	Installments     store.Collection[*models.Installment]
	Payroll          store.Collection[*models.Payroll]

	Buses           store.Collection[*models.Bus]
	Staff           store.Collection[*models.Staff]
	Teachers        store.Collection[*models.Teacher]
	ExamSupervision store.Collection[*models.ExamSupervision]

	Activities         store.Collection[*models.Activity]
	DailyAccounts      store.Collection[*models.DailyAccount]
	EmployeeLeaves     store.Collection[*models.EmployeeLeave]
	OfficerLeaves      store.Collection[*models.OfficerLeave]
	StudentPermissions store.Collection[*models.StudentPermission]
	SupervisedStudents store.Collection[*models.SupervisedStudent]
	Supervision        store.Collection[*models.Supervision]
	TeacherInfo        store.Collection[*models.TeacherInfo]

	EmailSettings store.Collection[*models.EmailSettings]
}

// MongoStores 把每个模块绑定到 db 中对应的集合
func MongoStores(db *mongo.Database, timeout time.Duration) *Stores {
	return &Stores{
		Calendar:   store.NewMongo[*models.CalendarEntry](db, Calendar().Collection, timeout),
		Legend:     store.NewMongo[*models.LegendEntry](db, Legend().Collection, timeout),
		EmailTasks: store.NewMongo[*models.EmailTask](db, EmailTasks().Collection, timeout),

		MonthlyExpenses:  store.NewMongo[*models.MonthlyExpense](db, MonthlyExpenses().Collection, timeout),
		KitchenExpenses:  store.NewMongo[*models.KitchenExpense](db, KitchenExpenses().Collection, timeout),
		BuildingExpenses: store.NewMongo[*models.BuildingExpense](db, BuildingExpenses().Collection, timeout),
		Installments:     store.NewMongo[*models.Installment](db, Installments().Collection, timeout),
		Payroll:          store.NewMongo[*models.Payroll](db, Payroll().Collection, timeout),

		Buses:           store.NewMongo[*models.Bus](db, Buses().Collection, timeout),
		Staff:           store.NewMongo[*models.Staff](db, Staff().Collection, timeout),
		Teachers:        store.NewMongo[*models.Teacher](db, Teachers().Collection, timeout),
		ExamSupervision: store.NewMongo[*models.ExamSupervision](db, ExamSupervision().Collection, timeout),

		Activities:         store.NewMongo[*models.Activity](db, Activities().Collection, timeout),
		DailyAccounts:      store.NewMongo[*models.DailyAccount](db, DailyAccounts().Collection, timeout),
		EmployeeLeaves:     store.NewMongo[*models.EmployeeLeave](db, EmployeeLeaves().Collection, timeout),
		OfficerLeaves:      store.NewMongo[*models.OfficerLeave](db, OfficerLeaves().Collection, timeout),
		StudentPermissions: store.NewMongo[*models.StudentPermission](db, StudentPermissions().Collection, timeout),
		SupervisedStudents: store.NewMongo[*models.SupervisedStudent](db, SupervisedStudents().Collection, timeout),
		Supervision:        store.NewMongo[*models.Supervision](db, Supervision().Collection, timeout),
		TeacherInfo:        store.NewMongo[*models.TeacherInfo](db, TeacherInfo().Collection, timeout),

		EmailSettings: store.NewMongo[*models.EmailSettings](db, EmailSettingsCollection, timeout),
	}
}

// MemoryStores 是测试和离线 CLI 使用的进程内版本
func MemoryStores() *Stores {
	return &Stores{
		Calendar:   store.NewMemory[*models.CalendarEntry](Calendar().Collection),
		Legend:     store.NewMemory[*models.LegendEntry](Legend().Collection),
		EmailTasks: store.NewMemory[*models.EmailTask](EmailTasks().Collection),

		MonthlyExpenses:  store.NewMemory[*models.MonthlyExpense](MonthlyExpenses().Collection),
		KitchenExpenses:  store.NewMemory[*models.KitchenExpense](KitchenExpenses().Collection),
		BuildingExpenses: store.NewMemory[*models.BuildingExpense](BuildingExpenses().Collection),
		Installments:     store.NewMemory[*models.Installment](Installments().Collection),
		Payroll:          store.NewMemory[*models.Payroll](Payroll().Collection),

		Buses:           store.NewMemory[*models.Bus](Buses().Collection),
		Staff:           store.NewMemory[*models.Staff](Staff().Collection),
		Teachers:        store.NewMemory[*models.Teacher](Teachers().Collection),
		ExamSupervision: store.NewMemory[*models.ExamSupervision](ExamSupervision().Collection),

		Activities:         store.NewMemory[*models.Activity](Activities().Collection),
		DailyAccounts:      store.NewMemory[*models.DailyAccount](DailyAccounts().Collection),
		EmployeeLeaves:     store.NewMemory[*models.EmployeeLeave](EmployeeLeaves().Collection),
		OfficerLeaves:      store.NewMemory[*models.OfficerLeave](OfficerLeaves().Collection),
		StudentPermissions: store.NewMemory[*models.StudentPermission](StudentPermissions().Collection),
		SupervisedStudents: store.NewMemory[*models.SupervisedStudent](SupervisedStudents().Collection),
		Supervision:        store.NewMemory[*models.Supervision](Supervision().Collection),
		TeacherInfo:        store.NewMemory[*models.TeacherInfo](TeacherInfo().Collection),

		EmailSettings: store.NewMemory[*models.EmailSettings](EmailSettingsCollection),
	}
}

// Archives 列出所有集合，用于备份和恢复
func (s *Stores) Archives() []store.Archive {
	return []store.Archive{
		s.Calendar, s.Legend, s.EmailTasks,
		s.MonthlyExpenses, s.KitchenExpenses, s.BuildingExpenses, s.Installments, s.Payroll,
		s.Buses, s.Staff, s.Teachers, s.ExamSupervision,
		s.Activities, s.DailyAccounts, s.EmployeeLeaves, s.OfficerLeaves,
		s.StudentPermissions, s.SupervisedStudents, s.Supervision, s.TeacherInfo,
		s.EmailSettings,
	}
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes 在支持索引的集合上创建 id 索引
func (s *Stores) EnsureIndexes(ctx context.Context) error {
	for _, a := range s.Archives() {
		ix, ok := a.(indexer)
		if !ok {
			continue
		}
		if err := ix.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("indexes for %s: %w", a.Name(), err)
		}
	}
	return nil
}
