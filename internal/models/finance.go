package models

import (
	"strconv"
	"strings"
	"time"
)

// MonthlyExpense 是学校按类别汇总的月度支出
type MonthlyExpense struct {
	Meta             `bson:",inline"`
	Year             Text    `json:"year" bson:"year"`
	Month            Text    `json:"month" bson:"month"`
	StaffSalary      Number  `json:"staffSalary" bson:"staffSalary"`
	Expenses         Number  `json:"expenses" bson:"expenses"`
	BuildingRent     Number  `json:"buildingRent" bson:"buildingRent"`
	BuildingExpenses Number  `json:"buildingExpenses" bson:"buildingExpenses"`
	DramaFee         Number  `json:"dramaFee" bson:"dramaFee"`
	SocialSupport    Number  `json:"socialSupport" bson:"socialSupport"`
	Electricity      Number  `json:"electricity" bson:"electricity"`
	Books            Number  `json:"books" bson:"books"`
	Clothes          Number  `json:"clothes" bson:"clothes"`
	Travel           Number  `json:"travel" bson:"travel"`
	Transportation   Number  `json:"transportation" bson:"transportation"`
	Total            Number  `json:"total" bson:"total"`
	Requirement      string  `json:"requirement" bson:"requirement"`
	ReceiptImages    []Media `json:"receiptImages" bson:"receiptImages"`
	Notes            string  `json:"notes" bson:"notes"`
}

// Categories 按展示顺序返回各类别金额
func (m *MonthlyExpense) Categories() []Number {
	return []Number{
		m.StaffSalary, m.Expenses, m.BuildingRent, m.BuildingExpenses,
		m.DramaFee, m.SocialSupport, m.Electricity, m.Books,
		m.Clothes, m.Travel, m.Transportation,
	}
}

// Normalize 让 Total 等于各类别之和
func (m *MonthlyExpense) Normalize() {
	m.Total = NumberFromDecimal(SumNumbers(m.Categories()...))
}

func (m *MonthlyExpense) Period() Period { return Period{Year: string(m.Year), Month: string(m.Month)} }
func (m *MonthlyExpense) Amount() float64 { return m.Total.Float() }

// KitchenExpense 是一笔厨房采购
type KitchenExpense struct {
	Meta          `bson:",inline"`
	Item          string  `json:"item" bson:"item" validate:"max=256"`
	Cost          Number  `json:"cost" bson:"cost"`
	Date          string  `json:"date" bson:"date" validate:"omitempty,yyyymmdd"`
	Month         Text    `json:"month" bson:"month"`
	Year          Text    `json:"year" bson:"year"`
	Purpose       string  `json:"purpose" bson:"purpose"`
	ReceiptImages []Media `json:"receiptImages" bson:"receiptImages"`
	Notes         string  `json:"notes" bson:"notes"`
}

// Normalize 有采购日期时由日期推出年、月
func (k *KitchenExpense) Normalize() {
	k.Date = strings.TrimSpace(k.Date)
	if t, err := time.Parse("2006-01-02", k.Date); err == nil {
		k.Year = Text(strconv.Itoa(t.Year()))
		if k.Month == "" {
			k.Month = Text(strconv.Itoa(int(t.Month())))
		}
	}
}

func (k *KitchenExpense) Period() Period  { return Period{Year: string(k.Year), Month: string(k.Month)} }
func (k *KitchenExpense) Amount() float64 { return k.Cost.Float() }

// BuildingExpense 是校舍的一笔采购或维修
type BuildingExpense struct {
	Meta   `bson:",inline"`
	Item   string  `json:"item" bson:"item" validate:"max=256"`
	Cost   Number  `json:"cost" bson:"cost"`
	Year   Text    `json:"year" bson:"year"`
	Month  Text    `json:"month" bson:"month"`
	Date   string  `json:"date" bson:"date" validate:"omitempty,yyyymmdd"`
	Images []Media `json:"images" bson:"images"`
	Notes  string  `json:"notes" bson:"notes"`
}

func (b *BuildingExpense) Normalize() {
	b.Date = strings.TrimSpace(b.Date)
	if b.Year == "" {
		if t, err := time.Parse("2006-01-02", b.Date); err == nil {
			b.Year = Text(strconv.Itoa(t.Year()))
		}
	}
}

func (b *BuildingExpense) Period() Period  { return Period{Year: string(b.Year), Month: string(b.Month)} }
func (b *BuildingExpense) Amount() float64 { return b.Cost.Float() }

// Installment 记录学生学费的六期缴费
type Installment struct {
	Meta              `bson:",inline"`
	FullName          string  `json:"fullName" bson:"fullName" validate:"max=256"`
	Grade             string  `json:"grade" bson:"grade"`
	InstallmentType   string  `json:"installmentType" bson:"installmentType"`
	AnnualAmount      Number  `json:"annualAmount" bson:"annualAmount"`
	FirstInstallment  Number  `json:"firstInstallment" bson:"firstInstallment"`
	SecondInstallment Number  `json:"secondInstallment" bson:"secondInstallment"`
	ThirdInstallment  Number  `json:"thirdInstallment" bson:"thirdInstallment"`
	FourthInstallment Number  `json:"fourthInstallment" bson:"fourthInstallment"`
	FifthInstallment  Number  `json:"fifthInstallment" bson:"fifthInstallment"`
	SixthInstallment  Number  `json:"sixthInstallment" bson:"sixthInstallment"`
	TotalReceived     Number  `json:"totalReceived" bson:"totalReceived"`
	Remaining         Number  `json:"remaining" bson:"remaining"`
	ReceiptImages     []Media `json:"receiptImages" bson:"receiptImages"`
	Notes             string  `json:"notes" bson:"notes"`
}

func (i *Installment) Installments() []Number {
	return []Number{
		i.FirstInstallment, i.SecondInstallment, i.ThirdInstallment,
		i.FourthInstallment, i.FifthInstallment, i.SixthInstallment,
	}
}

// Normalize 让 TotalReceived 和 Remaining 与各期缴费一致
func (i *Installment) Normalize() {
	sum := SumNumbers(i.Installments()...)
	i.TotalReceived = NumberFromDecimal(sum)
	i.Remaining = NumberFromDecimal(i.AnnualAmount.Decimal().Sub(sum))
}

func (i *Installment) Amount() float64 { return i.TotalReceived.Float() }

// Payroll 是一名员工某月的工资
type Payroll struct {
	Meta         `bson:",inline"`
	EmployeeName string `json:"employeeName" bson:"employeeName" validate:"max=256"`
	Salary       Number `json:"salary" bson:"salary"`
	Absence      Number `json:"absence" bson:"absence"`
	Deduction    Number `json:"deduction" bson:"deduction"`
	Bonus        Number `json:"bonus" bson:"bonus"`
	Total        Number `json:"total" bson:"total"`
	Month        Text   `json:"month" bson:"month"`
	Year         Text   `json:"year" bson:"year"`
	Notes        string `json:"notes" bson:"notes"`
}

func (p *Payroll) Normalize() {
	total := p.Salary.Decimal().Sub(p.Absence.Decimal()).Sub(p.Deduction.Decimal()).Add(p.Bonus.Decimal())
	p.Total = NumberFromDecimal(total)
}

func (p *Payroll) Period() Period  { return Period{Year: string(p.Year), Month: string(p.Month)} }
func (p *Payroll) Amount() float64 { return p.Total.Float() }
