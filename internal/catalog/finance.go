package catalog

import (
	"berdoz-admin/internal/models"
	"berdoz-admin/internal/search"
	"berdoz-admin/internal/view"
)

// amountWords 让金额既能按原样（"1250000"、"1,250,000"）搜到，
// 也能按档位（"high"）搜到。
func amountWords(v float64) string {
	return search.Join(search.FormatAmount(v), search.Bucket(v, search.ExpenseTiers))
}

func MonthlyExpenses() Def[*models.MonthlyExpense] {
	return Def[*models.MonthlyExpense]{
		Collection: "monthly_expenses",
		Path:       "monthly-expenses",
		Title:      "Monthly Expenses",
		AdminOnly:  true,
		View: view.Config[*models.MonthlyExpense]{
			Keys: []search.Key[*models.MonthlyExpense]{
				{Name: "month", Weight: 0.2, Get: func(m *models.MonthlyExpense) string { return monthWords(string(m.Month)) }},
				{Name: "year", Weight: 0.1, Get: func(m *models.MonthlyExpense) string { return string(m.Year) }},
				{Name: "requirement", Weight: 0.2, Get: func(m *models.MonthlyExpense) string { return m.Requirement }},
				{Name: "notes", Weight: 0.15, Get: func(m *models.MonthlyExpense) string { return m.Notes }},
				{Name: "amounts", Weight: 0.35, Get: func(m *models.MonthlyExpense) string {
					parts := []string{amountWords(m.Total.Float())}
					for _, n := range m.Categories() {
						parts = append(parts, search.FormatAmount(n.Float()))
					}
					return search.Join(parts...)
				}},
			},
			Period: func(m *models.MonthlyExpense) models.Period { return m.Period() },
			Amount: func(m *models.MonthlyExpense) float64 { return m.Amount() },
		},
		Columns: []Column[*models.MonthlyExpense]{
			{Header: "Year", Width: 8, Value: func(m *models.MonthlyExpense) interface{} { return string(m.Year) }},
			{Header: "Month", Width: 12, Value: func(m *models.MonthlyExpense) interface{} { return string(m.Month) }},
			{Header: "Staff Salary", Width: 14, Value: func(m *models.MonthlyExpense) interface{} { return m.StaffSalary.Float() }},
			{Header: "Expenses", Width: 12, Value: func(m *models.MonthlyExpense) interface{} { return m.Expenses.Float() }},
			{Header: "Building Rent", Width: 14, Value: func(m *models.MonthlyExpense) interface{} { return m.BuildingRent.Float() }},
			{Header: "Building Expenses", Width: 16, Value: func(m *models.MonthlyExpense) interface{} { return m.BuildingExpenses.Float() }},
			{Header: "Drama Fee", Width: 12, Value: func(m *models.MonthlyExpense) interface{} { return m.DramaFee.Float() }},
			{Header: "Social Support", Width: 14, Value: func(m *models.MonthlyExpense) interface{} { return m.SocialSupport.Float() }},
			{Header: "Electricity", Width: 12, Value: func(m *models.MonthlyExpense) interface{} { return m.Electricity.Float() }},
			{Header: "Books", Width: 10, Value: func(m *models.MonthlyExpense) interface{} { return m.Books.Float() }},
			{Header: "Clothes", Width: 10, Value: func(m *models.MonthlyExpense) interface{} { return m.Clothes.Float() }},
			{Header: "Travel", Width: 10, Value: func(m *models.MonthlyExpense) interface{} { return m.Travel.Float() }},
			{Header: "Transportation", Width: 14, Value: func(m *models.MonthlyExpense) interface{} { return m.Transportation.Float() }},
			{Header: "Total", Width: 14, Value: func(m *models.MonthlyExpense) interface{} { return m.Total.Float() }},
			{Header: "Requirement", Width: 24, Value: func(m *models.MonthlyExpense) interface{} { return m.Requirement }},
			{Header: "Notes", Width: 30, Value: func(m *models.MonthlyExpense) interface{} { return m.Notes }},
		},
	}
}

func KitchenExpenses() Def[*models.KitchenExpense] {
	return Def[*models.KitchenExpense]{
		Collection: "kitchen_expenses",
		Path:       "kitchen-expenses",
		Title:      "Kitchen Expenses",
		AdminOnly:  true,
		View: view.Config[*models.KitchenExpense]{
			Keys: []search.Key[*models.KitchenExpense]{
				{Name: "item", Weight: 0.3, Get: func(k *models.KitchenExpense) string { return k.Item }},
				{Name: "purpose", Weight: 0.15, Get: func(k *models.KitchenExpense) string { return k.Purpose }},
				{Name: "notes", Weight: 0.1, Get: func(k *models.KitchenExpense) string { return k.Notes }},
				{Name: "date", Weight: 0.05, Get: func(k *models.KitchenExpense) string { return k.Date }},
				{Name: "month", Weight: 0.15, Get: func(k *models.KitchenExpense) string { return monthWords(string(k.Month)) }},
				{Name: "cost", Weight: 0.25, Get: func(k *models.KitchenExpense) string { return amountWords(k.Cost.Float()) }},
			},
			Period: func(k *models.KitchenExpense) models.Period { return k.Period() },
			Amount: func(k *models.KitchenExpense) float64 { return k.Amount() },
		},
		Columns: []Column[*models.KitchenExpense]{
			{Header: "Item", Width: 24, Value: func(k *models.KitchenExpense) interface{} { return k.Item }},
			{Header: "Cost", Width: 12, Value: func(k *models.KitchenExpense) interface{} { return k.Cost.Float() }},
			{Header: "Date", Width: 12, Value: func(k *models.KitchenExpense) interface{} { return k.Date }},
			{Header: "Month", Width: 10, Value: func(k *models.KitchenExpense) interface{} { return string(k.Month) }},
			{Header: "Year", Width: 8, Value: func(k *models.KitchenExpense) interface{} { return string(k.Year) }},
			{Header: "Purpose", Width: 20, Value: func(k *models.KitchenExpense) interface{} { return k.Purpose }},
			{Header: "Receipts", Width: 10, Value: func(k *models.KitchenExpense) interface{} { return mediaCount(k.ReceiptImages) }},
			{Header: "Notes", Width: 30, Value: func(k *models.KitchenExpense) interface{} { return k.Notes }},
		},
	}
}

func BuildingExpenses() Def[*models.BuildingExpense] {
	return Def[*models.BuildingExpense]{
		Collection: "building_expenses",
		Path:       "building-expenses",
		Title:      "Building Expenses",
		AdminOnly:  true,
		View: view.Config[*models.BuildingExpense]{
			Keys: []search.Key[*models.BuildingExpense]{
				{Name: "item", Weight: 0.35, Get: func(b *models.BuildingExpense) string { return b.Item }},
				{Name: "notes", Weight: 0.15, Get: func(b *models.BuildingExpense) string { return b.Notes }},
				{Name: "date", Weight: 0.05, Get: func(b *models.BuildingExpense) string { return b.Date }},
				{Name: "month", Weight: 0.15, Get: func(b *models.BuildingExpense) string { return monthWords(string(b.Month)) }},
				{Name: "year", Weight: 0.05, Get: func(b *models.BuildingExpense) string { return string(b.Year) }},
				{Name: "cost", Weight: 0.25, Get: func(b *models.BuildingExpense) string { return amountWords(b.Cost.Float()) }},
			},
			Period: func(b *models.BuildingExpense) models.Period { return b.Period() },
			Amount: func(b *models.BuildingExpense) float64 { return b.Amount() },
		},
		Columns: []Column[*models.BuildingExpense]{
			{Header: "Item", Width: 24, Value: func(b *models.BuildingExpense) interface{} { return b.Item }},
			{Header: "Cost", Width: 12, Value: func(b *models.BuildingExpense) interface{} { return b.Cost.Float() }},
			{Header: "Year", Width: 8, Value: func(b *models.BuildingExpense) interface{} { return string(b.Year) }},
			{Header: "Month", Width: 10, Value: func(b *models.BuildingExpense) interface{} { return string(b.Month) }},
			{Header: "Date", Width: 12, Value: func(b *models.BuildingExpense) interface{} { return b.Date }},
			{Header: "Images", Width: 8, Value: func(b *models.BuildingExpense) interface{} { return mediaCount(b.Images) }},
			{Header: "Notes", Width: 30, Value: func(b *models.BuildingExpense) interface{} { return b.Notes }},
		},
	}
}

func Installments() Def[*models.Installment] {
	return Def[*models.Installment]{
		Collection: "installments",
		Path:       "installments",
		Title:      "Installments",
		AdminOnly:  true,
		View: view.Config[*models.Installment]{
			Keys: []search.Key[*models.Installment]{
				{Name: "fullName", Weight: 0.35, Get: func(i *models.Installment) string { return i.FullName }},
				{Name: "grade", Weight: 0.15, Get: func(i *models.Installment) string { return i.Grade }},
				{Name: "installmentType", Weight: 0.15, Get: func(i *models.Installment) string { return i.InstallmentType }},
				{Name: "notes", Weight: 0.1, Get: func(i *models.Installment) string { return i.Notes }},
				{Name: "amounts", Weight: 0.25, Get: func(i *models.Installment) string {
					return search.Join(
						search.FormatAmount(i.AnnualAmount.Float()),
						search.FormatAmount(i.TotalReceived.Float()),
						search.FormatAmount(i.Remaining.Float()),
					)
				}},
			},
			Amount: func(i *models.Installment) float64 { return i.Amount() },
		},
		Columns: []Column[*models.Installment]{
			{Header: "Full Name", Width: 24, Value: func(i *models.Installment) interface{} { return i.FullName }},
			{Header: "Grade", Width: 10, Value: func(i *models.Installment) interface{} { return i.Grade }},
			{Header: "Type", Width: 12, Value: func(i *models.Installment) interface{} { return i.InstallmentType }},
			{Header: "Annual Amount", Width: 14, Value: func(i *models.Installment) interface{} { return i.AnnualAmount.Float() }},
			{Header: "1st", Width: 12, Value: func(i *models.Installment) interface{} { return i.FirstInstallment.Float() }},
			{Header: "2nd", Width: 12, Value: func(i *models.Installment) interface{} { return i.SecondInstallment.Float() }},
			{Header: "3rd", Width: 12, Value: func(i *models.Installment) interface{} { return i.ThirdInstallment.Float() }},
			{Header: "4th", Width: 12, Value: func(i *models.Installment) interface{} { return i.FourthInstallment.Float() }},
			{Header: "5th", Width: 12, Value: func(i *models.Installment) interface{} { return i.FifthInstallment.Float() }},
			{Header: "6th", Width: 12, Value: func(i *models.Installment) interface{} { return i.SixthInstallment.Float() }},
			{Header: "Total Received", Width: 14, Value: func(i *models.Installment) interface{} { return i.TotalReceived.Float() }},
			{Header: "Remaining", Width: 14, Value: func(i *models.Installment) interface{} { return i.Remaining.Float() }},
			{Header: "Notes", Width: 30, Value: func(i *models.Installment) interface{} { return i.Notes }},
		},
	}
}

func Payroll() Def[*models.Payroll] {
	return Def[*models.Payroll]{
		Collection: "payroll",
		Path:       "payroll",
		Title:      "Payroll",
		AdminOnly:  true,
		View: view.Config[*models.Payroll]{
			Keys: []search.Key[*models.Payroll]{
				{Name: "employeeName", Weight: 0.4, Get: func(p *models.Payroll) string { return p.EmployeeName }},
				{Name: "month", Weight: 0.15, Get: func(p *models.Payroll) string { return monthWords(string(p.Month)) }},
				{Name: "year", Weight: 0.05, Get: func(p *models.Payroll) string { return string(p.Year) }},
				{Name: "notes", Weight: 0.1, Get: func(p *models.Payroll) string { return p.Notes }},
				{Name: "amounts", Weight: 0.3, Get: func(p *models.Payroll) string {
					return search.Join(
						search.FormatAmount(p.Salary.Float()),
						search.FormatAmount(p.Bonus.Float()),
						search.FormatAmount(p.Total.Float()),
					)
				}},
			},
			Period: func(p *models.Payroll) models.Period { return p.Period() },
			Amount: func(p *models.Payroll) float64 { return p.Amount() },
		},
		Columns: []Column[*models.Payroll]{
			{Header: "Employee", Width: 24, Value: func(p *models.Payroll) interface{} { return p.EmployeeName }},
			{Header: "Salary", Width: 12, Value: func(p *models.Payroll) interface{} { return p.Salary.Float() }},
			{Header: "Absence", Width: 10, Value: func(p *models.Payroll) interface{} { return p.Absence.Float() }},
			{Header: "Deduction", Width: 10, Value: func(p *models.Payroll) interface{} { return p.Deduction.Float() }},
			{Header: "Bonus", Width: 10, Value: func(p *models.Payroll) interface{} { return p.Bonus.Float() }},
			{Header: "Total", Width: 12, Value: func(p *models.Payroll) interface{} { return p.Total.Float() }},
			{Header: "Month", Width: 10, Value: func(p *models.Payroll) interface{} { return string(p.Month) }},
			{Header: "Year", Width: 8, Value: func(p *models.Payroll) interface{} { return string(p.Year) }},
			{Header: "Notes", Width: 30, Value: func(p *models.Payroll) interface{} { return p.Notes }},
		},
	}
}
