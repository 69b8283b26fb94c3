package domain

// Summary totals a set of transactions by the type of their category.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	Balance      Money
}

func NewSummary(income, expense Money) Summary {
	return Summary{
		TotalIncome:  income,
		TotalExpense: expense,
		Balance:      income.Sub(expense),
	}
}

// MonthlySummary is a Summary bucketed by calendar month. Month is 1-12.
type MonthlySummary struct {
	Year  int
	Month int
	Summary
}
