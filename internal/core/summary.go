package core

// MonthlyExpense is the expense total for one calendar month, expressed as
// a positive magnitude. Derived, never stored.
type MonthlyExpense struct {
	Year  int
	Month int // 1-12
	Total Money
}

// CategoryExpense is the expense total and transaction count for one
// category. Transactions without a category aggregate under "Uncategorized".
type CategoryExpense struct {
	Category         string
	Total            Money
	TransactionCount int
}

// DashboardSummary bundles the aggregates the dashboard renders. It is
// computed fresh from the store on every request; the monthly and category
// series each sum exactly to TotalExpenses.
type DashboardSummary struct {
	TotalExpenses      Money
	TotalTransactions  int
	MonthlyExpenses    []MonthlyExpense
	ExpensesByCategory []CategoryExpense
}
