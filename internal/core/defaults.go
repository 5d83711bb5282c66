package core

const (
	DefaultColor = "bg-gray-500"
	DefaultIcon  = "more-horizontal"

	UnknownCategoryName = "Unknown Category"
)

// UnknownCategory is shown wherever a record references a category that no longer exists.
var UnknownCategory = Category{Name: UnknownCategoryName, Color: DefaultColor, Icon: "help-circle"}

var defaultCategories = []Category{
	{ID: "cat_housing", Name: "Housing", Color: "bg-budget-purple-500", Icon: "home"},
	{ID: "cat_food", Name: "Food & Dining", Color: "bg-budget-green-500", Icon: "utensils"},
	{ID: "cat_transportation", Name: "Transportation", Color: "bg-budget-blue-500", Icon: "car"},
	{ID: "cat_entertainment", Name: "Entertainment", Color: "bg-budget-yellow-500", Icon: "film"},
	{ID: "cat_healthcare", Name: "Healthcare", Color: "bg-budget-red-500", Icon: "heart"},
	{ID: "cat_shopping", Name: "Shopping", Color: "bg-budget-purple-400", Icon: "shopping-bag"},
	{ID: "cat_utilities", Name: "Utilities", Color: "bg-budget-blue-700", Icon: "zap"},
	{ID: "cat_other", Name: "Other", Color: DefaultColor, Icon: DefaultIcon},
}

// DefaultCategories returns the seed categories loaded on first run.
// The slice is a fresh copy on every call.
func DefaultCategories() []Category {
	out := make([]Category, len(defaultCategories))
	copy(out, defaultCategories)
	return out
}

// Snapshot is the full content of every collection at one point in time.
type Snapshot struct {
	Expenses   []Expense  `json:"expenses"`
	Budgets    []Budget   `json:"budgets"`
	Categories []Category `json:"categories"`
}

// Clone returns a snapshot that shares no backing arrays with s.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Expenses:   append([]Expense(nil), s.Expenses...),
		Budgets:    append([]Budget(nil), s.Budgets...),
		Categories: append([]Category(nil), s.Categories...),
	}
}
