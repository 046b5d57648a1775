package parser

import (
	"strings"

	"ledgerbuddy/internal/model"
)

// keywordRule maps a category to the keywords that select it. Rules are
// evaluated in order and the first keyword hit wins.
type keywordRule struct {
	category model.Category
	keywords []string
}

var expenseKeywords = []keywordRule{
	{model.CategoryFood, []string{"food", "swiggy", "zomato", "restaurant", "cafe", "dining"}},
	{model.CategoryShopping, []string{"amazon", "flipkart", "myntra", "shopping"}},
	{model.CategoryTransport, []string{"uber", "ola", "fuel", "petrol", "metro", "cab"}},
	{model.CategoryBills, []string{"bill", "electricity", "recharge", "broadband", "water"}},
	{model.CategoryEntertainment, []string{"movie", "netflix", "spotify", "prime video"}},
	{model.CategoryHealth, []string{"pharmacy", "hospital", "clinic", "medical"}},
}

var incomeKeywords = []keywordRule{
	{model.CategorySalary, []string{"salary", "payroll"}},
	{model.CategoryRefund, []string{"refund", "cashback", "reversal"}},
	{model.CategoryInterest, []string{"interest", "dividend"}},
}

// detectCategory looks the lowered text up in the keyword table for the
// given direction, defaulting to Other.
func detectCategory(lower string, direction model.Direction) model.Category {
	rules := expenseKeywords
	if direction == model.DirectionIncome {
		rules = incomeKeywords
	}

	for _, rule := range rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return model.CategoryOther
}
