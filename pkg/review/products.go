package review

import "strings"

// Product ids in catalogue order.
const (
	ProductTermLife          = "term-life"
	ProductWholeLife         = "whole-life"
	ProductMortgage          = "mortgage-protection"
	ProductIncomeReplacement = "income-replacement"
	ProductFinalExpense      = "final-expense"
)

// Product is one insurance product the applicant may apply for.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Detail      string `json:"detail,omitempty"`
	Selected    bool   `json:"selected"`
}

type productRule struct {
	id          string
	name        string
	description string
	selected    func(answers map[string]string) bool
	detail      func(answers map[string]string) string
}

func purposeIs(value string) func(map[string]string) bool {
	return func(answers map[string]string) bool {
		return answers["purposeOfInsurance"] == value
	}
}

func labelled(prefix, id string) func(map[string]string) string {
	return func(answers map[string]string) string {
		if v := answers[id]; v != "" {
			return prefix + v
		}
		return ""
	}
}

var catalogue = []productRule{
	{
		id:          ProductTermLife,
		name:        "Term Life Insurance",
		description: "Coverage for a specific period of time",
		selected: func(answers map[string]string) bool {
			return answers["desiredTermLength"] != ""
		},
		detail: func(answers map[string]string) string {
			term := strings.TrimSuffix(answers["desiredTermLength"], " years")
			if term == "" {
				return ""
			}
			return term + " year term"
		},
	},
	{
		id:          ProductWholeLife,
		name:        "Whole Life Insurance",
		description: "Permanent coverage with cash value",
		selected:    purposeIs("Estate Planning"),
		detail: func(answers map[string]string) string {
			if answers["purposeOfInsurance"] == "Estate Planning" {
				return "Estate planning coverage"
			}
			return ""
		},
	},
	{
		id:          ProductMortgage,
		name:        "Mortgage Protection",
		description: "Coverage specifically for mortgage debt",
		selected:    purposeIs("Mortgage Protection"),
		detail:      labelled("Mortgage balance: ", "mortgageBalance"),
	},
	{
		id:          ProductIncomeReplacement,
		name:        "Income Replacement",
		description: "Replace lost income for your family",
		selected:    purposeIs("Income Replacement"),
		detail:      labelled("Annual income: ", "annualIncome"),
	},
	{
		id:          ProductFinalExpense,
		name:        "Final Expense Insurance",
		description: "Coverage for burial and end-of-life costs",
		selected:    purposeIs("Business/Final Expenses"),
		detail: func(map[string]string) string {
			return "Covers funeral and final expenses"
		},
	},
}

// Products returns the catalogue with the initial selection derived from
// answers.
func Products(answers map[string]string) []Product {
	out := make([]Product, 0, len(catalogue))
	for _, rule := range catalogue {
		out = append(out, Product{
			ID:          rule.id,
			Name:        rule.name,
			Description: rule.description,
			Detail:      rule.detail(answers),
			Selected:    rule.selected(answers),
		})
	}
	return out
}
