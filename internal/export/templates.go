// Package export renders expense data into downloadable documents and tracks
// export jobs and schedules. Destinations are simulated records only; nothing
// here talks to an external service.
package export

// Format is the output encoding of an export document.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Dataset selects which aggregation the renderer runs before encoding.
type Dataset string

const (
	DatasetExpenses   Dataset = "expenses"
	DatasetVendors    Dataset = "vendors"
	DatasetCategories Dataset = "categories"
)

// Template describes a canned export configuration.
type Template struct {
	ID          string
	Name        string
	Description string
	Category    string // business, personal, tax, analysis
	Dataset     Dataset
	Format      Format
	// MonthScoped restricts the export to the month containing the job's
	// reference time.
	MonthScoped bool
}

var templates = []Template{
	{
		ID:          "raw-data",
		Name:        "Complete Data Export",
		Description: "All expense data in spreadsheet format",
		Category:    "personal",
		Dataset:     DatasetExpenses,
		Format:      FormatCSV,
	},
	{
		ID:          "tax-report",
		Name:        "Tax Deduction Report",
		Description: "Expense report with categorized totals for tax season",
		Category:    "tax",
		Dataset:     DatasetExpenses,
		Format:      FormatCSV,
	},
	{
		ID:          "business-expenses",
		Name:        "Business Expense Report",
		Description: "Vendor-resolved report for expense reimbursements",
		Category:    "business",
		Dataset:     DatasetVendors,
		Format:      FormatCSV,
	},
	{
		ID:          "monthly-summary",
		Name:        "Monthly Summary",
		Description: "Category totals for the current month",
		Category:    "personal",
		Dataset:     DatasetCategories,
		Format:      FormatCSV,
		MonthScoped: true,
	},
	{
		ID:          "category-analysis",
		Name:        "Category Breakdown",
		Description: "Spending by category with population shares",
		Category:    "analysis",
		Dataset:     DatasetCategories,
		Format:      FormatJSON,
	},
	{
		ID:          "top-vendors",
		Name:        "Top Vendors",
		Description: "Ranked vendors with chart-ready shares",
		Category:    "analysis",
		Dataset:     DatasetVendors,
		Format:      FormatJSON,
	},
}

// Templates returns the export template catalog.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// TemplateByID looks up a template, reporting whether it exists.
func TemplateByID(id string) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}
