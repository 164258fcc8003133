package classify

// SeedCategory is a default rule used to bootstrap an empty store.
type SeedCategory struct {
	Name     string
	Keywords []string
}

// DefaultCategories is the starter rule set installed when the store holds
// no categories yet. Keywords are lowercase by convention; users extend or
// replace these through the categories API.
func DefaultCategories() []SeedCategory {
	return []SeedCategory{
		{Name: "Groceries", Keywords: []string{"whole foods", "trader joe", "safeway", "kroger", "grocery", "supermarket"}},
		{Name: "Restaurants", Keywords: []string{"restaurant", "chipotle", "mcdonald", "starbucks", "doordash", "grubhub", "cafe"}},
		{Name: "Transport", Keywords: []string{"uber", "lyft", "shell", "chevron", "parking", "transit", "gas station"}},
		{Name: "Entertainment", Keywords: []string{"netflix", "spotify", "hulu", "cinema", "steam", "ticketmaster"}},
		{Name: "Shopping", Keywords: []string{"amazon", "target", "walmart", "best buy", "ebay"}},
		{Name: "Utilities", Keywords: []string{"electric", "water", "internet", "comcast", "verizon", "utility"}},
		{Name: "Income", Keywords: []string{"payroll", "salary", "direct deposit", "deposit"}},
	}
}
