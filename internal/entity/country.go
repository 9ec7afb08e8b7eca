package entity

// Country is a citizenship option from the intake form.
type Country struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

var Countries = []Country{
	{Code: "united_states", Label: "United States"},
	{Code: "mexico", Label: "Mexico"},
	{Code: "india", Label: "India"},
	{Code: "china", Label: "China"},
	{Code: "canada", Label: "Canada"},
	{Code: "russia", Label: "Russia"},
	{Code: "brazil", Label: "Brazil"},
	{Code: "south_korea", Label: "South Korea"},
	{Code: "france", Label: "France"},
	{Code: "other", Label: "Other"},
}

func CountryLabel(code string) (string, bool) {
	for _, c := range Countries {
		if c.Code == code {
			return c.Label, true
		}
	}
	return "", false
}

func IsValidCountry(code string) bool {
	_, ok := CountryLabel(code)
	return ok
}
