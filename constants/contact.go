package constants

// Header is the fixed column header of the contact table.
var Header = []string{"Name", "Email", "Company", "Contact"}

// Defaults for the detail parser and output.
const (
	DefaultModel      = "gpt-4"
	DefaultMaxTokens  = 200
	DefaultOutputFile = "contacts.csv"
	DefaultKeyFile    = ".openai_key"
)
