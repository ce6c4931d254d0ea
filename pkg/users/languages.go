package users

// Language is a supported interface language.
type Language struct {
	Value string
	Label string
}

// Languages lists the supported languages in display order.
var Languages = []Language{
	{Value: "auto", Label: "Auto"},
	{Value: "en", Label: "English"},
	{Value: "nl", Label: "Dutch"},
	{Value: "fr", Label: "French"},
}

// LanguageValues returns the codes of Languages.
func LanguageValues() []string {
	values := make([]string, len(Languages))
	for i, l := range Languages {
		values[i] = l.Value
	}
	return values
}

// LanguageLabel returns the label for code, or false if it is unsupported.
func LanguageLabel(code string) (string, bool) {
	for _, l := range Languages {
		if l.Value == code {
			return l.Label, true
		}
	}
	return "", false
}
