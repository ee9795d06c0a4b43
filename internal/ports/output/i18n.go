package output

// Translator renders the user-facing texts of the QR e-mail.
type Translator interface {
	// T renders key for locale; data fills template placeholders and may be nil.
	T(locale, key string, data map[string]any) string
}
