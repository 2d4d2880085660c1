package config

const (
	LangEN = "en"
	LangES = "es"
)

func isValidLanguage(lang string) bool {
	return lang == LangEN || lang == LangES
}
