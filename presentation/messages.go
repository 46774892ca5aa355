package presentation

import (
	"context"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message ids. The ids double as the English text.
const (
	MsgNotFound     = "No results found!"
	MsgInvalidInput = "Invalid input data!"
	MsgFetchFailed  = "An error occurred while fetching the results"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		MsgNotFound:     MsgNotFound,
		MsgInvalidInput: MsgInvalidInput,
		MsgFetchFailed:  MsgFetchFailed,
	},
	language.BrazilianPortuguese: {
		MsgNotFound:     "Nenhum resultado encontrado!",
		MsgInvalidInput: "Entrada de dados inválidos!",
		MsgFetchFailed:  "Ocorreu um erro ao obter os resultados",
	},
}

// Catalog holds the presenter messages for every supported language.
var Catalog = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	return b
}

// NewPrinter returns a printer for the closest supported language.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(Catalog))
}

type languageKey struct{}

// ContextWithLanguage stores the language presenters built from ctx should use.
func ContextWithLanguage(ctx context.Context, tag language.Tag) context.Context {
	return context.WithValue(ctx, languageKey{}, tag)
}

// LanguageFromContext returns the language stored in ctx, English otherwise.
func LanguageFromContext(ctx context.Context) language.Tag {
	if tag, ok := lookupLanguage(ctx); ok {
		return tag
	}
	return language.English
}

func lookupLanguage(ctx context.Context) (language.Tag, bool) {
	tag, ok := ctx.Value(languageKey{}).(language.Tag)
	return tag, ok
}

// MatchLanguage picks a supported language from an Accept-Language header.
func MatchLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

var (
	supported = []language.Tag{language.English, language.BrazilianPortuguese}
	matcher   = language.NewMatcher(supported)
)
