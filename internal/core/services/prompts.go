package services

import (
	"strings"

	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// DefaultPrompts holds the built-in prompt templates keyed by prompt name.
// Answer templates take the joined context and the question, in that order.
var DefaultPrompts = map[string]string{
	driven.PromptCaptionSystem: "Du er en assistent som beskriver bilder, figurer og tabeller fra dokumenter på norsk. " +
		"Vær kort og presis. Skriv kun fakta du kan se. Ta med synlig tekst når relevant.",

	driven.PromptAnswer: `Du er en hjelpsom assistent. Svar KORT og PRESIST på norsk.
Bruk KUN informasjon i utdragene under. Hvis svaret ikke finnes der, si: "Jeg vet dessverre ikke".
Ikke skriv kildehenvisninger i selve teksten; de legges til automatisk.

Utdrag:
%s

Spørsmål: %s
Svar:`,

	driven.PromptSiteAnswer: `Du er en hjelpsom assistent. Bruk kun konteksten under for å svare kort og presist på norsk.
Oppgi konkrete mål/enheter hvis de fremgår (mm, cm, m). Hvis svaret ikke finnes i konteksten,
svar "Jeg vet dessverre ikke". Inkluder gjerne hvilken kilde(URL) du brukte.

Kontekst:
%s

Spørsmål: %s
Svar:`,
}

// loadPrompt returns the stored template for name, or the built-in default
// when the store is nil, fails or holds an empty template.
func loadPrompt(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && strings.TrimSpace(p) != "" {
			return p
		}
	}
	return DefaultPrompts[name]
}
