package i18n

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

const (
	// DefaultLocale is used when the client names no supported language.
	DefaultLocale = "en"
	// AcceptLanguageHeader carries the client's language preference.
	AcceptLanguageHeader = "Accept-Language"
)

var (
	defaultTranslator *Translator
	translatorOnce    sync.Once

	// first entry is the fallback
	supported = []language.Tag{language.English, language.Portuguese, language.Dutch}
	matcher   = language.NewMatcher(supported)
)

// Translator maps message keys to localized text.
type Translator struct {
	messages map[string]map[string]string
}

// NewTranslator creates a translator with the built-in messages.
func NewTranslator() *Translator {
	return &Translator{messages: defaultMessages()}
}

// GetTranslator returns the shared translator.
func GetTranslator() *Translator {
	translatorOnce.Do(func() {
		defaultTranslator = NewTranslator()
	})
	return defaultTranslator
}

// Translate returns the message for key in locale, falling back to
// English and then to the key itself.
func (t *Translator) Translate(key, locale string) string {
	if msg, ok := t.messages[locale][key]; ok {
		return msg
	}
	if msg, ok := t.messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// GetLocale picks the best supported locale from Accept-Language.
func GetLocale(c *gin.Context) string {
	return MatchLocale(c.GetHeader(AcceptLanguageHeader))
}

// MatchLocale resolves an Accept-Language value such as
// "pt-BR,pt;q=0.9,en;q=0.8" to "en", "pt" or "nl".
func MatchLocale(acceptLanguage string) string {
	if acceptLanguage == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLocale
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func defaultMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"en": {
			ErrKeyInvalidRequest:     "Invalid request",
			ErrKeyInvalidRequestBody: "Invalid request body",
			ErrKeyInternalError:      "An unexpected error occurred",
			ErrKeyNotFound:           "Not found",
			ErrKeyRateLimitExceeded:  "Too many requests, please try again later",
			ErrKeyConflict:           "Conflict",
			ErrKeyTimeout:            "Request timed out",

			ErrKeyProductNotFound: "Product not found",
			ErrKeyPlanNotFound:    "Plan not found",
			ErrKeyMealNotFound:    "Meal not found",
			ErrKeyItemNotFound:    "Item not found",
			ErrKeyInvalidProduct:  "Product values are invalid",
			ErrKeyInvalidItem:     "Item values are invalid",
			ErrKeyInvalidProfile:  "Daily targets must not be negative",
			ErrKeyInvalidPriority: "Priority must be protein, carbs or fat",
			ErrKeyInvalidName:     "Name must not be empty",
			ErrKeyInvalidSortKey:  "Unknown sort order",
			ErrKeyNoProducts:      "Add a product first",
			ErrKeyLastPlan:        "At least one plan is required",

			ErrKeyInvalidShareLink:   "Invalid or corrupted share link",
			ErrKeyEmptyShareLink:     "Share link is empty",
			ErrKeyInvalidImport:      "Invalid file",
			ErrKeyUnknownTransfer:    "Unknown file type",
			ErrKeyInvalidSessionMode: "Unknown start option",
			ErrKeyEmptyLabel:         "Paste the nutrition label text first",
			ErrKeyLookupUnavailable:  "Food database is unavailable, try again later",

			SuccessKeyShareImported: "Shared plans imported",
			SuccessKeyFileImported:  "File imported",
		},
		"pt": {
			ErrKeyInvalidRequest:     "Requisição inválida",
			ErrKeyInvalidRequestBody: "Corpo da requisição inválido",
			ErrKeyInternalError:      "Ocorreu um erro inesperado",
			ErrKeyNotFound:           "Não encontrado",
			ErrKeyRateLimitExceeded:  "Muitas requisições, tente novamente mais tarde",
			ErrKeyConflict:           "Conflito",
			ErrKeyTimeout:            "Tempo da requisição esgotado",

			ErrKeyProductNotFound: "Produto não encontrado",
			ErrKeyPlanNotFound:    "Plano não encontrado",
			ErrKeyMealNotFound:    "Refeição não encontrada",
			ErrKeyItemNotFound:    "Item não encontrado",
			ErrKeyInvalidProduct:  "Valores do produto inválidos",
			ErrKeyInvalidItem:     "Valores do item inválidos",
			ErrKeyInvalidProfile:  "As metas diárias não podem ser negativas",
			ErrKeyInvalidPriority: "A prioridade deve ser proteína, carboidratos ou gordura",
			ErrKeyInvalidName:     "O nome não pode ficar vazio",
			ErrKeyInvalidSortKey:  "Ordenação desconhecida",
			ErrKeyNoProducts:      "Adicione um produto primeiro",
			ErrKeyLastPlan:        "É necessário pelo menos um plano",

			ErrKeyInvalidShareLink:   "Link de compartilhamento inválido ou corrompido",
			ErrKeyEmptyShareLink:     "O link de compartilhamento está vazio",
			ErrKeyInvalidImport:      "Arquivo inválido",
			ErrKeyUnknownTransfer:    "Tipo de arquivo desconhecido",
			ErrKeyInvalidSessionMode: "Opção de início desconhecida",
			ErrKeyEmptyLabel:         "Cole o texto do rótulo nutricional primeiro",
			ErrKeyLookupUnavailable:  "Banco de alimentos indisponível, tente novamente mais tarde",

			SuccessKeyShareImported: "Planos compartilhados importados",
			SuccessKeyFileImported:  "Arquivo importado",
		},
		"nl": {
			ErrKeyInvalidRequest:     "Ongeldig verzoek",
			ErrKeyInvalidRequestBody: "Ongeldige aanvraag body",
			ErrKeyInternalError:      "Er is een onverwachte fout opgetreden",
			ErrKeyNotFound:           "Niet gevonden",
			ErrKeyRateLimitExceeded:  "Te veel verzoeken, probeer het later opnieuw",
			ErrKeyConflict:           "Conflict",
			ErrKeyTimeout:            "Verzoek verlopen",

			ErrKeyProductNotFound: "Product niet gevonden",
			ErrKeyPlanNotFound:    "Plan niet gevonden",
			ErrKeyMealNotFound:    "Maaltijd niet gevonden",
			ErrKeyItemNotFound:    "Item niet gevonden",
			ErrKeyInvalidProduct:  "Ongeldige productwaarden",
			ErrKeyInvalidItem:     "Ongeldige itemwaarden",
			ErrKeyInvalidProfile:  "Dagdoelen mogen niet negatief zijn",
			ErrKeyInvalidPriority: "Prioriteit moet eiwit, koolhydraten of vet zijn",
			ErrKeyInvalidName:     "Naam mag niet leeg zijn",
			ErrKeyInvalidSortKey:  "Onbekende sortering",
			ErrKeyNoProducts:      "Voeg eerst een product toe",
			ErrKeyLastPlan:        "Er is minstens één plan nodig",

			ErrKeyInvalidShareLink:   "Ongeldige of beschadigde deellink",
			ErrKeyEmptyShareLink:     "Deellink is leeg",
			ErrKeyInvalidImport:      "Ongeldig bestand",
			ErrKeyUnknownTransfer:    "Onbekend bestandstype",
			ErrKeyInvalidSessionMode: "Onbekende startoptie",
			ErrKeyEmptyLabel:         "Plak eerst de tekst van het voedingsetiket",
			ErrKeyLookupUnavailable:  "Voedingsdatabase niet beschikbaar, probeer het later opnieuw",

			SuccessKeyShareImported: "Gedeelde plannen geïmporteerd",
			SuccessKeyFileImported:  "Bestand geïmporteerd",
		},
	}
}
