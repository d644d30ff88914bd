package dialogue

import (
	"regexp"
	"strings"
)

// English filler the model sneaks in despite the system prompt
var englishFillers = []string{
	"Feel free to ask",
	"Feel free to",
	"Let me know",
	"Please let me know",
	"Don't hesitate to",
	"Feel free",
	"Please",
	"Thank you",
	"Thanks",
}

// Fabricated Spanish follow-up questions; the shaper appends its own
// follow-up, so any the model produces are stripped. Literal phrases
// first, then the open-ended patterns.
var spanishFillerLiterals = []string{
	"¿En qué otro servicio específico estás interesado?",
	"¿En qué otro servicio estás interesado?",
	"¿Te gustaría saber más detalles sobre alguno de estos servicios en específico?",
	"¿Te gustaría saber más sobre alguno de estos servicios?",
	"¿Hay algo específico que te gustaría saber?",
	"¿Necesitas información adicional?",
	"¿Te gustaría más información?",
	"¡Estoy aquí para ayudarte!",
	"¿Hay algo más en lo que pueda ayudarte?",
	"¿Hay algo más en lo que pueda asistirte?",
	"¿tienes alguna otra pregunta?",
	"Estoy aquí para ayudarte",
}

var spanishFillerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`¿Necesitas información adicional sobre.*?\?`),
	regexp.MustCompile(`¿Necesitas información sobre algún.*?específico\?`),
	regexp.MustCompile(`¿Te gustaría saber más sobre.*?\?`),
	regexp.MustCompile(`¿Hay algo específico que te gustaría saber sobre.*?\?`),
	regexp.MustCompile(`¿Necesitas información sobre.*?\?`),
	regexp.MustCompile(`¿Te gustaría más información sobre.*?\?`),
	regexp.MustCompile(`¿Necesitas más ayuda con.*?\?`),
	regexp.MustCompile(`¿Tienes alguna pregunta específica sobre.*?\?`),
	regexp.MustCompile(`¿Necesitas más información sobre.*?\?`),
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	doublePeriod  = regexp.MustCompile(`\s*\.\s*\.`)
	doubleComma   = regexp.MustCompile(`\s*,\s*,`)
)

// Sanitize strips filler from a raw model reply and normalizes
// whitespace and punctuation. Idempotent: sanitizing an already
// sanitized string returns it unchanged.
func Sanitize(raw string) string {
	cleaned := raw
	for _, f := range englishFillers {
		cleaned = strings.ReplaceAll(cleaned, f, "")
	}
	for _, f := range spanishFillerLiterals {
		cleaned = strings.ReplaceAll(cleaned, f, "")
	}
	for _, p := range spanishFillerPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}

	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	// Collapse punctuation runs to a fixed point so that "..." does not
	// leave a ".." behind and break idempotence.
	for {
		collapsed := doublePeriod.ReplaceAllString(cleaned, ".")
		collapsed = doubleComma.ReplaceAllString(collapsed, ",")
		if collapsed == cleaned {
			break
		}
		cleaned = collapsed
	}
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, ".")

	return cleaned
}

const menuReminder = "Puedes decirme o presiona 0 para escuchar el menú nuevamente."

// followUpMatcher maps topic keywords to the follow-up question asked
// after answering on that topic. Checked in order; first match wins.
type followUpMatcher struct {
	keywords []string
	question string
}

var followUpMatchers = []followUpMatcher{
	{
		keywords: []string{"servicios", "servicio"},
		question: "¿Tienes alguna duda específica sobre nuestros servicios médicos? " + menuReminder,
	},
	{
		keywords: []string{"horarios", "horario"},
		question: "¿Necesitas información sobre algún horario específico o día en particular? " + menuReminder,
	},
	{
		keywords: []string{"citas", "cita", "agendar", "reservar"},
		question: "¿Te gustaría saber más sobre cómo agendar una cita o qué documentos necesitas? " + menuReminder,
	},
	{
		keywords: []string{"contacto", "teléfono", "telefono", "dirección", "direccion", "ubicación", "ubicacion"},
		question: "¿Necesitas más información de contacto o tienes alguna pregunta sobre nuestra ubicación? " + menuReminder,
	},
	{
		keywords: []string{"audífono", "audifono", "audífonos", "audifonos"},
		question: "¿Tienes alguna pregunta específica sobre nuestros audífonos o quieres saber más sobre otros servicios? " + menuReminder,
	},
	{
		keywords: []string{"implante", "implantes", "cóclea", "coclea"},
		question: "¿Te gustaría saber más sobre nuestros implantes cocleares o tienes alguna pregunta específica? " + menuReminder,
	},
	{
		keywords: []string{"evaluación", "evaluacion", "prueba", "test", "examen"},
		question: "¿Te gustaría saber más sobre nuestras evaluaciones o tienes alguna pregunta específica sobre los procedimientos? " + menuReminder,
	},
}

const genericFollowUp = "¿Hay algo más en lo que pueda ayudarte? " + menuReminder

// FollowUp selects the follow-up question for the caller's original,
// pre-sanitized input
func FollowUp(userInput string) string {
	input := strings.ToLower(userInput)
	for _, m := range followUpMatchers {
		if containsAny(input, m.keywords) {
			return m.question
		}
	}
	return genericFollowUp
}

// ShapeReply runs the full response pipeline: sanitize the raw model
// reply and append the contextual follow-up for the caller's input
func ShapeReply(raw, userInput string) string {
	return Sanitize(raw) + ". " + FollowUp(userInput)
}
