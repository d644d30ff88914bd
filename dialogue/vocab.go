package dialogue

// Keyword tables driving the turn classifiers. Bump vocabVersion when
// editing any table so transcript analysis can tell which vocabulary a
// call was classified under.
const vocabVersion = 1

// farewellPhrases alone are enough to signal end-of-call intent
var farewellPhrases = []string{
	"adiós", "hasta luego", "terminar", "colgar", "finalizar", "chao", "nos vemos",
	"ya no necesito", "no necesito más", "eso es todo", "ya está", "listo",
	"gracias por todo", "me voy", "hasta la vista", "que tengas un buen día",
	"finalizar conversación", "terminar llamada", "colgar llamada",
}

var gratitudePhrases = []string{
	"gracias", "muchas gracias", "te agradezco", "muy agradecido",
}

var satisfactionPhrases = []string{
	"perfecto", "excelente", "muy bien", "genial", "está bien",
}

// strongGratitudePhrases signal end-of-call on their own
var strongGratitudePhrases = []string{
	"muchas gracias", "te agradezco mucho",
}

// noMorePhrases mark "nothing else" answers. The bare "no" also matches
// ordinary negative answers ("no, quiero información de audífonos");
// known false-positive source pending product review, kept on purpose.
var noMorePhrases = []string{
	"no", "nada más", "eso es todo", "ya está", "listo", "no tengo más preguntas",
	"no necesito más", "ya no", "eso es",
}

var interrogativeWords = []string{
	"qué", "que", "cuál", "cual", "cómo", "como", "dónde", "donde",
	"cuándo", "cuando", "por qué", "porque", "quién", "quien",
}

// confusableWords share a prefix with "sí"-adjacent words and disqualify
// an utterance from being a bare affirmation
var confusableWords = []string{
	"segur", "seguro", "segura", "seguras", "seguros", "seguridad", "asegurar", "asegura",
}

// exactYesTokens are the only accepted bare affirmations
var exactYesTokens = []string{"sí", "si", "yes"}

// inDomainKeywords mark an utterance as on-topic for the clinic
var inDomainKeywords = []string{
	// medical terms
	"oído", "oreja", "audición", "sordera", "audífono", "implante", "cóclea",
	"sinusitis", "alergia", "garganta", "nariz", "amígdalas", "adenoides",
	"vértigo", "equilibrio", "tinnitus", "otorrinolaringólogo", "ent",
	"otorrinolaringología", "otorrino",

	// clinic services
	"consulta", "cita", "doctor", "médico", "clínica", "centro médico",
	"evaluación", "prueba", "test", "examen", "diagnóstico",
	"tratamiento", "cirugía", "operación", "procedimiento",

	// clinic information
	"horario", "horarios", "teléfono", "dirección", "ubicación", "servicios",
	"precio", "costo", "tarifa", "seguro", "seguros",
	"emergencia", "urgencia", "walk-in", "sin cita",
	"citas", "contacto", "información", "info",

	// the clinic itself
	"centro otológico", "centro otologico", "dr. lasalle", "dr lasalle",
	"mayagüez", "mayaguez", "puerto rico", "pr",
}

// offDomainKeywords mark an utterance as clearly out of scope
var offDomainKeywords = []string{
	"clima", "tiempo", "temperatura", "lluvia", "sol",
	"deportes", "fútbol", "futbol", "béisbol", "beisbol",
	"política", "elecciones", "gobierno",
	"entretenimiento", "película", "pelicula", "música", "musica",
	"comida", "restaurante", "receta", "cocina",
	"tecnología", "tecnologia", "computadora", "internet",
	"viaje", "turismo", "hotel", "avión", "avion",
}

// confirmKeywords / denyKeywords drive the end-confirmation sub-dialogue
var confirmKeywords = []string{"sí", "si", "yes", "confirmo", "correcto", "exacto"}

var denyKeywords = []string{"no", "cancelar", "continuar", "seguir"}
