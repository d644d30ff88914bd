package dialogue

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/centro-otologico/voiceline/clinic"
	"github.com/centro-otologico/voiceline/session"
	"github.com/centro-otologico/voiceline/twiml"
)

// Responder generates a reply from the accumulated conversation plus
// the newest caller utterance. Implementations hold no memory of their
// own; the full history travels on every call.
type Responder interface {
	Respond(ctx context.Context, history []session.Turn, userText string) (string, error)
}

// Synthesizer turns reply text into encoded audio. Failures are
// recoverable; the controller falls back to the carrier voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Publisher stores synthesized audio under a name and returns a URL the
// carrier can fetch. Delete is best-effort.
type Publisher interface {
	Publish(ctx context.Context, name string, audio []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// NameFunc produces unique audio file names
type NameFunc func() string

const fallbackReply = "Lo siento, no pude generar una respuesta."

const (
	gatherTimeout  = 10 // seconds, normal turns
	confirmTimeout = 8  // seconds, confirmation turns
)

// TurnInput is one inbound webhook turn as parsed by the transport
type TurnInput struct {
	CallSID string
	Speech  string // transcribed utterance, empty when the caller typed
	Digits  string // keypad input, empty when the caller spoke
}

// Controller drives the per-call dialogue state machine: language
// selection, menu navigation, classification, the generation pipeline
// and the end-confirmation sub-dialogue.
type Controller struct {
	store     *session.Store
	clinic    *clinic.Clinic
	responder Responder
	synth     Synthesizer
	publisher Publisher
	fileName  NameFunc

	sweepAge    time.Duration
	voicePath   string
	confirmPath string
}

// NewController wires the dialogue state machine to its collaborators
func NewController(store *session.Store, c *clinic.Clinic, responder Responder, synth Synthesizer, publisher Publisher, fileName NameFunc, sweepAge time.Duration) *Controller {
	return &Controller{
		store:       store,
		clinic:      c,
		responder:   responder,
		synth:       synth,
		publisher:   publisher,
		fileName:    fileName,
		sweepAge:    sweepAge,
		voicePath:   "/twilio/voice",
		confirmPath: "/twilio/confirm-end",
	}
}

// Canned prompts. Spanish only: "press 2 for English" deliberately
// plays the same Spanish welcome until a bilingual prompt set exists.
const languageChoicePrompt = "Para español presiona 1, for English press 2."

const menuOptions = "presiona 1 para servicios, 2 para horarios, 3 para citas, 4 para contacto."

func (dc *Controller) welcomePrompt() string {
	return fmt.Sprintf("Hola, soy el agente virtual del %s. Puedes decirme en qué puedo ayudarte o %s", dc.clinic.Name, menuOptions)
}

func (dc *Controller) farewellPrompt() string {
	return fmt.Sprintf("Gracias por llamar al %s. ¡Que tengas un buen día!", dc.clinic.Name)
}

const (
	confirmEndPrompt   = "¿Estás seguro de que quieres terminar la conversación? Presiona 1 para sí, presiona 2 para no, o dime directamente tu respuesta."
	noMoreEndPrompt    = "Perfecto, entiendo que ya no necesitas más ayuda. ¿Te parece bien terminar la conversación? Presiona 1 para sí, presiona 2 para no, o dime directamente tu respuesta."
	openMenuPrompt     = "Perfecto, dime directamente en qué puedo ayudarte o " + menuOptions
	offTopicPrompt     = "Lo siento, solo puedo ayudarte con información sobre nuestros servicios otológicos. Dime directamente en qué puedo ayudarte o " + menuOptions
	continuePrompt     = "Perfecto, continuemos. Dime directamente en qué puedo ayudarte o " + menuOptions
	confirmRetryPrompt = "No entendí tu respuesta. Presiona 1 para terminar la conversación, presiona 2 para continuar, o dime directamente tu respuesta."
)

// digitTopics maps menu digits to the topic keyword fed through the
// generation pipeline. Unrecognized digits default to servicios.
var digitTopics = map[string]string{
	"1": "servicios",
	"2": "horarios",
	"3": "citas",
	"4": "contacto",
}

// newGather builds a speech+dtmf gather posting back to action
func (dc *Controller) newGather(action string, timeout int) *twiml.Gather {
	return &twiml.Gather{
		Input:         "speech dtmf",
		Language:      "es-ES",
		SpeechTimeout: "auto",
		Timeout:       timeout,
		Action:        action,
		Method:        "POST",
	}
}

// verbSink is anything a Play or Say verb can be appended to: the
// response itself or a gather nested in it
type verbSink interface {
	Append(verb any)
}

// speak synthesizes text, publishes the audio and appends a Play verb.
// Any failure on that path degrades to the carrier's built-in voice;
// a turn never fails because audio generation did.
func (dc *Controller) speak(ctx context.Context, text string, sink verbSink) {
	audio, err := dc.synth.Synthesize(ctx, text)
	if err == nil {
		name := dc.fileName()
		url, pubErr := dc.publisher.Publish(ctx, name, audio)
		if pubErr == nil {
			log.Printf("🔊 Audio generated and uploaded: %s", url)
			sink.Append(&twiml.Play{URL: url})
			return
		}
		err = pubErr
	}

	log.Printf("⚠️ Falling back to carrier voice: %v", err)
	sink.Append(&twiml.Say{Voice: "alice", Language: "es-ES", Text: text})
}

// HandleVoice processes one turn of the main voice endpoint
func (dc *Controller) HandleVoice(ctx context.Context, in TurnInput) *twiml.Response {
	resp := &twiml.Response{}

	// Opportunistic sweep; bounds memory as long as calls keep arriving
	dc.store.Sweep(dc.sweepAge)

	_, hasSession := dc.store.Get(in.CallSID)

	switch {
	case in.Speech == "" && in.Digits == "":
		// First contact: language selection, keypad only
		gather := &twiml.Gather{
			Input:    "dtmf",
			Language: "es-ES",
			Timeout:  gatherTimeout,
			Action:   dc.voicePath,
			Method:   "POST",
		}
		dc.speak(ctx, languageChoicePrompt, gather)
		resp.Append(gather)

	case in.Speech == "" && !hasSession && (in.Digits == "1" || in.Digits == "2"):
		// Language selected: seed the session and welcome the caller.
		// Digit 2 (English) intentionally behaves the same as 1.
		log.Printf("📞 [%s] Language selected (%s), creating session", sidFrag(in.CallSID), in.Digits)
		dc.store.Create(in.CallSID)

		gather := dc.newGather(dc.voicePath, gatherTimeout)
		dc.speak(ctx, dc.welcomePrompt(), gather)
		resp.Append(gather)

	case in.Speech == "" && hasSession:
		if in.Digits == "0" {
			// Replay the bare menu without touching the session
			gather := dc.newGather(dc.voicePath, gatherTimeout)
			dc.speak(ctx, menuOptions, gather)
			resp.Append(gather)
			break
		}

		topic, ok := digitTopics[in.Digits]
		if !ok {
			topic = "servicios"
		}
		log.Printf("📞 [%s] Menu digit %q routed as %q", sidFrag(in.CallSID), in.Digits, topic)
		dc.pipeline(ctx, in.CallSID, topic, resp)

	default:
		dc.handleSpeech(ctx, in, resp)
	}

	return resp
}

// handleSpeech classifies a spoken utterance and routes it
func (dc *Controller) handleSpeech(ctx context.Context, in TurnInput, resp *twiml.Response) {
	utterance := in.Speech
	cls := Classify(utterance)

	switch {
	case cls.WantsToEnd:
		gather := dc.newGather(dc.confirmPath, confirmTimeout)
		dc.speak(ctx, confirmEndPrompt, gather)
		resp.Append(gather)

	case cls.NoMoreQuestions:
		gather := dc.newGather(dc.confirmPath, confirmTimeout)
		dc.speak(ctx, noMoreEndPrompt, gather)
		resp.Append(gather)

	case cls.AffirmativeFollowUp:
		// "sí" to the follow-up question: re-open the menu, no mutation
		gather := dc.newGather(dc.voicePath, gatherTimeout)
		dc.speak(ctx, openMenuPrompt, gather)
		resp.Append(gather)

	case !cls.Relevant:
		log.Printf("🚫 [%s] Off-topic utterance, refusing", sidFrag(in.CallSID))
		gather := dc.newGather(dc.voicePath, gatherTimeout)
		dc.speak(ctx, offTopicPrompt, gather)
		resp.Append(gather)

	default:
		dc.pipeline(ctx, in.CallSID, strings.ToLower(utterance), resp)
	}
}

// pipeline runs the full generation path: ensure session, record the
// user turn, generate with history, sanitize, append the contextual
// follow-up, record the assistant turn and speak the result
func (dc *Controller) pipeline(ctx context.Context, callSID, userText string, resp *twiml.Response) {
	if _, ok := dc.store.Get(callSID); !ok {
		dc.store.Create(callSID)
	}

	dc.store.AppendUser(callSID, userText)
	history := dc.store.History(callSID)

	raw, err := dc.responder.Respond(ctx, history, userText)
	if err != nil {
		log.Printf("❌ [%s] Generation failed: %v", sidFrag(callSID), err)
		raw = fallbackReply
	}

	full := ShapeReply(raw, userText)
	dc.store.AppendAssistant(callSID, full)

	gather := dc.newGather(dc.voicePath, gatherTimeout)
	dc.speak(ctx, full, gather)
	resp.Append(gather)
}

// HandleConfirm processes one turn of the end-confirmation sub-dialogue
func (dc *Controller) HandleConfirm(ctx context.Context, in TurnInput) *twiml.Response {
	resp := &twiml.Response{}

	var confirmed, denied bool
	if in.Digits != "" {
		// Keypad wins; a digit only arrives when the caller did not speak
		confirmed = in.Digits == "1"
		denied = in.Digits == "2"
	} else {
		speech := strings.ToLower(in.Speech)
		confirmed = ConfirmsEnd(speech)
		denied = DeniesEnd(speech)
	}

	switch {
	case confirmed:
		log.Printf("👋 [%s] Call end confirmed, evicting session", sidFrag(in.CallSID))
		dc.store.Evict(in.CallSID)
		dc.speak(ctx, dc.farewellPrompt(), resp)
		resp.Append(&twiml.Hangup{})

	case denied:
		gather := dc.newGather(dc.voicePath, gatherTimeout)
		dc.speak(ctx, continuePrompt, gather)
		resp.Append(gather)

	default:
		// Ambiguous: re-ask, same sub-dialogue, same timeout
		gather := dc.newGather(dc.confirmPath, confirmTimeout)
		dc.speak(ctx, confirmRetryPrompt, gather)
		resp.Append(gather)
	}

	return resp
}

func sidFrag(callSID string) string {
	if len(callSID) > 8 {
		return callSID[:8]
	}
	return callSID
}
