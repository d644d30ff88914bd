package dialogue

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/centro-otologico/voiceline/clinic"
	"github.com/centro-otologico/voiceline/session"
	"github.com/centro-otologico/voiceline/twiml"
)

type fakeResponder struct {
	reply    string
	err      error
	calls    int
	history  []session.Turn
	userText string
}

func (f *fakeResponder) Respond(_ context.Context, history []session.Turn, userText string) (string, error) {
	f.calls++
	f.history = history
	f.userText = userText
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeSynth struct {
	err error
}

func (f *fakeSynth) Synthesize(_ context.Context, _ string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("mp3"), nil
}

type fakePublisher struct {
	err       error
	published []string
}

func (f *fakePublisher) Publish(_ context.Context, name string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, name)
	return "https://cdn.example.com/" + name, nil
}

func (f *fakePublisher) Delete(_ context.Context, _ string) error { return nil }

type fixture struct {
	store     *session.Store
	responder *fakeResponder
	synth     *fakeSynth
	publisher *fakePublisher
	ctrl      *Controller
}

func newFixture() *fixture {
	kb := clinic.Default()
	store := session.NewStore(kb.Prompt(), 30*time.Minute)
	responder := &fakeResponder{reply: "Abrimos de lunes a viernes."}
	synth := &fakeSynth{}
	publisher := &fakePublisher{}
	names := 0
	ctrl := NewController(store, kb, responder, synth, publisher, func() string {
		names++
		return "clip.mp3"
	}, 30*time.Minute)
	return &fixture{store: store, responder: responder, synth: synth, publisher: publisher, ctrl: ctrl}
}

func render(t *testing.T, resp *twiml.Response) string {
	t.Helper()
	doc, err := resp.Render()
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	return doc
}

func firstGather(t *testing.T, resp *twiml.Response) *twiml.Gather {
	t.Helper()
	for _, v := range resp.Verbs {
		if g, ok := v.(*twiml.Gather); ok {
			return g
		}
	}
	t.Fatal("expected a Gather verb in response")
	return nil
}

func TestFirstCallPlaysLanguageChoice(t *testing.T) {
	f := newFixture()
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1"})

	doc := render(t, resp)
	if !strings.Contains(doc, "Para español presiona 1, for English press 2.") {
		t.Errorf("expected bilingual language prompt, got %s", doc)
	}

	g := firstGather(t, resp)
	if g.Input != "dtmf" {
		t.Errorf("first prompt must gather DTMF only, got %q", g.Input)
	}
	if g.Timeout != 10 {
		t.Errorf("expected 10s timeout, got %d", g.Timeout)
	}
	if _, ok := f.store.Get("CA1"); ok {
		t.Error("no session should exist before language selection")
	}
}

func TestLanguageSelectionCreatesSession(t *testing.T) {
	f := newFixture()
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Digits: "1"})

	history := f.store.History("CA1")
	if len(history) != 1 || history[0].Role != session.RoleSystem {
		t.Fatalf("expected a session with one system turn, got %+v", history)
	}

	doc := render(t, resp)
	if !strings.Contains(doc, "Hola, soy el agente virtual del Centro Otológico de Puerto Rico") {
		t.Errorf("expected Spanish welcome, got %s", doc)
	}

	g := firstGather(t, resp)
	if g.Input != "speech dtmf" {
		t.Errorf("welcome must gather speech and digits, got %q", g.Input)
	}
}

func TestEnglishBranchStillPlaysSpanishWelcome(t *testing.T) {
	f := newFixture()
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Digits: "2"})

	if _, ok := f.store.Get("CA1"); !ok {
		t.Error("digit 2 must still create a session")
	}
	if !strings.Contains(render(t, resp), "Hola, soy el agente virtual") {
		t.Error("digit 2 currently plays the same Spanish welcome")
	}
}

func TestMenuDigitZeroReplaysMenuWithoutMutation(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Digits: "0"})

	if got := len(f.store.History("CA1")); got != 1 {
		t.Errorf("digit 0 must not touch the session, got %d turns", got)
	}
	if f.responder.calls != 0 {
		t.Error("digit 0 must not invoke the generation collaborator")
	}
	if !strings.Contains(render(t, resp), "presiona 1 para servicios") {
		t.Error("expected the bare menu prompt")
	}
}

func TestMenuDigitRoutesThroughPipeline(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Digits: "2"})

	if f.responder.calls != 1 {
		t.Fatal("menu digit must invoke the generation collaborator")
	}
	if f.responder.userText != "horarios" {
		t.Errorf("digit 2 must route as 'horarios', got %q", f.responder.userText)
	}

	history := f.store.History("CA1")
	if len(history) != 3 {
		t.Fatalf("expected system+user+assistant turns, got %d", len(history))
	}
	if history[1].Text != "horarios" {
		t.Errorf("user turn must hold the topic keyword, got %q", history[1].Text)
	}
}

func TestUnknownDigitDefaultsToServicios(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Digits: "7"})

	if f.responder.userText != "servicios" {
		t.Errorf("unrecognized digit must default to servicios, got %q", f.responder.userText)
	}
}

func TestEndIntentAsksForConfirmation(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	before := len(f.store.History("CA1"))

	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "gracias, muy bien"})

	if f.responder.calls != 0 {
		t.Error("end intent must not invoke the generation collaborator")
	}
	if got := len(f.store.History("CA1")); got != before {
		t.Errorf("no turns may be appended on end intent, got %d want %d", got, before)
	}

	g := firstGather(t, resp)
	if g.Action != "/twilio/confirm-end" {
		t.Errorf("end intent must route to the confirmation endpoint, got %q", g.Action)
	}
	if g.Timeout != 8 {
		t.Errorf("confirmation gathers use an 8s timeout, got %d", g.Timeout)
	}
	if !strings.Contains(render(t, resp), "¿Estás seguro de que quieres terminar") {
		t.Error("expected the confirmation question")
	}
}

func TestNoMoreQuestionsAsksEmpatheticConfirmation(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "nada más"})

	g := firstGather(t, resp)
	if g.Action != "/twilio/confirm-end" {
		t.Errorf("no-more must route to the confirmation endpoint, got %q", g.Action)
	}
	if !strings.Contains(render(t, resp), "ya no necesitas más ayuda") {
		t.Error("expected the empathetic confirmation prompt")
	}
}

func TestAffirmativeFollowUpReopensMenu(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "sí"})

	if got := len(f.store.History("CA1")); got != 1 {
		t.Errorf("affirmative follow-up must not mutate the session, got %d turns", got)
	}
	if !strings.Contains(render(t, resp), "Perfecto, dime directamente en qué puedo ayudarte") {
		t.Error("expected the open menu prompt")
	}
}

func TestOffTopicSpeechIsRefused(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "qué tiempo hace"})

	if f.responder.calls != 0 {
		t.Error("off-topic speech must not invoke the generation collaborator")
	}
	if got := len(f.store.History("CA1")); got != 1 {
		t.Errorf("off-topic speech must not mutate the session, got %d turns", got)
	}
	if !strings.Contains(render(t, resp), "solo puedo ayudarte con información sobre nuestros servicios otológicos") {
		t.Error("expected the refusal prompt")
	}
}

func TestRelevantSpeechRunsFullPipeline(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	f.responder.reply = "Abrimos de lunes a viernes. Feel free to ask."

	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "horarios"})

	if f.responder.calls != 1 {
		t.Fatal("expected one generation call")
	}
	// History handed to the responder includes system + new user turn
	if len(f.responder.history) != 2 {
		t.Errorf("responder must receive the full history, got %d turns", len(f.responder.history))
	}
	if f.responder.history[0].Role != session.RoleSystem {
		t.Error("history must start with the system turn")
	}

	history := f.store.History("CA1")
	if len(history) != 3 {
		t.Fatalf("expected system+user+assistant turns, got %d", len(history))
	}
	stored := history[2].Text
	if strings.Contains(stored, "Feel free") {
		t.Errorf("assistant turn must store the sanitized reply, got %q", stored)
	}
	if !strings.Contains(stored, "horario específico") {
		t.Errorf("assistant turn must carry the hours follow-up, got %q", stored)
	}

	doc := render(t, resp)
	if !strings.Contains(doc, "https://cdn.example.com/clip.mp3") {
		t.Errorf("reply must play the published audio, got %s", doc)
	}
}

func TestSpeechCreatesSessionWhenAbsent(t *testing.T) {
	f := newFixture()
	f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "quiero una cita"})

	history := f.store.History("CA1")
	if len(history) != 3 || history[0].Role != session.RoleSystem {
		t.Errorf("pipeline must create the session before appending, got %+v", history)
	}
}

func TestGenerationFailureDegradesToFallbackReply(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	f.responder.err = errors.New("upstream down")

	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1", Speech: "horarios"})

	if !strings.Contains(render(t, resp), "Lo siento, no pude generar una respuesta") {
		t.Error("generation failure must degrade to the fallback reply")
	}
}

func TestSynthesisFailureFallsBackToCarrierVoice(t *testing.T) {
	f := newFixture()
	f.synth.err = errors.New("tts down")

	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1"})

	doc := render(t, resp)
	if !strings.Contains(doc, "<Say") || !strings.Contains(doc, `voice="alice"`) {
		t.Errorf("synthesis failure must fall back to the alice voice, got %s", doc)
	}
	if strings.Contains(doc, "<Play>") {
		t.Error("no Play verb expected when synthesis fails")
	}
}

func TestPublishFailureFallsBackToCarrierVoice(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("bucket down")

	resp := f.ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CA1"})

	if !strings.Contains(render(t, resp), `voice="alice"`) {
		t.Error("publish failure must fall back to the alice voice")
	}
}

func TestConfirmDigitOneEndsCall(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")
	f.store.AppendUser("CA1", "gracias por todo")

	resp := f.ctrl.HandleConfirm(context.Background(), TurnInput{CallSID: "CA1", Digits: "1"})

	if _, ok := f.store.Get("CA1"); ok {
		t.Error("confirmed end must evict the session")
	}

	doc := render(t, resp)
	if !strings.Contains(doc, "Gracias por llamar al Centro Otológico de Puerto Rico") {
		t.Error("expected the farewell")
	}
	if !strings.Contains(doc, "<Hangup></Hangup>") && !strings.Contains(doc, "<Hangup/>") {
		t.Errorf("expected a Hangup verb, got %s", doc)
	}
	for _, v := range resp.Verbs {
		if _, ok := v.(*twiml.Gather); ok {
			t.Error("terminal state must not register another gather")
		}
	}
}

func TestConfirmDigitTwoResumesConversation(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")

	resp := f.ctrl.HandleConfirm(context.Background(), TurnInput{CallSID: "CA1", Digits: "2"})

	if _, ok := f.store.Get("CA1"); !ok {
		t.Error("denied end must keep the session")
	}
	g := firstGather(t, resp)
	if g.Action != "/twilio/voice" {
		t.Errorf("denial must return to the voice endpoint, got %q", g.Action)
	}
	if !strings.Contains(render(t, resp), "Perfecto, continuemos") {
		t.Error("expected the continue prompt")
	}
}

func TestConfirmSpeechKeywords(t *testing.T) {
	tests := []struct {
		name     string
		speech   string
		evicted  bool
		fragment string
	}{
		{"spoken confirmation", "sí, confirmo", true, "Gracias por llamar"},
		{"spoken denial", "quiero seguir", false, "Perfecto, continuemos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.store.Create("CA1")

			resp := f.ctrl.HandleConfirm(context.Background(), TurnInput{CallSID: "CA1", Speech: tt.speech})

			_, ok := f.store.Get("CA1")
			if ok == tt.evicted {
				t.Errorf("evicted=%v, want %v", !ok, tt.evicted)
			}
			if !strings.Contains(render(t, resp), tt.fragment) {
				t.Errorf("expected fragment %q", tt.fragment)
			}
		})
	}
}

func TestConfirmAmbiguousReasks(t *testing.T) {
	f := newFixture()
	f.store.Create("CA1")

	resp := f.ctrl.HandleConfirm(context.Background(), TurnInput{CallSID: "CA1", Speech: "este..."})

	if _, ok := f.store.Get("CA1"); !ok {
		t.Error("ambiguous answer must keep the session")
	}
	g := firstGather(t, resp)
	if g.Action != "/twilio/confirm-end" {
		t.Errorf("ambiguous answer must stay on the confirmation endpoint, got %q", g.Action)
	}
	if g.Timeout != 8 {
		t.Errorf("re-ask keeps the 8s timeout, got %d", g.Timeout)
	}
	if !strings.Contains(render(t, resp), "No entendí tu respuesta") {
		t.Error("expected the retry prompt")
	}
}

func TestVoiceTurnSweepsStaleSessions(t *testing.T) {
	kb := clinic.Default()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := session.NewStore(kb.Prompt(), 30*time.Minute, session.WithClock(func() time.Time { return now }))
	ctrl := NewController(store, kb, &fakeResponder{reply: "ok"}, &fakeSynth{}, &fakePublisher{}, func() string { return "clip.mp3" }, 30*time.Minute)

	store.Create("CAstale")
	now = now.Add(31 * time.Minute)

	ctrl.HandleVoice(context.Background(), TurnInput{CallSID: "CAnew"})

	if _, ok := store.Get("CAstale"); ok {
		t.Error("stale sessions must be swept at the top of a voice turn")
	}
}
