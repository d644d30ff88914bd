package dialogue

import "strings"

// Classification labels one caller utterance. The four signals are
// computed independently; the controller applies the precedence
// end → no-more → affirmative → relevance.
type Classification struct {
	WantsToEnd          bool
	NoMoreQuestions     bool
	AffirmativeFollowUp bool
	Relevant            bool
}

// Classify runs all four predicates over an utterance. Input is
// lower-cased once here; the predicates expect lower-cased text.
func Classify(utterance string) Classification {
	text := strings.ToLower(utterance)
	return Classification{
		WantsToEnd:          WantsToEnd(text),
		NoMoreQuestions:     NoMoreQuestions(text),
		AffirmativeFollowUp: AffirmativeFollowUp(text),
		Relevant:            Relevant(text),
	}
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// WantsToEnd reports whether the caller signalled end-of-call intent:
// any farewell phrase, gratitude combined with satisfaction, or one of
// the strong gratitude phrases.
func WantsToEnd(text string) bool {
	if containsAny(text, farewellPhrases) {
		return true
	}
	if containsAny(text, gratitudePhrases) && containsAny(text, satisfactionPhrases) {
		return true
	}
	return containsAny(text, strongGratitudePhrases)
}

// NoMoreQuestions reports whether the caller said they need nothing else
func NoMoreQuestions(text string) bool {
	return containsAny(text, noMorePhrases)
}

// AffirmativeFollowUp reports whether the utterance is a bare "yes" to
// the follow-up question. Only short inputs qualify; anything longer
// than 10 characters is assumed to be a substantive question.
func AffirmativeFollowUp(text string) bool {
	if len(text) > 10 {
		return false
	}
	if containsAny(text, interrogativeWords) {
		return false
	}
	if containsAny(text, confusableWords) {
		return false
	}
	trimmed := strings.TrimSpace(text)
	for _, yes := range exactYesTokens {
		if trimmed == yes {
			return true
		}
	}
	return false
}

// Relevant decides whether an utterance is in-domain for the clinic.
// Three tiers, in order: an in-domain keyword wins, then an off-domain
// keyword rejects, then an interrogative word is given the benefit of
// the doubt. Everything else is irrelevant.
func Relevant(text string) bool {
	if containsAny(text, inDomainKeywords) {
		return true
	}
	if containsAny(text, offDomainKeywords) {
		return false
	}
	return containsAny(text, interrogativeWords)
}

// ConfirmsEnd matches a spoken confirmation during the end sub-dialogue
func ConfirmsEnd(text string) bool {
	return containsAny(text, confirmKeywords)
}

// DeniesEnd matches a spoken denial during the end sub-dialogue
func DeniesEnd(text string) bool {
	return containsAny(text, denyKeywords)
}
