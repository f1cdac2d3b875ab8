// Package prompt renders the (system, user) instruction pairs handed to
// the generation API. All builders are pure functions over their typed
// inputs: no I/O, no randomness, no persisted state.
package prompt

import (
	"fmt"
	"strings"
)

// Prompt is a system/user instruction pair for one generation stage.
type Prompt struct {
	System string
	User   string
}

// DefaultLanguage is used when a request carries no language tag.
const DefaultLanguage = "English"

// Placeholders rendered when a completion quote is requested before any
// reflections or actions were recorded.
const (
	NoReflectionsPlaceholder = "No specific reflections recorded."
	NoActionsPlaceholder     = "No specific actions recorded."
)

// ModuleInput is the context for generating a set of coaching modules.
type ModuleInput struct {
	PersonalContext string
	UserName        string
	Language        string
}

// DayContext carries the module/day metadata shared by the per-day stages.
type DayContext struct {
	ModuleTitle          string
	DayNumber            int
	TotalDays            int
	DayTitle             string
	FrameworkName        string
	FrameworkDescription string
}

// FrameInput is the context for the daily introductory reading.
type FrameInput struct {
	Day             DayContext
	PersonalContext string
	PriorSummaries  []string
	Language        string
}

// VoiceInput is the context for live voice-session instructions.
type VoiceInput struct {
	Day              DayContext
	ReflectionPrompt string
	PersonalContext  string
	PriorSummaries   []string
	Language         string
}

// ShiftInput is the context for the closing micro-action.
type ShiftInput struct {
	Day               DayContext
	ShiftFocus        string
	ReflectionSummary string
	PersonalContext   string
	Language          string
}

// SummaryInput is the context for summarizing a voice transcript.
type SummaryInput struct {
	Transcript       string
	FrameworkName    string
	ReflectionPrompt string
}

// QuoteInput is the context for the shareable completion quote.
type QuoteInput struct {
	ModuleTitle string
	TotalDays   int
	Reflections []string
	Actions     []string
	UserName    string
}

// Modules renders the prompt pair for generating 2-3 coaching modules,
// each with 5-7 days. The caller parses the response as JSON.
func Modules(in ModuleInput) Prompt {
	system := `You are an experienced personal coach designing multi-day coaching modules.
Respond with a single JSON object of the form:
{"modules":[{"title":string,"description":string,"days":[{"dayNumber":number,"title":string,"frameworkName":string,"frameworkDescription":string,"reflectionPrompt":string,"shiftFocus":string}]}]}
Produce 2 to 3 modules. Each module has 5 to 7 days. Every day pairs a named
coaching framework with a reflection prompt and a micro-action focus.
Do not include any text outside the JSON object.`

	var b strings.Builder
	if in.UserName != "" {
		fmt.Fprintf(&b, "The person you are coaching is named %s.\n", in.UserName)
	}
	fmt.Fprintf(&b, "Here is what they shared about their current situation:\n%s\n\n", in.PersonalContext)
	fmt.Fprintf(&b, "Design coaching modules tailored to this context. Write all content in %s.", langOrDefault(in.Language))

	return Prompt{System: system, User: b.String()}
}

// Frame renders the prompt pair for the daily introductory reading: a
// 5-field structured text that must reference the day's framework by name.
func Frame(in FrameInput) Prompt {
	system := `You write the opening reading ("Frame") for one day of a coaching module.
Respond with exactly five labelled fields, each on its own paragraph:
Theme: the idea of the day in one sentence.
Framework: how today's framework applies, referring to the framework by its name.
Connection: how today builds on where the person already is.
Intention: what to hold in mind through the day.
Invitation: a gentle prompt into today's reflection.
Keep the whole reading under 250 words. Always mention the framework by name at least once.`

	var b strings.Builder
	writeDayContext(&b, in.Day)
	if in.PersonalContext != "" {
		fmt.Fprintf(&b, "Personal context:\n%s\n\n", in.PersonalContext)
	}
	if len(in.PriorSummaries) > 0 {
		fmt.Fprintf(&b, "Reflections from earlier days:\n%s\n\n", bulletList(in.PriorSummaries))
	}
	fmt.Fprintf(&b, "Write the reading in %s.", langOrDefault(in.Language))

	return Prompt{System: system, User: b.String()}
}

// Voice renders behavioral instructions for the live voice agent that
// guides the day's reflection conversation.
func Voice(in VoiceInput) Prompt {
	lang := langOrDefault(in.Language)

	system := fmt.Sprintf(`You are a warm, attentive voice coach holding a short reflection session.
Follow this structure:
1. Open: greet briefly and introduce today's reflection.
2. Listen: ask the reflection question and let the person speak without interrupting.
3. Insight: mirror back the most meaningful thing you heard.
4. Deepen: ask one follow-up question that goes one level deeper.
5. Close: thank them and bridge to today's micro-action.
Speak naturally and keep your turns short. Respond only in %s.`, lang)

	var b strings.Builder
	writeDayContext(&b, in.Day)
	fmt.Fprintf(&b, "Today's reflection prompt: %s\n\n", in.ReflectionPrompt)
	if in.PersonalContext != "" {
		fmt.Fprintf(&b, "Personal context:\n%s\n\n", in.PersonalContext)
	}
	if len(in.PriorSummaries) > 0 {
		fmt.Fprintf(&b, "Reflections from earlier days:\n%s\n\n", bulletList(in.PriorSummaries))
	}
	fmt.Fprintf(&b, "Hold the session in %s.", lang)

	return Prompt{System: system, User: b.String()}
}

// Shift renders the prompt pair for the day's closing micro-action.
func Shift(in ShiftInput) Prompt {
	system := `You design the closing micro-action ("Shift") for one day of a coaching module.
Describe one small concrete action the person can complete in under 5 minutes today.
Tie it to the day's framework and, when available, to what came up in their reflection.
Respond with 2-3 sentences: what to do, and why it matters today. No lists, no headings.`

	var b strings.Builder
	writeDayContext(&b, in.Day)
	fmt.Fprintf(&b, "Shift focus for today: %s\n\n", in.ShiftFocus)
	if in.ReflectionSummary != "" {
		fmt.Fprintf(&b, "Summary of today's reflection:\n%s\n\n", in.ReflectionSummary)
	}
	if in.PersonalContext != "" {
		fmt.Fprintf(&b, "Personal context:\n%s\n\n", in.PersonalContext)
	}
	fmt.Fprintf(&b, "Write the micro-action in %s.", langOrDefault(in.Language))

	return Prompt{System: system, User: b.String()}
}

// Summary renders instructions for summarizing a voice-session
// transcript into a short third-person reflection summary.
func Summary(in SummaryInput) Prompt {
	system := `You summarize coaching reflection transcripts.
Extract three things: the key insight the person reached, how it connects to the
framework they are working with, and one sign of growth or change.
Write a single third-person summary of at most 300 characters. Do not quote the
transcript verbatim and do not address the person directly.`

	var b strings.Builder
	fmt.Fprintf(&b, "Framework: %s\n", in.FrameworkName)
	fmt.Fprintf(&b, "Reflection prompt: %s\n\n", in.ReflectionPrompt)
	fmt.Fprintf(&b, "Transcript:\n%s", in.Transcript)

	return Prompt{System: system, User: b.String()}
}

// Quote renders instructions for the shareable completion quote. Empty
// reflection or action lists render an explicit placeholder rather than
// an empty bullet.
func Quote(in QuoteInput) Prompt {
	system := `You distill a finished coaching module into one shareable quote.
The quote captures the person's journey in at most 30 words, in their voice,
hopeful but not saccharine. Respond with the quote only, no attribution and no
surrounding quotation marks.`

	var b strings.Builder
	if in.UserName != "" {
		fmt.Fprintf(&b, "%s just completed", in.UserName)
	} else {
		b.WriteString("Someone just completed")
	}
	fmt.Fprintf(&b, " the %d-day module %q.\n\n", in.TotalDays, in.ModuleTitle)

	b.WriteString("Their reflections along the way:\n")
	if len(in.Reflections) > 0 {
		b.WriteString(bulletList(in.Reflections))
	} else {
		b.WriteString(NoReflectionsPlaceholder + "\n")
	}

	b.WriteString("\nThe micro-actions they took:\n")
	if len(in.Actions) > 0 {
		b.WriteString(bulletList(in.Actions))
	} else {
		b.WriteString(NoActionsPlaceholder + "\n")
	}

	return Prompt{System: system, User: b.String()}
}

func writeDayContext(b *strings.Builder, d DayContext) {
	fmt.Fprintf(b, "Module: %s\n", d.ModuleTitle)
	fmt.Fprintf(b, "Day %d of %d: %s\n", d.DayNumber, d.TotalDays, d.DayTitle)
	fmt.Fprintf(b, "Framework: %s - %s\n\n", d.FrameworkName, d.FrameworkDescription)
}

func bulletList(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

func langOrDefault(language string) string {
	if language == "" {
		return DefaultLanguage
	}
	return language
}
