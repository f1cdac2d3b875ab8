package prompt

import (
	"strings"
	"testing"
)

func day() DayContext {
	return DayContext{
		ModuleTitle:          "Steady Ground",
		DayNumber:            3,
		TotalDays:            6,
		DayTitle:             "Naming the Pattern",
		FrameworkName:        "Cognitive Reframing",
		FrameworkDescription: "noticing and questioning automatic thoughts",
	}
}

func TestModules_LanguageDefault(t *testing.T) {
	tests := []struct {
		name     string
		language string
		want     string
	}{
		{"explicit language", "Spanish", "Spanish"},
		{"default language", "", "English"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Modules(ModuleInput{
				PersonalContext: "I keep postponing hard conversations.",
				UserName:        "Sam",
				Language:        tt.language,
			})
			if !strings.Contains(p.User, tt.want) {
				t.Errorf("user prompt missing language %q", tt.want)
			}
			if !strings.Contains(p.User, "I keep postponing hard conversations.") {
				t.Error("user prompt missing personal context")
			}
			if !strings.Contains(p.System, "JSON") {
				t.Error("system prompt missing JSON output contract")
			}
			if !strings.Contains(p.System, "5 to 7 days") {
				t.Error("system prompt missing day-count contract")
			}
		})
	}
}

func TestFrame_ReferencesFramework(t *testing.T) {
	p := Frame(FrameInput{
		Day:            day(),
		PriorSummaries: []string{"Sam noticed a pattern of avoidance."},
	})
	if !strings.Contains(p.User, "Cognitive Reframing") {
		t.Error("frame prompt should carry the framework name")
	}
	if !strings.Contains(p.System, "by name") {
		t.Error("frame system prompt should instruct referencing the framework by name")
	}
	if !strings.Contains(p.User, "Sam noticed a pattern of avoidance.") {
		t.Error("frame prompt should include prior-day summaries")
	}
	for _, field := range []string{"Theme:", "Framework:", "Connection:", "Intention:", "Invitation:"} {
		if !strings.Contains(p.System, field) {
			t.Errorf("frame system prompt missing field %q", field)
		}
	}
}

func TestVoice_StructureAndLanguage(t *testing.T) {
	p := Voice(VoiceInput{
		Day:              day(),
		ReflectionPrompt: "When did you last avoid something important?",
		Language:         "German",
	})
	for _, step := range []string{"Open:", "Listen:", "Insight:", "Deepen:", "Close:"} {
		if !strings.Contains(p.System, step) {
			t.Errorf("voice system prompt missing step %q", step)
		}
	}
	if !strings.Contains(p.System, "Respond only in German") {
		t.Error("voice system prompt missing hard language constraint")
	}
	if !strings.Contains(p.User, "When did you last avoid something important?") {
		t.Error("voice prompt missing reflection prompt")
	}
}

func TestShift_TimeConstraint(t *testing.T) {
	p := Shift(ShiftInput{
		Day:               day(),
		ShiftFocus:        "one small honest sentence",
		ReflectionSummary: "Sam connected avoidance to fear of conflict.",
	})
	if !strings.Contains(p.System, "under 5 minutes") {
		t.Error("shift system prompt missing completion-time constraint")
	}
	if !strings.Contains(p.User, "one small honest sentence") {
		t.Error("shift prompt missing shift focus")
	}
}

func TestSummary_Contract(t *testing.T) {
	p := Summary(SummaryInput{
		Transcript:       "I think I avoid things because...",
		FrameworkName:    "Cognitive Reframing",
		ReflectionPrompt: "When did you last avoid something important?",
	})
	if !strings.Contains(p.System, "300 characters") {
		t.Error("summary system prompt missing length cap")
	}
	if !strings.Contains(p.System, "third-person") {
		t.Error("summary system prompt missing third-person voice constraint")
	}
	if !strings.Contains(p.User, "I think I avoid things because...") {
		t.Error("summary prompt missing transcript")
	}
}

func TestQuote_EmptyListsRenderPlaceholders(t *testing.T) {
	p := Quote(QuoteInput{
		ModuleTitle: "Steady Ground",
		TotalDays:   6,
	})
	if !strings.Contains(p.User, NoReflectionsPlaceholder) {
		t.Errorf("quote prompt missing %q", NoReflectionsPlaceholder)
	}
	if !strings.Contains(p.User, NoActionsPlaceholder) {
		t.Errorf("quote prompt missing %q", NoActionsPlaceholder)
	}
	if !strings.Contains(p.System, "30 words") {
		t.Error("quote system prompt missing word cap")
	}
}

func TestQuote_WithContent(t *testing.T) {
	p := Quote(QuoteInput{
		ModuleTitle: "Steady Ground",
		TotalDays:   6,
		Reflections: []string{"Sam named the avoidance pattern."},
		Actions:     []string{"Sent one honest message."},
		UserName:    "Sam",
	})
	if strings.Contains(p.User, NoReflectionsPlaceholder) || strings.Contains(p.User, NoActionsPlaceholder) {
		t.Error("quote prompt should not render placeholders when content exists")
	}
	if !strings.Contains(p.User, "- Sam named the avoidance pattern.") {
		t.Error("quote prompt missing reflection bullet")
	}
	if !strings.Contains(p.User, "Sam just completed") {
		t.Error("quote prompt missing user name")
	}
}
