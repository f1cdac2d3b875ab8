package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alora-app/alora/internal/prompt"
)

// The prompt commands render the generation prompts locally so an
// operator can inspect exactly what a stage sends, without a server or
// an API key.
func newPromptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Preview the coaching prompts",
	}

	cmd.AddCommand(newPromptModulesCmd())
	cmd.AddCommand(newPromptVoiceCmd())

	return cmd
}

func newPromptModulesCmd() *cobra.Command {
	var personalContext, name, language string

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Preview the module-generation prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := prompt.Modules(prompt.ModuleInput{
				PersonalContext: personalContext,
				UserName:        name,
				Language:        language,
			})
			printPrompt(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&personalContext, "context", "I want to build a calmer morning routine", "personal context")
	cmd.Flags().StringVar(&name, "name", "", "user name")
	cmd.Flags().StringVar(&language, "language", "", "content language")
	return cmd
}

func newPromptVoiceCmd() *cobra.Command {
	var language string

	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Preview the voice-session prompt for a sample day",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := prompt.Voice(prompt.VoiceInput{
				Day: prompt.DayContext{
					ModuleTitle:          "Grounded Mornings",
					DayNumber:            2,
					TotalDays:            5,
					DayTitle:             "Noticing the rush",
					FrameworkName:        "Box Breathing",
					FrameworkDescription: "A four-count breathing pattern for settling attention.",
				},
				ReflectionPrompt: "When did you last feel unhurried?",
				Language:         language,
			})
			printPrompt(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "language", "", "session language")
	return cmd
}

func printPrompt(p prompt.Prompt) {
	fmt.Println("--- system ---")
	fmt.Println(p.System)
	fmt.Println("--- user ---")
	fmt.Println(p.User)
}
