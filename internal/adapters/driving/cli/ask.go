package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the ingested documents",
	Long: `Retrieves the chunks most relevant to the question and asks the configured
language model to answer using them as context.

Provider failures are printed as the answer, prefixed with "Error: ".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Answer questions read from standard input",
	Long: `Reads one question per line and prints each answer. An empty line is
answered like any other question. The loop ends at end of input or on "exit".`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Conversation == nil {
		return errors.New("answer service not configured")
	}
	ingestOnStart(cmd, s)

	answer := s.Conversation.Ask(cmd.Context(), strings.Join(args, " "))
	cmd.Println(answer.Text)
	return nil
}

func runChat(cmd *cobra.Command, _ []string) error {
	s, err := requireServices(cmd)
	if err != nil {
		return err
	}
	if s.Conversation == nil {
		return errors.New("answer service not configured")
	}
	ingestOnStart(cmd, s)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			break
		}

		turn := s.Conversation.Turn(cmd.Context(), line)
		cmd.Println(turn.Answer.Text)
		cmd.Println()

		if err := cmd.Context().Err(); err != nil {
			return nil
		}
	}
	return scanner.Err()
}
