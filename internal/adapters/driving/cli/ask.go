package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var (
	askTopK        int
	askTemperature float64
	askStream      bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from indexed documents",
	Long: `Retrieves the chunks closest to the question and asks the configured
LLM to answer from them. Requires an LLM provider; run
'docmind settings llm' to configure one.

With --stream the answer is printed as it is generated. With --stream
and --json each event is printed as one JSON line.`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: engineAnnotation(),
	RunE:        runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", domain.DefaultTopK, "number of chunks to retrieve")
	askCmd.Flags().Float64VarP(&askTemperature, "temperature", "t", domain.DefaultTemperature, "sampling temperature (0-2)")
	askCmd.Flags().BoolVar(&askStream, "stream", false, "print the answer as it is generated")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(askCmd)
}

// answerOutput is the JSON form of an answer.
type answerOutput struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Sources  []domain.RankedChunk `json:"sources"`
}

// streamLine is one line of a JSON answer stream.
type streamLine struct {
	Type    domain.StreamEventType `json:"type"`
	Sources []domain.RankedChunk   `json:"sources,omitempty"`
	Content string                 `json:"content,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	question := strings.Join(args, " ")
	opts := domain.SearchOptions{TopK: askTopK, Temperature: askTemperature}

	if askStream {
		return runAskStream(cmd, question, opts)
	}

	answer, err := queryService.Ask(cmd.Context(), question, opts)
	if err != nil {
		return askError(err)
	}

	if askJSON {
		sources := answer.Sources
		if sources == nil {
			sources = []domain.RankedChunk{}
		}
		data, err := json.MarshalIndent(answerOutput{
			Question: answer.Question,
			Answer:   answer.Text,
			Sources:  sources,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	printSources(cmd, answer.Sources)
	return nil
}

func runAskStream(cmd *cobra.Command, question string, opts domain.SearchOptions) error {
	var sources []domain.RankedChunk
	enc := json.NewEncoder(cmd.OutOrStdout())

	err := queryService.AskStream(cmd.Context(), question, opts, func(ev domain.StreamEvent) error {
		if askJSON {
			return enc.Encode(streamLine{Type: ev.Type, Sources: ev.Sources, Content: ev.Content})
		}
		switch ev.Type {
		case domain.StreamEventSources:
			sources = ev.Sources
		case domain.StreamEventAnswer:
			cmd.Print(ev.Content)
		}
		return nil
	})
	if err != nil {
		if !askJSON {
			cmd.Println()
		}
		return askError(err)
	}

	if !askJSON {
		cmd.Println()
		printSources(cmd, sources)
	}
	return nil
}

func askError(err error) error {
	if errors.Is(err, domain.ErrLLMUnavailable) {
		return fmt.Errorf("%w\nRun 'docmind settings llm' to configure an LLM provider", err)
	}
	return fmt.Errorf("ask failed: %w", err)
}

func printSources(cmd *cobra.Command, sources []domain.RankedChunk) {
	if len(sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for i := range sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, sources[i].Title, sources[i].Score)
	}
}
