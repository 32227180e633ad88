package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// defaultLists is the JSON form of the built-in lists.
type defaultLists struct {
	WordList    []string `json:"word_list"`
	ContentList []string `json:"content_list"`
}

// NewDefaultsCmd creates the defaults command.
func NewDefaultsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Print the built-in word list and content list",
		Long: `Defaults prints the field names that are always redacted and the content
types whose response bodies are always replaced.

Entries given with --word, --content or the configuration file are added to
these lists.`,
		Args: cobra.NoArgs,
		RunE: runDefaultsCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")

	return cmd
}

// runDefaultsCmd executes the defaults command.
func runDefaultsCmd(cmd *cobra.Command, _ []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	lists := defaultLists{
		WordList:    sanitizer.DefaultWordList(),
		ContentList: sanitizer.DefaultContentList(),
	}

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(lists)
	}
	return writeDefaultsText(cmd.OutOrStdout(), lists)
}

func writeDefaultsText(w io.Writer, lists defaultLists) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Word list (%d):\n", len(lists.WordList))
	for _, word := range lists.WordList {
		fmt.Fprintf(&sb, "  %s\n", word)
	}

	fmt.Fprintf(&sb, "\nContent list (%d):\n", len(lists.ContentList))
	for _, ct := range lists.ContentList {
		fmt.Fprintf(&sb, "  %s\n", ct)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
