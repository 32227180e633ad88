package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/harsanitizer/internal/config"
	"github.com/nao1215/harsanitizer/internal/har"
	"github.com/nao1215/harsanitizer/internal/sanitizer"
)

// NewInspectCmd creates the inspect command.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file.har|-]",
		Short: "List the field names and content types of a HAR file",
		Long: `Inspect lists the cookie, header, query string and form parameter names of
a HAR file together with the content types of its responses.

Names already covered by the default word list and content types covered by
the default content list are marked, so you can decide what to add with
--word, --content or the configuration file before sanitizing.
Values are never printed.

Examples:
  # Show the names of a capture
  harsanitizer inspect capture.har

  # Machine-readable output
  harsanitizer inspect --json capture.har`,
		Args: cobra.ExactArgs(1),
		RunE: runInspectCmd,
	}

	cmd.Flags().BoolP("json", "j", false, "Output in JSON format")

	return cmd
}

// inspectItem is a name or content type and whether the defaults cover it.
type inspectItem struct {
	Name    string `json:"name"`
	Covered bool   `json:"covered"`
}

// inspectResult is the output of the inspect command.
type inspectResult struct {
	Source    string                               `json:"source"`
	Entries   int                                  `json:"entries"`
	Fields    map[sanitizer.Category][]inspectItem `json:"fields"`
	MimeTypes []inspectItem                        `json:"mime_types"`
	Skipped   []sanitizer.Anomaly                  `json:"skipped,omitempty"`
}

// runInspectCmd executes the inspect command.
func runInspectCmd(cmd *cobra.Command, args []string) error {
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	source := args[0]
	data, err := sourceReader(cmd.InOrStdin())(source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}

	result, err := inspect(source, data)
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return writeInspectText(cmd.OutOrStdout(), result)
}

// inspect loads a document and lists its names and content types.
func inspect(source string, data []byte) (*inspectResult, error) {
	doc, err := sanitizer.Load(data)
	if err != nil {
		return nil, err
	}

	words := lowerSet(sanitizer.DefaultWordList())
	result := &inspectResult{
		Source:  source,
		Entries: len(har.Entries(doc)),
		Fields:  make(map[sanitizer.Category][]inspectItem),
	}

	for _, c := range sanitizer.Categories() {
		fields, anomalies := sanitizer.Extract(doc, c)
		items := make([]inspectItem, 0, fields.Len())
		for _, name := range fields.Names() {
			items = append(items, inspectItem{Name: name, Covered: words[sanitizer.Lower(name)]})
		}
		result.Fields[c] = items
		result.Skipped = append(result.Skipped, anomalies...)
	}

	contentList := sanitizer.DefaultContentList()
	for _, mt := range sanitizer.CollectMimeTypes(doc) {
		result.MimeTypes = append(result.MimeTypes, inspectItem{Name: mt, Covered: slices.Contains(contentList, mt)})
	}
	if result.MimeTypes == nil {
		result.MimeTypes = []inspectItem{}
	}

	return result, nil
}

// lowerSet returns the entries of list as a set, lower-cased the way the
// redactor compares names.
func lowerSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, s := range list {
		set[sanitizer.Lower(s)] = true
	}
	return set
}

// writeInspectText writes the inspection result in a human-readable form.
func writeInspectText(w io.Writer, r *inspectResult) error {
	var sb strings.Builder

	source := r.Source
	if source == config.Stdio {
		source = "(stdin)"
	}
	fmt.Fprintf(&sb, "Source:  %s\n", source)
	fmt.Fprintf(&sb, "Entries: %d\n", r.Entries)
	sb.WriteString("\n[x] covered by the defaults, [ ] not covered\n")

	for _, c := range sanitizer.Categories() {
		writeInspectItems(&sb, string(c), r.Fields[c])
	}
	writeInspectItems(&sb, "mimeTypes", r.MimeTypes)

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&sb, "\nskipped records (%d)\n", len(r.Skipped))
		for _, a := range r.Skipped {
			fmt.Fprintf(&sb, "  [%s] %s: %s\n", a.Category, orNone(a.Name), a.Reason)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeInspectItems(sb *strings.Builder, title string, items []inspectItem) {
	fmt.Fprintf(sb, "\n%s (%d)\n", title, len(items))
	for _, item := range items {
		mark := " "
		if item.Covered {
			mark = "x"
		}
		fmt.Fprintf(sb, "  [%s] %s\n", mark, item.Name)
	}
}

func orNone(s string) string {
	if s == "" {
		return "(no name)"
	}
	return s
}
