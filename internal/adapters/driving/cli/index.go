package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/four-robots/unisearch/internal/core/domain"
	"github.com/four-robots/unisearch/internal/normalisers"
	"github.com/four-robots/unisearch/internal/normalisers/html"
	"github.com/four-robots/unisearch/internal/normalisers/markdown"
	"github.com/four-robots/unisearch/internal/normalisers/plaintext"
)

// fileNormalisers converts --file input to plain text.
var fileNormalisers = normalisers.NewRegistry(plaintext.New(), markdown.New(), html.New())

var indexFlags struct {
	source string
	id     string
	title  string
	uri    string
	tags   []string
	file   string
	json   bool
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage documents of the local sources",
	Long: `The memory, kanban and wiki sources search documents kept in the local
store. Use these commands to add, list and remove them.`,
}

var indexAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a document to a local source",
	Long: `Adds a document. Content comes from the arguments, from --file, or from
stdin when the only argument is "-". Markdown and HTML files are reduced to
plain text and, without --title, titled from their first heading or <title>.

Examples:
  unisearch index add --source memory --title "Standup" "Ship on Friday"
  unisearch index add --source wiki --title "Runbook" --file runbook.md
  cat notes.txt | unisearch index add --source memory -`,
	RunE: runIndexAdd,
}

var indexListCmd = &cobra.Command{
	Use:   "list <source>",
	Short: "List documents of a local source",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexList,
}

var indexRemoveCmd = &cobra.Command{
	Use:   "remove <source> <id>",
	Short: "Remove a document from a local source",
	Args:  cobra.ExactArgs(2),
	RunE:  runIndexRemove,
}

func init() {
	f := indexAddCmd.Flags()
	f.StringVarP(&indexFlags.source, "source", "s", "", "local source: memory, kanban or wiki")
	f.StringVar(&indexFlags.id, "id", "", "document id (generated when empty)")
	f.StringVar(&indexFlags.title, "title", "", "document title")
	f.StringVar(&indexFlags.uri, "uri", "", "link to the original")
	f.StringSliceVar(&indexFlags.tags, "tag", nil, "tag (repeatable)")
	f.StringVarP(&indexFlags.file, "file", "f", "", "read content from a file")
	_ = indexAddCmd.MarkFlagRequired("source")
	indexListCmd.Flags().BoolVar(&indexFlags.json, "json", false, "output as JSON")

	indexCmd.AddCommand(indexAddCmd)
	indexCmd.AddCommand(indexListCmd)
	indexCmd.AddCommand(indexRemoveCmd)
	rootCmd.AddCommand(indexCmd)
}

func requireDocuments() (*App, error) {
	a, err := requireApp()
	if err != nil {
		return nil, err
	}
	if a.Documents == nil {
		return nil, errors.New("local index not configured")
	}
	return a, nil
}

func runIndexAdd(cmd *cobra.Command, args []string) error {
	a, err := requireDocuments()
	if err != nil {
		return err
	}

	content, err := readContent(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	title := indexFlags.title
	if indexFlags.file != "" {
		res := fileNormalisers.Normalise(indexFlags.file, []byte(content))
		content = res.Text
		if title == "" {
			title = res.Title
		}
	}

	doc, err := a.Documents.Add(cmd.Context(), domain.Document{
		ID:       indexFlags.id,
		SourceID: indexFlags.source,
		Title:    title,
		Content:  content,
		URI:      indexFlags.uri,
		Tags:     indexFlags.tags,
	})
	if err != nil {
		return fmt.Errorf("index add: %w", err)
	}
	cmd.Printf("Added %s/%s\n", doc.SourceID, doc.ID)
	return nil
}

// readContent picks --file, stdin ("-") or the joined arguments.
func readContent(stdin io.Reader, args []string) (string, error) {
	switch {
	case indexFlags.file != "":
		if len(args) > 0 {
			return "", errors.New("give content either as arguments or with --file, not both")
		}
		data, err := os.ReadFile(indexFlags.file)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", indexFlags.file, err)
		}
		return string(data), nil
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		return "", errors.New("no content: pass it as arguments, with --file, or on stdin with -")
	}
}

func runIndexList(cmd *cobra.Command, args []string) error {
	a, err := requireDocuments()
	if err != nil {
		return err
	}

	docs, err := a.Documents.List(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("index list: %w", err)
	}
	if indexFlags.json {
		return writeJSON(cmd.OutOrStdout(), docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents.")
		return nil
	}

	p := newPrinter(cmd.OutOrStdout())
	for _, d := range docs {
		title := d.Title
		if title == "" {
			title = oneLine(d.Preview())
		}
		p.printf("  %s  %s  %s\n", d.ID, p.style(titleStyle, title),
			p.style(dimStyle, d.UpdatedAt.Local().Format(time.DateTime)))
	}
	return nil
}

func runIndexRemove(cmd *cobra.Command, args []string) error {
	a, err := requireDocuments()
	if err != nil {
		return err
	}
	if err := a.Documents.Remove(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("index remove: %w", err)
	}
	cmd.Printf("Removed %s/%s\n", args[0], args[1])
	return nil
}
