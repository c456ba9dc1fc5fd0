package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:         "document",
	Short:       "Manage indexed documents",
	Long:        `Add, upload, list, or delete indexed documents.`,
	Annotations: engineAnnotation(),
}

var documentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Index a document from text",
	Long: `Index a single document from inline text or a text file.

Examples:
  docmind document add --title "Notes" --content "The quick brown fox"
  docmind document add --file notes.md`,
	Args: cobra.NoArgs,
	RunE: runDocumentAdd,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [files...]",
	Short: "Index .txt, .md, and .pdf files",
	Long: `Extract text from each file and index the files as one batch.
An unsupported file rejects the whole batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document and chunk counts",
	Args:  cobra.NoArgs,
	RunE:  runDocumentStats,
}

var (
	addTitle   string
	addFile    string
	addContent string
	listJSON   bool
)

func init() {
	documentAddCmd.Flags().StringVar(&addTitle, "title", "", "document title (default: file name or Untitled)")
	documentAddCmd.Flags().StringVarP(&addFile, "file", "f", "", "read content from a text file")
	documentAddCmd.Flags().StringVarP(&addContent, "content", "c", "", "document content")
	documentAddCmd.MarkFlagsMutuallyExclusive("file", "content")
	documentListCmd.Flags().BoolVar(&listJSON, "json", false, "output documents as JSON")

	documentCmd.AddCommand(documentAddCmd)
	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentStatsCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentAdd(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	input := domain.DocumentInput{Title: addTitle, Content: addContent}
	if addFile != "" {
		data, err := os.ReadFile(addFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", addFile, err)
		}
		input.Content = string(data)
		if input.Title == "" {
			input.Title = filepath.Base(addFile)
		}
	}
	if input.Content == "" {
		return errors.New("provide --content or --file")
	}

	result, err := documentService.Index(cmd.Context(), []domain.DocumentInput{input})
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	for _, id := range result.DocumentIDs {
		cmd.Printf("Indexed document %s\n", id)
	}
	cmd.Printf("Chunks created: %d\n", result.ChunksCreated)
	return nil
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	uploads, err := readUploads(args)
	if err != nil {
		return err
	}

	result, err := documentService.Upload(cmd.Context(), uploads)
	if err != nil {
		return fmt.Errorf("failed to upload documents: %w", err)
	}

	for i, id := range result.DocumentIDs {
		cmd.Printf("  %s  %s\n", id, uploads[i].Filename)
	}
	cmd.Printf("Indexed %d documents, %d chunks\n", len(result.DocumentIDs), result.ChunksCreated)
	return nil
}

func readUploads(paths []string) ([]domain.Upload, error) {
	uploads := make([]domain.Upload, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		uploads = append(uploads, domain.Upload{Filename: filepath.Base(p), Data: data})
	}
	return uploads, nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if listJSON {
		if docs == nil {
			docs = []domain.Document{}
		}
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents indexed.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Title:   %s\n", docs[i].Title)
		cmd.Printf("    Chunks:  %d\n", docs[i].ChunkCount)
		cmd.Printf("    Created: %s\n", docs[i].CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docID := args[0]
	found, err := documentService.Delete(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if !found {
		return fmt.Errorf("document not found: %s", docID)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentStats(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	stats := documentService.Stats(cmd.Context())
	cmd.Printf("Documents: %d\n", stats.Documents)
	cmd.Printf("Chunks:    %d\n", stats.Chunks)
	cmd.Printf("Dimension: %d\n", stats.Dimension)
	return nil
}
