package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tagsmith/internal/app"
	"tagsmith/internal/services"
	"tagsmith/internal/textprep"
)

var (
	addTitle  string
	addSource string
	addNoTag  bool
)

// Extensions picked up when adding a directory.
var addableExtensions = map[string]bool{
	".md": true, ".txt": true, ".html": true, ".htm": true,
}

var addCmd = &cobra.Command{
	Use:   "add [input]",
	Short: "Register a document for tagging",
	Long: `Adds a document from a file path, a directory of text files, raw text, or
stdin ('-'). With tagging.auto_apply enabled in config, the document is
tagged immediately after it is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		input := args[0]

		if input == "-" {
			raw, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return addOne(cmd, appInstance, addTitle, string(raw), "stdin", "")
		}

		stat, statErr := os.Stat(input)
		if statErr == nil && stat.IsDir() {
			return addDirectory(cmd, appInstance, input)
		}
		if statErr == nil {
			return addFile(cmd, appInstance, input, addTitle)
		}

		// Not a path: treat the argument as raw text.
		return addOne(cmd, appInstance, addTitle, input, "manual", "")
	},
}

func addFile(cmd *cobra.Command, appInstance *app.App, path, title string) error {
	binary, err := textprep.IsLikelyBinary(path)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}
	if binary {
		return fmt.Errorf("%s looks like a binary file", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	body, err := textprep.CleanContent(raw, path)
	if err != nil {
		return fmt.Errorf("clean %s: %w", path, err)
	}

	if title == "" {
		title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	contentType := ""
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		contentType = "text/html"
	}
	return addOne(cmd, appInstance, title, body, path, contentType)
}

func addDirectory(cmd *cobra.Command, appInstance *app.App, dir string) error {
	fmt.Printf("Processing directory: %s\n", dir)
	var added, skipped, failed int

	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			fmt.Printf("  - ERROR accessing %s: %v\n", path, err)
			failed++
			if errors.Is(err, fs.ErrPermission) && d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !addableExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			skipped++
			return nil
		}

		if err := addFile(cmd, appInstance, path, ""); err != nil {
			log.Warnf("Failed to add %s: %v", path, err)
			failed++
			return nil
		}
		added++
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk %s: %w", dir, walkErr)
	}

	fmt.Printf("Done: %d added, %d skipped, %d failed.\n", added, skipped, failed)
	return nil
}

func addOne(cmd *cobra.Command, appInstance *app.App, title, body, source, contentType string) error {
	if addSource != "" {
		source = addSource
	}

	doc, existed, err := appInstance.DocumentService.Add(cmd.Context(), services.AddDocumentParams{
		Title:       title,
		Body:        body,
		Source:      source,
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}

	if existed {
		color.Yellow("Already stored as document %d: %s", doc.ID, doc.Title)
		return nil
	}
	color.Green("Stored document %d: %s", doc.ID, doc.Title)

	if appInstance.Config.Tagging.AutoApply && !addNoTag {
		res, err := appInstance.TaggingService.TagDocument(cmd.Context(), doc.ID)
		if err != nil {
			return fmt.Errorf("tag document %d: %w", doc.ID, err)
		}
		printTagResult(res)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(addCmd)

	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Document title (defaults to file name or first line)")
	addCmd.Flags().StringVarP(&addSource, "source", "s", "", "Source label stored with the document")
	addCmd.Flags().BoolVar(&addNoTag, "no-tag", false, "Skip auto-tagging even when tagging.auto_apply is set")
}
