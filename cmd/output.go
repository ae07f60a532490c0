package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"tagsmith/pkg/tagger"
)

// printTagResult renders one tagging outcome for humans: reused catalog
// tags in cyan, newly proposed tags in green.
func printTagResult(res *tagger.Result) {
	if len(res.Tags) == 0 {
		fmt.Println("No tags suggested.")
		return
	}
	if len(res.Existing) > 0 {
		fmt.Printf("Existing: %s\n", color.CyanString(strings.Join(res.Existing, " ")))
	}
	if len(res.New) > 0 {
		fmt.Printf("New:      %s\n", color.GreenString(strings.Join(res.New, " ")))
	}
}

// printJSON writes v as indented JSON on stdout for --json output.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
