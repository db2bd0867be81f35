package main

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"r2-dashboard/internal/domain/search"
)

var lsCmd = &cobra.Command{
	Use:   "ls <bucket> [query...]",
	Short: "List and search objects",
	Long: `List objects of a bucket. Remaining arguments form a search query:

  type:image|video|audio|document|archive|code|other
  size>1mb  size<20kb
  after:2024-01-01  before:2024-12-31
  any other word is used as key prefix and filename filter

Flags override the matching query operator.`,
	Example: `  r2ctl ls photos
  r2ctl ls photos 2024/ type:image
  r2ctl ls docs "quarterly report" size>1mb --sort size --order desc`,
	Args: cobra.MinimumNArgs(1),
	RunE: runList,
}

var getCmd = &cobra.Command{
	Use:   "get <bucket> <key>",
	Short: "Download an object",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

var rmCmd = &cobra.Command{
	Use:   "rm <bucket> <key>...",
	Short: "Delete one or more objects",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runRemove,
}

var presignCmd = &cobra.Command{
	Use:   "presign <bucket> <key>",
	Short: "Print a temporary download URL",
	Args:  cobra.ExactArgs(2),
	RunE:  runPresign,
}

func init() {
	lsCmd.Flags().String("prefix", "", "Key prefix")
	lsCmd.Flags().String("filename", "", "Filename substring")
	lsCmd.Flags().String("type", "", "File category")
	lsCmd.Flags().String("min-size", "", "Minimum size, e.g. 10kb")
	lsCmd.Flags().String("max-size", "", "Maximum size, e.g. 2gb")
	lsCmd.Flags().String("after", "", "Modified on or after (YYYY-MM-DD or RFC 3339)")
	lsCmd.Flags().String("before", "", "Modified before (YYYY-MM-DD or RFC 3339)")
	lsCmd.Flags().String("delimiter", "/", "Folder delimiter, empty for a flat listing")
	lsCmd.Flags().String("sort", "", "Sort by name, size, lastModified or type")
	lsCmd.Flags().String("order", "", "Sort order asc or desc")
	lsCmd.Flags().Int("max-keys", 0, "Page size")
	lsCmd.Flags().String("token", "", "Continuation token of a previous page")
	lsCmd.Flags().Bool("all", false, "Follow continuation tokens until the listing ends")

	getCmd.Flags().StringP("output", "o", "", "Destination file, - for stdout (default: base name of the key)")
}

// listParams merges the positional query with the explicit flags.
func listParams(cmd *cobra.Command, query string) url.Values {
	flag := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	params := search.Filters{
		Prefix:   flag("prefix"),
		Filename: flag("filename"),
		Type:     flag("type"),
		MinSize:  flag("min-size"),
		MaxSize:  flag("max-size"),
		After:    flag("after"),
		Before:   flag("before"),
	}.Values()

	if query != "" {
		params.Set("q", query)
	}
	if cmd.Flags().Changed("delimiter") || flag("delimiter") != "" {
		params.Set("delimiter", flag("delimiter"))
	}
	if v := flag("sort"); v != "" {
		params.Set("sortBy", v)
	}
	if v := flag("order"); v != "" {
		params.Set("sortOrder", v)
	}
	if n, _ := cmd.Flags().GetInt("max-keys"); n > 0 {
		params.Set("maxKeys", strconv.Itoa(n))
	}
	if v := flag("token"); v != "" {
		params.Set("continuationToken", v)
	}
	return params
}

func runList(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	bucket := args[0]
	query := strings.Join(args[1:], " ")
	params := listParams(cmd, query)
	all, _ := cmd.Flags().GetBool("all")

	if filters := search.Parse(query); !filters.IsZero() {
		color.Cyan("Filters: %s\n", describeFilters(filters))
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	matches, scanned := 0, 0
	for {
		page, err := api.ListObjects(cmd.Context(), bucket, params)
		if err != nil {
			return err
		}
		for _, p := range page.Prefixes {
			fmt.Fprintf(w, "%s\t\t\t%s\n", color.BlueString(p), "DIR")
		}
		for _, o := range page.Objects {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", o.Key, o.SizeHuman, o.LastModified.Local().Format("2006-01-02 15:04"), o.Category)
		}
		matches += page.Count
		scanned += page.Scanned

		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		if !all {
			w.Flush()
			fmt.Printf("\nMore results: --token %s\n", page.NextContinuationToken)
			break
		}
		params.Set("continuationToken", page.NextContinuationToken)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%d match(es), %d key(s) scanned\n", matches, scanned)
	return nil
}

func describeFilters(f search.Filters) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+"="+value)
		}
	}
	add("prefix", f.Prefix)
	add("name", f.Filename)
	add("type", f.Type)
	add("min", f.MinSize)
	add("max", f.MaxSize)
	add("after", f.After)
	add("before", f.Before)
	return strings.Join(parts, " ")
}

func runGet(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	bucket, key := args[0], args[1]

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = path.Base(key)
	}

	var w io.Writer = os.Stdout
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := api.Download(cmd.Context(), bucket, key, w)
	if err != nil {
		if output != "-" {
			os.Remove(output)
		}
		return err
	}
	if output != "-" {
		color.Green("Downloaded %s (%s) to %s\n", key, search.FormatFileSize(float64(n)), output)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	bucket, keys := args[0], args[1:]

	if len(keys) == 1 {
		if err := api.DeleteObject(cmd.Context(), bucket, keys[0]); err != nil {
			return err
		}
		color.Green("Deleted %s\n", keys[0])
		return nil
	}

	result, err := api.DeleteObjects(cmd.Context(), bucket, keys)
	if err != nil {
		return err
	}
	for _, key := range result.Deleted {
		color.Green("Deleted %s\n", key)
	}
	for _, failure := range result.Errors {
		color.Red("  %s: %s\n", failure.Key, failure.Message)
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d deletions failed", len(result.Errors), len(keys))
	}
	return nil
}

func runPresign(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	resp, err := api.Presign(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Println(resp.URL)
	fmt.Fprintf(os.Stderr, "expires %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	return nil
}
