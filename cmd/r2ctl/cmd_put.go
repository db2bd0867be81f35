package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"r2-dashboard/internal/client"
	"r2-dashboard/internal/domain/search"
	"r2-dashboard/internal/uploader"
)

var putCmd = &cobra.Command{
	Use:   "put <bucket> <file>...",
	Short: "Upload files with live progress",
	Long: `Upload local files into a bucket. Files are sent in chunks of --concurrency
parallel uploads; the next chunk starts when the current one finished.

In the interactive view use ↑/↓ to select a file, x to cancel it, r to retry
failed uploads and q to quit.`,
	Example: `  r2ctl put photos cat.jpg dog.jpg
  r2ctl put docs report.pdf --path reports/2024/
  r2ctl put backups *.tar.gz --concurrency 5 --plain`,
	Args: cobra.MinimumNArgs(2),
	RunE: runPut,
}

func init() {
	putCmd.Flags().String("path", "", "Destination folder (or full key for a single file)")
	putCmd.Flags().IntP("concurrency", "c", 3, "Parallel uploads per chunk (1-10)")
	putCmd.Flags().Bool("plain", false, "Print line-based progress instead of the interactive view")
}

// uploadSources stats every file. Directories are rejected.
func uploadSources(paths []string) ([]uploader.Source, error) {
	sources := make([]uploader.Source, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		local := p
		sources = append(sources, uploader.Source{
			Name: filepath.Base(p),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(local) },
		})
	}
	return sources, nil
}

// destinationPath makes the path a folder when several files share it.
func destinationPath(path string, files int) string {
	if files > 1 && path != "" && !strings.HasSuffix(path, "/") {
		return path + "/"
	}
	return path
}

func runPut(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	bucket, files := args[0], args[1:]

	sources, err := uploadSources(files)
	if err != nil {
		return err
	}

	dest, _ := cmd.Flags().GetString("path")
	dest = destinationPath(dest, len(sources))
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	plain, _ := cmd.Flags().GetBool("plain")

	transport := &client.BucketTransport{Client: api, Bucket: bucket, Path: dest}
	manager := uploader.NewManager(concurrency, transport, zerolog.Nop())
	manager.Add(sources...)

	target := bucket + "/" + dest
	if plain {
		return runPlainUpload(cmd.Context(), manager, target)
	}
	return runInteractiveUpload(cmd.Context(), manager, target)
}

func runInteractiveUpload(ctx context.Context, manager *uploader.Manager, target string) error {
	model := newProgressModel(ctx, manager, target)
	program := tea.NewProgram(model)
	manager.OnUpdate(func(item uploader.Item) {
		program.Send(itemUpdatedMsg(item))
	})

	final, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := final.(progressModel); ok && m.aborted {
		return fmt.Errorf("upload aborted")
	}
	return uploadSummary(manager)
}

func runPlainUpload(ctx context.Context, manager *uploader.Manager, target string) error {
	fmt.Printf("Uploading %d file(s) to %s with %d parallel upload(s)\n", len(manager.Snapshot()), target, manager.Concurrency())

	var mu sync.Mutex
	last := make(map[string]uploader.Status)
	manager.OnUpdate(func(item uploader.Item) {
		mu.Lock()
		defer mu.Unlock()
		if last[item.ID] == item.Status {
			return
		}
		last[item.ID] = item.Status
		switch item.Status {
		case uploader.StatusUploading:
			fmt.Printf("  uploading %s (%s)\n", item.Name, search.FormatFileSize(float64(item.Size)))
		case uploader.StatusDone:
			color.Green("  done      %s\n", item.Name)
		case uploader.StatusError:
			color.Red("  failed    %s: %s\n", item.Name, item.Error)
		}
	})

	if err := manager.Run(ctx); err != nil {
		return err
	}
	return uploadSummary(manager)
}

func uploadSummary(manager *uploader.Manager) error {
	counts := manager.Counts()
	var total int64
	for _, item := range manager.Snapshot() {
		if item.Status == uploader.StatusDone {
			total += item.Size
		}
	}
	fmt.Printf("%d uploaded (%s), %d failed\n", counts[uploader.StatusDone], search.FormatBytes(float64(total)), counts[uploader.StatusError])
	if counts[uploader.StatusError] > 0 {
		return fmt.Errorf("%d upload(s) failed", counts[uploader.StatusError])
	}
	return nil
}
