package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/objectiveSquid/Chat-site/pkg/config"
	"github.com/spf13/cobra"
)

var (
	flagFollow bool
	flagLines  int
	flagSince  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print or follow the server log file",
	Long: `Print the tail of the server log file, optionally following new
entries as the server writes them. Requires logging.output in
server_config.yml to point at a file; when the server logs to
stdout/stderr there is no file to read.

Examples:
  chatserver logs              # last 100 lines
  chatserver logs -n 20 -f     # last 20 lines, then follow
  chatserver logs --since "2026-01-15T10:00:00Z"`,
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVarP(&flagFollow, "follow", "f", false, "Stream new lines as the server writes them")
	logsCmd.Flags().IntVarP(&flagLines, "lines", "n", 100, "How many trailing lines to print")
	logsCmd.Flags().StringVar(&flagSince, "since", "", "Only print records at or after this RFC3339 timestamp")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoadServer(GetConfigFile())
	if err != nil {
		return err
	}

	path, err := logFilePath(cfg)
	if err != nil {
		return err
	}

	var since time.Time
	if flagSince != "" {
		since, err = time.Parse(time.RFC3339, flagSince)
		if err != nil {
			return fmt.Errorf("--since must be an RFC3339 timestamp: %w", err)
		}
	}

	if err := printLastLines(path, flagLines, since); err != nil {
		return err
	}
	if flagFollow {
		return followLog(path)
	}
	return nil
}

// logFilePath resolves the configured log destination to a readable file.
func logFilePath(cfg *config.ServerConfig) (string, error) {
	out := cfg.Logging.Output
	if out == "stdout" || out == "stderr" {
		return "", fmt.Errorf("server logs to %s, not a file; set logging.output in server_config.yml to a file path to use this command", out)
	}
	if _, err := os.Stat(out); os.IsNotExist(err) {
		return "", fmt.Errorf("log file not found: %s (the server may not have started yet or is logging elsewhere)", out)
	}
	return out, nil
}

// printLastLines prints the last n lines of the log file, dropping
// records stamped before since. Lines are kept in a fixed ring so tailing
// a large file does not hold the whole file in memory.
func printLastLines(path string, n int, since time.Time) error {
	if n <= 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ring := make([]string, n)
	total := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !since.IsZero() {
			if ts := recordTime(line); !ts.IsZero() && ts.Before(since) {
				continue
			}
		}
		ring[total%n] = line
		total++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	count, first := total, 0
	if total > n {
		count, first = n, total%n
	}
	for i := 0; i < count; i++ {
		fmt.Println(ring[(first+i)%n])
	}
	return nil
}

// followLog streams lines appended to the log file until interrupted.
func followLog(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start the file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	// Everything up to here was already printed; pick up at the end.
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek to the end of %s: %w", path, err)
	}
	reader := bufio.NewReader(f)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)...\n", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					break
				}
				fmt.Print(line)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("log watcher failed: %w", err)
		}
	}
}

// textTimeLayout matches the bracketed timestamp the text log format
// opens every record with. It carries no zone, so it is read as local
// wall time, the same clock that wrote it.
const textTimeLayout = "2006-01-02 15:04:05.000"

// recordTime extracts the timestamp from a log record in either output
// format: "[2006-01-02 15:04:05.000] ..." for text, or a "time" field
// holding RFC3339 for JSON. Returns the zero time when neither matches.
func recordTime(line string) time.Time {
	if strings.HasPrefix(line, "[") && len(line) > len(textTimeLayout)+1 {
		if ts, err := time.ParseInLocation(textTimeLayout, line[1:len(textTimeLayout)+1], time.Local); err == nil {
			return ts
		}
	}

	const timeKey = `"time":"`
	if idx := strings.Index(line, timeKey); idx >= 0 {
		rest := line[idx+len(timeKey):]
		if end := strings.IndexByte(rest, '"'); end > 0 {
			if ts, err := time.Parse(time.RFC3339Nano, rest[:end]); err == nil {
				return ts
			}
		}
	}

	return time.Time{}
}
