package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nfrund/rollcall/internal/logging"
	"github.com/nfrund/rollcall/internal/notify"
	"github.com/nfrund/rollcall/internal/realtime"
	"github.com/nfrund/rollcall/internal/scheduler"
)

var watchServerURL string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow student change events and show desktop-style notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		logging.New()

		feed := realtime.NewClient(
			wsEndpoint(watchServerURL),
			realtime.ChannelStudents,
			endpointTokenSource(watchServerURL),
		)

		manager := notify.NewManager(feed,
			notify.NewToastList(scheduler.NewReal()),
			notify.WithDesktop(consoleNotifier{}),
			notify.WithPermission(notify.PermissionGranted),
		)

		if err := manager.Start(cmd.Context()); err != nil {
			return fmt.Errorf("attach to %s: %w", watchServerURL, err)
		}
		defer manager.Stop()

		fmt.Printf("Watching student changes on %s. Press Ctrl+C to stop.\n", watchServerURL)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchServerURL, "server", "http://localhost:8080", "Rollcall server base URL")
	rootCmd.AddCommand(watchCmd)
}

// endpointTokenSource fetches credentials from the server's token endpoint.
func endpointTokenSource(serverURL string) realtime.TokenSource {
	client := &http.Client{Timeout: 10 * time.Second}
	tokenURL := strings.TrimRight(serverURL, "/") + "/api/realtime/token"

	return func(ctx context.Context) (*realtime.Credential, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch credential: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("token endpoint returned %d", resp.StatusCode)
		}

		var cred realtime.Credential
		if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
			return nil, fmt.Errorf("decode credential: %w", err)
		}
		return &cred, nil
	}
}

func wsEndpoint(serverURL string) string {
	ws := strings.Replace(serverURL, "http://", "ws://", 1)
	ws = strings.Replace(ws, "https://", "wss://", 1)
	return strings.TrimRight(ws, "/") + "/ws"
}

// consoleNotifier renders notifications to the terminal.
type consoleNotifier struct{}

func (consoleNotifier) Show(n notify.Notification) error {
	_, err := fmt.Printf("%s %s: %s\n", n.Icon, n.Title, n.Body)
	return err
}
