package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/frfrance/pong-arena/api"
)

// runWithFlags invokes fn with a cli.Command parsed from args, mirroring
// how the real commands receive their flags.
func runWithFlags(t *testing.T, args []string, fn func(cmd *cli.Command) error) {
	t.Helper()
	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "maps-dir"},
			&cli.StringFlag{Name: "db"},
			&cli.StringFlag{Name: "history-dir"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return fn(cmd)
		},
	}
	if err := cmd.Run(context.Background(), append([]string{"pong-arena"}, args...)); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestBuildServicesSQLite(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"--maps-dir", filepath.Join(dir, "maps"),
		"--db", filepath.Join(dir, "pong.db"),
	}

	runWithFlags(t, args, func(cmd *cli.Command) error {
		svc, hub, err := buildServices(cmd)
		if err != nil {
			t.Fatalf("buildServices: %v", err)
		}
		if svc == nil || hub == nil {
			t.Fatal("buildServices returned nil components")
		}

		// The wired stack serves requests end to end.
		srv := httptest.NewServer(api.NewServer(svc, hub))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/api/health")
		if err != nil {
			t.Fatalf("GET /api/health: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d, want 200", resp.StatusCode)
		}
		return nil
	})
}

func TestBuildServicesFileHistory(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"--maps-dir", filepath.Join(dir, "maps"),
		"--history-dir", filepath.Join(dir, "history"),
	}

	runWithFlags(t, args, func(cmd *cli.Command) error {
		svc, _, err := buildServices(cmd)
		if err != nil {
			t.Fatalf("buildServices: %v", err)
		}
		if got := svc.LiveSessions(context.Background()); len(got) != 0 {
			t.Errorf("fresh arena should have no live sessions, got %d", len(got))
		}
		return nil
	})
}
