package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songdash/internal/repositories"
	"github.com/desertthunder/songdash/internal/server"
	"github.com/desertthunder/songdash/internal/services"
	"github.com/desertthunder/songdash/internal/shared"
	tu "github.com/desertthunder/songdash/internal/testing"
)

const songsCSV = "track_name,artist,genre,popularity,duration_ms\n" +
	"Song A,Alpha,Rock,80,200000\n" +
	"Song B,Beta,Pop,60,180000\n" +
	"Song C,Alpha,Rock,70,240000\n" +
	"Song D,Gamma,Jazz,50,210000\n"

// newTestRunner returns a runner writing to a buffer, with its database in a temp dir.
func newTestRunner(t *testing.T, baseURL string) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "songdash.db")
	config.API.RateLimit = 1000
	if baseURL != "" {
		config.API.BaseURL = baseURL
	}

	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	}), output
}

func run(r *Runner, args ...string) error {
	root := &cli.Command{Name: "songdash", Commands: r.register()}
	return root.Run(context.Background(), append([]string{"songdash"}, args...))
}

// serveCatalog imports songsCSV into r's database and serves the catalog API from it.
func serveCatalog(t *testing.T, r *Runner) *httptest.Server {
	t.Helper()

	path := tu.MustWriteFile(t, t.TempDir(), "songs.csv", songsCSV)
	if err := run(r, "catalog", "import", "--csv", path); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	db, err := r.openDatabase(context.Background())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	handler := server.NewCatalogHandler(repositories.NewTrackRepository(db), repositories.NewImportRepository(db), r.logger)
	srv := httptest.NewServer(server.NewCatalogRouter(handler, server.CatalogRouterOpts{AllowOrigins: "*"}, r.logger))
	t.Cleanup(srv.Close)
	return srv
}

// dashRunner returns a runner pointed at a served copy of songsCSV.
func dashRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	importer, _ := newTestRunner(t, "")
	srv := serveCatalog(t, importer)
	return newTestRunner(t, srv.URL)
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			api := services.NewAPIService("http://example.com", httpClient)
			catalog := services.NewCatalogClient(api)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				API:        api,
				Catalog:    catalog,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.api != api {
				t.Error("expected api to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
		})

		t.Run("with nothing provided uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Fatal("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected stdout output")
			}
			if runner.httpClient == nil || runner.api == nil || runner.catalog == nil {
				t.Fatal("expected catalog clients to be built")
			}
			if runner.api.BaseURL() != runner.config.API.BaseURL {
				t.Errorf("expected base URL %s, got %s", runner.config.API.BaseURL, runner.api.BaseURL())
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			runner.writePlainln("done")
			if output.String() != "\ndone\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writePlain("test"); err == nil {
				t.Fatal("expected error from failing writer")
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "catalog", "dash", "tui", "api"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("expected command %d to be %s, got %s", i, name, commands[i].Name)
			}
		}
	})

	t.Run("Before", func(t *testing.T) {
		before := func(r *Runner, args ...string) error {
			root := &cli.Command{
				Name: "songdash",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Value: "config.toml"},
					&cli.BoolFlag{Name: "debug"},
				},
				Before: r.Before,
				Action: func(context.Context, *cli.Command) error { return nil },
			}
			return root.Run(context.Background(), append([]string{"songdash"}, args...))
		}

		t.Run("loads config file", func(t *testing.T) {
			path := tu.MustWriteFile(t, t.TempDir(), "config.toml", "[api]\nbase_url = \"http://catalog.test:9000\"\n")
			runner, _ := newTestRunner(t, "")

			if err := before(runner, "--config", path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if runner.api.BaseURL() != "http://catalog.test:9000" {
				t.Errorf("expected API rebuilt from config, got %s", runner.api.BaseURL())
			}
			if runner.configPath != path {
				t.Errorf("expected config path %s, got %s", path, runner.configPath)
			}
			if runner.config.Dashboard.DisplayCap != 50 {
				t.Errorf("expected default display cap, got %d", runner.config.Dashboard.DisplayCap)
			}
		})

		t.Run("environment overrides file", func(t *testing.T) {
			path := tu.MustWriteFile(t, t.TempDir(), "config.toml", "[api]\nbase_url = \"http://catalog.test:9000\"\n")
			t.Setenv(shared.EnvAPIURL, "http://env.test")
			runner, _ := newTestRunner(t, "")

			if err := before(runner, "--config", path); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if runner.api.BaseURL() != "http://env.test" {
				t.Errorf("expected env override, got %s", runner.api.BaseURL())
			}
		})

		t.Run("missing file uses defaults", func(t *testing.T) {
			runner, _ := newTestRunner(t, "")

			if err := before(runner, "--config", filepath.Join(t.TempDir(), "nope.toml"), "--debug"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if runner.config.API.BaseURL != shared.DefaultConfig().API.BaseURL {
				t.Errorf("expected default base URL, got %s", runner.config.API.BaseURL)
			}
		})

		t.Run("invalid config", func(t *testing.T) {
			path := tu.MustWriteFile(t, t.TempDir(), "config.toml", "[dashboard]\ntop_n = 0\n")
			runner, _ := newTestRunner(t, "")

			if err := before(runner, "--config", path); !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		runner, output := newTestRunner(t, "")
		runner.configPath = path

		if err := run(runner, "setup", "config"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, path)
		if !strings.Contains(output.String(), path) {
			t.Errorf("expected path in output, got %q", output.String())
		}

		if err := run(runner, "setup", "config"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument on existing file, got %v", err)
		}
	})

	t.Run("database then rollback", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(runner, "setup", "database"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tu.AssertFileExists(t, runner.config.Database.Path)
		if !strings.Contains(output.String(), "Database ready") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(runner, "setup", "rollback"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Rolled back") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("import then history", func(t *testing.T) {
		runner, output := newTestRunner(t, "")
		path := tu.MustWriteFile(t, t.TempDir(), "songs.csv", songsCSV)

		if err := run(runner, "catalog", "import", "--csv", path); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if !strings.Contains(output.String(), "Rows: 4") {
			t.Errorf("expected row count in output, got %q", output.String())
		}

		output.Reset()
		if err := run(runner, "catalog", "history"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		if !strings.Contains(output.String(), "songs.csv (4 rows)") {
			t.Errorf("expected import listed, got %q", output.String())
		}

		output.Reset()
		if err := run(runner, "catalog", "history", "--json"); err != nil {
			t.Fatalf("history failed: %v", err)
		}
		var records []map[string]any
		if err := json.Unmarshal(output.Bytes(), &records); err != nil {
			t.Fatalf("expected JSON output: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 record, got %d", len(records))
		}
	})

	t.Run("history when empty", func(t *testing.T) {
		runner, output := newTestRunner(t, "")

		if err := run(runner, "catalog", "history"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "No imports yet") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("import missing file", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		err := run(runner, "catalog", "import", "--csv", filepath.Join(t.TempDir(), "missing.csv"))
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestDashCommands(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "dash", "show"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		for _, want := range []string{"Top artists (catalog counts)", "Alpha", "4 matching tracks", "Alpha - Song A", "Minutes: 3.33"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output:\n%s", want, result)
			}
		}
	})

	t.Run("show filtered", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "dash", "show", "--genre", "rock", "--artist", "ALPHA", "--local"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "2 matching tracks") {
			t.Errorf("expected case-insensitive match on both filters:\n%s", result)
		}
		if strings.Contains(result, "Beta - Song B") {
			t.Error("expected Beta filtered out")
		}
		if !strings.Contains(result, "snapshot counts") {
			t.Error("expected local counts")
		}
	})

	t.Run("show json", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "dash", "show", "--json", "--top", "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var dash struct {
			SnapshotID string `json:"snapshot_id"`
			TopArtists []struct {
				Label string  `json:"label"`
				Count float64 `json:"count"`
			} `json:"top_artists"`
			View struct {
				TotalMatched int `json:"total_matched"`
			} `json:"view"`
		}
		if err := json.Unmarshal(output.Bytes(), &dash); err != nil {
			t.Fatalf("expected JSON only on stdout: %v\n%s", err, output.String())
		}
		if dash.SnapshotID == "" {
			t.Error("expected a snapshot id")
		}
		if len(dash.TopArtists) != 1 || dash.TopArtists[0].Label != "Alpha" || dash.TopArtists[0].Count != 2 {
			t.Errorf("unexpected top artists %+v", dash.TopArtists)
		}
		if dash.View.TotalMatched != 4 {
			t.Errorf("expected 4 matches, got %d", dash.View.TotalMatched)
		}
	})

	t.Run("show negative top", func(t *testing.T) {
		runner, _ := newTestRunner(t, "http://127.0.0.1:1")

		if err := run(runner, "dash", "show", "--top=-1"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("show when catalog unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		runner, _ := newTestRunner(t, srv.URL)

		if err := run(runner, "dash", "show"); !errors.Is(err, shared.ErrNotReady) {
			t.Errorf("expected ErrNotReady, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		runner, output := dashRunner(t)
		path := filepath.Join(t.TempDir(), "rock.md")

		if err := run(runner, "dash", "export", "--format", "md", "--genre", "Rock", "--output", path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content := tu.MustReadFile(t, path)
		for _, want := range []string{"# Tracks", "genre=Rock", "Song A", "Song C"} {
			if !strings.Contains(content, want) {
				t.Errorf("expected %q in export:\n%s", want, content)
			}
		}
		if strings.Contains(content, "Song B") {
			t.Error("expected Pop track excluded")
		}
		if !strings.Contains(output.String(), "Exported 2 of 2") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("export invalid format", func(t *testing.T) {
		runner, _ := newTestRunner(t, "http://127.0.0.1:1")

		if err := run(runner, "dash", "export", "--format", "pdf"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("get", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "api", "get", "api/top-artists"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		result := output.String()
		alpha := strings.Index(result, `"Alpha": 2`)
		beta := strings.Index(result, `"Beta": 1`)
		if alpha < 0 || beta < 0 || alpha > beta {
			t.Errorf("expected indented body with key order kept:\n%s", result)
		}
	})

	t.Run("get compact", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "api", "get", "--pretty=false", "/api/meta"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasPrefix(output.String(), `{"columns":[`) {
			t.Errorf("expected raw body, got %q", output.String())
		}
	})

	t.Run("get missing path", func(t *testing.T) {
		runner, _ := newTestRunner(t, "")

		if err := run(runner, "api", "get"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("get unknown route", func(t *testing.T) {
		runner, _ := dashRunner(t)

		if err := run(runner, "api", "get", "/api/nope"); !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("health", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "api", "health"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Rows: 4") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("correlation", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "api", "correlation"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(output.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header and two rows, got:\n%s", output.String())
		}
		if !strings.HasPrefix(lines[1], "popularity") || !strings.HasPrefix(lines[2], "duration_ms") {
			t.Errorf("expected rows in column order, got %q", lines)
		}
		if !strings.Contains(lines[1], " 1") {
			t.Errorf("expected unit diagonal, got %q", lines[1])
		}
	})

	t.Run("correlation json", func(t *testing.T) {
		runner, output := dashRunner(t)

		if err := run(runner, "api", "correlation", "--json"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var corr map[string]map[string]*float64
		if err := json.Unmarshal(output.Bytes(), &corr); err != nil {
			t.Fatalf("expected JSON: %v", err)
		}
		if v := corr["popularity"]["popularity"]; v == nil || *v != 1 {
			t.Errorf("expected unit diagonal, got %v", v)
		}
	})
}
