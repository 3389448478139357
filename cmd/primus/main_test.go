package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/primus/internal/agents"
	"github.com/fyrsmithlabs/primus/internal/config"
	"github.com/fyrsmithlabs/primus/internal/logging"
	"github.com/fyrsmithlabs/primus/internal/secrets"
)

const testOpenAIKey = "sk-test-0123456789abcdefghij"

// fakeClient answers every request with reply and records prompts.
type fakeClient struct {
	mu      sync.Mutex
	reply   string
	prompts []string
}

func (f *fakeClient) Complete(_ context.Context, req agents.Request) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	return f.reply, nil
}

type testEnv struct {
	home   string
	client *fakeClient
}

// newTestEnv isolates HOME and the LLM key variables.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "PRIMUS_DEFAULT_MODEL", "PRIMUS_MAX_CONCURRENT", "PRIMUS_TIMEOUT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return &testEnv{home: home, client: &fakeClient{}}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := e.runApp(t, args...)
	return out, err
}

func (e *testEnv) runApp(t *testing.T, args ...string) (string, *app, error) {
	t.Helper()
	a := &app{
		newClient: func(*config.Settings, secrets.Scrubber, *logging.Logger) (agents.Client, error) {
			return e.client, nil
		},
	}
	root := a.rootCmd()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.home, "config.yaml"),
		"--env-file", filepath.Join(e.home, ".env"),
	}, args...))

	err := a.execute(context.Background(), root)
	return out.String(), a, err
}

func TestVersionCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
	assert.Contains(t, out, version)
}

func TestScanCmd_TextJSON(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "scan", "Manual process: invoice export to the ledger. Nothing else.", "--json")
	require.NoError(t, err)

	var got struct {
		RunID  string   `json:"run_id"`
		Tasks  []string `json:"tasks"`
		Blocks int      `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RunID)
	assert.Equal(t, []string{"invoice export to the ledger"}, got.Tasks)
	assert.Equal(t, 1, got.Blocks)
}

func TestScanCmd_Directory(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"),
		[]byte("Human intervention: approve refunds over 500\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "manual.pdf"), []byte("%PDF-1.4"), 0644))

	out, err := env.run(t, "scan", dir, "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Manual tasks")
	assert.Contains(t, out, "approve refunds over 500")
	assert.Contains(t, out, "human_intervention")
	assert.Contains(t, out, "manual.pdf")
}

func TestScanCmd_NoTasks(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "scan", "everything here is automated")
	require.NoError(t, err)
	assert.Contains(t, out, "No manual tasks found.")
}

func TestScanCmd_Analyze(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", testOpenAIKey)
	env.client.reply = `{"complexity":"Medium"}`

	out, err := env.run(t, "scan", "Repetitive task: merge weekly CSV exports", "--analyze", "--json")
	require.NoError(t, err)

	var got struct {
		Tasks    []string         `json:"tasks"`
		Analyses []*agents.Report `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Analyses, 1)
	assert.Equal(t, "merge weekly CSV exports", got.Analyses[0].Subject)
	assert.Equal(t, "Medium", got.Analyses[0].Data["complexity"])
}

func TestAgentCmds_NotConfigured(t *testing.T) {
	for _, args := range [][]string{
		{"analyze", "weekly report"},
		{"generate", "weekly report"},
		{"optimize", "step one"},
		{"scan", "Manual task: weekly report", "--analyze"},
	} {
		t.Run(args[0], func(t *testing.T) {
			env := newTestEnv(t)
			_, err := env.run(t, args...)
			assert.ErrorIs(t, err, config.ErrNotConfigured)
			assert.Empty(t, env.client.prompts)
		})
	}
}

func TestAnalyzeCmd(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", testOpenAIKey)
	env.client.reply = "```json\n{\"complexity\":\"Low\",\"technologies\":[\"python\"]}\n```"

	out, err := env.run(t, "analyze", "Copy", "totals", "into", "the", "sheet")
	require.NoError(t, err)
	assert.Contains(t, out, "Task analysis")
	assert.Contains(t, out, "Complexity: Low")
	assert.Contains(t, out, "  - python")

	require.Len(t, env.client.prompts, 1)
	assert.Contains(t, env.client.prompts[0], "Copy totals into the sheet")
}

func TestGenerateCmd_Output(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", testOpenAIKey)
	env.client.reply = "```python\nprint('renamed')\n```"

	target := filepath.Join(t.TempDir(), "rename.py")
	out, err := env.run(t, "generate", "rename invoices", "--output", target)
	require.NoError(t, err)
	assert.Contains(t, out, "automation written to")

	code, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "print('renamed')\n", string(code))
}

func TestOptimizeCmd(t *testing.T) {
	t.Run("no steps", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("OPENAI_API_KEY", testOpenAIKey)
		_, err := env.run(t, "optimize")
		assert.ErrorIs(t, err, errNoInput)
	})

	t.Run("steps from file", func(t *testing.T) {
		env := newTestEnv(t)
		t.Setenv("OPENAI_API_KEY", testOpenAIKey)
		env.client.reply = "Batch the uploads."

		file := filepath.Join(t.TempDir(), "steps.txt")
		require.NoError(t, os.WriteFile(file, []byte("Download CSV\n\nUpload to CRM\n"), 0644))

		out, err := env.run(t, "optimize", "--file", file)
		require.NoError(t, err)
		assert.Contains(t, out, "Batch the uploads.")
		require.Len(t, env.client.prompts, 1)
		assert.Contains(t, env.client.prompts[0], "1. Download CSV")
		assert.Contains(t, env.client.prompts[0], "2. Upload to CRM")
	})
}

func TestRecommendCmd(t *testing.T) {
	env := newTestEnv(t)
	out, err := env.run(t, "recommend", "--text", "Managers approve expense reports by email")
	require.NoError(t, err)
	assert.Contains(t, out, "automated email processing")
	assert.Contains(t, out, "Generate reports automatically")

	_, err = env.run(t, "recommend")
	assert.ErrorIs(t, err, errNoInput)
}

func TestInitCmd(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(t.TempDir(), "invoices")

	out, err := env.run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `project "invoices" ready`)
	assert.FileExists(t, filepath.Join(dir, "README.md"))
	assert.FileExists(t, filepath.Join(dir, ".primus", "project.yaml"))

	out, err = env.run(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "kept")
}

func TestConfigCmds(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("OPENAI_API_KEY", testOpenAIKey)

	t.Run("show masks keys", func(t *testing.T) {
		out, err := env.run(t, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "sk-...ghij")
		assert.NotContains(t, out, testOpenAIKey)
	})

	t.Run("validate", func(t *testing.T) {
		out, err := env.run(t, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "openai API key looks valid")
	})

	t.Run("save writes env file", func(t *testing.T) {
		_, err := env.run(t, "config", "save")
		require.NoError(t, err)

		path := filepath.Join(env.home, ".env")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "OPENAI_API_KEY="+testOpenAIKey)

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("export masks keys", func(t *testing.T) {
		for _, name := range []string{"settings.yaml", "settings.json", "settings.toml"} {
			path := filepath.Join(t.TempDir(), name)
			_, err := env.run(t, "config", "export", path)
			require.NoError(t, err, name)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotContains(t, string(data), testOpenAIKey, name)
			assert.True(t, strings.Contains(string(data), "gpt-4"), name)
		}
	})
}

func TestConfigValidate_NotConfigured(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, "config", "validate")
	assert.ErrorIs(t, err, config.ErrNotConfigured)
}

func TestExecute_ClosesLoggerOnFailure(t *testing.T) {
	env := newTestEnv(t)
	logFile := filepath.Join(t.TempDir(), "primus.log")
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "config.yaml"),
		[]byte("logging:\n  file: "+logFile+"\n"), 0600))

	_, a, err := env.runApp(t, "analyze", "weekly report")
	require.ErrorIs(t, err, config.ErrNotConfigured)
	require.NotNil(t, a.logger)
	assert.FileExists(t, logFile)

	// A second close only fails if the file was already released.
	assert.ErrorIs(t, a.logger.Close(), os.ErrClosed)
}
