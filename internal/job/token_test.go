package job

import (
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCancel(t *testing.T) {
	tok := NewToken()
	assert.False(t, tok.Cancelled())
	tok.Cancel()
	tok.Cancel()
	assert.True(t, tok.Cancelled())
}

func TestNilTokenIsSafe(t *testing.T) {
	var tok *Token
	assert.False(t, tok.Cancelled())
	tok.Cancel()
	tok.Attach(nil)
	tok.Detach()
}

func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires sleep(1)")
	}
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	return cmd
}

func waitExit(t *testing.T, cmd *exec.Cmd) error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		<-done
		t.Fatal("process was not killed")
		return nil
	}
}

func TestCancelKillsAttachedProcess(t *testing.T) {
	cmd := startSleeper(t)
	tok := NewToken()
	tok.Attach(cmd.Process)

	tok.Cancel()
	err := waitExit(t, cmd)
	require.Error(t, err)
	tok.Detach()
}

func TestAttachAfterCancelKills(t *testing.T) {
	tok := NewToken()
	tok.Cancel()

	cmd := startSleeper(t)
	tok.Attach(cmd.Process)
	require.Error(t, waitExit(t, cmd))
}

func TestNewJob(t *testing.T) {
	j := New("/media/movie.mkv", true, "/out")
	_, err := uuid.Parse(j.ID)
	require.NoError(t, err)
	assert.Equal(t, "/media/movie.mkv", j.Source)
	assert.True(t, j.Seed())
	assert.Equal(t, "/out", j.CustomDir())
	require.NotNil(t, j.Token())
	assert.False(t, j.Token().Cancelled())

	var _ Controller = j
}
