package ffmpeg

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/muxsplit/internal/job"
)

func TestBuildSegment_WithMap(t *testing.T) {
	got := BuildSegment(SegmentArgs{
		Input:      "/media/movie.mkv",
		Output:     "/out/movie.part001.mkv",
		Start:      94,
		SizeLimit:  1_995_000_000,
		MapStreams: true,
	})
	want := []string{
		"ffmpeg", "-hide_banner", "-nostdin", "-y", "-loglevel", "error",
		"-ss", "94", "-i", "/media/movie.mkv",
		"-fs", "1995000000", "-map", "0",
		"-map_chapters", "-1", "-async", "1", "-strict", "-2", "-c", "copy",
		"/out/movie.part001.mkv",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSegment mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildSegment_WithoutMap(t *testing.T) {
	got := BuildSegment(SegmentArgs{
		Bin:       "/opt/ffmpeg",
		Input:     "in.mp4",
		Output:    "out.mp4",
		Start:     12.5,
		SizeLimit: 100,
		Verbose:   true,
	})
	assert.Equal(t, "/opt/ffmpeg", got[0])
	assert.NotContains(t, got, "-map")
	assert.Contains(t, got, "12.5")
	assert.Contains(t, got, "info")
}

func TestBuildSegment_FreshSlicePerCall(t *testing.T) {
	a := SegmentArgs{Input: "in", Output: "out", SizeLimit: 1, MapStreams: true}
	first := BuildSegment(a)
	a.MapStreams = false
	second := BuildSegment(a)
	assert.Contains(t, first, "-map")
	assert.NotContains(t, second, "-map")
}

func TestBuildSplit(t *testing.T) {
	got := BuildSplit(SplitArgs{Input: "/data/a.bin", Prefix: "/out/a.bin.", Bytes: 2_000_000_000})
	want := []string{
		"split", "--numeric-suffixes=1", "--suffix-length=3", "--bytes=2000000000",
		"/data/a.bin", "/out/a.bin.",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildSplit mismatch (-want +got):\n%s", diff)
	}
}

func TestRetryState_DropMapOnce(t *testing.T) {
	s := NewRetryState(true, 8)
	assert.Equal(t, RetryDropMap, s.OnToolFailure())
	assert.False(t, s.MapStreams)
	assert.True(t, s.MapDropped())
	assert.Equal(t, RetryNone, s.OnToolFailure())
}

func TestRetryState_NoMapNoFallback(t *testing.T) {
	s := NewRetryState(false, 8)
	assert.Equal(t, RetryNone, s.OnToolFailure())
	assert.False(t, s.MapDropped())
}

func TestRetryState_ShrinkBounded(t *testing.T) {
	s := NewRetryState(false, 2)
	assert.Equal(t, RetryShrink, s.OnOversize())
	assert.Equal(t, RetryShrink, s.OnOversize())
	assert.Equal(t, RetryNone, s.OnOversize())

	s.Accept()
	assert.Equal(t, RetryShrink, s.OnOversize())
}

func TestRetryActionString(t *testing.T) {
	assert.Equal(t, "drop-map", RetryDropMap.String())
	assert.Equal(t, "shrink", RetryShrink.String())
	assert.Equal(t, "none", RetryNone.String())
}

func TestMatchMappingIssue(t *testing.T) {
	assert.True(t, MatchMappingIssue("[mp4 @ 0x1] Could not find tag for codec ass in stream #2, codec not currently supported in container"))
	assert.True(t, MatchMappingIssue("Attachment stream 5 has no filename tag"))
	assert.False(t, MatchMappingIssue("movie.mkv: Invalid data found when processing input"))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "last", LastLine("first\nsecond\n  last  \n\n"))
	assert.Equal(t, "only", LastLine("only"))
	assert.Equal(t, "", LastLine(""))
}

func requirePOSIX(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestExecRunner_Success(t *testing.T) {
	requirePOSIX(t)
	res := ExecRunner{}.Run(context.Background(), job.NewToken(), []string{"sh", "-c", "echo oops >&2"})
	assert.True(t, res.OK())
	assert.Equal(t, "oops\n", res.Stderr)
}

func TestExecRunner_Failure(t *testing.T) {
	requirePOSIX(t)
	res := ExecRunner{}.Run(context.Background(), job.NewToken(), []string{"sh", "-c", "echo bad >&2; exit 3"})
	require.Error(t, res.Err)
	assert.False(t, res.Killed)
	assert.Equal(t, "bad", LastLine(res.Stderr))
}

func TestExecRunner_CancelledBeforeSpawn(t *testing.T) {
	tok := job.NewToken()
	tok.Cancel()
	res := ExecRunner{}.Run(context.Background(), tok, []string{"definitely-not-a-binary"})
	assert.True(t, res.Killed)
	assert.ErrorIs(t, res.Err, ErrCancelled)
}

func TestExecRunner_CancelMidFlight(t *testing.T) {
	requirePOSIX(t)
	tok := job.NewToken()
	go func() {
		time.Sleep(100 * time.Millisecond)
		tok.Cancel()
	}()
	res := ExecRunner{}.Run(context.Background(), tok, []string{"sleep", "30"})
	assert.True(t, res.Killed)
	assert.True(t, IsKilled(res.Err))
}

func TestExecRunner_EmptyCommand(t *testing.T) {
	res := ExecRunner{}.Run(context.Background(), job.NewToken(), nil)
	require.Error(t, res.Err)
}

func TestIsKilled(t *testing.T) {
	requirePOSIX(t)
	err := exec.Command("sh", "-c", "exit 1").Run()
	assert.False(t, IsKilled(err))
	assert.False(t, IsKilled(nil))
	assert.True(t, IsKilled(ErrCancelled))
}
