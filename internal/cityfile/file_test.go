package cityfile

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/sc2k/internal/logger"
	"github.com/samcharles93/sc2k/pkg/sc2"
)

const utopiaPath = "../../testdata/Utopia.sc2"

func TestLoadLogsReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithContext(context.Background(), logger.Text(&buf, slog.LevelDebug))
	f, err := Load(ctx, utopiaPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.City.Name != "Utopia" {
		t.Fatalf("name: got %q want Utopia", f.City.Name)
	}
	st, _ := os.Stat(utopiaPath)
	if f.Size != st.Size() {
		t.Fatalf("size: got %d want %d", f.Size, st.Size())
	}
	out := buf.String()
	if !strings.Contains(out, "tag=XCRM") || !strings.Contains(out, "tiles=4096") {
		t.Fatalf("partial layer not logged: %s", out)
	}
	if !strings.Contains(out, "decoded save") {
		t.Fatalf("debug record missing: %s", out)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.sc2"))
	if !errors.Is(err, sc2.ErrIO) {
		t.Fatalf("got err %v want ErrIO", err)
	}
}

func TestLoadAllKeepsOrder(t *testing.T) {
	t.Parallel()

	bad := filepath.Join(t.TempDir(), "bad.sc2")
	if err := os.WriteFile(bad, []byte("FORM"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx := logger.WithContext(context.Background(), logger.Discard())
	paths := []string{utopiaPath, bad, utopiaPath}
	files, err := LoadAll(ctx, paths, 2)
	if !errors.Is(err, sc2.ErrTruncatedChunk) {
		t.Fatalf("got err %v want ErrTruncatedChunk", err)
	}
	if files[0] == nil || files[2] == nil || files[1] != nil {
		t.Fatalf("results out of place: %v", files)
	}
	if files[0].City == files[2].City {
		t.Fatalf("each path should decode its own city")
	}
}

func TestLoadAllCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadAll(ctx, []string{utopiaPath, utopiaPath}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got err %v want context.Canceled", err)
	}
}

func TestConvertPreserve(t *testing.T) {
	t.Parallel()

	ctx := logger.WithContext(context.Background(), logger.Discard())
	dst := filepath.Join(t.TempDir(), "copy.sc2")
	size, err := Convert(ctx, utopiaPath, dst, sc2.ModePreserve)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	want, _ := os.ReadFile(utopiaPath)
	got, _ := os.ReadFile(dst)
	if size != int64(len(want)) || !bytes.Equal(got, want) {
		t.Fatalf("preserve copy differs: size %d want %d", size, len(want))
	}
}

func TestConvertRecompressDecodes(t *testing.T) {
	t.Parallel()

	ctx := logger.WithContext(context.Background(), logger.Discard())
	dst := filepath.Join(t.TempDir(), "re.sc2")
	if _, err := Convert(ctx, utopiaPath, dst, sc2.ModeRecompress); err != nil {
		t.Fatalf("convert: %v", err)
	}
	f, err := Load(ctx, dst)
	if err != nil {
		t.Fatalf("load converted: %v", err)
	}
	if f.City.Stats.YearFounded != 1900 {
		t.Fatalf("year founded: got %d want 1900", f.City.Stats.YearFounded)
	}
}
