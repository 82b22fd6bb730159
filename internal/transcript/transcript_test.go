package transcript

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rcliao/talkgraph/internal/model"
)

func TestLoad_ObjectAndArray(t *testing.T) {
	obj := `{"segments":[{"speaker":"A","start":0,"end":1.5,"text":"hello there"}]}`
	arr := `[{"speaker":"A","start":0,"end":1.5,"text":"hello there"}]`

	for name, doc := range map[string]string{"object": obj, "array": arr} {
		t.Run(name, func(t *testing.T) {
			segs, err := Load(strings.NewReader(doc))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(segs) != 1 {
				t.Fatalf("expected 1 segment, got %d", len(segs))
			}
			if segs[0].Speaker != "A" || segs[0].End != 1.5 {
				t.Errorf("unexpected segment %+v", segs[0])
			}
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"missing start", `[{"end":1,"text":"x"}]`, "start"},
		{"missing end", `[{"start":1,"text":"x"}]`, "end"},
		{"end before start", `[{"start":2,"end":1,"text":"x"}]`, "end"},
		{"not json", `{{`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			var merr *MalformedInputError
			if !errors.As(err, &merr) {
				t.Fatalf("expected *MalformedInputError, got %v", err)
			}
			if merr.Field != tt.field {
				t.Errorf("field = %q, want %q", merr.Field, tt.field)
			}
		})
	}
}

func TestLoad_EmptySegments(t *testing.T) {
	segs, err := Load(strings.NewReader(`{"segments":[]}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(segs) != 0 {
		t.Errorf("expected no segments, got %d", len(segs))
	}
}

func TestResolveSpeaker(t *testing.T) {
	tests := []struct {
		name string
		seg  RawSegment
		want string
	}{
		{"segment label", RawSegment{Speaker: "S1", Words: []Word{{Speaker: "S2"}}}, "S1"},
		{"word majority", RawSegment{Words: []Word{{Speaker: "S2"}, {Speaker: "S3"}, {Speaker: "S3"}}}, "S3"},
		{"tie keeps first seen", RawSegment{Words: []Word{{Speaker: "S4"}, {Speaker: "S5"}}}, "S4"},
		{"words without speakers", RawSegment{Words: []Word{{Word: "hi"}}}, model.UnknownSpeaker},
		{"nothing", RawSegment{}, model.UnknownSpeaker},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveSpeaker(tt.seg); got != tt.want {
				t.Errorf("ResolveSpeaker = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsFiller(t *testing.T) {
	tests := map[string]bool{
		"":          true,
		"   ":       true,
		".":         true,
		"...":       true,
		" . ":       true,
		"…":         true,
		"ok":        false,
		"...right":  false,
		"?":         false,
		"so. yeah.": false,
	}
	for text, want := range tests {
		if got := IsFiller(text); got != want {
			t.Errorf("IsFiller(%q) = %v, want %v", text, got, want)
		}
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  well.....  I   think\tso  ")
	want := "well... I think so"
	if got != want {
		t.Errorf("CleanText = %q, want %q", got, want)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.json")
	doc := `{"segments":[{"start":0,"end":1,"text":"...","words":[{"word":"um","speaker":"B"}]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	segs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if segs[0].Speaker != "B" {
		t.Errorf("speaker = %q, want B", segs[0].Speaker)
	}
	if !segs[0].Filler {
		t.Error("expected filler segment")
	}
}
