package subtitle

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestOpenSRT(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:04,000\r\n<i>Hello, world!</i>\r\n\r\n" +
		"2\n00:00:05,500 --> 00:00:08,200\nThis is a test.\nWith multiple lines.\n\n" +
		"3\n00:00:10,000 --> 00:00:12,500\nFinal subtitle.\n"

	file, err := Open(writeFixture(t, "test.srt", content))
	if err != nil {
		t.Fatalf("failed to open SRT file: %v", err)
	}
	if file.Format() != FormatSRT {
		t.Errorf("expected format SRT, got %s", file.Format())
	}

	sub := file.Subtitle()
	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}
	if sub.Entries[0].StartTime != time.Second || sub.Entries[0].EndTime != 4*time.Second {
		t.Errorf("entry 0: got %v-%v", sub.Entries[0].StartTime, sub.Entries[0].EndTime)
	}
	if sub.Entries[0].Text != "<i>Hello, world!</i>" {
		t.Errorf("entry 0: markup should be kept, got %q", sub.Entries[0].Text)
	}
	if want := "This is a test.\nWith multiple lines."; sub.Entries[1].Text != want {
		t.Errorf("entry 1: expected %q, got %q", want, sub.Entries[1].Text)
	}

	if err := file.SetText(0, "Modified text"); err != nil {
		t.Errorf("SetText failed: %v", err)
	}
	if file.Subtitle().Entries[0].Text != "Modified text" {
		t.Errorf("SetText did not update text")
	}
	if err := file.SetText(5, "x"); err == nil {
		t.Error("expected out of range error")
	}
}

func TestParseSRTZeroStartCue(t *testing.T) {
	file, err := Parse(strings.NewReader("1\n00:00:00,000 --> 00:00:00,000\nflash\n"), FormatSRT, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if n := len(file.Subtitle().Entries); n != 1 {
		t.Fatalf("expected 1 entry, got %d", n)
	}
}

func TestParseSRTEmptyBlocks(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantTexts []string
		wantStart []time.Duration
	}{
		{
			name:      "empty block before a cue",
			content:   "1\n00:00:01,000 --> 00:00:02,000\n\n2\n00:00:03,000 --> 00:00:04,000\nSecond\n",
			wantTexts: []string{"Second"},
			wantStart: []time.Duration{3 * time.Second},
		},
		{
			name:      "empty block between cues",
			content:   "1\n00:00:01,000 --> 00:00:02,000\nFirst\n\n2\n00:00:03,000 --> 00:00:04,000\n\n3\n00:00:05,000 --> 00:00:06,000\nThird\n",
			wantTexts: []string{"First", "Third"},
			wantStart: []time.Duration{time.Second, 5 * time.Second},
		},
		{
			name:      "trailing empty block",
			content:   "1\n00:00:01,000 --> 00:00:02,000\nOnly\n\n2\n00:00:03,000 --> 00:00:04,000\n",
			wantTexts: []string{"Only"},
			wantStart: []time.Duration{time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse(strings.NewReader(tt.content), FormatSRT, Options{})
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			entries := file.Subtitle().Entries
			if len(entries) != len(tt.wantTexts) {
				t.Fatalf("expected %d entries, got %d: %+v", len(tt.wantTexts), len(entries), entries)
			}
			for i, e := range entries {
				if e.Text != tt.wantTexts[i] {
					t.Errorf("entry %d: text %q, want %q", i, e.Text, tt.wantTexts[i])
				}
				if e.StartTime != tt.wantStart[i] {
					t.Errorf("entry %d: start %v, want %v", i, e.StartTime, tt.wantStart[i])
				}
			}
		})
	}
}

func TestParseVTT(t *testing.T) {
	content := `WEBVTT
Kind: captions

NOTE this block is skipped
00:00:00.000 --> 00:00:01.000

STYLE
::cue { color: red }

1
00:00:01.000 --> 00:00:04.000
Hello, world!

intro
00:00:05.500 --> 00:00:08.200 align:start
This is a test.
With multiple lines.

00:10.000 --> 00:12.500
Short timestamps.
`
	file, err := Parse(strings.NewReader(content), FormatVTT, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	sub := file.Subtitle()
	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(sub.Entries), sub.Entries)
	}
	if sub.Entries[1].StartTime != 5500*time.Millisecond {
		t.Errorf("entry 1: expected start 5.5s, got %v", sub.Entries[1].StartTime)
	}
	if want := "This is a test.\nWith multiple lines."; sub.Entries[1].Text != want {
		t.Errorf("entry 1: expected %q, got %q", want, sub.Entries[1].Text)
	}
	if sub.Entries[2].StartTime != 10*time.Second || sub.Entries[2].Text != "Short timestamps." {
		t.Errorf("entry 2: got %+v", sub.Entries[2])
	}
}

const assFixture = `[Script Info]
Title: Test Subtitles
ScriptType: v4.00+
PlayResX: 1280
PlayResY: 720

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Default,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,0,0,0,100,100,0,0,1,2,2,2,10,10,10,1
Style: Italic,Arial,20,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,0,1,0,0,100,100,0,0,1,2,2,2,10,10,10,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Hello, world!
Dialogue: 0,0:00:05.50,0:00:08.20,Italic,,0,0,0,,{\pos(100,200)}Tagged text
Dialogue: 0,0:00:10.00,0:00:12.50,Default,,0,0,0,,Line with\Nnewline.
`

func TestParseASS(t *testing.T) {
	file, err := Open(writeFixture(t, "test.ass", assFixture))
	if err != nil {
		t.Fatalf("failed to open ASS file: %v", err)
	}

	ass, ok := file.(*ASSFile)
	if !ok {
		t.Fatalf("expected *ASSFile, got %T", file)
	}
	if w, h := ass.PlayRes(); w != 1280 || h != 720 {
		t.Errorf("PlayRes: got %dx%d", w, h)
	}

	sub := file.Subtitle()
	if len(sub.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(sub.Entries))
	}

	tests := []struct {
		start time.Duration
		end   time.Duration
		text  string
	}{
		{time.Second, 4 * time.Second, "Hello, world!"},
		{5500 * time.Millisecond, 8200 * time.Millisecond, `{\pos(100,200)}Tagged text`},
		{10 * time.Second, 12500 * time.Millisecond, `Line with\Nnewline.`},
	}
	for i, tt := range tests {
		e := sub.Entries[i]
		if e.StartTime != tt.start || e.EndTime != tt.end || e.Text != tt.text {
			t.Errorf("entry %d: got %v-%v %q, want %v-%v %q", i, e.StartTime, e.EndTime, e.Text, tt.start, tt.end, tt.text)
		}
	}
}

func TestASSFileRoundTripKeepsMetadata(t *testing.T) {
	file, err := Parse(strings.NewReader(assFixture), FormatASS, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	ass := file.(*ASSFile)

	if err := ass.SetText(0, "Translated\ntext"); err != nil {
		t.Fatalf("SetText failed: %v", err)
	}
	if err := ass.SetTextWithOverlay(1, "翻訳されたテキスト"); err != nil {
		t.Fatalf("SetTextWithOverlay failed: %v", err)
	}
	original, err := ass.GetOriginalText(1)
	if err != nil || original != "Tagged text" {
		t.Errorf("GetOriginalText: got %q, %v", original, err)
	}

	outPath := filepath.Join(t.TempDir(), "out", "output.ass")
	if err := ass.Write(outPath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	out, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	outStr := string(out)

	for _, want := range []string{
		"Style: Italic,Arial,20",
		"PlayResX: 1280",
		`Dialogue: 0,0:00:01.00,0:00:04.00,Default,,0,0,0,,Translated\Ntext`,
		`Dialogue: 0,0:00:05.50,0:00:08.20,Italic,,0,0,0,,{\pos(100,200)}翻訳されたテキスト\NTagged text`,
	} {
		if !strings.Contains(outStr, want) {
			t.Errorf("output missing %q:\n%s", want, outStr)
		}
	}
}

func TestParseASSMissingFormat(t *testing.T) {
	_, err := Parse(strings.NewReader("[Script Info]\nTitle: x\n\n[Events]\n"), FormatSSA, Options{})
	if err == nil {
		t.Fatal("expected error for missing Format line")
	}
}

func TestLeadingTags(t *testing.T) {
	tests := []struct {
		input string
		tags  string
	}{
		{"Hello world", ""},
		{`{\pos(100,200)}Hello world`, `{\pos(100,200)}`},
		{`{\an8}{\fs24}Hello world`, `{\an8}{\fs24}`},
		{`{\pos(100,200)}{\c&HFFFFFF&}Hello {\i1}world{\i0}`, `{\pos(100,200)}{\c&HFFFFFF&}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := leadingTagsRegex.FindString(tt.input); got != tt.tags {
				t.Errorf("tags: got %q, want %q", got, tt.tags)
			}
		})
	}
}

func TestParseMPL2(t *testing.T) {
	file, err := Parse(strings.NewReader("[10][25]Hello|/world\n\n[30][]Open end\n"), FormatMPL2, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	entries := file.Subtitle().Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].StartTime != time.Second || entries[0].EndTime != 2500*time.Millisecond {
		t.Errorf("entry 0 timing: %v-%v", entries[0].StartTime, entries[0].EndTime)
	}
	if entries[0].Text != "Hello\nworld" || !entries[0].Italic {
		t.Errorf("entry 0: got %q italic=%v", entries[0].Text, entries[0].Italic)
	}
	if entries[1].EndTime != 0 {
		t.Errorf("entry 1: open end should stay zero, got %v", entries[1].EndTime)
	}

	if _, err := Parse(strings.NewReader("garbage\n"), FormatMPL2, Options{}); err == nil {
		t.Error("expected error for invalid line")
	}
}

func TestParseTMP(t *testing.T) {
	file, err := Parse(strings.NewReader("00:00:01:First|line\n00:00:04:Second\n"), FormatTMP, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	entries := file.Subtitle().Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].EndTime != 4*time.Second {
		t.Errorf("entry 0 should end at the next start, got %v", entries[0].EndTime)
	}
	if entries[1].EndTime != 4*time.Second+tmpLastCueDuration {
		t.Errorf("entry 1 end: got %v", entries[1].EndTime)
	}
	if entries[0].Text != "First\nline" {
		t.Errorf("entry 0 text: %q", entries[0].Text)
	}
}

func TestParseMicroDVD(t *testing.T) {
	tests := []struct {
		name    string
		content string
		fps     float64
		wantErr error
		start   time.Duration
	}{
		{"header rate", "{1}{1}25\n{25}{50}{y:i}Hello|there\n", 0, nil, time.Second},
		{"option rate wins", "{1}{1}25\n{50}{100}Hello\n", 50, nil, time.Second},
		{"no rate", "{25}{50}Hello\n", 0, ErrFrameRateRequired, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Parse(strings.NewReader(tt.content), FormatMicroDVD, Options{FPS: tt.fps})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse error: %v", err)
			}
			entries := file.Subtitle().Entries
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].StartTime != tt.start {
				t.Errorf("start: got %v, want %v", entries[0].StartTime, tt.start)
			}
		})
	}

	file, _ := Parse(strings.NewReader("{1}{1}25\n{25}{50}{y:i}Hello|there\n"), FormatMicroDVD, Options{})
	e := file.Subtitle().Entries[0]
	if e.Text != "Hello\nthere" || !e.Italic || e.Bold {
		t.Errorf("control codes: got %+v", e)
	}
}

func TestParseLRC(t *testing.T) {
	content := `[ar:Someone]
[ti:Song]
[00:12.00]First line
[00:05.50][00:20.1]Chorus
[00:30]
`
	file, err := Parse(strings.NewReader(content), FormatLRC, Options{})
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	entries := file.Subtitle().Entries
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(entries), entries)
	}

	want := []struct {
		start time.Duration
		text  string
	}{
		{5500 * time.Millisecond, "Chorus"},
		{12 * time.Second, "First line"},
		{20100 * time.Millisecond, "Chorus"},
	}
	for i, w := range want {
		if entries[i].StartTime != w.start || entries[i].Text != w.text {
			t.Errorf("entry %d: got %v %q, want %v %q", i, entries[i].StartTime, entries[i].Text, w.start, w.text)
		}
	}
	if entries[0].EndTime != 12*time.Second {
		t.Errorf("entry 0 should end at the next line, got %v", entries[0].EndTime)
	}
}

func TestOpenTTML(t *testing.T) {
	content := "\ufeff<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n" +
		`<tt xmlns="http://www.w3.org/ns/ttml"><body><div>` +
		`<p begin="00:00:01.000" end="00:00:02.500">Bonjour</p>` +
		`</div></body></tt>`

	file, err := Open(writeFixture(t, "captions.dfxp", content))
	if err != nil {
		t.Fatalf("failed to open TTML file: %v", err)
	}
	if file.Format() != FormatTTML {
		t.Errorf("expected format TTML, got %s", file.Format())
	}
	entries := file.Subtitle().Entries
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Text != "Bonjour" || entries[0].StartTime != time.Second || entries[0].EndTime != 2500*time.Millisecond {
		t.Errorf("unexpected entry: %+v", entries[0])
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(writeFixture(t, "notes.docx", "x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("unknown extension: expected ErrUnsupportedFormat, got %v", err)
	}
	if _, err := Open(filepath.Join(dir, "missing.srt")); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("missing file: expected ErrInputNotFound, got %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "folder.srt"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(filepath.Join(dir, "folder.srt")); !errors.Is(err, ErrInputNotFound) {
		t.Errorf("directory: expected ErrInputNotFound, got %v", err)
	}
	if _, err := Open(writeFixture(t, "bad.srt", "1\n00:00:01,000 --> 00:00:02,000\n\xff\xfe\n")); !errors.Is(err, ErrEncoding) {
		t.Errorf("invalid utf-8: expected ErrEncoding, got %v", err)
	}
	badTTML := "<?xml version=\"1.0\"?><tt><body><div><p begin=\"00:00:01.000\" end=\"00:00:02.000\">\xff\xfe</p></div></body></tt>"
	if _, err := Open(writeFixture(t, "bad.ttml", badTTML)); !errors.Is(err, ErrEncoding) {
		t.Errorf("invalid utf-8 ttml: expected ErrEncoding, got %v", err)
	}
}

func TestFormatFromExtension(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"a.SRT", FormatSRT, true},
		{"a.ssa", FormatSSA, true},
		{"a.mpl", FormatMPL2, true},
		{"a.sub", FormatMicroDVD, true},
		{"a.dfxp", FormatTTML, true},
		{"a.stl", FormatSTL, true},
		{"a.txt", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromExtension(tt.path)
			if got != tt.want || ok != tt.ok {
				t.Errorf("got %q,%v want %q,%v", got, ok, tt.want, tt.ok)
			}
		})
	}
}
