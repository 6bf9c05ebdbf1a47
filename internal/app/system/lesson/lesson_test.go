package lesson_test

import (
	"slices"
	"testing"

	"github.com/dalemusser/studydesk/internal/app/system/lesson"
)

func TestBlocks(t *testing.T) {
	text := "Introduction\n" +
		"The Renaissance began in Italy. It spread north.\n" +
		"\n" +
		"   \n" +
		"Key figures:\n" +
		"• Leonardo da Vinci\n" +
		"  •  Michelangelo  \n" +
		"Summary.\n"

	want := []lesson.Block{
		{Kind: lesson.Subheading, Text: "Introduction"},
		{Kind: lesson.Paragraph, Text: "The Renaissance began in Italy. It spread north."},
		{Kind: lesson.Subheading, Text: "Key figures:"},
		{Kind: lesson.ListItem, Text: "Leonardo da Vinci"},
		{Kind: lesson.ListItem, Text: "Michelangelo"},
		{Kind: lesson.Paragraph, Text: "Summary."},
	}

	got := slices.Collect(lesson.Blocks(text))
	if !slices.Equal(got, want) {
		t.Fatalf("Blocks mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestBlocks_StopsEarly(t *testing.T) {
	n := 0
	for range lesson.Blocks("one\ntwo\nthree") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("expected to stop after 2 blocks, got %d", n)
	}
}

func TestBlocks_StripsMarkup(t *testing.T) {
	got := slices.Collect(lesson.Blocks("<h1>Overview</h1>\n<script>x()</script>Body text here."))
	want := []lesson.Block{
		{Kind: lesson.Subheading, Text: "Overview"},
		{Kind: lesson.Paragraph, Text: "Body text here."},
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestClassify_ColonWinsOverPeriod(t *testing.T) {
	b, ok := lesson.Classify("See section 2.1:")
	if !ok || b.Kind != lesson.Subheading {
		t.Errorf("got %+v ok=%v, want subheading", b, ok)
	}
}
