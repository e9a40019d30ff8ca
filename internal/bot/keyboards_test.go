package bot

import (
	"testing"

	"artbot/internal/providers/image"
)

func TestStylesKeyboardPairsRows(t *testing.T) {
	styles := []image.Style{
		{Title: "A", Name: "a"},
		{Title: "B", Name: "b"},
		{Title: "C", Name: "c"},
		{Title: "D", Name: "d"},
		{Title: "E", Name: "e"},
	}

	kb := stylesKeyboard(styles)
	if len(kb.Keyboard) != 3 {
		t.Fatalf("rows = %d, want 3", len(kb.Keyboard))
	}
	for i, row := range kb.Keyboard[:2] {
		if len(row) != 2 {
			t.Fatalf("row %d has %d buttons, want 2", i, len(row))
		}
	}
	last := kb.Keyboard[2]
	if len(last) != 1 || last[0].Text != "E" {
		t.Fatalf("trailing row = %v, want the single odd style", last)
	}
}

func TestStylesKeyboardEvenCount(t *testing.T) {
	styles := []image.Style{
		{Title: "A", Name: "a"},
		{Title: "B", Name: "b"},
	}

	kb := stylesKeyboard(styles)
	if len(kb.Keyboard) != 1 || len(kb.Keyboard[0]) != 2 {
		t.Fatalf("keyboard = %v, want one row of two", kb.Keyboard)
	}
}

func TestMainKeyboardButtons(t *testing.T) {
	kb := mainKeyboard(&textsEN)
	if len(kb.Keyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(kb.Keyboard))
	}
	if kb.Keyboard[0][0].Text != textsEN.ButtonStyle || kb.Keyboard[0][1].Text != textsEN.ButtonPrompt {
		t.Fatalf("first row = %v", kb.Keyboard[0])
	}
	if kb.Keyboard[1][0].Text != textsEN.ButtonHelp {
		t.Fatalf("second row = %v", kb.Keyboard[1])
	}
}
