package translate

import (
	"context"
	"errors"
	"testing"
)

func TestNonEnglishRatio(t *testing.T) {
	cases := []struct {
		name string
		text string
		min  float64
		max  float64
	}{
		{"english", "The model scored 87.5% on MMLU.", 0, 0},
		{"empty", "", 0, 0},
		{"numbers only", "87.5% 92 1024", 0, 0},
		{"japanese", "数理推論ベンチマークで大幅な改善を報告", 0.99, 1},
		{"mixed", "新モデル scored 90% on MMLU benchmark evaluation suite", 0.01, 0.5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NonEnglishRatio(tc.text)
			if got < tc.min || got > tc.max {
				t.Errorf("NonEnglishRatio(%q) = %v, want in [%v, %v]", tc.text, got, tc.min, tc.max)
			}
		})
	}
}

type fakeTranslator struct {
	out []string
	err error
}

func (f *fakeTranslator) Translate(_ context.Context, texts []string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out != nil {
		return f.out, nil
	}
	translated := make([]string, len(texts))
	for i := range texts {
		translated[i] = "EN:" + texts[i]
	}
	return translated, nil
}

func TestIfNonEnglishPassThrough(t *testing.T) {
	ctx := context.Background()

	// English content never reaches the translator
	res, err := IfNonEnglish(ctx, &fakeTranslator{}, "Model release", []string{"scored 90% on MMLU"}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Translated || res.Title != "Model release" {
		t.Errorf("english input should pass through, got %+v", res)
	}

	// Nil translator passes through regardless of language
	res, err = IfNonEnglish(ctx, nil, "数理推論の進展", nil, 0.5)
	if err != nil || res.Translated {
		t.Errorf("nil translator should pass through, got %+v err=%v", res, err)
	}
}

func TestIfNonEnglishTranslates(t *testing.T) {
	ctx := context.Background()

	res, err := IfNonEnglish(ctx, &fakeTranslator{}, "数理推論の進展", []string{"MMLUで87.5%を達成"}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Translated {
		t.Fatal("expected translation")
	}
	if res.Title != "EN:数理推論の進展" || len(res.Snippets) != 1 || res.Snippets[0] != "EN:MMLUで87.5%を達成" {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestIfNonEnglishErrorFallsBack(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("api down")

	res, err := IfNonEnglish(ctx, &fakeTranslator{err: wantErr}, "数理推論の進展", []string{"概要"}, 0.5)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected api error, got %v", err)
	}
	if res.Title != "数理推論の進展" || res.Translated {
		t.Errorf("error should keep originals, got %+v", res)
	}

	// Mismatched line count keeps originals without an error
	res, err = IfNonEnglish(ctx, &fakeTranslator{out: []string{"only one"}}, "数理推論の進展", []string{"概要"}, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Translated {
		t.Errorf("mismatched output should keep originals, got %+v", res)
	}
}

func TestParseNumberedLines(t *testing.T) {
	content := "1. First translated line\n\n2. Second line\n3. Third"
	got := parseNumberedLines(content)
	if len(got) != 3 || got[0] != "First translated line" || got[2] != "Third" {
		t.Errorf("parseNumberedLines = %v", got)
	}
}
