package extract

import "strings"

// Known benchmark names with their common spelling variants. Claim parsing
// only accepts benchmarks from this set so prose mentioning arbitrary
// capitalized words does not produce structured claims.
var benchmarkAliases = map[string]string{
	"mmlu":         "MMLU",
	"mmlu-pro":     "MMLU-Pro",
	"humaneval":    "HumanEval",
	"human-eval":   "HumanEval",
	"human eval":   "HumanEval",
	"gsm8k":        "GSM8K",
	"gsm-8k":       "GSM8K",
	"arc-agi":      "ARC-AGI",
	"arc agi":      "ARC-AGI",
	"arc-agi-2":    "ARC-AGI-2",
	"gpqa":         "GPQA",
	"swe-bench":    "SWE-bench",
	"swebench":     "SWE-bench",
	"math-500":     "MATH-500",
	"aime":         "AIME",
	"hellaswag":    "HellaSwag",
	"big-bench":    "BIG-bench",
	"bigbench":     "BIG-bench",
	"truthfulqa":   "TruthfulQA",
	"frontiermath": "FrontierMath",
	"hle":          "HLE",
}

// General-reasoning benchmark families weigh more in the heuristic scorer:
// progress there is a stronger capability signal than narrow task benchmarks.
var generalReasoningBenchmarks = map[string]bool{
	"ARC-AGI":      true,
	"ARC-AGI-2":    true,
	"FrontierMath": true,
	"HLE":          true,
}

// FindBenchmark scans text for a known benchmark name and returns its
// normalized form, or "" when none is present. Longer aliases are tried
// first so "mmlu-pro" does not match as "mmlu".
func FindBenchmark(text string) string {
	lower := strings.ToLower(text)

	best := ""
	bestLen := 0
	for alias, canonical := range benchmarkAliases {
		if idx := strings.Index(lower, alias); idx >= 0 {
			if !wordBoundary(lower, idx, len(alias)) {
				continue
			}
			if len(alias) > bestLen {
				best = canonical
				bestLen = len(alias)
			}
		}
	}
	return best
}

// IsGeneralReasoning reports whether a normalized benchmark name belongs to
// the general-reasoning family
func IsGeneralReasoning(benchmark string) bool {
	return generalReasoningBenchmarks[benchmark]
}

// wordBoundary checks that the match at idx is not embedded in a larger word
func wordBoundary(s string, idx, length int) bool {
	if idx > 0 && isAlnum(s[idx-1]) {
		return false
	}
	end := idx + length
	if end < len(s) && isAlnum(s[end]) {
		return false
	}
	return true
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
