package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pageza/recipepdf/internal/types"
)

// displayResult prints a human readable summary of an extraction
func displayResult(w io.Writer, result *types.ExtractionResult) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\n=== レシピ抽出結果 ===\n%s\n", rule, rule)

	if result.Recipe != nil {
		fmt.Fprintf(w, "\nレシピ名: %s\n", result.Recipe.Name)
		fmt.Fprintf(w, "材料数: %d個\n", len(result.Recipe.Ingredients))
		fmt.Fprintln(w, "\n材料リスト:")
		for i, ing := range result.Recipe.Ingredients {
			fmt.Fprintf(w, "  %2d. %s - %s%s\n", i+1, ing.Name, formatNumber(ing.Quantity), ing.Unit)
		}
	} else {
		fmt.Fprintln(w, "\nレシピ情報の抽出に失敗しました")
	}

	if result.TotalMinutes != nil {
		fmt.Fprintf(w, "\n総調理時間: %s分\n", formatNumber(*result.TotalMinutes))
	} else {
		fmt.Fprintln(w, "\n調理時間情報なし")
	}

	fmt.Fprintf(w, "\n%s\n", rule)
}

// writeJSON prints v as indented JSON without escaping non-ASCII text
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
