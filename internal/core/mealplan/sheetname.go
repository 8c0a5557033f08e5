package mealplan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxSheetNameLength 試算表工作表名稱長度上限（字元數）
const MaxSheetNameLength = 31

const forbiddenSheetChars = `:\/?*[]`

// ValidateSheetName 檢查日期標籤能否原樣作為工作表名稱
func ValidateSheetName(name string) error {
	switch {
	case name == "":
		return &InvalidSheetNameError{Name: name, Reason: "sheet name must not be empty"}
	case utf8.RuneCountInString(name) > MaxSheetNameLength:
		return &InvalidSheetNameError{Name: name, Reason: "sheet name exceeds 31 characters"}
	case strings.ContainsAny(name, forbiddenSheetChars):
		return &InvalidSheetNameError{Name: name, Reason: `sheet name must not contain : \ / ? * [ ]`}
	case strings.IndexFunc(name, unicode.IsControl) >= 0:
		return &InvalidSheetNameError{Name: name, Reason: "sheet name must not contain control characters"}
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return &InvalidSheetNameError{Name: name, Reason: "sheet name must not start or end with an apostrophe"}
	}
	return nil
}

// sheetKey 試算表比對工作表名稱時不分大小寫，再以 NFC 正規化避免組合字元造成的重複
func sheetKey(name string) string {
	return cases.Fold().String(norm.NFC.String(name))
}

// sheetNames 依序驗證所有日期標籤並拒絕會合併成同一工作表的標籤
func sheetNames(days []Day) ([]string, error) {
	names := make([]string, 0, len(days))
	seen := make(map[string]string, len(days))
	for _, d := range days {
		if err := ValidateSheetName(d.Label); err != nil {
			return nil, err
		}
		key := sheetKey(d.Label)
		if prev, ok := seen[key]; ok {
			return nil, &InvalidSheetNameError{
				Name:   d.Label,
				Reason: "collides with day " + `"` + prev + `"`,
			}
		}
		seen[key] = d.Label
		names = append(names, d.Label)
	}
	return names, nil
}
