package mealplan

import (
	"errors"
	"fmt"
)

// MalformedInputError 必要欄位缺少或型別錯誤
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input at %s: %s", e.Field, e.Reason)
}

func newMalformed(field, format string, args ...interface{}) *MalformedInputError {
	return &MalformedInputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidSheetNameError 日期標籤無法作為工作表名稱
type InvalidSheetNameError struct {
	Name   string
	Reason string
	Err    error
}

func (e *InvalidSheetNameError) Error() string {
	return fmt.Sprintf("invalid sheet name %q: %s", e.Name, e.Reason)
}

func (e *InvalidSheetNameError) Unwrap() error {
	return e.Err
}

// IsClientError 判斷錯誤是否源自輸入內容
func IsClientError(err error) bool {
	var malformed *MalformedInputError
	var sheetName *InvalidSheetNameError
	return errors.As(err, &malformed) || errors.As(err, &sheetName)
}
