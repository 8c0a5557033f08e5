package mealplan

import (
	"fmt"

	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// ContentType xlsx MIME 類型
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// Filename 下載檔名
	Filename = "meal_plan.xlsx"

	// 摘要區塊底色
	summaryFill = "D9E1F2"
)

var (
	summaryHeader = []interface{}{"Metric", "Target", "Actual", "Difference"}
	mealHeader    = []interface{}{"Meal", "Ingredient", "Quantity", "Unit", "Protein (g)", "Calories"}
)

// Builder 將飲食計畫轉成試算表
type Builder struct{}

// NewBuilder 創建 Builder
func NewBuilder() *Builder {
	return &Builder{}
}

// BuildJSON 解析 JSON 請求後建立試算表
func (b *Builder) BuildJSON(body []byte) (*Artifact, error) {
	req, err := Decode(body)
	if err != nil {
		return nil, err
	}
	return b.Build(req)
}

// Build 每一天建立一張工作表，順序與輸入一致
func (b *Builder) Build(req *Request) (*Artifact, error) {
	if req == nil || len(req.Days) == 0 {
		return nil, newMalformed("days", "at least one day is required")
	}
	names, err := sheetNames(req.Days)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	summaryStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{summaryFill}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create summary style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create bold style: %w", err)
	}

	// 預設工作表直接改名為第一天，產出中不會殘留空白工作表
	defaultSheet := f.GetSheetName(0)
	for i, day := range req.Days {
		name := names[i]
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, &InvalidSheetNameError{Name: name, Reason: err.Error(), Err: err}
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, &InvalidSheetNameError{Name: name, Reason: err.Error(), Err: err}
		}

		if err := writeDay(f, name, req, day); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(name, "A1", "D3", summaryStyle); err != nil {
			return nil, fmt.Errorf("failed to style sheet %q: %w", name, err)
		}
		if err := f.SetCellStyle(name, "E1", "F3", boldStyle); err != nil {
			return nil, fmt.Errorf("failed to style sheet %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	common.LogDebug("Workbook built",
		zap.Int("sheets", len(names)),
		zap.Int("bytes", buf.Len()),
	)

	return &Artifact{
		Filename:    Filename,
		ContentType: ContentType,
		Sheets:      names,
		Data:        buf.Bytes(),
	}, nil
}

// writeDay 寫入單日工作表。日合計先行計算，摘要列的 Actual/Difference 因此可直接寫入
func writeDay(f *excelize.File, sheet string, req *Request, day Day) error {
	dayTotals := DayTotals(day)
	w := &rowWriter{f: f, sheet: sheet}

	w.append(summaryHeader...)
	w.append("Calories (kcal)", req.CalorieTarget, dayTotals.Calories, dayTotals.Calories-req.CalorieTarget)
	w.append("Protein (grams)", req.ProteinTarget, dayTotals.Protein, dayTotals.Protein-req.ProteinTarget)
	w.blank()

	for _, meal := range day.Meals {
		w.append(meal.MealName)
		w.append(mealHeader...)
		for _, ing := range meal.Ingredients {
			w.append(meal.MealName, ing.Name, ing.Quantity, ing.Unit, ing.Protein, ing.Calories)
		}
		mt := MealTotals(meal)
		w.append("TOTAL", "", "", "", mt.Protein, mt.Calories)
		w.blank()
	}

	w.append("Daily Totals", "", "", "", dayTotals.Protein, dayTotals.Calories)

	if w.err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", sheet, w.err)
	}
	return nil
}

// rowWriter 依序附加列，保留第一個錯誤
type rowWriter struct {
	f     *excelize.File
	sheet string
	row   int
	err   error
}

func (w *rowWriter) append(values ...interface{}) {
	w.row++
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, cell, &values)
}

func (w *rowWriter) blank() {
	w.row++
}
