package mealplan

// Ingredient 食材與營養數值
type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Protein  float64 `json:"protein"`  // 克
	Calories float64 `json:"calories"` // 大卡
}

// Meal 一餐及其食材
type Meal struct {
	MealName    string       `json:"meal_name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Day 一天的餐點，Label 即工作表名稱
type Day struct {
	Label string
	Meals []Meal
}

// Request 飲食計畫請求，Days 保留輸入順序
type Request struct {
	CalorieTarget float64
	ProteinTarget float64
	Days          []Day
}

// Totals 熱量與蛋白質合計
type Totals struct {
	Calories float64
	Protein  float64
}

// Add 累加另一組合計
func (t Totals) Add(o Totals) Totals {
	return Totals{Calories: t.Calories + o.Calories, Protein: t.Protein + o.Protein}
}

// MealTotals 計算單餐合計
func MealTotals(m Meal) Totals {
	var t Totals
	for _, ing := range m.Ingredients {
		t.Calories += ing.Calories
		t.Protein += ing.Protein
	}
	return t
}

// DayTotals 計算單日合計（各餐合計之和）
func DayTotals(d Day) Totals {
	var t Totals
	for _, m := range d.Meals {
		t = t.Add(MealTotals(m))
	}
	return t
}

// Artifact 產出的試算表檔案
type Artifact struct {
	Filename    string
	ContentType string
	Sheets      []string
	Data        []byte
}

// Size 檔案大小
func (a *Artifact) Size() int {
	return len(a.Data)
}
