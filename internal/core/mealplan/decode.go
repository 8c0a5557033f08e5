package mealplan

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Decode 解析請求內容。days 以 jsonparser 逐鍵讀取以保留輸入順序，
// 任何缺少或型別錯誤的欄位都回傳 MalformedInputError，不做預設值填補。
func Decode(body []byte) (*Request, error) {
	if len(body) == 0 {
		return nil, newMalformed("body", "no data provided")
	}
	if !json.Valid(body) {
		return nil, newMalformed("body", "invalid JSON")
	}
	if _, typ, _, err := jsonparser.Get(body); err != nil || typ != jsonparser.Object {
		return nil, newMalformed("body", "expected a JSON object")
	}

	calorieTarget, err := numberField(body, "calorie_target", "calorie_target")
	if err != nil {
		return nil, err
	}
	proteinTarget, err := numberField(body, "protein_target", "protein_target")
	if err != nil {
		return nil, err
	}

	daysRaw, typ, _, err := jsonparser.Get(body, "days")
	if err != nil || typ != jsonparser.Object {
		return nil, shapeError("days", typ, "object")
	}

	req := &Request{
		CalorieTarget: calorieTarget,
		ProteinTarget: proteinTarget,
	}

	err = jsonparser.ObjectEach(daysRaw, func(key []byte, value []byte, dataType jsonparser.ValueType, _ int) error {
		// ObjectEach 傳入的鍵已解除跳脫，原樣作為日期標籤
		label := string(key)
		path := fmt.Sprintf("days[%q]", label)
		if dataType != jsonparser.Array {
			return shapeError(path, dataType, "array")
		}
		meals, err := decodeMeals(path, value)
		if err != nil {
			return err
		}
		req.Days = append(req.Days, Day{Label: label, Meals: meals})
		return nil
	})
	if err != nil {
		return nil, asMalformed("days", err)
	}
	if len(req.Days) == 0 {
		return nil, newMalformed("days", "at least one day is required")
	}

	return req, nil
}

// decodeMeals 解析單日餐點列表
func decodeMeals(path string, raw []byte) ([]Meal, error) {
	meals := []Meal{}
	var firstErr error
	idx := 0
	_, err := jsonparser.ArrayEach(raw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		mealPath := fmt.Sprintf("%s[%d]", path, idx)
		idx++
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = newMalformed(mealPath, "%v", err)
			return
		}
		if dataType != jsonparser.Object {
			firstErr = shapeError(mealPath, dataType, "object")
			return
		}
		meal, err := decodeMeal(mealPath, value)
		if err != nil {
			firstErr = err
			return
		}
		meals = append(meals, meal)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, newMalformed(path, "%v", err)
	}
	return meals, nil
}

// decodeMeal 解析單餐
func decodeMeal(path string, raw []byte) (Meal, error) {
	name, err := stringField(raw, path+".meal_name", "meal_name")
	if err != nil {
		return Meal{}, err
	}

	ingPath := path + ".ingredients"
	ingRaw, typ, _, err := jsonparser.Get(raw, "ingredients")
	if err != nil || typ != jsonparser.Array {
		return Meal{}, shapeError(ingPath, typ, "array")
	}

	meal := Meal{MealName: name, Ingredients: []Ingredient{}}
	var firstErr error
	idx := 0
	_, err = jsonparser.ArrayEach(ingRaw, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		p := fmt.Sprintf("%s[%d]", ingPath, idx)
		idx++
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = newMalformed(p, "%v", err)
			return
		}
		if dataType != jsonparser.Object {
			firstErr = shapeError(p, dataType, "object")
			return
		}
		ing, err := decodeIngredient(p, value)
		if err != nil {
			firstErr = err
			return
		}
		meal.Ingredients = append(meal.Ingredients, ing)
	})
	if firstErr != nil {
		return Meal{}, firstErr
	}
	if err != nil {
		return Meal{}, newMalformed(ingPath, "%v", err)
	}
	return meal, nil
}

// decodeIngredient 解析單一食材
func decodeIngredient(path string, raw []byte) (Ingredient, error) {
	var (
		ing Ingredient
		err error
	)
	if ing.Name, err = stringField(raw, path+".name", "name"); err != nil {
		return ing, err
	}
	if ing.Quantity, err = numberField(raw, path+".quantity", "quantity"); err != nil {
		return ing, err
	}
	if ing.Unit, err = stringField(raw, path+".unit", "unit"); err != nil {
		return ing, err
	}
	if ing.Protein, err = numberField(raw, path+".protein", "protein"); err != nil {
		return ing, err
	}
	if ing.Calories, err = numberField(raw, path+".calories", "calories"); err != nil {
		return ing, err
	}
	return ing, nil
}

func numberField(raw []byte, path, key string) (float64, error) {
	value, typ, _, err := jsonparser.Get(raw, key)
	if err != nil || typ != jsonparser.Number {
		return 0, shapeError(path, typ, "number")
	}
	n, err := jsonparser.ParseFloat(value)
	if err != nil {
		return 0, newMalformed(path, "invalid number: %v", err)
	}
	return n, nil
}

func stringField(raw []byte, path, key string) (string, error) {
	value, typ, _, err := jsonparser.Get(raw, key)
	if err != nil || typ != jsonparser.String {
		return "", shapeError(path, typ, "string")
	}
	s, err := jsonparser.ParseString(value)
	if err != nil {
		return "", newMalformed(path, "invalid string: %v", err)
	}
	if r, ok := illegalCellRune(s); ok {
		return "", newMalformed(path, "character %U is not allowed in a spreadsheet cell", r)
	}
	return s, nil
}

// illegalCellRune 找出 XML 不允許的字元，試算表寫入時會被替換成 U+FFFD
func illegalCellRune(s string) (rune, bool) {
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
		case r < 0x20, r == 0xFFFE, r == 0xFFFF:
			return r, true
		}
	}
	return 0, false
}

func shapeError(path string, got jsonparser.ValueType, want string) *MalformedInputError {
	if got == jsonparser.NotExist {
		return newMalformed(path, "required field is missing")
	}
	return newMalformed(path, "expected %s, got %s", want, got)
}

// asMalformed 保留回呼中產生的 MalformedInputError，其餘錯誤包裝成欄位錯誤
func asMalformed(path string, err error) error {
	if _, ok := err.(*MalformedInputError); ok {
		return err
	}
	return newMalformed(path, "%v", err)
}
