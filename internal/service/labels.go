package service

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/guttosm/macro-service/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	importedProductName = "Imported product"
	kilojoulesPerKcal   = 4.184
)

// ErrEmptyLabel is returned when there is no label text to parse.
var ErrEmptyLabel = errors.New("label text is empty")

var (
	whitespace = regexp.MustCompile(`\s+`)

	kcalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`calories?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`cal\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`kcal\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`熱量\s*(\d+(?:\.\d+)?)`),
	}
	kjPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kj`),
	}
	proteinPatterns = []*regexp.Regexp{
		regexp.MustCompile(`proteins?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`たんぱく質\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`タンパク質\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`蛋白質\s*(\d+(?:\.\d+)?)`),
	}
	carbPatterns = []*regexp.Regexp{
		regexp.MustCompile(`total\s*carbohydrates?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`carbohydrates?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`carbs?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`炭水化物\s*(\d+(?:\.\d+)?)`),
	}
	fatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`fats?\s*(\d+(?:\.\d+)?)`),
		regexp.MustCompile(`脂質\s*(\d+(?:\.\d+)?)`),
	}
	servingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:serving size|per)\s*(\d+(?:\.\d+)?)\s*(?:g|ml)`),
		regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:g|ml)`),
	}
	headerLine = regexp.MustCompile(`(?i)nutrition|calories|energy`)
)

// ParseLabel turns pasted nutrition-label text (English, EU and Japanese
// keywords) into a preview product. Values that cannot be found are zero;
// the serving falls back to 100 g. The result has no id.
func ParseLabel(text string) (model.Product, error) {
	if strings.TrimSpace(text) == "" {
		return model.Product{}, ErrEmptyLabel
	}
	t := normalizeLabel(text)

	kcal := firstNumber(kcalPatterns, t)
	if kcal == 0 {
		if kj := firstNumber(kjPatterns, t); kj > 0 {
			kcal, _ = decimal.NewFromFloat(kj / kilojoulesPerKcal).Round(0).Float64()
		}
	}

	serving := firstNumber(servingPatterns, t)
	if serving <= 0 {
		serving = 100
	}
	unit := model.UnitLabelGrams
	if strings.Contains(t, "ml") {
		unit = model.UnitLabelMillilitre
	}

	return model.Product{
		Name:         labelName(text),
		ServingGrams: serving,
		Unit:         unit,
		GramsPerUnit: 1,
		Calories:     kcal,
		Protein:      firstNumber(proteinPatterns, t),
		Carbs:        firstNumber(carbPatterns, t),
		Fat:          firstNumber(fatPatterns, t),
	}, nil
}

func normalizeLabel(text string) string {
	t := strings.ToLower(text)
	t = strings.ReplaceAll(t, ",", ".")
	t = whitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

func firstNumber(patterns []*regexp.Regexp, text string) float64 {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if group == "" || group[0] < '0' || group[0] > '9' {
				continue
			}
			if f, err := strconv.ParseFloat(group, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

// labelName is the first line that is not a table header.
func labelName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !headerLine.MatchString(line) {
			return line
		}
	}
	return importedProductName
}
