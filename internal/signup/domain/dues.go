package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const weeksPerYear = 52

var currencySymbols = map[string]string{
	"usd": "$",
	"cad": "$",
}

// MonthlyDues is floor(floor(total)/100/12). Anything that does not parse as
// a finite number counts as zero.
func MonthlyDues(totalCompensation string) int64 {
	total, ok := parseAmount(totalCompensation)
	if !ok {
		return 0
	}
	return int64(math.Floor(math.Floor(total) / 100 / 12))
}

func FormatDues(totalCompensation, currency string) string {
	symbol, ok := currencySymbols[strings.ToLower(strings.TrimSpace(currency))]
	if !ok {
		symbol = "$"
	}
	return fmt.Sprintf("%s%d", symbol, MonthlyDues(totalCompensation))
}

// AnnualCompensation back-fills total compensation from the hourly calculator.
func AnnualCompensation(hourlyRate, hoursPerWeek string) (string, bool) {
	rate, ok := parseAmount(hourlyRate)
	if !ok {
		return "", false
	}
	hours, ok := parseAmount(hoursPerWeek)
	if !ok {
		return "", false
	}
	return strconv.FormatFloat(rate*hours*weeksPerYear, 'f', -1, 64), true
}

func parseAmount(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if trimmed == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}
