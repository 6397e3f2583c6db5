// Package report отвечает за текстовое представление данных приложения:
// таблицы списка подписок, сводки, истории и напоминаний.
package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/subtrackhq/subtrack/internal/models"
)

// localeForCurrency — «домашняя» локаль каждой поддерживаемой валюты,
// задающая группировку разрядов и десятичный разделитель.
var localeForCurrency = map[models.Currency]language.Tag{
	models.CurrencyUSD: language.AmericanEnglish,
	models.CurrencyEUR: language.German,
	models.CurrencyTRY: language.Turkish,
}

// prefixCurrencies — валюты, символ которых пишется перед суммой.
var prefixCurrencies = map[models.Currency]bool{
	models.CurrencyUSD: true,
	models.CurrencyTRY: true,
}

// FormatAmount форматирует сумму с символом валюты и локальными
// правилами записи числа, с двумя знаками после разделителя.
func FormatAmount(amount float64, cur models.Currency) string {
	tag, ok := localeForCurrency[cur]
	if !ok {
		tag = language.English
	}
	printer := message.NewPrinter(tag)
	formatted := printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))

	symbol, ok := models.CurrencySymbols[cur]
	if !ok {
		symbol = string(cur)
	}
	if prefixCurrencies[cur] {
		return symbol + formatted
	}
	return formatted + " " + symbol
}
